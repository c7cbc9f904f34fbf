package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	service string
	version string
	checks  map[string]Check
	timeout time.Duration
}

func NewHandler(service, version string, checks map[string]Check) *Handler {
	return &Handler{
		service: service,
		version: version,
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.HealthHandler)
}

type Report struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200 {object} Report
// @Failure      503 {object} Report
// @Router       /health [get]
func (h *Handler) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	report := h.Run(ctx)
	code := http.StatusOK
	if report.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

// Run executes every check in name order.
func (h *Handler) Run(ctx context.Context) Report {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report := Report{
		Status:  "healthy",
		Service: h.service,
		Version: h.version,
		Checks:  make(map[string]string, len(names)),
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			report.Checks[name] = "error: " + err.Error()
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
