package availability

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"travel/internal/apperror"
	"travel/internal/schedule"
	"travel/pkg/logger"
)

type Resolver interface {
	Resolve(ctx context.Context, q schedule.Query) Result
}

// Handler runs resolutions on worker goroutines bounded by a semaphore, so
// slow extractions never run on the request goroutine and cannot pile up
// without limit.
type Handler struct {
	service Resolver
	workers *semaphore.Weighted
	logger  logger.Client
}

func NewHandler(s Resolver, maxConcurrent int64, log logger.Client) *Handler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Handler{
		service: s,
		workers: semaphore.NewWeighted(maxConcurrent),
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/travel/availability", h.AvailabilityHandler)
	router.GET("/api/transport-modes", h.TransportModesHandler)
}

// AvailabilityHandler godoc
// @Summary      Resolve travel availability
// @Description  Returns stored schedules for the route and day, or scrapes and stores them on a miss.
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        request body schedule.Query true "Travel query"
// @Success      200 {object} Result
// @Failure      400 {object} Result
// @Failure      501 {object} Result
// @Failure      502 {object} Result
// @Router       /api/travel/availability [post]
func (h *Handler) AvailabilityHandler(c *gin.Context) {
	var q schedule.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		apperror.Respond(c, apperror.Validation("Invalid JSON body: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	if err := h.workers.Acquire(ctx, 1); err != nil {
		apperror.Respond(c, &apperror.AppError{
			Kind:    apperror.KindInternal,
			Status:  http.StatusServiceUnavailable,
			Message: "request cancelled while waiting for a worker",
			Err:     err,
		})
		return
	}

	// The worker keeps going if the client leaves, so a started extraction
	// still gets persisted.
	done := make(chan Result, 1)
	go func() {
		defer h.workers.Release(1)
		done <- h.service.Resolve(context.WithoutCancel(ctx), q)
	}()

	select {
	case result := <-done:
		c.JSON(statusOf(result), result)
	case <-ctx.Done():
		h.logger.Warn("client left before resolution finished",
			logger.Field{Key: "origin", Value: q.Origin},
			logger.Field{Key: "destination", Value: q.Destination},
		)
	}
}

type transportModes struct {
	SupportedModes []schedule.Mode `json:"supported_modes"`
	Implemented    []schedule.Mode `json:"implemented"`
	ComingSoon     []schedule.Mode `json:"coming_soon"`
}

// @Summary  List transport modes
// @Tags     availability
// @Produce  json
// @Success  200 {object} transportModes
// @Router   /api/transport-modes [get]
func (h *Handler) TransportModesHandler(c *gin.Context) {
	resp := transportModes{
		SupportedModes: schedule.SupportedModes,
		Implemented:    schedule.ImplementedModes,
		ComingSoon:     []schedule.Mode{},
	}
	for _, m := range schedule.SupportedModes {
		if !m.Implemented() {
			resp.ComingSoon = append(resp.ComingSoon, m)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func statusOf(r Result) int {
	if r.Status == StatusSuccess {
		return http.StatusOK
	}
	var appErr *apperror.AppError
	if errors.As(r.Err(), &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
