package apperror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond writes err as {"status":"error","message","code"}. Errors that are
// not an *AppError are reported as a 500 without leaking their text.
func Respond(c *gin.Context, err error) {
	RespondWith(c, err, nil)
}

// RespondWith is Respond with extra fields merged into the body. The
// status, message and code fields always win.
func RespondWith(c *gin.Context, err error, extra gin.H) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal("Internal Server Error", err)
	}

	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	body["status"] = "error"
	body["message"] = appErr.Message
	body["code"] = appErr.Kind
	if rid := c.GetString("request_id"); rid != "" {
		body["request_id"] = rid
	}
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, body)
}
