package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
)

var exposeStack atomic.Bool

// ExposeErrorStacks toggles the "stack" field of error envelopes. Only
// development builds turn it on.
func ExposeErrorStacks(on bool) { exposeStack.Store(on) }

type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, message string, details any, cause error) {
	body := errorBody{Message: message, Details: details}
	if cause != nil && exposeStack.Load() {
		body.Stack = fmt.Sprintf("%+v", cause)
	}
	c.AbortWithStatusJSON(status, errorEnvelope{Error: body, RequestID: middleware.GetRequestID(c)})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, err.Error(), domain.ValidationDetails(err), err)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error(), nil, err)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, err.Error(), nil, err)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, err.Error(), nil, err)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, err.Error(), nil, err)
	default:
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("Unhandled error")
		respondError(c, http.StatusInternalServerError, "Internal Server Error", nil, err)
	}
}

// Recovery answers panics with the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		RespondDomainError(c, fmt.Errorf("panic: %v", recovered))
	})
}

// NotFound replies to unknown routes.
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path), nil, nil)
}
