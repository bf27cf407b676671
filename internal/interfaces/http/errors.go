package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/domain/workflow"
)

// Error codes of the error body
const (
	CodeValidation        = "validation_error"
	CodeInvalidTransition = "invalid_transition"
	CodeNotFound          = "not_found"
	CodeBadRequest        = "bad_request"
	CodeConflict          = "conflict"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps ErrorBody
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func abortWithError(c *gin.Context, status int, code, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Fields: fields}})
}

func badRequest(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, CodeBadRequest, message, nil)
}

// writeError maps a service error onto its status code and error body
func (h *Handlers) writeError(c *gin.Context, err error) {
	var (
		verr *entity.ValidationError
		terr *workflow.InvalidTransitionError
	)

	switch {
	case errors.As(err, &verr):
		abortWithError(c, http.StatusUnprocessableEntity, CodeValidation, "validation failed", verr.Fields)
	case errors.Is(err, port.ErrIdempotencyConflict):
		abortWithError(c, http.StatusUnprocessableEntity, CodeValidation, "validation failed",
			map[string]string{"Idempotency-Key": err.Error()})
	case errors.As(err, &terr):
		abortWithError(c, http.StatusConflict, CodeInvalidTransition, terr.Error(), nil)
	case errors.Is(err, workflow.ErrInvalidTransition):
		abortWithError(c, http.StatusConflict, CodeInvalidTransition, err.Error(), nil)
	case errors.Is(err, port.ErrRequestNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, "Request not found", nil)
	case errors.Is(err, port.ErrPurchaseOrderNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, "Purchase order not found", nil)
	case errors.Is(err, port.ErrRequestExists), errors.Is(err, port.ErrTimelineRewritten):
		abortWithError(c, http.StatusConflict, CodeConflict, err.Error(), nil)
	default:
		h.logger.Error("Request handling failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
	}
}
