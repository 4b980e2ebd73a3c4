package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ===== RESPONSE ENVELOPES =====

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse leaves Success at its zero value so error literals only
// need Message and Details. Errors lists the per-field validation
// failures when there are any.
type ErrorResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Details string                     `json:"details,omitempty"`
	Errors  validator.ValidationErrors `json:"errors,omitempty"`
}

// ===== BASE HANDLER =====

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs with the request-scoped logger so entries carry the
// request id.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.LoggerFromContext(c.Request.Context(), h.logger).Error(msg, args...)
}

// ===== HELPER METHODS =====

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a valid number",
		})
		return 0
	}
	return uint(id)
}

// ===== ERROR HANDLING =====

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Map service errors to HTTP status codes
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		resp := ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		}
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			resp.Errors = verr.Fields
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrAccountBlocked):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Account blocked",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Conflict",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
