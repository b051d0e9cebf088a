package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/http/middlewares"
	"github.com/geocoder89/pupsorders/internal/service"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := middlewares.RequestIDFromContext(ctx); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusNotFound, code, message, nil)
}

func RespondUnprocessable(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnprocessableEntity, code, message, nil)
}

// RespondUnavailable marks the failure as retryable.
func RespondUnavailable(ctx *gin.Context, message string) {
	ctx.Header("Retry-After", "1")
	RespondError(ctx, http.StatusServiceUnavailable, "unavailable", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondServiceError maps the service error taxonomy onto HTTP.
func RespondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		RespondBadRequest(ctx, err.Error(), nil)
	case errors.Is(err, service.ErrAlreadyRegistered):
		RespondError(ctx, http.StatusBadRequest, "already_registered", "User with this email is already registered", nil)
	case errors.Is(err, service.ErrUnauthorized):
		RespondUnAuthorized(ctx, "unauthorized", "Invalid or expired access token")
	case errors.Is(err, order.ErrNotFound):
		RespondNotFound(ctx, "order_not_found", "Order not found")
	case errors.Is(err, service.ErrNotFound):
		RespondNotFound(ctx, "user_not_found", "User not found")
	case errors.Is(err, service.ErrUnsupportedVersion):
		RespondUnprocessable(ctx, "unsupported_version", err.Error())
	case errors.Is(err, service.ErrUnavailable):
		slog.Default().WarnContext(ctx.Request.Context(), "store unavailable", "err", err, "request_id", requestIDFrom(ctx))
		RespondUnavailable(ctx, "Service temporarily unavailable, retry shortly")
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "unhandled error", "err", err, "request_id", requestIDFrom(ctx))
		RespondInternal(ctx, "Something went wrong")
	}
}
