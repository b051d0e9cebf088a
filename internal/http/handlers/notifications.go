package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/pupsorders/internal/notifications"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct {
	notifier notifications.Notifier
	prom     *observability.Prom
}

func NewNotificationsHandler(notifier notifications.Notifier, prom *observability.Prom) *NotificationsHandler {
	return &NotificationsHandler{notifier: notifier, prom: prom}
}

func (h *NotificationsHandler) Create(ctx *gin.Context) {
	var msg notifications.ContactMessage

	if !BindJSON(ctx, &msg) {
		return
	}

	err := h.notifier.SendContactMessage(ctx.Request.Context(), msg)

	switch {
	case err == nil:
		h.observe("sent")
		ctx.JSON(http.StatusAccepted, gin.H{"success": true})
	case errors.Is(err, notifications.ErrCircuitOpen):
		h.observe("rejected")
		RespondUnavailable(ctx, "Messaging is temporarily unavailable, retry shortly")
	default:
		h.observe("failed")
		slog.Default().ErrorContext(ctx.Request.Context(), "contact message failed", "err", err, "request_id", requestIDFrom(ctx))
		RespondError(ctx, http.StatusBadGateway, "delivery_failed", "Could not deliver message", nil)
	}
}

func (h *NotificationsHandler) observe(result string) {
	if h.prom != nil {
		h.prom.ObserveNotification(result)
	}
}
