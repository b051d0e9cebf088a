package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes contact messages to the structured log instead of sending mail.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.contact_message",
		"from", msg.Email,
		"name", msg.Name,
		"subject", msg.Subject,
		"message_len", len(msg.Message),
	)
	return nil
}
