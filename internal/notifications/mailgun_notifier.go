package notifications

import (
	"context"
	"fmt"

	mg "github.com/mailgun/mailgun-go/v4"
)

type MailgunConfig struct {
	Domain string
	APIKey string
	Sender string
	Inbox  string
}

// MailgunNotifier relays contact messages to a fixed inbox through Mailgun.
type MailgunNotifier struct {
	client *mg.MailgunImpl
	sender string
	inbox  string
}

func NewMailgunNotifier(cfg MailgunConfig) *MailgunNotifier {
	return &MailgunNotifier{
		client: mg.NewMailgun(cfg.Domain, cfg.APIKey),
		sender: cfg.Sender,
		inbox:  cfg.Inbox,
	}
}

func (n *MailgunNotifier) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	m := n.client.NewMessage(n.sender, msg.Subject, msg.Body(), n.inbox)
	m.SetReplyTo(msg.Email)

	if _, _, err := n.client.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
