package notifications

import (
	"context"
	"fmt"
)

// ContactMessage is a visitor's contact-form submission relayed to the team inbox.
type ContactMessage struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=300"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Body renders the plain-text mail body.
func (m ContactMessage) Body() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s\n", m.Name, m.Email, m.Message)
}

type Notifier interface {
	SendContactMessage(ctx context.Context, msg ContactMessage) error
}
