package service

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/pupsorders/internal/config"
	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
)

const defaultStoreTimeout = 3 * time.Second

// UserStore is the document store behind every service. AppendOrder and
// RemoveOrder must be atomic per user; concurrent calls for one user may not lose writes.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	AppendOrder(ctx context.Context, userID string, o order.Order) ([]order.Order, error)
	RemoveOrder(ctx context.Context, userID, orderID string) ([]order.Order, error)
}

// IdentityCache memoizes email -> user id lookups. Users are never deleted, so
// entries never go stale.
type IdentityCache interface {
	GetUserID(ctx context.Context, email string) (string, bool, error)
	SetUserID(ctx context.Context, email, userID string) error
}

func storeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultStoreTimeout
	}
	return d
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return config.WithTimeout(ctx, storeTimeout(d))
}

// normalizeEmail trims surrounding whitespace only. Emails are case-sensitive keys.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
