package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/pupsorders/internal/auth"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/geocoder89/pupsorders/internal/observability"
)

// IdentityResolver turns a bearer token into the id of an existing user.
type IdentityResolver struct {
	tokens  *auth.Manager
	users   UserStore
	cache   IdentityCache
	prom    *observability.Prom
	log     *slog.Logger
	timeout time.Duration
}

func NewIdentityResolver(tokens *auth.Manager, users UserStore, cache IdentityCache, prom *observability.Prom, log *slog.Logger, timeout time.Duration) *IdentityResolver {
	if log == nil {
		log = slog.Default()
	}
	return &IdentityResolver{
		tokens:  tokens,
		users:   users,
		cache:   cache,
		prom:    prom,
		log:     log,
		timeout: timeout,
	}
}

// Resolve fails with ErrUnauthorized both for a bad token and for a token whose
// email no longer maps to a user.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (string, error) {
	id, err := r.tokens.Verify(token)
	if err != nil {
		return "", ErrUnauthorized
	}

	if userID, ok := r.cached(ctx, id.Email); ok {
		return userID, nil
	}

	cctx, cancel := withStoreTimeout(ctx, r.timeout)
	defer cancel()

	u, err := r.users.GetByEmail(cctx, id.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", storeErr(err)
	}

	if r.cache != nil {
		if err := r.cache.SetUserID(ctx, id.Email, u.ID); err != nil {
			r.log.WarnContext(ctx, "identity cache write failed", "err", err)
		}
	}

	return u.ID, nil
}

// Email returns the verified email carried by token without touching the store.
func (r *IdentityResolver) Email(token string) (string, error) {
	id, err := r.tokens.Verify(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	return id.Email, nil
}

func (r *IdentityResolver) cached(ctx context.Context, email string) (string, bool) {
	if r.cache == nil {
		return "", false
	}

	userID, ok, err := r.cache.GetUserID(ctx, email)
	switch {
	case err != nil:
		r.observeCache("error")
		r.log.WarnContext(ctx, "identity cache read failed", "err", err)
		return "", false
	case ok:
		r.observeCache("hit")
		return userID, true
	default:
		r.observeCache("miss")
		return "", false
	}
}

func (r *IdentityResolver) observeCache(result string) {
	if r.prom != nil {
		r.prom.ObserveCache(result)
	}
}
