package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/observability"
)

// OrderService owns every mutation of a user's order collection. Appends and
// removals are delegated to atomic store operations.
type OrderService struct {
	users   UserStore
	catalog *order.Catalog
	prom    *observability.Prom
	timeout time.Duration
}

func NewOrderService(users UserStore, catalog *order.Catalog, prom *observability.Prom, timeout time.Duration) *OrderService {
	if catalog == nil {
		catalog = order.DefaultCatalog()
	}
	return &OrderService{
		users:   users,
		catalog: catalog,
		prom:    prom,
		timeout: timeout,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, userID string, req order.CreateRequest) (out []order.Order, err error) {
	defer func() { s.observe("create", err) }()

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	if _, err = s.users.GetByID(cctx, userID); err != nil {
		return nil, storeErr(err)
	}

	o, err := order.NewFromCreateRequest(req, s.catalog)
	if err != nil {
		if errors.Is(err, order.ErrInvalidOrder) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, err
	}

	wctx, wcancel := withStoreTimeout(ctx, s.timeout)
	defer wcancel()

	out, err = s.users.AppendOrder(wctx, userID, o)
	if err != nil {
		return nil, storeErr(err)
	}

	return out, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) (out []order.Order, err error) {
	defer func() { s.observe("list", err) }()

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByID(cctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	if u.Orders == nil {
		return []order.Order{}, nil
	}
	return u.Orders, nil
}

// DeleteOrder removes exactly one order and returns the remaining collection.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID string) (out []order.Order, err error) {
	defer func() { s.observe("delete", err) }()

	cctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	out, err = s.users.RemoveOrder(cctx, userID, orderID)
	if err != nil {
		return nil, storeErr(err)
	}

	return out, nil
}

// Catalog exposes the immutable version table for read-only callers.
func (s *OrderService) Catalog() *order.Catalog {
	return s.catalog
}

func (s *OrderService) observe(op string, err error) {
	if s.prom == nil {
		return
	}

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrUnsupportedVersion):
		outcome = "unsupported_version"
	case errors.Is(err, ErrValidation):
		outcome = "invalid"
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	s.prom.ObserveOrderOp(op, outcome)
}
