package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps users in process memory. Every order mutation runs under the
// write lock, so appends and removals on one user never interleave.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // id -> user
	byEmail map[string]string    // email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Orders:       []order.Order{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return cloneUser(u), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return cloneUser(r.items[id]), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return cloneUser(u), nil
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}

func (r *UsersRepo) AppendOrder(ctx context.Context, userID string, o order.Order) ([]order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return nil, user.ErrNotFound
	}

	next := make([]order.Order, 0, len(u.Orders)+1)
	next = append(next, u.Orders...)
	next = append(next, o)

	u.Orders = next
	u.UpdatedAt = time.Now().UTC()
	r.items[userID] = u

	return cloneOrders(next), nil
}

func (r *UsersRepo) RemoveOrder(ctx context.Context, userID, orderID string) ([]order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return nil, user.ErrNotFound
	}

	idx := -1
	for i, o := range u.Orders {
		if o.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, order.ErrNotFound
	}

	next := make([]order.Order, 0, len(u.Orders)-1)
	next = append(next, u.Orders[:idx]...)
	next = append(next, u.Orders[idx+1:]...)

	u.Orders = next
	u.UpdatedAt = time.Now().UTC()
	r.items[userID] = u

	return cloneOrders(next), nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneUser(u user.User) user.User {
	u.Orders = cloneOrders(u.Orders)
	return u
}

func cloneOrders(in []order.Order) []order.Order {
	out := make([]order.Order, len(in))
	copy(out, in)
	return out
}
