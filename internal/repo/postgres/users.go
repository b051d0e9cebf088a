package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersRepo stores users with their orders embedded as a JSONB array.
// Order mutations lock the owning row for the length of a transaction.
type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Orders:       []order.Order{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, orders, created_at, updated_at)
		VALUES ($1, $2, $3, '[]'::jsonb, $4, $5)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `
		SELECT id, email, password_hash, orders, created_at, updated_at
		FROM users
		WHERE email = $1`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `
		SELECT id, email, password_hash, orders, created_at, updated_at
		FROM users
		WHERE id = $1`, id)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg string) (user.User, error) {
	var (
		u   user.User
		raw []byte
	)

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, query, arg).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&raw,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	u.Orders, err = decodeOrders(raw)
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	var tag pgconn.CommandTag

	err := r.observe("users.update_password_hash", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id, passwordHash, time.Now().UTC())
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) AppendOrder(ctx context.Context, userID string, o order.Order) ([]order.Order, error) {
	return r.mutateOrders(ctx, "users.append_order", userID, func(current []order.Order) ([]order.Order, error) {
		return append(current, o), nil
	})
}

func (r *UsersRepo) RemoveOrder(ctx context.Context, userID, orderID string) ([]order.Order, error) {
	return r.mutateOrders(ctx, "users.remove_order", userID, func(current []order.Order) ([]order.Order, error) {
		for i, o := range current {
			if o.ID == orderID {
				return append(current[:i:i], current[i+1:]...), nil
			}
		}
		return nil, order.ErrNotFound
	})
}

// mutateOrders reads the collection under a row lock, applies fn and writes the
// result back in the same transaction. An error from fn rolls back untouched.
func (r *UsersRepo) mutateOrders(
	ctx context.Context,
	op string,
	userID string,
	fn func([]order.Order) ([]order.Order, error),
) (out []order.Order, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var raw []byte
	err = r.observe(op+".lock", func() error {
		return tx.QueryRow(ctx, `
		SELECT orders
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&raw)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	current, err := decodeOrders(raw)
	if err != nil {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}

	err = r.observe(op+".write", func() error {
		_, e := tx.Exec(ctx, `
		UPDATE users
		SET orders = $2::jsonb, updated_at = $3
		WHERE id = $1
	`, userID, encoded, time.Now().UTC())
		return e
	})

	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return next, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.observe("users.ping", func() error {
		return r.pool.Ping(ctx)
	})
}

func decodeOrders(raw []byte) ([]order.Order, error) {
	out := []order.Order{}
	if len(raw) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []order.Order{}
	}
	return out, nil
}
