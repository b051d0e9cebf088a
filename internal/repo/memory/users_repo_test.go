package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
)

func mustCreate(t *testing.T, r *UsersRepo, email string) user.User {
	t.Helper()

	u, err := r.Create(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return u
}

func TestUsersRepo_CreateAndLookup(t *testing.T) {
	r := NewUsersRepo()
	u := mustCreate(t, r, "a@x.com")

	if u.Orders == nil || len(u.Orders) != 0 {
		t.Fatalf("new user must start with an empty, non-nil collection")
	}

	byEmail, err := r.GetByEmail(context.Background(), "a@x.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail = %+v, %v", byEmail, err)
	}

	byID, err := r.GetByID(context.Background(), u.ID)
	if err != nil || byID.Email != "a@x.com" {
		t.Fatalf("GetByID = %+v, %v", byID, err)
	}

	if _, err := r.Create(context.Background(), "a@x.com", "other"); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("duplicate create: got %v, want ErrEmailTaken", err)
	}

	if _, err := r.GetByEmail(context.Background(), "b@x.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := r.GetByID(context.Background(), "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUsersRepo_UpdatePasswordHash(t *testing.T) {
	r := NewUsersRepo()
	u := mustCreate(t, r, "a@x.com")

	if err := r.UpdatePasswordHash(context.Background(), u.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePasswordHash error: %v", err)
	}

	got, _ := r.GetByID(context.Background(), u.ID)
	if got.PasswordHash != "new-hash" {
		t.Fatalf("hash = %q, want new-hash", got.PasswordHash)
	}

	if err := r.UpdatePasswordHash(context.Background(), "missing", "x"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUsersRepo_RemoveOrderPreservesOrder(t *testing.T) {
	r := NewUsersRepo()
	u := mustCreate(t, r, "a@x.com")
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := r.AppendOrder(ctx, u.ID, order.Order{ID: id, Status: order.StatusPlaced}); err != nil {
			t.Fatalf("AppendOrder error: %v", err)
		}
	}

	left, err := r.RemoveOrder(ctx, u.ID, "b")
	if err != nil {
		t.Fatalf("RemoveOrder error: %v", err)
	}
	if len(left) != 2 || left[0].ID != "a" || left[1].ID != "c" {
		t.Fatalf("remaining = %+v, want [a c]", left)
	}

	if _, err := r.RemoveOrder(ctx, u.ID, "b"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("second remove: got %v, want order.ErrNotFound", err)
	}

	got, _ := r.GetByID(ctx, u.ID)
	if len(got.Orders) != 2 {
		t.Fatalf("failed remove must not change the collection: %+v", got.Orders)
	}

	if _, err := r.RemoveOrder(ctx, "missing", "a"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want user.ErrNotFound", err)
	}
}

func TestUsersRepo_ReturnedSlicesAreCopies(t *testing.T) {
	r := NewUsersRepo()
	u := mustCreate(t, r, "a@x.com")
	ctx := context.Background()

	out, err := r.AppendOrder(ctx, u.ID, order.Order{ID: "a"})
	if err != nil {
		t.Fatalf("AppendOrder error: %v", err)
	}
	out[0].ID = "mutated"

	got, _ := r.GetByID(ctx, u.ID)
	if got.Orders[0].ID != "a" {
		t.Fatalf("store state leaked through returned slice")
	}
}

func TestUsersRepo_ConcurrentAppends(t *testing.T) {
	r := NewUsersRepo()
	u := mustCreate(t, r, "a@x.com")
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := r.AppendOrder(ctx, u.ID, order.Order{ID: strconv.Itoa(i)}); err != nil {
				t.Errorf("AppendOrder error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := r.GetByID(ctx, u.ID)
	if len(got.Orders) != n {
		t.Fatalf("orders = %d, want %d", len(got.Orders), n)
	}

	seen := make(map[string]bool, n)
	for _, o := range got.Orders {
		seen[o.ID] = true
	}
	if len(seen) != n {
		t.Fatalf("lost or duplicated orders: %d distinct ids", len(seen))
	}
}

func TestUsersRepo_CancelledContext(t *testing.T) {
	r := NewUsersRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.GetByEmail(ctx, "a@x.com"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
