package mongodb

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/google/uuid"
)

func setupUsersRepo(t *testing.T) *UsersRepo {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()

	client, err := Connect(ctx, uri)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	db := client.Database("pupsorders_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	r := NewUsersRepo(db, nil)
	if err := r.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return r
}

func TestUsersRepo_Mongo_Lifecycle(t *testing.T) {
	r := setupUsersRepo(t)
	ctx := context.Background()

	u, err := r.Create(ctx, "a@x.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := r.Create(ctx, "a@x.com", "hash"); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("duplicate create: got %v, want ErrEmailTaken", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, err := r.AppendOrder(ctx, u.ID, order.Order{ID: id, Status: order.StatusPlaced}); err != nil {
			t.Fatalf("AppendOrder: %v", err)
		}
	}

	left, err := r.RemoveOrder(ctx, u.ID, "b")
	if err != nil {
		t.Fatalf("RemoveOrder: %v", err)
	}
	if len(left) != 2 || left[0].ID != "a" || left[1].ID != "c" {
		t.Fatalf("remaining = %+v", left)
	}

	if _, err := r.RemoveOrder(ctx, u.ID, "b"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("got %v, want order.ErrNotFound", err)
	}
	if _, err := r.RemoveOrder(ctx, "missing", "a"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want user.ErrNotFound", err)
	}
	if err := r.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want user.ErrNotFound", err)
	}
}

func TestUsersRepo_Mongo_ConcurrentAppends(t *testing.T) {
	r := setupUsersRepo(t)
	ctx := context.Background()

	u, err := r.Create(ctx, "race@x.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := r.AppendOrder(ctx, u.ID, order.Order{ID: strconv.Itoa(i)}); err != nil {
				t.Errorf("AppendOrder: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := r.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Orders) != n {
		t.Fatalf("orders = %d, want %d", len(got.Orders), n)
	}
}
