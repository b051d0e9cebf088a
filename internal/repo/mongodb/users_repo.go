package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDoc struct {
	ID           string        `bson:"_id"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"passwordHash"`
	Orders       []order.Order `bson:"orders"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

func (d userDoc) toDomain() user.User {
	orders := d.Orders
	if orders == nil {
		orders = []order.Order{}
	}
	return user.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Orders:       orders,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UsersRepo stores one document per user with orders embedded. Order mutations
// are single-document $push/$pull updates, which MongoDB applies atomically.
type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewUsersRepo(db *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{coll: db.Collection(usersCollection), prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// EnsureIndexes creates the unique email index that backs ErrEmailTaken.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	return r.observe("users.ensure_indexes", func() error {
		_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_uniq"),
		})
		return err
	})
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	doc := userDoc{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Orders:       []order.Order{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, e := r.coll.InsertOne(ctx, doc)
		return e
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_email", bson.M{"email": email})
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_id", bson.M{"_id": id})
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M) (user.User, error) {
	var doc userDoc

	err := r.observe(op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&doc)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	var res *mongo.UpdateResult

	err := r.observe("users.update_password_hash", func() error {
		var e error
		res, e = r.coll.UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now().UTC()}},
		)
		return e
	})

	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) AppendOrder(ctx context.Context, userID string, o order.Order) ([]order.Order, error) {
	doc, err := r.updateOrders(ctx, "users.append_order",
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"orders": o},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toDomain().Orders, nil
}

func (r *UsersRepo) RemoveOrder(ctx context.Context, userID, orderID string) ([]order.Order, error) {
	// Matching on the order id too turns "no such order" into a no-op.
	doc, err := r.updateOrders(ctx, "users.remove_order",
		bson.M{"_id": userID, "orders.id": orderID},
		bson.M{
			"$pull": bson.M{"orders": bson.M{"id": orderID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)

	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, userID); getErr != nil {
			return nil, getErr
		}
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toDomain().Orders, nil
}

func (r *UsersRepo) updateOrders(ctx context.Context, op string, filter, update bson.M) (userDoc, error) {
	var doc userDoc

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"orders": 1})

	err := r.observe(op, func() error {
		return r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	})

	return doc, err
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.observe("users.ping", func() error {
		return r.coll.Database().Client().Ping(ctx, nil)
	})
}
