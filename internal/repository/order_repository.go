package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arunprasath/shopcart/internal/model"
)

// OrderRepo implements OrderStore on a MongoDB collection.
type OrderRepo struct {
	coll *mongo.Collection
}

func NewOrderRepo(coll *mongo.Collection) *OrderRepo { return &OrderRepo{coll: coll} }

func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	var o model.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) ByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *OrderRepo) All(ctx context.Context) ([]model.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepo) Save(ctx context.Context, o *model.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepo) find(ctx context.Context, filter bson.M) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)
	orders := []model.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
