package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arunprasath/shopcart/internal/model"
)

// ProductStore is the persistence contract for the product catalog.
// Review mutations go through Save: the caller loads the product,
// applies the review logic in memory and writes the whole document
// back, mirroring how the embedded review list is maintained.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	Save(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	All(ctx context.Context) ([]model.Product, error)
	Related(ctx context.Context, category string, exclude primitive.ObjectID, limit int64) ([]model.Product, error)
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
}

// UserStore is the persistence contract for accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*model.User, error)
	Save(ctx context.Context, u *model.User) error
	All(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderStore is the persistence contract for orders.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error)
	All(ctx context.Context) ([]model.Order, error)
	Save(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
