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

// ProductRepo implements ProductStore on a MongoDB collection.
type ProductRepo struct {
	coll *mongo.Collection
}

func NewProductRepo(coll *mongo.Collection) *ProductRepo { return &ProductRepo{coll: coll} }

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Reviews == nil {
		p.Reviews = []model.Review{}
	}
	if p.Images == nil {
		p.Images = []model.ProductImage{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var p model.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Save writes the whole product document back, including the embedded
// review list and the derived rating fields.
func (r *ProductRepo) Save(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) All(ctx context.Context) ([]model.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)
	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Related returns up to limit products sharing a category, excluding the
// product being viewed.
func (r *ProductRepo) Related(ctx context.Context, category string, exclude primitive.ObjectID, limit int64) ([]model.Product, error) {
	filter := bson.M{
		"category": bson.M{"$in": []string{category}},
		"_id":      bson.M{"$ne": exclude},
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	defer cur.Close(ctx)
	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode related products: %w", err)
	}
	return products, nil
}

// Search runs the listing pipeline: the filtered page of products plus
// the counts, the category-scoped price bounds and the global category
// list. An empty match is not an error; it yields a zero count and
// zeroed price bounds.
func (r *ProductRepo) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q.Normalize()
	filter := q.Filter()

	filtered, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count filtered products: %w", err)
	}
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	minPrice, err := r.priceBound(ctx, q.CategoryFilter(), 1)
	if err != nil {
		return nil, err
	}
	maxPrice, err := r.priceBound(ctx, q.CategoryFilter(), -1)
	if err != nil {
		return nil, err
	}

	rawCats, err := r.coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	categories := make([]string, 0, len(rawCats))
	for _, c := range rawCats {
		if s, ok := c.(string); ok {
			categories = append(categories, s)
		}
	}

	findOpts := options.Find().SetSkip(q.Skip()).SetLimit(int64(q.Limit))
	if sort := q.Sort(); sort != nil {
		findOpts.SetSort(sort)
	}
	cur, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer cur.Close(ctx)
	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	return &SearchResult{
		Products:      products,
		FilteredCount: filtered,
		TotalCount:    total,
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		Categories:    categories,
	}, nil
}

// priceBound fetches the lowest (dir=1) or highest (dir=-1) price within
// the given filter, or 0 when nothing matches.
func (r *ProductRepo) priceBound(ctx context.Context, filter bson.M, dir int) (float64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "price", Value: dir}})
	var p model.Product
	err := r.coll.FindOne(ctx, filter, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("price bound: %w", err)
	}
	return p.Price, nil
}

// AdjustStock applies an atomic stock delta. No floor is enforced here;
// the order service decides when the decrement fires.
func (r *ProductRepo) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": delta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
