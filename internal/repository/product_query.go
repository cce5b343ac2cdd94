package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/arunprasath/shopcart/internal/model"
)

// Default pagination for the product listing.
const (
	DefaultPage  = 1
	DefaultLimit = 8
)

// SearchQuery carries the normalized, already-validated listing filters.
// Numeric filters are pointers so "absent" and "zero" stay distinct.
// At most one sort dimension is honored: when OrderByPrice is set, any
// name ordering is ignored.
type SearchQuery struct {
	Name         string
	Categories   []string
	MinRating    *float64
	PriceMin     *float64
	PriceMax     *float64
	OrderByPrice string // "asc" | "desc" | ""
	OrderByName  string // "asc" | "desc" | ""
	Page         int
	Limit        int
}

// SearchResult bundles the page of products with the aggregate metadata
// the storefront renders around the listing.
type SearchResult struct {
	Products      []model.Product
	FilteredCount int64
	TotalCount    int64
	MinPrice      float64
	MaxPrice      float64
	Categories    []string
}

// Normalize clamps pagination to sane values. Page and limit fall back
// to their defaults when unset or non-positive.
func (q *SearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
}

// Skip returns the number of documents to skip for the requested page.
func (q SearchQuery) Skip() int64 {
	return int64(q.Limit) * int64(q.Page-1)
}

// Filter builds the cumulative AND filter: name substring
// (case-insensitive), rating floor, category membership and inclusive
// price range. Absent clauses contribute nothing.
func (q SearchQuery) Filter() bson.M {
	f := bson.M{}
	if q.Name != "" {
		f["name"] = bson.M{"$regex": regexp.QuoteMeta(q.Name), "$options": "i"}
	}
	if q.MinRating != nil {
		f["ratings"] = bson.M{"$gte": *q.MinRating}
	}
	if len(q.Categories) > 0 {
		f["category"] = bson.M{"$in": q.Categories}
	}
	if q.PriceMin != nil && q.PriceMax != nil {
		f["price"] = bson.M{"$gte": *q.PriceMin, "$lte": *q.PriceMax}
	}
	return f
}

// CategoryFilter builds the filter used for the min/max price metadata.
// Only the category clause applies there: the slider bounds must reflect
// the whole category, not the currently selected price or rating range.
func (q SearchQuery) CategoryFilter() bson.M {
	f := bson.M{}
	if len(q.Categories) > 0 {
		f["category"] = bson.M{"$in": q.Categories}
	}
	return f
}

// Sort returns the sort document. Price ordering wins over name
// ordering when both are requested; with neither, insertion order is
// left to the store.
func (q SearchQuery) Sort() bson.D {
	switch {
	case q.OrderByPrice == "asc":
		return bson.D{{Key: "price", Value: 1}}
	case q.OrderByPrice == "desc":
		return bson.D{{Key: "price", Value: -1}}
	case q.OrderByName == "asc":
		return bson.D{{Key: "name", Value: 1}}
	case q.OrderByName == "desc":
		return bson.D{{Key: "name", Value: -1}}
	}
	return nil
}
