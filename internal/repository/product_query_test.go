package repository

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/arunprasath/shopcart/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestNormalize_Defaults(t *testing.T) {
	q := SearchQuery{}
	q.Normalize()
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)

	q = SearchQuery{Page: -3, Limit: 0}
	q.Normalize()
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)

	q = SearchQuery{Page: 4, Limit: 20}
	q.Normalize()
	assert.Equal(t, 4, q.Page)
	assert.Equal(t, 20, q.Limit)
}

func TestSkip(t *testing.T) {
	q := SearchQuery{Page: 1, Limit: 8}
	assert.EqualValues(t, 0, q.Skip())

	q = SearchQuery{Page: 3, Limit: 8}
	assert.EqualValues(t, 16, q.Skip())

	q = SearchQuery{Page: 2, Limit: 25}
	assert.EqualValues(t, 25, q.Skip())
}

func TestFilter_Empty(t *testing.T) {
	q := SearchQuery{}
	assert.Empty(t, q.Filter())
}

func TestFilter_AllClauses(t *testing.T) {
	q := SearchQuery{
		Name:       "phone",
		Categories: []string{"Electronics", "Mobile Phones"},
		MinRating:  f64(4),
		PriceMin:   f64(100),
		PriceMax:   f64(500),
	}
	f := q.Filter()

	require.Contains(t, f, "name")
	assert.Equal(t, bson.M{"$regex": "phone", "$options": "i"}, f["name"])
	assert.Equal(t, bson.M{"$gte": 4.0}, f["ratings"])
	assert.Equal(t, bson.M{"$in": []string{"Electronics", "Mobile Phones"}}, f["category"])
	assert.Equal(t, bson.M{"$gte": 100.0, "$lte": 500.0}, f["price"])
}

func TestFilter_NameIsEscaped(t *testing.T) {
	q := SearchQuery{Name: "c++ (new)"}
	f := q.Filter()
	assert.Equal(t, bson.M{"$regex": `c\+\+ \(new\)`, "$options": "i"}, f["name"])
}

func TestFilter_ZeroPriceBoundStillApplies(t *testing.T) {
	// A requested 0..50 range must not be confused with "no price filter".
	q := SearchQuery{PriceMin: f64(0), PriceMax: f64(50)}
	f := q.Filter()
	assert.Equal(t, bson.M{"$gte": 0.0, "$lte": 50.0}, f["price"])
}

func TestCategoryFilter_IgnoresEverythingButCategory(t *testing.T) {
	q := SearchQuery{
		Name:       "phone",
		Categories: []string{"Books"},
		PriceMin:   f64(10),
		PriceMax:   f64(20),
		MinRating:  f64(3),
	}
	f := q.CategoryFilter()
	assert.Equal(t, bson.M{"category": bson.M{"$in": []string{"Books"}}}, f)

	assert.Empty(t, SearchQuery{Name: "phone"}.CategoryFilter())
}

// applySearch mirrors the store's find pipeline in memory so ordering
// and windowing can be checked without a live database.
func applySearch(q SearchQuery, products []model.Product) []model.Product {
	q.Normalize()
	out := append([]model.Product(nil), products...)
	if s := q.Sort(); s != nil {
		key, dir := s[0].Key, s[0].Value.(int)
		sort.SliceStable(out, func(i, j int) bool {
			var less bool
			switch key {
			case "price":
				less = out[i].Price < out[j].Price
			case "name":
				less = out[i].Name < out[j].Name
			}
			if dir < 0 {
				return !less
			}
			return less
		})
	}
	skip := int(q.Skip())
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func TestPageWindowFollowsSortOrder(t *testing.T) {
	products := []model.Product{
		{Name: "e", Price: 50},
		{Name: "a", Price: 10},
		{Name: "c", Price: 30},
		{Name: "b", Price: 20},
		{Name: "d", Price: 40},
	}

	// page 2 of 2-per-page holds exactly the third and fourth cheapest
	got := applySearch(SearchQuery{OrderByPrice: "asc", Page: 2, Limit: 2}, products)
	require.Len(t, got, 2)
	assert.Equal(t, 30.0, got[0].Price)
	assert.Equal(t, 40.0, got[1].Price)

	// the final page may be short
	got = applySearch(SearchQuery{OrderByPrice: "asc", Page: 3, Limit: 2}, products)
	require.Len(t, got, 1)
	assert.Equal(t, 50.0, got[0].Price)

	// past the end is an empty page, not an error
	assert.Empty(t, applySearch(SearchQuery{OrderByPrice: "asc", Page: 4, Limit: 2}, products))

	// name ordering drives the window the same way
	got = applySearch(SearchQuery{OrderByName: "desc", Page: 2, Limit: 2}, products)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
}

func TestSort_PriceWinsOverName(t *testing.T) {
	q := SearchQuery{OrderByPrice: "asc", OrderByName: "desc"}
	assert.Equal(t, bson.D{{Key: "price", Value: 1}}, q.Sort())

	q = SearchQuery{OrderByPrice: "desc"}
	assert.Equal(t, bson.D{{Key: "price", Value: -1}}, q.Sort())

	q = SearchQuery{OrderByName: "asc"}
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, q.Sort())

	q = SearchQuery{OrderByName: "desc"}
	assert.Equal(t, bson.D{{Key: "name", Value: -1}}, q.Sort())

	assert.Nil(t, SearchQuery{}.Sort())
}
