package model

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the fixed set of product categories accepted by the store.
// The listing endpoint additionally reports which of these actually occur
// in the catalog so the storefront can populate its filter sidebar.
var Categories = []string{
	"Electronics",
	"Mobile Phones",
	"Laptops",
	"Accessories",
	"Headphones",
	"Food",
	"Books",
	"Clothes/Shoes",
	"Beauty/Health",
	"Sports",
	"Outdoor",
	"Home",
	"Tv",
	"Snacks",
}

// ValidCategory reports whether c is one of the allowed categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Review is a single user review embedded in a product document.
// Rating is kept as a string on the wire and parsed when averaging;
// a product holds at most one review per user.
type Review struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Rating    string             `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ProductImage stores a stable reference to an uploaded image file.
type ProductImage struct {
	Image string `json:"image" bson:"image"`
}

// Product is a catalog entry stored in the products collection.
// Ratings and NumOfReviews are derived fields: they are recomputed from
// the embedded review list on every review mutation and never written
// directly by handlers.
type Product struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Price        float64            `json:"price" bson:"price"`
	Description  string             `json:"description" bson:"description"`
	Ratings      float64            `json:"ratings" bson:"ratings"`
	Images       []ProductImage     `json:"images" bson:"images"`
	Category     string             `json:"category" bson:"category"`
	Seller       string             `json:"seller" bson:"seller"`
	Stock        int                `json:"stock" bson:"stock"`
	NumOfReviews int                `json:"numOfReviews" bson:"num_of_reviews"`
	Reviews      []Review           `json:"reviews" bson:"reviews"`
	User         primitive.ObjectID `json:"user,omitempty" bson:"user,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// UpsertReview adds a review by userID or, when the user already reviewed
// this product, overwrites the existing review's rating and comment in
// place (position and created_at preserved). Derived fields are recomputed
// afterwards.
func (p *Product) UpsertReview(userID primitive.ObjectID, rating, comment string) {
	now := time.Now().UTC()
	found := false
	for i := range p.Reviews {
		if p.Reviews[i].User == userID {
			p.Reviews[i].Rating = rating
			p.Reviews[i].Comment = comment
			p.Reviews[i].UpdatedAt = now
			found = true
		}
	}
	if !found {
		p.Reviews = append(p.Reviews, Review{
			ID:        primitive.NewObjectID(),
			User:      userID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	p.recalcReviewStats()
}

// RemoveReview deletes the review with the given id, if present, and
// recomputes the derived fields from the remaining reviews.
func (p *Product) RemoveReview(reviewID primitive.ObjectID) {
	kept := p.Reviews[:0]
	for _, rv := range p.Reviews {
		if rv.ID != reviewID {
			kept = append(kept, rv)
		}
	}
	p.Reviews = kept
	p.recalcReviewStats()
}

// recalcReviewStats keeps Ratings equal to the arithmetic mean of all
// review ratings and NumOfReviews equal to the review list length. An
// empty list, or any rating that does not parse as a number, yields 0.
func (p *Product) recalcReviewStats() {
	p.NumOfReviews = len(p.Reviews)
	if len(p.Reviews) == 0 {
		p.Ratings = 0
		return
	}
	var sum float64
	for _, rv := range p.Reviews {
		n, err := strconv.ParseFloat(rv.Rating, 64)
		if err != nil {
			p.Ratings = 0
			return
		}
		sum += n
	}
	p.Ratings = sum / float64(len(p.Reviews))
}

// ReviewByUser returns the review written by userID, or nil.
func (p *Product) ReviewByUser(userID primitive.ObjectID) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].User == userID {
			return &p.Reviews[i]
		}
	}
	return nil
}
