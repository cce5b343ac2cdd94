package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpsertReview_AddsAndAverages(t *testing.T) {
	p := &Product{}
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	p.UpsertReview(alice, "4", "good")
	p.UpsertReview(bob, "2", "meh")

	assert.Equal(t, 2, p.NumOfReviews)
	assert.Equal(t, 3.0, p.Ratings)
	assert.Len(t, p.Reviews, 2)
}

func TestUpsertReview_SecondReviewBySameUserOverwrites(t *testing.T) {
	p := &Product{}
	alice := primitive.NewObjectID()

	p.UpsertReview(alice, "2", "first impression")
	firstID := p.Reviews[0].ID

	p.UpsertReview(alice, "5", "changed my mind")

	require.Len(t, p.Reviews, 1)
	assert.Equal(t, firstID, p.Reviews[0].ID, "review identity must survive the overwrite")
	assert.Equal(t, "5", p.Reviews[0].Rating)
	assert.Equal(t, "changed my mind", p.Reviews[0].Comment)
	assert.Equal(t, 1, p.NumOfReviews)
	assert.Equal(t, 5.0, p.Ratings)
}

func TestUpsertReview_UnparsableRatingZeroesAverage(t *testing.T) {
	p := &Product{}
	p.UpsertReview(primitive.NewObjectID(), "4", "")
	p.UpsertReview(primitive.NewObjectID(), "not-a-number", "")

	assert.Equal(t, 2, p.NumOfReviews)
	assert.Equal(t, 0.0, p.Ratings)
}

func TestRemoveReview_RecomputesStats(t *testing.T) {
	p := &Product{}
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	p.UpsertReview(alice, "5", "")
	p.UpsertReview(bob, "1", "")

	p.RemoveReview(p.Reviews[1].ID)

	assert.Equal(t, 1, p.NumOfReviews)
	assert.Equal(t, 5.0, p.Ratings)
	assert.Nil(t, p.ReviewByUser(bob))
	assert.NotNil(t, p.ReviewByUser(alice))
}

func TestRemoveReview_LastReviewZeroesEverything(t *testing.T) {
	p := &Product{}
	p.UpsertReview(primitive.NewObjectID(), "3", "")

	p.RemoveReview(p.Reviews[0].ID)

	assert.Equal(t, 0, p.NumOfReviews)
	assert.Equal(t, 0.0, p.Ratings)
	assert.Empty(t, p.Reviews)
}

func TestRemoveReview_UnknownIDIsNoop(t *testing.T) {
	p := &Product{}
	p.UpsertReview(primitive.NewObjectID(), "4", "")

	p.RemoveReview(primitive.NewObjectID())

	assert.Equal(t, 1, p.NumOfReviews)
	assert.Equal(t, 4.0, p.Ratings)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Books"))
	assert.True(t, ValidCategory("Clothes/Shoes"))
	assert.False(t, ValidCategory("books"))
	assert.False(t, ValidCategory("Weapons"))
	assert.False(t, ValidCategory(""))
}
