package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusProcessing))
	assert.True(t, ValidStatus(StatusShipping))
	assert.True(t, ValidStatus(StatusDelivered))
	assert.False(t, ValidStatus("processing"))
	assert.False(t, ValidStatus("Cancelled"))
	assert.False(t, ValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	// forward moves
	assert.True(t, CanTransition(StatusProcessing, StatusShipping))
	assert.True(t, CanTransition(StatusShipping, StatusDelivered))
	assert.True(t, CanTransition(StatusProcessing, StatusDelivered))

	// repeated non-terminal updates are allowed
	assert.True(t, CanTransition(StatusShipping, StatusShipping))
	assert.True(t, CanTransition(StatusShipping, StatusProcessing))

	// Delivered is terminal
	assert.False(t, CanTransition(StatusDelivered, StatusProcessing))
	assert.False(t, CanTransition(StatusDelivered, StatusShipping))
	assert.False(t, CanTransition(StatusDelivered, StatusDelivered))

	// unknown targets are never valid
	assert.False(t, CanTransition(StatusProcessing, "Returned"))
}
