package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgely/bookingkit/internal/domain/shared"
)

func activeBooking() *Booking {
	return &Booking{
		ID:        "b1",
		RoomID:    "r1",
		UserEmail: "guest@example.com",
		CheckIn:   day(2025, 6, 1),
		CheckOut:  day(2025, 6, 3),
		Status:    StatusActive,
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusActive.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusActive))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
}

func TestBooking_Cancel(t *testing.T) {
	b := activeBooking()
	require.NoError(t, b.Cancel())
	assert.Equal(t, StatusCancelled, b.Status)

	err := b.Cancel()
	assert.True(t, shared.HasCode(err, shared.ErrCodeInvalidState))
}

func TestBooking_Reschedule(t *testing.T) {
	b := activeBooking()
	require.NoError(t, b.Reschedule(day(2025, 6, 10), testNow))
	assert.Equal(t, day(2025, 6, 10), b.CheckIn)
	// Check-out stays as booked.
	assert.Equal(t, day(2025, 6, 3), b.CheckOut)
}

func TestBooking_RescheduleToPastRejected(t *testing.T) {
	b := activeBooking()
	err := b.Reschedule(day(2025, 5, 1), testNow)
	assert.ErrorIs(t, err, ErrDatePast)
	assert.Equal(t, day(2025, 6, 1), b.CheckIn)
}

func TestBooking_RescheduleCancelledRejected(t *testing.T) {
	b := activeBooking()
	require.NoError(t, b.Cancel())
	err := b.Reschedule(day(2025, 6, 10), testNow)
	assert.True(t, shared.HasCode(err, shared.ErrCodeInvalidState))
}

func TestNewReview(t *testing.T) {
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	review, err := NewReview("r1", "guest@example.com", 3, "Great stay", now)
	require.NoError(t, err)
	assert.Equal(t, 3, review.Rating)
	assert.Equal(t, "Great stay", review.Comment)
	assert.Equal(t, now, review.CreatedAt)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := NewReview("r1", "guest@example.com", rating, "ok", now)
		assert.ErrorIs(t, err, ErrRatingRange)
	}

	_, err = NewReview("r1", "guest@example.com", 4, "   ", now)
	assert.ErrorIs(t, err, ErrCommentEmpty)
}
