package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgely/bookingkit/internal/domain/shared"
	"github.com/lodgely/bookingkit/internal/domain/shared/valueobject"
)

func availableRoom() *Room {
	return &Room{
		ID:          "r1",
		Name:        "Deluxe King",
		Price:       valueobject.NewMoneyUSDFromFloat(100),
		IsAvailable: true,
	}
}

func flowWithDates(t *testing.T) *Flow {
	f := NewFlow(availableRoom())
	require.NoError(t, f.PickDates(day(2025, 6, 1), day(2025, 6, 3), testNow))
	return f
}

func TestFlowState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to FlowState
		allowed  bool
	}{
		{StateViewing, StateDateSelection, true},
		{StateViewing, StateSubmitting, false},
		{StateDateSelection, StateConfirmPending, true},
		{StateConfirmPending, StateSubmitting, true},
		{StateConfirmPending, StateDateSelection, true},
		{StateSubmitting, StateViewing, true},
		{StateSubmitting, StateDateSelection, true},
		{StateSubmitting, StateConfirmPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFlow_PickDatesInvalidKeepsState(t *testing.T) {
	f := NewFlow(availableRoom())

	err := f.PickDates(day(2025, 6, 3), day(2025, 6, 1), testNow)
	assert.ErrorIs(t, err, ErrCheckOutNotAfter)
	assert.Equal(t, StateDateSelection, f.State())
	_, ok := f.Dates()
	assert.False(t, ok)

	// A later valid pick still works and previously entered dates survive
	// a subsequent invalid one.
	require.NoError(t, f.PickDates(day(2025, 6, 1), day(2025, 6, 3), testNow))
	assert.ErrorIs(t, f.PickDates(day(2025, 5, 1), day(2025, 6, 3), testNow), ErrCheckInPast)
	dates, ok := f.Dates()
	require.True(t, ok)
	assert.Equal(t, day(2025, 6, 1), dates.CheckIn())
}

func TestFlow_RequestBookingUnavailableRoomIsNoOp(t *testing.T) {
	room := availableRoom()
	room.IsAvailable = false
	f := NewFlow(room)
	require.NoError(t, f.PickDates(day(2025, 6, 1), day(2025, 6, 3), testNow))

	err := f.RequestBooking(true)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Equal(t, StateDateSelection, f.State())
}

func TestFlow_RequestBookingWithoutDates(t *testing.T) {
	f := NewFlow(availableRoom())
	err := f.RequestBooking(true)
	assert.ErrorIs(t, err, ErrCheckInRequired)
}

func TestFlow_AuthGateAndResume(t *testing.T) {
	f := flowWithDates(t)

	err := f.RequestBooking(false)
	assert.ErrorIs(t, err, shared.ErrAuthRequired)
	assert.True(t, f.ResumePending())
	// Attempted dates are preserved so the flow can resume after login.
	dates, ok := f.Dates()
	require.True(t, ok)
	assert.Equal(t, day(2025, 6, 1), dates.CheckIn())

	require.NoError(t, f.Resume(true))
	assert.Equal(t, StateConfirmPending, f.State())
	assert.False(t, f.ResumePending())
}

func TestFlow_ResumeWithoutPendingAttempt(t *testing.T) {
	f := flowWithDates(t)
	assert.ErrorIs(t, f.Resume(true), shared.ErrInvalidState)
}

func TestFlow_Summary(t *testing.T) {
	f := flowWithDates(t)
	require.NoError(t, f.RequestBooking(true))

	summary, err := f.Summary()
	require.NoError(t, err)
	assert.Equal(t, "Deluxe King", summary.RoomName)
	assert.Equal(t, int64(2), summary.Nights)
	assert.True(t, summary.Total.Equals(valueobject.NewMoneyUSDFromFloat(200)))
}

func TestFlow_SingleSubmissionPerConfirmation(t *testing.T) {
	f := flowWithDates(t)
	require.NoError(t, f.RequestBooking(true))

	key, err := f.BeginSubmit()
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	// The confirm control is disabled while a call is in flight.
	_, err = f.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, f.RequestBooking(true), ErrSubmitInFlight)
}

func TestFlow_SuccessFlipsAvailabilityAndClosesModal(t *testing.T) {
	f := flowWithDates(t)
	require.NoError(t, f.RequestBooking(true))
	_, err := f.BeginSubmit()
	require.NoError(t, err)

	require.NoError(t, f.CompleteSuccess())
	assert.Equal(t, StateViewing, f.State())
	assert.False(t, f.Room().IsAvailable)
	_, ok := f.Dates()
	assert.False(t, ok)
}

func TestFlow_FailureKeepsDates(t *testing.T) {
	f := flowWithDates(t)
	require.NoError(t, f.RequestBooking(true))
	keyBefore, err := f.BeginSubmit()
	require.NoError(t, err)

	require.NoError(t, f.CompleteFailure())
	assert.Equal(t, StateDateSelection, f.State())
	dates, ok := f.Dates()
	require.True(t, ok)
	assert.Equal(t, day(2025, 6, 1), dates.CheckIn())
	assert.Equal(t, day(2025, 6, 3), dates.CheckOut())
	// Retrying the same selection reuses the key so the server can
	// recognize the duplicate.
	assert.Equal(t, keyBefore, f.IdempotencyKey())
}

func TestFlow_KeyRotatesWithDates(t *testing.T) {
	f := flowWithDates(t)
	first := f.IdempotencyKey()
	require.NoError(t, f.PickDates(day(2025, 7, 1), day(2025, 7, 5), testNow))
	assert.NotEqual(t, first, f.IdempotencyKey())
}

func TestFlow_MutatorsFollowDeclaredTransitions(t *testing.T) {
	f := flowWithDates(t)

	// Submission cannot start or complete before a confirmation is pending.
	_, err := f.BeginSubmit()
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.ErrorIs(t, f.CompleteSuccess(), shared.ErrInvalidState)
	assert.ErrorIs(t, f.CompleteFailure(), shared.ErrInvalidState)

	// Completion still requires an in-flight submission once confirmed.
	require.NoError(t, f.RequestBooking(true))
	assert.ErrorIs(t, f.CompleteSuccess(), shared.ErrInvalidState)
	assert.ErrorIs(t, f.CompleteFailure(), shared.ErrInvalidState)
	assert.Equal(t, StateConfirmPending, f.State())
}

func TestFlow_ReviseDates(t *testing.T) {
	f := flowWithDates(t)
	require.NoError(t, f.RequestBooking(true))
	require.NoError(t, f.ReviseDates())
	assert.Equal(t, StateDateSelection, f.State())
	_, ok := f.Dates()
	assert.True(t, ok)
}
