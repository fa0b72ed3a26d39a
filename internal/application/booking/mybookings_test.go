package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainbooking "github.com/lodgely/bookingkit/internal/domain/booking"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

func activeBooking(id, roomID string) domainbooking.Booking {
	return domainbooking.Booking{
		ID:        id,
		RoomID:    roomID,
		UserEmail: guest.Email,
		CheckIn:   day(2025, 6, 1),
		CheckOut:  day(2025, 6, 3),
		Status:    domainbooking.StatusActive,
	}
}

func newMyBookings(gateway *MockGateway) *MyBookingsService {
	svc := NewMyBookingsService(gateway, &fakeSession{user: &guest}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestMyBookingsList(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		svc := NewMyBookingsService(new(MockGateway), &fakeSession{}, zap.NewNop())
		_, err := svc.List(context.Background())
		assert.True(t, shared.IsAuthRequired(err))
	})

	t.Run("resolves rooms and merges by id", func(t *testing.T) {
		gateway := new(MockGateway)
		gateway.On("ListBookings", mock.Anything, guest.Email).Return([]domainbooking.Booking{
			activeBooking("b1", "r1"),
			activeBooking("b2", "r2"),
			activeBooking("b3", "r1"), // same room twice, one lookup
		}, nil)
		gateway.On("GetRoom", mock.Anything, "r1").Return(domainbooking.Room{ID: "r1", Name: "Ocean View"}, nil).Once()
		gateway.On("GetRoom", mock.Anything, "r2").Return(domainbooking.Room{ID: "r2", Name: "Garden Suite"}, nil).Once()

		svc := newMyBookings(gateway)
		items, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 3)

		// Merge is keyed by room id, not by response order.
		require.NotNil(t, items[0].Room)
		assert.Equal(t, "Ocean View", items[0].Room.Name)
		require.NotNil(t, items[1].Room)
		assert.Equal(t, "Garden Suite", items[1].Room.Name)
		require.NotNil(t, items[2].Room)
		assert.Equal(t, "Ocean View", items[2].Room.Name)
		gateway.AssertExpectations(t)
	})

	t.Run("failed room lookup degrades the row only", func(t *testing.T) {
		gateway := new(MockGateway)
		gateway.On("ListBookings", mock.Anything, guest.Email).Return([]domainbooking.Booking{
			activeBooking("b1", "r1"),
			activeBooking("b2", "r2"),
		}, nil)
		gateway.On("GetRoom", mock.Anything, "r1").Return(domainbooking.Room{ID: "r1", Name: "Ocean View"}, nil)
		gateway.On("GetRoom", mock.Anything, "r2").Return(domainbooking.Room{}, shared.WrapNetworkError(assert.AnError))

		svc := newMyBookings(gateway)
		items, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.NotNil(t, items[0].Room)
		assert.Nil(t, items[1].Room)
	})
}

func TestMyBookingsCancel(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("ListBookings", mock.Anything, guest.Email).Return([]domainbooking.Booking{
		activeBooking("b1", "r1"),
	}, nil)
	gateway.On("GetRoom", mock.Anything, "r1").Return(domainbooking.Room{ID: "r1"}, nil)

	svc := newMyBookings(gateway)
	_, err := svc.List(context.Background())
	require.NoError(t, err)

	t.Run("failure leaves the list unchanged", func(t *testing.T) {
		gateway.On("CancelBooking", mock.Anything, "b1").
			Return(shared.WrapNetworkError(assert.AnError)).Once()

		err := svc.Cancel(context.Background(), "b1")
		require.Error(t, err)
		assert.Len(t, svc.Items(), 1)
	})

	t.Run("success removes locally", func(t *testing.T) {
		gateway.On("CancelBooking", mock.Anything, "b1").Return(nil).Once()

		require.NoError(t, svc.Cancel(context.Background(), "b1"))
		assert.Empty(t, svc.Items())
	})

	t.Run("unknown booking", func(t *testing.T) {
		err := svc.Cancel(context.Background(), "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestMyBookingsReschedule(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("ListBookings", mock.Anything, guest.Email).Return([]domainbooking.Booking{
		activeBooking("b1", "r1"),
	}, nil)
	gateway.On("GetRoom", mock.Anything, "r1").Return(domainbooking.Room{ID: "r1"}, nil)

	svc := newMyBookings(gateway)
	_, err := svc.List(context.Background())
	require.NoError(t, err)

	t.Run("past date is rejected before any network call", func(t *testing.T) {
		err := svc.Reschedule(context.Background(), "b1", day(2025, 5, 1))
		assert.ErrorIs(t, err, domainbooking.ErrDatePast)
		gateway.AssertNotCalled(t, "UpdateBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success patches the record in place", func(t *testing.T) {
		newDate := day(2025, 7, 1)
		gateway.On("UpdateBooking", mock.Anything, "b1", newDate).Return(nil).Once()

		require.NoError(t, svc.Reschedule(context.Background(), "b1", newDate))

		items := svc.Items()
		require.Len(t, items, 1)
		assert.Equal(t, newDate, items[0].Booking.CheckIn)
	})

	t.Run("server failure leaves the record unchanged", func(t *testing.T) {
		gateway.On("UpdateBooking", mock.Anything, "b1", day(2025, 8, 1)).
			Return(shared.NewRejection("Room is not available on that date")).Once()

		err := svc.Reschedule(context.Background(), "b1", day(2025, 8, 1))
		require.Error(t, err)
		assert.Equal(t, day(2025, 7, 1), svc.Items()[0].Booking.CheckIn)
	})
}

func TestSubmitReviewForBooking(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("ListBookings", mock.Anything, guest.Email).Return([]domainbooking.Booking{
		activeBooking("b1", "r1"),
	}, nil)
	gateway.On("GetRoom", mock.Anything, "r1").Return(domainbooking.Room{ID: "r1"}, nil)

	svc := newMyBookings(gateway)
	_, err := svc.List(context.Background())
	require.NoError(t, err)

	gateway.On("PostReview", mock.Anything, mock.MatchedBy(func(r domainbooking.Review) bool {
		return r.RoomID == "r1" && r.UserEmail == guest.Email && r.Rating == 5
	})).Return(nil).Once()

	require.NoError(t, svc.SubmitReviewForBooking(context.Background(), "b1", 5, "Great stay"))
	gateway.AssertExpectations(t)

	t.Run("rating out of range never reaches the network", func(t *testing.T) {
		err := svc.SubmitReviewForBooking(context.Background(), "b1", 6, "Too good")
		assert.ErrorIs(t, err, domainbooking.ErrRatingRange)
	})
}
