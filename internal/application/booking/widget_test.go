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
	"github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared"
	"github.com/lodgely/bookingkit/internal/domain/shared/valueobject"
)

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetRoom(ctx context.Context, roomID string) (domainbooking.Room, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(domainbooking.Room), args.Error(1)
}

func (m *MockGateway) CreateBooking(ctx context.Context, roomID string, dates domainbooking.StayDates, user identity.User, idempotencyKey string) error {
	args := m.Called(ctx, roomID, dates, user, idempotencyKey)
	return args.Error(0)
}

func (m *MockGateway) ListReviews(ctx context.Context, roomID string) ([]domainbooking.Review, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainbooking.Review), args.Error(1)
}

func (m *MockGateway) PostReview(ctx context.Context, review domainbooking.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockGateway) ListBookings(ctx context.Context, userEmail string) ([]domainbooking.Booking, error) {
	args := m.Called(ctx, userEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainbooking.Booking), args.Error(1)
}

func (m *MockGateway) CancelBooking(ctx context.Context, bookingID string) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockGateway) UpdateBooking(ctx context.Context, bookingID string, newDate time.Time) error {
	args := m.Called(ctx, bookingID, newDate)
	return args.Error(0)
}

// fakeSession is a SessionReader with a settable user
type fakeSession struct {
	user *identity.User
}

func (f *fakeSession) CurrentUser() (identity.User, bool) {
	if f.user == nil {
		return identity.User{}, false
	}
	return *f.user, true
}

var (
	testNow = time.Date(2025, 5, 20, 14, 30, 0, 0, time.UTC)
	guest   = identity.User{Email: "guest@example.com", DisplayName: "Guest"}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func availableRoom() domainbooking.Room {
	return domainbooking.Room{
		ID:          "r1",
		Name:        "Ocean View",
		Price:       valueobject.NewMoneyUSDFromFloat(120),
		IsAvailable: true,
	}
}

func loadedWidget(t *testing.T, gateway *MockGateway, session *fakeSession) *WidgetService {
	t.Helper()
	gateway.On("GetRoom", mock.Anything, "r1").Return(availableRoom(), nil).Once()

	svc := NewWidgetService(gateway, session, zap.NewNop())
	svc.now = func() time.Time { return testNow }

	_, err := svc.Load(context.Background(), "r1")
	require.NoError(t, err)
	return svc
}

func TestWidgetPickDatesValidation(t *testing.T) {
	gateway := new(MockGateway)
	svc := loadedWidget(t, gateway, &fakeSession{user: &guest})

	err := svc.PickDates(day(2025, 5, 1), day(2025, 6, 3))
	assert.ErrorIs(t, err, domainbooking.ErrCheckInPast)

	err = svc.PickDates(day(2025, 6, 3), day(2025, 6, 3))
	assert.ErrorIs(t, err, domainbooking.ErrCheckOutNotAfter)

	// Local validation failures never reach the network.
	gateway.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWidgetAuthGateAndResume(t *testing.T) {
	gateway := new(MockGateway)
	session := &fakeSession{}
	svc := loadedWidget(t, gateway, session)

	require.NoError(t, svc.PickDates(day(2025, 6, 1), day(2025, 6, 3)))

	err := svc.RequestBooking()
	require.Error(t, err)
	assert.True(t, shared.IsAuthRequired(err))
	assert.True(t, svc.ResumePending())

	// Dates survive the login round-trip.
	session.user = &guest
	require.NoError(t, svc.ResumeAfterLogin())

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, "Ocean View", summary.RoomName)
	assert.Equal(t, int64(2), summary.Nights)
	assert.Equal(t, "240 USD", summary.Total.String())
}

func TestWidgetConfirmBookingSuccess(t *testing.T) {
	gateway := new(MockGateway)
	svc := loadedWidget(t, gateway, &fakeSession{user: &guest})

	require.NoError(t, svc.PickDates(day(2025, 6, 1), day(2025, 6, 3)))
	require.NoError(t, svc.RequestBooking())

	gateway.On("CreateBooking", mock.Anything, "r1", mock.Anything, guest, mock.MatchedBy(func(key string) bool {
		return key != ""
	})).Return(nil).Once()

	require.NoError(t, svc.ConfirmBooking(context.Background()))

	state, err := svc.State()
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StateViewing, state)
	gateway.AssertExpectations(t)
}

func TestWidgetConfirmBookingRejection(t *testing.T) {
	gateway := new(MockGateway)
	svc := loadedWidget(t, gateway, &fakeSession{user: &guest})

	require.NoError(t, svc.PickDates(day(2025, 6, 1), day(2025, 6, 3)))
	require.NoError(t, svc.RequestBooking())

	gateway.On("CreateBooking", mock.Anything, "r1", mock.Anything, guest, mock.Anything).
		Return(shared.NewRejection("Room is already booked")).Once()

	err := svc.ConfirmBooking(context.Background())
	require.Error(t, err)
	assert.True(t, shared.IsRejection(err))
	assert.Equal(t, "Room is already booked", err.Error())

	// Back to date selection with the dates intact for a retry.
	state, err := svc.State()
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StateDateSelection, state)

	require.NoError(t, svc.RequestBooking())
	gateway.On("CreateBooking", mock.Anything, "r1", mock.Anything, guest, mock.Anything).
		Return(nil).Once()
	require.NoError(t, svc.ConfirmBooking(context.Background()))
}

func TestWidgetConfirmBookingOutOfOrder(t *testing.T) {
	gateway := new(MockGateway)
	svc := loadedWidget(t, gateway, &fakeSession{user: &guest})

	// No confirmation pending yet.
	err := svc.ConfirmBooking(context.Background())
	require.Error(t, err)
	gateway.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWidgetReviews(t *testing.T) {
	t.Run("local validation never reaches the network", func(t *testing.T) {
		gateway := new(MockGateway)
		svc := loadedWidget(t, gateway, &fakeSession{user: &guest})

		assert.ErrorIs(t, svc.PostReview(context.Background(), 0, "fine"), domainbooking.ErrRatingRange)
		assert.ErrorIs(t, svc.PostReview(context.Background(), 4, "   "), domainbooking.ErrCommentEmpty)
		gateway.AssertNotCalled(t, "PostReview", mock.Anything, mock.Anything)
	})

	t.Run("requires a session", func(t *testing.T) {
		gateway := new(MockGateway)
		svc := loadedWidget(t, gateway, &fakeSession{})

		err := svc.PostReview(context.Background(), 5, "Great stay")
		assert.True(t, shared.IsAuthRequired(err))
	})

	t.Run("success appends optimistically", func(t *testing.T) {
		gateway := new(MockGateway)
		svc := loadedWidget(t, gateway, &fakeSession{user: &guest})

		gateway.On("ListReviews", mock.Anything, "r1").Return([]domainbooking.Review{
			{RoomID: "r1", UserEmail: "other@example.com", Rating: 4, Comment: "Nice"},
		}, nil).Once()
		_, err := svc.LoadReviews(context.Background())
		require.NoError(t, err)

		gateway.On("PostReview", mock.Anything, mock.MatchedBy(func(r domainbooking.Review) bool {
			return r.RoomID == "r1" && r.UserEmail == guest.Email && r.Rating == 5
		})).Return(nil).Once()

		require.NoError(t, svc.PostReview(context.Background(), 5, "Great stay"))

		reviews := svc.Reviews()
		require.Len(t, reviews, 2)
		assert.Equal(t, guest.Email, reviews[1].UserEmail)
	})
}

func TestWidgetBookingDisabledWhenUnavailable(t *testing.T) {
	gateway := new(MockGateway)
	room := availableRoom()
	room.IsAvailable = false
	gateway.On("GetRoom", mock.Anything, "r1").Return(room, nil).Once()

	svc := NewWidgetService(gateway, &fakeSession{user: &guest}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	_, err := svc.Load(context.Background(), "r1")
	require.NoError(t, err)

	require.NoError(t, svc.PickDates(day(2025, 6, 1), day(2025, 6, 3)))
	assert.ErrorIs(t, svc.RequestBooking(), domainbooking.ErrRoomUnavailable)
}
