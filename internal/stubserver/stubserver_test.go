package stubserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lodgely/bookingkit/internal/domain/booking"
	domainid "github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared"
	"github.com/lodgely/bookingkit/internal/infrastructure/api"
	"github.com/lodgely/bookingkit/internal/infrastructure/config"
	"github.com/lodgely/bookingkit/internal/infrastructure/identity"
)

func startStub(t *testing.T) (*api.Client, *identity.Provider, *Server) {
	t.Helper()

	server, err := NewServer(config.StubConfig{
		Port:       "0",
		JWTSecret:  "test-secret",
		CookieName: "token",
		Seed:       true,
	}, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(server.idempotency.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	provider, err := identity.NewProvider(identity.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return client, provider, server
}

func signIn(t *testing.T, client *api.Client, provider *identity.Provider) domainid.User {
	t.Helper()
	ctx := context.Background()

	user, err := provider.SignUp(ctx, "guest@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, client.SyncSession(ctx, user.Email))
	return user
}

func futureStay(t *testing.T) booking.StayDates {
	t.Helper()
	now := time.Now()
	dates, err := booking.NewStayDates(now.AddDate(0, 0, 7), now.AddDate(0, 0, 9), now)
	require.NoError(t, err)
	return dates
}

func TestRoomsEndpoints(t *testing.T) {
	client, _, _ := startStub(t)
	ctx := context.Background()

	rooms, err := client.ListRooms(ctx, booking.RoomFilter{})
	require.NoError(t, err)
	require.Len(t, rooms, 4)

	t.Run("price filter", func(t *testing.T) {
		min, max := 90.0, 200.0
		filtered, err := client.ListRooms(ctx, booking.RoomFilter{MinPrice: &min, MaxPrice: &max})
		require.NoError(t, err)
		require.Len(t, filtered, 2)
		assert.Equal(t, "Garden Room", filtered[0].Name)
		assert.Equal(t, "Ocean View Suite", filtered[1].Name)
	})

	t.Run("get by id", func(t *testing.T) {
		room, err := client.GetRoom(ctx, rooms[0].ID)
		require.NoError(t, err)
		assert.Equal(t, rooms[0].Name, room.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := client.GetRoom(ctx, "missing")
		require.Error(t, err)
		assert.True(t, shared.IsRejection(err))
	})
}

func TestBookingLifecycle(t *testing.T) {
	client, provider, _ := startStub(t)
	ctx := context.Background()
	user := signIn(t, client, provider)
	dates := futureStay(t)

	rooms, err := client.ListRooms(ctx, booking.RoomFilter{})
	require.NoError(t, err)
	var room booking.Room
	for _, r := range rooms {
		if r.IsAvailable {
			room = r
			break
		}
	}
	require.NotEmpty(t, room.ID)

	require.NoError(t, client.CreateBooking(ctx, room.ID, dates, user, "key-1"))

	t.Run("booked room becomes unavailable", func(t *testing.T) {
		got, err := client.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.False(t, got.IsAvailable)
	})

	t.Run("duplicate idempotency key creates no second booking", func(t *testing.T) {
		require.NoError(t, client.CreateBooking(ctx, room.ID, dates, user, "key-1"))

		bookings, err := client.ListBookings(ctx, user.Email)
		require.NoError(t, err)
		assert.Len(t, bookings, 1)
	})

	t.Run("fresh key on an unavailable room is rejected", func(t *testing.T) {
		err := client.CreateBooking(ctx, room.ID, dates, user, "key-2")
		require.Error(t, err)
		assert.True(t, shared.IsRejection(err))
		assert.Equal(t, "Room is already booked", err.Error())
	})

	t.Run("reschedule moves the check-in date", func(t *testing.T) {
		bookings, err := client.ListBookings(ctx, user.Email)
		require.NoError(t, err)
		require.Len(t, bookings, 1)

		newDate := dates.CheckIn().AddDate(0, 0, 1)
		require.NoError(t, client.UpdateBooking(ctx, bookings[0].ID, newDate))

		bookings, err = client.ListBookings(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, newDate.Day(), bookings[0].CheckIn.Day())
	})

	t.Run("cancel removes the booking and frees the room", func(t *testing.T) {
		bookings, err := client.ListBookings(ctx, user.Email)
		require.NoError(t, err)
		require.Len(t, bookings, 1)

		require.NoError(t, client.CancelBooking(ctx, bookings[0].ID))

		bookings, err = client.ListBookings(ctx, user.Email)
		require.NoError(t, err)
		assert.Empty(t, bookings)

		got, err := client.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAvailable)
	})
}

func TestBookingRequiresSession(t *testing.T) {
	client, _, _ := startStub(t)
	ctx := context.Background()

	rooms, err := client.ListRooms(ctx, booking.RoomFilter{})
	require.NoError(t, err)

	err = client.CreateBooking(ctx, rooms[0].ID, futureStay(t), domainid.User{Email: "guest@example.com"}, "key-1")
	require.Error(t, err)
	assert.True(t, shared.IsRejection(err))
	assert.Equal(t, "Please log in to continue", err.Error())
}

func TestReviewEndpoints(t *testing.T) {
	client, provider, _ := startStub(t)
	ctx := context.Background()
	user := signIn(t, client, provider)

	rooms, err := client.ListRooms(ctx, booking.RoomFilter{})
	require.NoError(t, err)
	roomID := rooms[0].ID

	require.NoError(t, client.PostReview(ctx, booking.Review{
		RoomID:    roomID,
		UserEmail: user.Email,
		Rating:    4,
		Comment:   "Comfortable and quiet",
	}))

	reviews, err := client.ListReviews(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)

	t.Run("aggregate rating updates", func(t *testing.T) {
		room, err := client.GetRoom(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, 1, room.ReviewCount)
		assert.InDelta(t, 4.0, room.Rating, 0.001)
	})

	t.Run("out of range rating is rejected", func(t *testing.T) {
		err := client.PostReview(ctx, booking.Review{
			RoomID: roomID, UserEmail: user.Email, Rating: 9, Comment: "x",
		})
		require.Error(t, err)
		assert.True(t, shared.IsRejection(err))
	})
}

func TestAuthEndpoints(t *testing.T) {
	_, provider, _ := startStub(t)
	ctx := context.Background()

	user, err := provider.SignUp(ctx, "guest@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", user.Email)

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := provider.SignUp(ctx, "guest@example.com", "hunter22")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.ErrCodeCredential))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := provider.SignIn(ctx, "guest@example.com", "nope")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.ErrCodeAuth))
	})

	t.Run("profile update round-trips through the token", func(t *testing.T) {
		_, err := provider.SignIn(ctx, "guest@example.com", "hunter22")
		require.NoError(t, err)

		name := "Frequent Guest"
		updated, err := provider.UpdateProfile(ctx, domainid.ProfilePatch{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Frequent Guest", updated.DisplayName)

		again, err := provider.SignIn(ctx, "guest@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "Frequent Guest", again.DisplayName)
	})
}
