package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domainbooking "github.com/lodgely/bookingkit/internal/domain/booking"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// Item pairs a booking with its resolved room. Room is nil when the room
// lookup failed; the booking row still renders from its own fields.
type Item struct {
	Booking domainbooking.Booking
	Room    *domainbooking.Room
}

// MyBookingsService is the signed-in user's bookings view. List populates the
// local items; Cancel and Reschedule mutate the server first and patch the
// local items only on success.
type MyBookingsService struct {
	gateway Gateway
	session SessionReader
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	items []Item
}

// NewMyBookingsService creates the my-bookings view service
func NewMyBookingsService(gateway Gateway, session SessionReader, logger *zap.Logger) *MyBookingsService {
	return &MyBookingsService{
		gateway: gateway,
		session: session,
		logger:  logger.Named("mybookings"),
		now:     time.Now,
	}
}

// List fetches the user's bookings and resolves each booking's room. Room
// lookups run concurrently and merge by room id, so response order never
// matters. A failed room lookup degrades that row, not the whole list.
func (s *MyBookingsService) List(ctx context.Context) ([]Item, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return nil, shared.ErrAuthRequired
	}

	bookings, err := s.gateway.ListBookings(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	roomIDs := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		roomIDs[b.RoomID] = struct{}{}
	}

	var (
		wg      sync.WaitGroup
		roomsMu sync.Mutex
		rooms   = make(map[string]*domainbooking.Room, len(roomIDs))
	)
	for roomID := range roomIDs {
		wg.Add(1)
		go func(roomID string) {
			defer wg.Done()
			room, err := s.gateway.GetRoom(ctx, roomID)
			if err != nil {
				s.logger.Warn("room resolution failed",
					zap.String("room_id", roomID),
					zap.Error(err),
				)
				return
			}
			roomsMu.Lock()
			rooms[roomID] = &room
			roomsMu.Unlock()
		}(roomID)
	}
	wg.Wait()

	items := make([]Item, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, Item{Booking: b, Room: rooms[b.RoomID]})
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return items, nil
}

// Items returns the locally held list
func (s *MyBookingsService) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Cancel cancels the booking on the server, then removes it locally. On any
// failure the local list is unchanged.
func (s *MyBookingsService) Cancel(ctx context.Context, bookingID string) error {
	item, err := s.find(bookingID)
	if err != nil {
		return err
	}
	if !item.Booking.IsActive() {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Booking is already cancelled")
	}

	if err := s.gateway.CancelBooking(ctx, bookingID); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Booking.ID == bookingID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.logger.Info("booking cancelled", zap.String("booking_id", bookingID))
	return nil
}

// Reschedule moves the booking's check-in date. A past date is rejected
// locally before any network call.
func (s *MyBookingsService) Reschedule(ctx context.Context, bookingID string, newDate time.Time) error {
	item, err := s.find(bookingID)
	if err != nil {
		return err
	}
	// Run the domain checks on a copy first so the server is never asked for
	// a mutation the record cannot take.
	probe := item.Booking
	if err := probe.Reschedule(newDate, s.now()); err != nil {
		return err
	}

	if err := s.gateway.UpdateBooking(ctx, bookingID, newDate); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Booking.ID == bookingID {
			s.items[i].Booking = probe
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// SubmitReviewForBooking posts a review against the booking's room
func (s *MyBookingsService) SubmitReviewForBooking(ctx context.Context, bookingID string, rating int, comment string) error {
	user, ok := s.session.CurrentUser()
	if !ok {
		return shared.ErrAuthRequired
	}
	item, err := s.find(bookingID)
	if err != nil {
		return err
	}

	review, err := domainbooking.NewReview(item.Booking.RoomID, user.Email, rating, comment, s.now())
	if err != nil {
		return err
	}
	return s.gateway.PostReview(ctx, review)
}

func (s *MyBookingsService) find(bookingID string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Booking.ID == bookingID {
			return item, nil
		}
	}
	return Item{}, shared.ErrNotFound
}
