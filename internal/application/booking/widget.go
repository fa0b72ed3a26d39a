// Package booking drives the room-detail booking widget and the my-bookings
// view on top of the domain workflow and the API gateway.
package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domainbooking "github.com/lodgely/bookingkit/internal/domain/booking"
	"github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// Gateway is the slice of the API the booking services need
type Gateway interface {
	GetRoom(ctx context.Context, roomID string) (domainbooking.Room, error)
	CreateBooking(ctx context.Context, roomID string, dates domainbooking.StayDates, user identity.User, idempotencyKey string) error
	ListReviews(ctx context.Context, roomID string) ([]domainbooking.Review, error)
	PostReview(ctx context.Context, review domainbooking.Review) error
	ListBookings(ctx context.Context, userEmail string) ([]domainbooking.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
	UpdateBooking(ctx context.Context, bookingID string, newDate time.Time) error
}

// SessionReader exposes the signed-in identity to the booking services
type SessionReader interface {
	CurrentUser() (identity.User, bool)
}

// WidgetService is the room detail and booking widget for one room at a time.
// Load starts a fresh workflow; everything else operates on it.
type WidgetService struct {
	gateway Gateway
	session SessionReader
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	flow    *domainbooking.Flow
	reviews []domainbooking.Review
}

// NewWidgetService creates the booking widget service
func NewWidgetService(gateway Gateway, session SessionReader, logger *zap.Logger) *WidgetService {
	return &WidgetService{
		gateway: gateway,
		session: session,
		logger:  logger.Named("widget"),
		now:     time.Now,
	}
}

// Load fetches the room and starts a fresh workflow over it
func (s *WidgetService) Load(ctx context.Context, roomID string) (domainbooking.Room, error) {
	room, err := s.gateway.GetRoom(ctx, roomID)
	if err != nil {
		return domainbooking.Room{}, err
	}

	s.mu.Lock()
	s.flow = domainbooking.NewFlow(&room)
	s.reviews = nil
	s.mu.Unlock()
	return room, nil
}

// State returns the current workflow state
func (s *WidgetService) State() (domainbooking.FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return "", shared.ErrInvalidState
	}
	return s.flow.State(), nil
}

// PickDates enters or revises the stay dates
func (s *WidgetService) PickDates(checkIn, checkOut time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return shared.ErrInvalidState
	}
	return s.flow.PickDates(checkIn, checkOut, s.now())
}

// RequestBooking asks to open the confirmation. Without a session it fails
// with AuthRequired and arms ResumeAfterLogin.
func (s *WidgetService) RequestBooking() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return shared.ErrInvalidState
	}
	_, authenticated := s.session.CurrentUser()
	return s.flow.RequestBooking(authenticated)
}

// ResumeAfterLogin continues a booking attempt that was blocked on login
func (s *WidgetService) ResumeAfterLogin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return shared.ErrInvalidState
	}
	_, authenticated := s.session.CurrentUser()
	return s.flow.Resume(authenticated)
}

// ResumePending reports whether a booking attempt is waiting on login
func (s *WidgetService) ResumePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow != nil && s.flow.ResumePending()
}

// Summary returns the confirmation summary
func (s *WidgetService) Summary() (domainbooking.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return domainbooking.Summary{}, shared.ErrInvalidState
	}
	return s.flow.Summary()
}

// ReviseDates closes the confirmation and returns to date selection
func (s *WidgetService) ReviseDates() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return shared.ErrInvalidState
	}
	return s.flow.ReviseDates()
}

// ConfirmBooking performs the submission. The workflow guard guarantees a
// single in-flight call; the idempotency key rides the request so a retry
// after an ambiguous failure cannot double-book.
func (s *WidgetService) ConfirmBooking(ctx context.Context) error {
	s.mu.Lock()
	if s.flow == nil {
		s.mu.Unlock()
		return shared.ErrInvalidState
	}
	user, ok := s.session.CurrentUser()
	if !ok {
		s.mu.Unlock()
		return shared.ErrAuthRequired
	}
	key, err := s.flow.BeginSubmit()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	flow := s.flow
	room := flow.Room()
	dates, _ := flow.Dates()
	s.mu.Unlock()

	submitErr := s.gateway.CreateBooking(ctx, room.ID, dates, user, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if submitErr != nil {
		if err := flow.CompleteFailure(); err != nil {
			return err
		}
		s.logger.Warn("booking submission failed",
			zap.String("room_id", room.ID),
			zap.Error(submitErr),
		)
		return submitErr
	}
	if err := flow.CompleteSuccess(); err != nil {
		return err
	}
	s.logger.Info("booking confirmed", zap.String("room_id", room.ID))
	return nil
}

// LoadReviews fetches the room's reviews into the widget
func (s *WidgetService) LoadReviews(ctx context.Context) ([]domainbooking.Review, error) {
	s.mu.Lock()
	flow := s.flow
	s.mu.Unlock()
	if flow == nil {
		return nil, shared.ErrInvalidState
	}

	reviews, err := s.gateway.ListReviews(ctx, flow.Room().ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.reviews = reviews
	s.mu.Unlock()
	return reviews, nil
}

// Reviews returns the locally held review list
func (s *WidgetService) Reviews() []domainbooking.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domainbooking.Review, len(s.reviews))
	copy(out, s.reviews)
	return out
}

// PostReview validates and submits a review for the loaded room, appending it
// to the local list on success.
func (s *WidgetService) PostReview(ctx context.Context, rating int, comment string) error {
	s.mu.Lock()
	flow := s.flow
	s.mu.Unlock()
	if flow == nil {
		return shared.ErrInvalidState
	}
	user, ok := s.session.CurrentUser()
	if !ok {
		return shared.ErrAuthRequired
	}

	review, err := domainbooking.NewReview(flow.Room().ID, user.Email, rating, comment, s.now())
	if err != nil {
		return err
	}
	if err := s.gateway.PostReview(ctx, review); err != nil {
		return err
	}

	s.mu.Lock()
	s.reviews = append(s.reviews, review)
	s.mu.Unlock()
	return nil
}
