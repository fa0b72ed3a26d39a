// Package catalog serves the rooms listing and room detail reads. Every call
// fetches fresh from the API; nothing is cached between calls.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/lodgely/bookingkit/internal/domain/booking"
)

// Gateway is the slice of the API the catalog reads from
type Gateway interface {
	ListRooms(ctx context.Context, filter booking.RoomFilter) ([]booking.Room, error)
	GetRoom(ctx context.Context, roomID string) (booking.Room, error)
	ListReviews(ctx context.Context, roomID string) ([]booking.Review, error)
}

// Service is the room catalog view
type Service struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewService creates a catalog service
func NewService(gateway Gateway, logger *zap.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  logger.Named("catalog"),
	}
}

// ListRooms fetches rooms matching the price filter
func (s *Service) ListRooms(ctx context.Context, filter booking.RoomFilter) ([]booking.Room, error) {
	return s.gateway.ListRooms(ctx, filter)
}

// GetRoom fetches a single room
func (s *Service) GetRoom(ctx context.Context, roomID string) (booking.Room, error) {
	return s.gateway.GetRoom(ctx, roomID)
}

// ListReviews fetches the reviews for a room
func (s *Service) ListReviews(ctx context.Context, roomID string) ([]booking.Review, error) {
	return s.gateway.ListReviews(ctx, roomID)
}

// FeaturedRooms returns the first n available rooms for the home screen strip
func (s *Service) FeaturedRooms(ctx context.Context, n int) ([]booking.Room, error) {
	if n <= 0 {
		return nil, nil
	}
	rooms, err := s.gateway.ListRooms(ctx, booking.RoomFilter{})
	if err != nil {
		return nil, err
	}
	featured := make([]booking.Room, 0, n)
	for _, room := range rooms {
		if !room.IsAvailable {
			continue
		}
		featured = append(featured, room)
		if len(featured) == n {
			break
		}
	}
	return featured, nil
}
