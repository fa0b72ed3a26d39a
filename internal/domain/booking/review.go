package booking

import (
	"strings"
	"time"

	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// Review rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Review invariant violations.
var (
	ErrRatingRange  = shared.NewValidationError("rating must be between 1 and 5")
	ErrCommentEmpty = shared.NewValidationError("comment cannot be empty")
)

// Review is a guest review for a room, append-only from the client's point of
// view. One review per booking is a convention, not enforced here.
type Review struct {
	RoomID    string
	UserEmail string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// NewReview validates the review invariants: integer rating in [1,5] and a
// non-empty comment. Validation failures never reach the network.
func NewReview(roomID, userEmail string, rating int, comment string, now time.Time) (Review, error) {
	if rating < MinRating || rating > MaxRating {
		return Review{}, ErrRatingRange
	}
	if strings.TrimSpace(comment) == "" {
		return Review{}, ErrCommentEmpty
	}
	return Review{
		RoomID:    roomID,
		UserEmail: userEmail,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
	}, nil
}
