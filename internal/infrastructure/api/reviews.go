package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/lodgely/bookingkit/internal/domain/booking"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// reviewSuccessMessage is the exact ack the server sends when a review is
// stored.
const reviewSuccessMessage = "Review added successfully"

// ListReviews fetches all reviews for the given room
func (c *Client) ListReviews(ctx context.Context, roomID string) ([]booking.Review, error) {
	var dtos []reviewDTO
	if err := c.do(ctx, "api.ListReviews", request{
		method: http.MethodGet,
		path:   "/rooms/" + url.PathEscape(roomID) + "/reviews",
	}, &dtos); err != nil {
		return nil, err
	}

	reviews := make([]booking.Review, 0, len(dtos))
	for _, dto := range dtos {
		reviews = append(reviews, dto.toDomain(roomID))
	}
	return reviews, nil
}

// PostReview submits a review for the given room
func (c *Client) PostReview(ctx context.Context, review booking.Review) error {
	var ack messageResponse
	err := c.do(ctx, "api.PostReview", request{
		method: http.MethodPost,
		path:   "/rooms/" + url.PathEscape(review.RoomID) + "/reviews",
		body: postReviewRequest{
			User:    review.UserEmail,
			Rating:  review.Rating,
			Comment: review.Comment,
		},
	}, &ack)
	if err != nil {
		return err
	}
	if ack.Message != reviewSuccessMessage {
		return shared.NewRejection(ack.Message)
	}
	return nil
}
