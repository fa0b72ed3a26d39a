package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/lodgely/bookingkit/internal/domain/booking"
	"github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// bookingSuccessMessage is the exact ack the server sends when a booking is
// accepted. Any other message on a 2xx is treated as a rejection.
const bookingSuccessMessage = "Room booked successfully!"

// CreateBooking submits a stay for the given room. The idempotency key is
// sent on every attempt so a retried submission after an ambiguous failure
// cannot double-book.
func (c *Client) CreateBooking(ctx context.Context, roomID string, dates booking.StayDates, user identity.User, idempotencyKey string) error {
	var ack messageResponse
	err := c.do(ctx, "api.CreateBooking", request{
		method:  http.MethodPost,
		path:    "/rooms/" + url.PathEscape(roomID) + "/book",
		headers: map[string]string{idempotencyKeyHeader: idempotencyKey},
		body: createBookingRequest{
			BookingDate:  dates.CheckIn(),
			CheckOutDate: dates.CheckOut(),
			User:         toUserDTO(user),
		},
	}, &ack)
	if err != nil {
		return err
	}
	if ack.Message != bookingSuccessMessage {
		return shared.NewRejection(ack.Message)
	}
	return nil
}

// ListBookings fetches all bookings belonging to the given user email
func (c *Client) ListBookings(ctx context.Context, userEmail string) ([]booking.Booking, error) {
	query := url.Values{}
	query.Set("userEmail", userEmail)

	var dtos []bookingDTO
	if err := c.do(ctx, "api.ListBookings", request{
		method: http.MethodGet,
		path:   "/bookings",
		query:  query,
	}, &dtos); err != nil {
		return nil, err
	}

	bookings := make([]booking.Booking, 0, len(dtos))
	for _, dto := range dtos {
		bookings = append(bookings, dto.toDomain())
	}
	return bookings, nil
}

// CancelBooking cancels the booking with the given id
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	return c.do(ctx, "api.CancelBooking", request{
		method: http.MethodDelete,
		path:   "/bookings/" + url.PathEscape(bookingID) + "/cancel",
	}, nil)
}

// UpdateBooking moves the check-in date of the booking with the given id
func (c *Client) UpdateBooking(ctx context.Context, bookingID string, newDate time.Time) error {
	return c.do(ctx, "api.UpdateBooking", request{
		method: http.MethodPut,
		path:   "/bookings/" + url.PathEscape(bookingID) + "/update",
		body:   updateBookingRequest{BookingDate: newDate},
	}, nil)
}
