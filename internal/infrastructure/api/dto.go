package api

import (
	"time"

	"github.com/lodgely/bookingkit/internal/domain/booking"
	"github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared/valueobject"
)

// roomDTO mirrors the room document shape returned by the API
type roomDTO struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	IsAvailable bool     `json:"isAvailable"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
}

func (d roomDTO) toDomain() booking.Room {
	price := valueobject.NewMoneyUSDFromFloat(d.Price)
	imageURL := ""
	if len(d.Images) > 0 {
		imageURL = d.Images[0]
	}
	return booking.Room{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		ImageURL:    imageURL,
		IsAvailable: d.IsAvailable,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
	}
}

// userDTO is the traveller identity embedded in booking payloads
type userDTO struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

func toUserDTO(u identity.User) userDTO {
	return userDTO{
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

// bookingDTO mirrors the booking document shape returned by the API
type bookingDTO struct {
	ID          string    `json:"_id"`
	RoomID      string    `json:"roomId"`
	BookingDate time.Time `json:"bookingDate"`
	CheckOut    time.Time `json:"checkOutDate"`
	Status      string    `json:"status,omitempty"`
	User        userDTO   `json:"user"`
}

func (d bookingDTO) toDomain() booking.Booking {
	status := booking.StatusActive
	if s := booking.Status(d.Status); s.IsValid() {
		status = s
	}
	return booking.Booking{
		ID:        d.ID,
		RoomID:    d.RoomID,
		UserEmail: d.User.Email,
		CheckIn:   d.BookingDate,
		CheckOut:  d.CheckOut,
		Status:    status,
	}
}

// reviewDTO mirrors the review document shape returned by the API
type reviewDTO struct {
	RoomID    string    `json:"roomId,omitempty"`
	UserEmail string    `json:"userEmail"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d reviewDTO) toDomain(roomID string) booking.Review {
	if d.RoomID != "" {
		roomID = d.RoomID
	}
	return booking.Review{
		RoomID:    roomID,
		UserEmail: d.UserEmail,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

// createBookingRequest is the payload for POST /rooms/{id}/book
type createBookingRequest struct {
	BookingDate  time.Time `json:"bookingDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	User         userDTO   `json:"user"`
}

// postReviewRequest is the payload for POST /rooms/{id}/reviews. The user
// field carries the reviewer's email.
type postReviewRequest struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// updateBookingRequest is the payload for PUT /bookings/{id}/update
type updateBookingRequest struct {
	BookingDate time.Time `json:"bookingDate"`
}

// sessionRequest is the payload for POST /jwt
type sessionRequest struct {
	Email string `json:"email"`
}
