package booking

import (
	"time"

	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// Status represents the status of a booking
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	// Cancel is the only transition; cancelled is terminal.
	return s == StatusActive && target == StatusCancelled
}

// Booking is a stay reservation owned by one user. It is created by the
// booking widget, mutated by cancel/reschedule, and never hard-deleted from
// the user's perspective.
type Booking struct {
	ID        string
	RoomID    string
	UserEmail string
	CheckIn   time.Time
	CheckOut  time.Time
	Status    Status
}

// IsActive reports whether the booking has not been cancelled
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// Cancel marks the booking cancelled. Cancelled bookings stay cancelled.
func (b *Booking) Cancel() error {
	if !b.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Booking is already cancelled")
	}
	b.Status = StatusCancelled
	return nil
}

// Reschedule moves the check-in day to newDate. The new date must not be in
// the past; the check-out day is left as booked.
func (b *Booking) Reschedule(newDate, now time.Time) error {
	if !b.IsActive() {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Cancelled bookings cannot be rescheduled")
	}
	if err := ValidateFutureDate(newDate, now); err != nil {
		return err
	}
	b.CheckIn = dateOnly(newDate)
	return nil
}
