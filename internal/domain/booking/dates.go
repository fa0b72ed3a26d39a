package booking

import (
	"time"

	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// Date invariant violations. Each one names the specific rule so the UI can
// surface it instead of a generic error.
var (
	ErrCheckInRequired  = shared.NewValidationError("check-in date is required")
	ErrCheckOutRequired = shared.NewValidationError("check-out date is required")
	ErrCheckInPast      = shared.NewValidationError("check-in date cannot be in the past")
	ErrCheckOutNotAfter = shared.NewValidationError("check-out date must be after the check-in date")
	ErrDatePast         = shared.NewValidationError("the selected date cannot be in the past")
)

// StayDates is the validated check-in/check-out pair. A zero StayDates is
// invalid; construction goes through NewStayDates.
type StayDates struct {
	checkIn  time.Time
	checkOut time.Time
}

// dateOnly truncates t to its calendar day, normalized to UTC midnight so
// day arithmetic is exact even when the wall-clock location observes DST.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewStayDates validates the date invariants against the given clock reading:
// the check-in day must not be before today, and check-out must be strictly
// after check-in. Comparison is at calendar-day granularity.
func NewStayDates(checkIn, checkOut, now time.Time) (StayDates, error) {
	if checkIn.IsZero() {
		return StayDates{}, ErrCheckInRequired
	}
	if checkOut.IsZero() {
		return StayDates{}, ErrCheckOutRequired
	}
	in := dateOnly(checkIn)
	out := dateOnly(checkOut)
	if in.Before(dateOnly(now)) {
		return StayDates{}, ErrCheckInPast
	}
	if !out.After(in) {
		return StayDates{}, ErrCheckOutNotAfter
	}
	return StayDates{checkIn: in, checkOut: out}, nil
}

// CheckIn returns the check-in day
func (d StayDates) CheckIn() time.Time { return d.checkIn }

// CheckOut returns the check-out day
func (d StayDates) CheckOut() time.Time { return d.checkOut }

// Nights returns the number of nights between check-in and check-out
func (d StayDates) Nights() int64 {
	return int64(d.checkOut.Sub(d.checkIn).Hours() / 24)
}

// IsZero reports whether the pair was never set
func (d StayDates) IsZero() bool {
	return d.checkIn.IsZero() && d.checkOut.IsZero()
}

// ValidateFutureDate checks a single date (reschedule target) against now at
// calendar-day granularity.
func ValidateFutureDate(date, now time.Time) error {
	if date.IsZero() {
		return shared.NewValidationError("please select a new date")
	}
	if dateOnly(date).Before(dateOnly(now)) {
		return ErrDatePast
	}
	return nil
}
