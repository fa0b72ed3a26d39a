package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/lodgely/bookingkit/internal/domain/shared"
	"github.com/lodgely/bookingkit/internal/domain/shared/valueobject"
)

// FlowState represents where the booking widget is in its workflow
type FlowState string

const (
	StateViewing        FlowState = "VIEWING"
	StateDateSelection  FlowState = "DATE_SELECTION"
	StateConfirmPending FlowState = "CONFIRM_PENDING"
	StateSubmitting     FlowState = "SUBMITTING"
)

// String returns the string representation of FlowState
func (s FlowState) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can transition to the target state
func (s FlowState) CanTransitionTo(target FlowState) bool {
	switch s {
	case StateViewing:
		return target == StateDateSelection
	case StateDateSelection:
		return target == StateConfirmPending || target == StateDateSelection
	case StateConfirmPending:
		return target == StateSubmitting || target == StateDateSelection
	case StateSubmitting:
		// Success returns to Viewing, failure back to DateSelection.
		return target == StateViewing || target == StateDateSelection
	}
	return false
}

// Flow errors.
var (
	ErrRoomUnavailable = shared.NewDomainError(shared.ErrCodeInvalidState, "This room is no longer available for booking")
	ErrSubmitInFlight  = shared.NewDomainError(shared.ErrCodeInvalidState, "A booking request is already in flight")
)

// Summary is what the user confirms before the network call is made
type Summary struct {
	RoomName     string
	NightlyPrice valueobject.Money
	Dates        StayDates
	Nights       int64
	Total        valueobject.Money
}

// Flow is the stateful booking workflow for one room detail view:
// Viewing -> DateSelection -> ConfirmPending -> Submitting, returning to
// Viewing on success or DateSelection on failure. All methods are
// synchronous guards; the network call itself is the caller's job between
// BeginSubmit and CompleteSuccess/CompleteFailure.
type Flow struct {
	room           *Room
	state          FlowState
	dates          StayDates
	resumePending  bool
	idempotencyKey string
}

// NewFlow starts a flow over a loaded room in the Viewing state
func NewFlow(room *Room) *Flow {
	return &Flow{room: room, state: StateViewing}
}

// State returns the current workflow state
func (f *Flow) State() FlowState { return f.state }

// Room returns the room under view
func (f *Flow) Room() *Room { return f.room }

// Dates returns the currently entered dates and whether any have been set
func (f *Flow) Dates() (StayDates, bool) {
	return f.dates, !f.dates.IsZero()
}

// ResumePending reports whether a booking attempt is waiting on login
func (f *Flow) ResumePending() bool { return f.resumePending }

// IdempotencyKey returns the key for the current date selection. The key is
// rotated when dates change or a booking succeeds, and kept stable across
// confirm/fail/retry cycles so a server that honors it recognizes retries.
func (f *Flow) IdempotencyKey() string { return f.idempotencyKey }

// transition moves the flow to target when the state machine allows it. A
// blocked move during submission reports the in-flight guard; anything else
// is an invalid-state error.
func (f *Flow) transition(target FlowState) error {
	if !f.state.CanTransitionTo(target) {
		if f.state == StateSubmitting {
			return ErrSubmitInFlight
		}
		return shared.ErrInvalidState
	}
	f.state = target
	return nil
}

// PickDates validates the date invariants and moves the flow to
// DateSelection. An invalid pair keeps previously entered valid dates and
// returns the specific violated rule.
func (f *Flow) PickDates(checkIn, checkOut, now time.Time) error {
	// The Submitting -> DateSelection edge belongs to CompleteFailure, so
	// date entry stays blocked while a call is in flight.
	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	stay, err := NewStayDates(checkIn, checkOut, now)
	if err != nil {
		if f.state == StateViewing {
			f.state = StateDateSelection
		}
		return err
	}
	f.dates = stay
	f.idempotencyKey = uuid.NewString()
	return f.transition(StateDateSelection)
}

// RequestBooking gates the transition to ConfirmPending: the room must still
// be available, valid dates must be entered, and the caller must be
// authenticated. Without a session the attempted dates are preserved and the
// flow can Resume after login.
func (f *Flow) RequestBooking(authenticated bool) error {
	if !f.room.IsAvailable {
		return ErrRoomUnavailable
	}
	if f.dates.IsZero() {
		return ErrCheckInRequired
	}
	if !f.state.CanTransitionTo(StateConfirmPending) {
		if f.state == StateSubmitting {
			return ErrSubmitInFlight
		}
		return shared.ErrInvalidState
	}
	if !authenticated {
		f.resumePending = true
		return shared.ErrAuthRequired
	}
	f.resumePending = false
	f.state = StateConfirmPending
	return nil
}

// Resume continues a booking attempt that was blocked on authentication
func (f *Flow) Resume(authenticated bool) error {
	if !f.resumePending {
		return shared.ErrInvalidState
	}
	return f.RequestBooking(authenticated)
}

// ReviseDates closes the confirmation and returns to date selection,
// keeping the entered dates.
func (f *Flow) ReviseDates() error {
	if f.state != StateConfirmPending {
		return shared.ErrInvalidState
	}
	return f.transition(StateDateSelection)
}

// Summary builds the confirmation summary shown before submission
func (f *Flow) Summary() (Summary, error) {
	if f.state != StateConfirmPending && f.state != StateSubmitting {
		return Summary{}, shared.ErrInvalidState
	}
	nights := f.dates.Nights()
	return Summary{
		RoomName:     f.room.Name,
		NightlyPrice: f.room.Price,
		Dates:        f.dates,
		Nights:       nights,
		Total:        f.room.TotalFor(nights),
	}, nil
}

// BeginSubmit moves to Submitting and hands out the idempotency key for the
// request. Exactly one submission per confirmation: a second call before
// completion fails with ErrSubmitInFlight.
func (f *Flow) BeginSubmit() (string, error) {
	if err := f.transition(StateSubmitting); err != nil {
		return "", err
	}
	return f.idempotencyKey, nil
}

// CompleteSuccess applies the optimistic availability patch, clears the
// entered dates and returns to Viewing.
func (f *Flow) CompleteSuccess() error {
	// Viewing is reachable only from Submitting, so the machine is the guard.
	if err := f.transition(StateViewing); err != nil {
		return err
	}
	f.room.MarkUnavailable()
	f.dates = StayDates{}
	f.idempotencyKey = ""
	return nil
}

// CompleteFailure returns to DateSelection without losing the entered dates
func (f *Flow) CompleteFailure() error {
	// ConfirmPending -> DateSelection is ReviseDates' edge; completion only
	// makes sense with a submission in flight.
	if f.state != StateSubmitting {
		return shared.ErrInvalidState
	}
	return f.transition(StateDateSelection)
}
