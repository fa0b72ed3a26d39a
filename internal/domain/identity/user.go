package identity

import (
	"regexp"
	"strings"

	"github.com/lodgely/bookingkit/internal/domain/shared"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is the read-only copy of the authenticated identity owned by the
// external identity provider. The email is the unique identifier every
// booking and review is keyed on.
type User struct {
	Email       string
	DisplayName string
	PhotoURL    string
}

// NewUser creates a user copy with a validated email
func NewUser(email, displayName, photoURL string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return User{}, shared.NewValidationError("email is required")
	}
	if !emailPattern.MatchString(email) {
		return User{}, shared.NewValidationError("email format is invalid")
	}
	return User{
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		PhotoURL:    strings.TrimSpace(photoURL),
	}, nil
}

// ProfilePatch carries the mutable profile fields. Nil means "leave unchanged".
type ProfilePatch struct {
	DisplayName *string
	PhotoURL    *string
}

// IsEmpty returns true when the patch changes nothing
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.PhotoURL == nil
}

// Apply returns a copy of u with the patch applied
func (p ProfilePatch) Apply(u User) User {
	if p.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.PhotoURL != nil {
		u.PhotoURL = strings.TrimSpace(*p.PhotoURL)
	}
	return u
}
