package identity

import "context"

// Provider is the external identity collaborator that issues and validates
// sessions. Implementations own credential storage and token lifetimes; the
// client only ever holds the User copy they return.
//
// Expected failure codes: ERR_CREDENTIAL from SignUp (email already in use,
// weak password) and ERR_AUTH from SignIn (bad credentials, disabled account).
type Provider interface {
	SignUp(ctx context.Context, email, password string) (User, error)
	SignIn(ctx context.Context, email, password string) (User, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch ProfilePatch) (User, error)
}
