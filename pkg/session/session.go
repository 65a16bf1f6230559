// Package session implements the storefront login chain: credential
// submission, identity persistence, and the dependent-firm lookup with
// partial-failure fallback.
package session

// State is the session lifecycle state.
//
// Unauthenticated → Authenticating → {AuthenticatedNoDependent,
// AuthenticatedWithDependent} → LoggedOut. LoggedOut is reached only by
// an explicit Logout, which clears all derived fields atomically.
type State string

const (
	StateUnauthenticated            State = "unauthenticated"
	StateAuthenticating             State = "authenticating"
	StateAuthenticatedNoDependent   State = "authenticated_no_dependent"
	StateAuthenticatedWithDependent State = "authenticated_with_dependent"
	StateLoggedOut                  State = "logged_out"
)

// Session is the authenticated identity plus its optional dependent
// firm. Token and UserID are populated as soon as the credential step
// succeeds and are never rolled back by later failures.
type Session struct {
	Token    string
	UserID   string
	Username string

	// FirmID and FirmName are populated only when the dependent firm
	// lookup succeeds. "Logged in, no firm" is a legitimate terminal
	// state, not an error.
	FirmID   string
	FirmName string

	State State

	// Warning carries a dependent-lookup failure that did not block
	// the login (network or decode trouble, as opposed to a clean
	// "no firm"). Informational only.
	Warning error
}

// HasDependent reports whether the dependent firm resolved.
func (s *Session) HasDependent() bool {
	return s.FirmID != ""
}

// Authenticated reports whether the session carries a usable token.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}
