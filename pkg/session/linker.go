package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/feastly/catalog-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthError reports rejected credentials. It is distinct from
// transport failures: the caller surfaces it inline on the login form.
type AuthError struct {
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Credentials are the login form fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the storefront login payload.
type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// firmResponse is the dependent firm payload.
type firmResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Linker chains the login call, the identity persistence, and the
// dependent-firm lookup. The token and user id are stored as soon as
// the credential step succeeds; a failing firm lookup never rolls the
// login back.
//
// Only the Linker writes to the session store; all other components
// read it (notably as the client's TokenSource).
type Linker struct {
	client *client.Client
	store  Store
	logger zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewLinker creates a linker over the given client and session store.
func NewLinker(apiClient *client.Client, store Store) *Linker {
	if apiClient == nil {
		panic("api client cannot be nil")
	}
	if store == nil {
		panic("session store cannot be nil")
	}
	return &Linker{
		client: apiClient,
		store:  store,
		logger: log.With().Str("component", "session-linker").Logger(),
		state:  StateUnauthenticated,
	}
}

// State returns the current lifecycle state.
func (l *Linker) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Linker) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Login runs the full chain: submit credentials, persist the identity,
// resolve the dependent firm. Rejected credentials return *AuthError
// and leave any existing session untouched. Once the token is
// persisted, the login is reported as successful even if the firm
// lookup fails; such failures are carried in Session.Warning.
func (l *Linker) Login(ctx context.Context, creds Credentials) (*Session, error) {
	l.setState(StateAuthenticating)

	var login loginResponse
	if err := l.client.PostJSON(ctx, "/api/auth/login", creds, &login); err != nil {
		l.setState(StateUnauthenticated)

		if client.ClassOf(err) == client.ErrorClassClient {
			l.logger.Info().Str("username", creds.Username).Msg("Credentials rejected")
			return nil, &AuthError{Message: authMessage(err)}
		}
		// Transport/decode trouble is not an authentication verdict.
		return nil, fmt.Errorf("login request: %w", err)
	}

	// Persist the identity immediately. Later failures do not roll
	// this back: the user stays logged in.
	if err := l.persistIdentity(ctx, login); err != nil {
		l.setState(StateUnauthenticated)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	session := &Session{
		Token:    login.Token,
		UserID:   login.UserID,
		Username: login.Username,
	}

	firm, err := l.resolveFirm(ctx, login.UserID)
	switch {
	case err != nil:
		// The lookup itself failed; the login still succeeded.
		l.logger.Warn().Err(err).Str("user_id", login.UserID).Msg("Dependent firm lookup failed")
		session.State = StateAuthenticatedNoDependent
		session.Warning = err
	case firm == nil:
		session.State = StateAuthenticatedNoDependent
	default:
		if err := l.persistFirm(ctx, firm); err != nil {
			l.logger.Warn().Err(err).Msg("Firm fields not persisted")
			session.Warning = err
		}
		session.FirmID = firm.ID
		session.FirmName = firm.Name
		session.State = StateAuthenticatedWithDependent
	}

	l.setState(session.State)
	l.logger.Info().
		Str("user_id", session.UserID).
		Bool("has_firm", session.HasDependent()).
		Msg("Login complete")

	return session, nil
}

// resolveFirm looks up the firm associated with the user. A clean
// "not found" returns (nil, nil); only transport, server, or decode
// trouble returns an error.
func (l *Linker) resolveFirm(ctx context.Context, userID string) (*firmResponse, error) {
	var firm firmResponse
	err := l.client.GetJSON(ctx, "/api/firms/by-user/"+userID, &firm)
	if err != nil {
		if client.IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if firm.ID == "" {
		// The endpoint answered but named no firm.
		return nil, nil
	}
	return &firm, nil
}

func (l *Linker) persistIdentity(ctx context.Context, login loginResponse) error {
	if err := l.store.Set(ctx, FieldToken, login.Token); err != nil {
		return err
	}
	if err := l.store.Set(ctx, FieldUserID, login.UserID); err != nil {
		return err
	}
	return l.store.Set(ctx, FieldUsername, login.Username)
}

func (l *Linker) persistFirm(ctx context.Context, firm *firmResponse) error {
	if err := l.store.Set(ctx, FieldFirmID, firm.ID); err != nil {
		return err
	}
	return l.store.Set(ctx, FieldFirmName, firm.Name)
}

// Logout clears every session field atomically. It is the only
// operation allowed to clear the store.
func (l *Linker) Logout(ctx context.Context) error {
	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	l.setState(StateLoggedOut)
	l.logger.Info().Msg("Logged out")
	return nil
}

// Restore rebuilds the session from the store, synchronously, before
// any authenticated fetch runs. An empty store yields an
// unauthenticated session.
func (l *Linker) Restore(ctx context.Context) (*Session, error) {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		value, err := l.store.Get(ctx, field)
		if err != nil {
			return nil, fmt.Errorf("read session field %s: %w", field, err)
		}
		values[field] = value
	}

	session := &Session{
		Token:    values[FieldToken],
		UserID:   values[FieldUserID],
		Username: values[FieldUsername],
		FirmID:   values[FieldFirmID],
		FirmName: values[FieldFirmName],
	}

	switch {
	case !session.Authenticated():
		session.State = StateUnauthenticated
	case session.HasDependent():
		session.State = StateAuthenticatedWithDependent
	default:
		session.State = StateAuthenticatedNoDependent
	}

	l.setState(session.State)
	return session, nil
}

// TokenSource adapts the session store to the client's TokenSource so
// authenticated requests pick up the current bearer token.
func (l *Linker) TokenSource() client.TokenSource {
	return Tokens(l.store)
}

// Tokens adapts a session store to the client's TokenSource. It lets
// the client be constructed before the linker while both read the same
// store.
func Tokens(store Store) client.TokenSource {
	return storeTokens{store: store}
}

type storeTokens struct {
	store Store
}

// Token returns the persisted bearer token, or "" when logged out.
func (t storeTokens) Token() string {
	token, err := t.store.Get(context.Background(), FieldToken)
	if err != nil {
		return ""
	}
	return token
}

// authMessage extracts the storefront's rejection message from a
// client-class error.
func authMessage(err error) string {
	class := client.ClassOf(err)
	if class != client.ErrorClassClient {
		return err.Error()
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "invalid credentials"
}
