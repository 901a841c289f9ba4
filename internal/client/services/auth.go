package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/repositories/session"
	"github.com/ashiqsultan/inbox-memory-ai/internal/logging"
)

// AuthState is the position of the passwordless flow.
//
//	Anonymous → ChallengeRequested → Verifying → Authenticated
//
// A rejected or failed verification returns to ChallengeRequested so the
// user can resubmit; Logout returns to Anonymous from anywhere.
type AuthState int

const (
	StateAnonymous AuthState = iota
	StateChallengeRequested
	StateVerifying
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateChallengeRequested:
		return "challenge requested"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// codeLength is the fixed length of the one-time verification code.
const codeLength = 6

var (
	// ErrInvalidEmail is returned before any request when the supplied
	// address cannot possibly be an email.
	ErrInvalidEmail = errors.New("a valid email address is required")

	// ErrInvalidCode is returned before any request when the entered code
	// is not exactly six digits.
	ErrInvalidCode = errors.New("verification code must be exactly 6 digits")

	// ErrNoPendingChallenge guards SubmitCode: a code only makes sense
	// after a login or signup challenge was requested for an identity.
	ErrNoPendingChallenge = errors.New("no pending challenge: request a login or signup code first")
)

// ChallengeRejectedError means the backend declined the one-time code. The
// flow stays in ChallengeRequested and the user may resubmit. Reason is the
// backend's human-readable message, passed through verbatim.
type ChallengeRejectedError struct {
	Reason string
}

func (e *ChallengeRejectedError) Error() string {
	return e.Reason
}

// AuthService drives the passwordless authentication flow.
//
// Contract:
//   - RequestLogin/RequestSignup: ask the backend to mint and deliver a
//     one-time code; on success the flow holds the identity awaiting a code,
//     on failure no partial state is created.
//   - SubmitCode: verify the code for the pending identity. Success stores
//     the issued token exactly once and authenticates; a rejection surfaces
//     ChallengeRejectedError and keeps the challenge resubmittable.
//   - Restore: adopt a previously persisted session, no network involved.
//   - Logout: idempotent reset to Anonymous, clearing the stored session.
type AuthService interface {
	RequestLogin(ctx context.Context, email string) error
	RequestSignup(ctx context.Context, email string, name string) error
	SubmitCode(ctx context.Context, code string) error
	Restore(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	Invalidated()
	State() AuthState
	Identity() string
	Email() string
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by the remote Client and
// the durable session slot.
type authService struct {
	client   client.Client
	sessions session.Repository
	log      logging.Logger

	mu       sync.Mutex
	state    AuthState
	identity string // email awaiting a code, empty unless a challenge is pending
	email    string // signed-in address, display only
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(c client.Client, sessions session.Repository, log logging.Logger) AuthService {
	return &authService{client: c, sessions: sessions, log: log}
}

// NormalizeCode strips whitespace from a user-entered code and validates
// that the remainder is exactly six ASCII digits. Malformed codes are
// rejected here, before any request is made.
func NormalizeCode(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	norm := b.String()

	if len(norm) != codeLength {
		return "", ErrInvalidCode
	}
	for _, r := range norm {
		if r < '0' || r > '9' {
			return "", ErrInvalidCode
		}
	}
	return norm, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func (a *authService) requestChallenge(ctx context.Context, email string, send func(context.Context, string) error) error {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}

	if err := send(ctx, email); err != nil {
		// no partial state: a failed request leaves the flow anonymous
		a.mu.Lock()
		a.state = StateAnonymous
		a.identity = ""
		a.mu.Unlock()
		return fmt.Errorf("request challenge: %w", err)
	}

	a.mu.Lock()
	a.state = StateChallengeRequested
	a.identity = email
	a.mu.Unlock()

	a.log.Info(ctx, "challenge requested", "email", email)
	return nil
}

func (a *authService) RequestLogin(ctx context.Context, email string) error {
	return a.requestChallenge(ctx, email, func(ctx context.Context, email string) error {
		return a.client.Login(ctx, email)
	})
}

func (a *authService) RequestSignup(ctx context.Context, email string, name string) error {
	name = strings.TrimSpace(name)
	return a.requestChallenge(ctx, email, func(ctx context.Context, email string) error {
		return a.client.Signup(ctx, email, name)
	})
}

// SubmitCode verifies the pending challenge. On `verified: true` the issued
// token is persisted exactly once and the flow becomes Authenticated. On
// rejection or transport failure the flow returns to ChallengeRequested; the
// user may resubmit without requesting a fresh challenge.
func (a *authService) SubmitCode(ctx context.Context, code string) error {
	norm, err := NormalizeCode(code)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.identity == "" {
		a.mu.Unlock()
		return ErrNoPendingChallenge
	}
	identity := a.identity
	a.state = StateVerifying
	a.mu.Unlock()

	res, err := a.client.VerifyOTP(ctx, identity, norm)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.state = StateChallengeRequested
		return fmt.Errorf("verify code: %w", err)
	}

	if !res.Verified {
		a.state = StateChallengeRequested
		reason := res.Message
		if reason == "" {
			reason = "verification code rejected"
		}
		return &ChallengeRejectedError{Reason: reason}
	}

	if err := a.sessions.Set(ctx, res.AccessToken); err != nil {
		a.state = StateChallengeRequested
		return fmt.Errorf("persist session: %w", err)
	}

	a.state = StateAuthenticated
	a.email = identity
	a.identity = ""

	a.log.Info(ctx, "authenticated", "email", a.email)
	return nil
}

// Restore adopts a session persisted by a previous run. Returns true when a
// token was found and the flow is now Authenticated. No request is issued;
// an expired token will be caught by the first authenticated call.
func (a *authService) Restore(ctx context.Context) (bool, error) {
	token, err := a.sessions.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		return false, nil
	}

	a.mu.Lock()
	a.state = StateAuthenticated
	a.identity = ""
	a.email = emailFromToken(token)
	a.mu.Unlock()
	return true, nil
}

// Logout resets to Anonymous from any state, discarding the pending
// challenge and clearing the stored session. Safe to call repeatedly.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	a.mu.Lock()
	a.state = StateAnonymous
	a.identity = ""
	a.email = ""
	a.mu.Unlock()
	return nil
}

// Invalidated mirrors the transport's forced session invalidation into the
// flow state. The slot is already cleared at that point, so only the
// in-memory state is reset.
func (a *authService) Invalidated() {
	a.mu.Lock()
	a.state = StateAnonymous
	a.identity = ""
	a.email = ""
	a.mu.Unlock()
}

func (a *authService) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Identity returns the email awaiting a verification code, if any.
func (a *authService) Identity() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// Email returns the signed-in address for display purposes.
func (a *authService) Email() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// emailFromToken extracts the email claim from the bearer token for display.
// The token stays opaque for every authorization decision; this decode is
// unverified and best effort, degrading to an empty label.
func emailFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok {
		return email
	}
	return ""
}
