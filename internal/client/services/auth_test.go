package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
)

func newAuth(t *testing.T, f *fakeClient) (AuthService, *memSessions) {
	t.Helper()
	sessions := &memSessions{}
	return NewAuthService(f, sessions, testLogger()), sessions
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "123456", want: "123456"},
		{name: "surrounding and inner spaces", input: " 123 456 ", want: "123456"},
		{name: "tabs stripped", input: "\t123456\t", want: "123456"},
		{name: "too short", input: "12345", wantErr: true},
		{name: "too long", input: "1234567", wantErr: true},
		{name: "letters", input: "abcdef", wantErr: true},
		{name: "mixed", input: "12a456", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "unicode digits rejected", input: "１２３４５６", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeCode(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRequestLogin_MovesToChallengeRequested(t *testing.T) {
	f := &fakeClient{}
	a, _ := newAuth(t, f)

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))

	assert.Equal(t, StateChallengeRequested, a.State())
	assert.Equal(t, "u@x.com", a.Identity())
	assert.EqualValues(t, 1, f.loginCalls.Load())
}

func TestRequestLogin_FailureLeavesNoPartialState(t *testing.T) {
	f := &fakeClient{loginFn: func(context.Context, string) error {
		return client.ErrUnavailable
	}}
	a, _ := newAuth(t, f)

	err := a.RequestLogin(context.Background(), "u@x.com")
	require.ErrorIs(t, err, client.ErrUnavailable)

	assert.Equal(t, StateAnonymous, a.State())
	assert.Empty(t, a.Identity())
}

func TestRequestLogin_RejectsBadEmailWithoutRequest(t *testing.T) {
	f := &fakeClient{}
	a, _ := newAuth(t, f)

	for _, email := range []string{"", "   ", "nodomain", "@x.com", "u@"} {
		require.ErrorIs(t, a.RequestLogin(context.Background(), email), ErrInvalidEmail, "email %q", email)
	}
	assert.Zero(t, f.loginCalls.Load())
}

func TestRequestSignup_PassesNameThrough(t *testing.T) {
	var gotEmail, gotName string
	f := &fakeClient{signupFn: func(_ context.Context, email, name string) error {
		gotEmail, gotName = email, name
		return nil
	}}
	a, _ := newAuth(t, f)

	require.NoError(t, a.RequestSignup(context.Background(), " u@x.com ", " Ada "))
	assert.Equal(t, "u@x.com", gotEmail)
	assert.Equal(t, "Ada", gotName)
	assert.Equal(t, StateChallengeRequested, a.State())
}

func TestSubmitCode_WithoutChallengeIsGuarded(t *testing.T) {
	f := &fakeClient{}
	a, _ := newAuth(t, f)

	err := a.SubmitCode(context.Background(), "123456")
	require.ErrorIs(t, err, ErrNoPendingChallenge)
	assert.Zero(t, f.verifyCalls.Load())
}

func TestSubmitCode_MalformedCodeNeverReachesNetwork(t *testing.T) {
	f := &fakeClient{}
	a, _ := newAuth(t, f)
	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))

	for _, code := range []string{"", "12345", "abcdef", "12 34"} {
		require.ErrorIs(t, a.SubmitCode(context.Background(), code), ErrInvalidCode, "code %q", code)
	}
	assert.Zero(t, f.verifyCalls.Load())
	assert.Equal(t, StateChallengeRequested, a.State())
}

func TestSubmitCode_VerifiedStoresExactlyOneSession(t *testing.T) {
	f := &fakeClient{verifyFn: func(_ context.Context, email, otp string) (*client.VerifyResult, error) {
		return &client.VerifyResult{Verified: true, AccessToken: "issued-token"}, nil
	}}
	a, sessions := newAuth(t, f)

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))
	require.NoError(t, a.SubmitCode(context.Background(), "123456"))

	assert.Equal(t, StateAuthenticated, a.State())
	assert.Equal(t, "u@x.com", a.Email())
	assert.Empty(t, a.Identity())

	token, setCalls := sessions.stored()
	assert.Equal(t, "issued-token", token)
	assert.Equal(t, 1, setCalls)
}

func TestSubmitCode_RejectionKeepsChallengeAndSurfacesReason(t *testing.T) {
	verified := false
	f := &fakeClient{verifyFn: func(_ context.Context, email, otp string) (*client.VerifyResult, error) {
		if !verified {
			return &client.VerifyResult{Verified: false, Message: "Invalid or expired OTP"}, nil
		}
		return &client.VerifyResult{Verified: true, AccessToken: "tok"}, nil
	}}
	a, sessions := newAuth(t, f)

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))

	err := a.SubmitCode(context.Background(), "123456")
	var rejected *ChallengeRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Invalid or expired OTP", rejected.Reason)
	assert.Equal(t, StateChallengeRequested, a.State())

	token, _ := sessions.stored()
	assert.Empty(t, token, "no session may exist after a rejection")

	// resubmission without a fresh challenge succeeds
	verified = true
	require.NoError(t, a.SubmitCode(context.Background(), "654321"))
	assert.Equal(t, StateAuthenticated, a.State())
}

func TestSubmitCode_TransportFailureReturnsToChallengeRequested(t *testing.T) {
	f := &fakeClient{verifyFn: func(context.Context, string, string) (*client.VerifyResult, error) {
		return nil, client.ErrUnavailable
	}}
	a, sessions := newAuth(t, f)

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))
	err := a.SubmitCode(context.Background(), "123456")
	require.ErrorIs(t, err, client.ErrUnavailable)

	assert.Equal(t, StateChallengeRequested, a.State())
	token, _ := sessions.stored()
	assert.Empty(t, token)
}

func TestLogout_IsIdempotentFromAnyState(t *testing.T) {
	f := &fakeClient{verifyFn: func(context.Context, string, string) (*client.VerifyResult, error) {
		return &client.VerifyResult{Verified: true, AccessToken: "tok"}, nil
	}}
	a, sessions := newAuth(t, f)

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))
	require.NoError(t, a.SubmitCode(context.Background(), "123456"))

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Logout(context.Background()))
		assert.Equal(t, StateAnonymous, a.State())
		assert.Empty(t, a.Identity())
		assert.Empty(t, a.Email())
	}

	token, _ := sessions.stored()
	assert.Empty(t, token)
}

func TestRestore_AdoptsPersistedSessionWithoutNetwork(t *testing.T) {
	f := &fakeClient{}
	a, sessions := newAuth(t, f)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "u@x.com"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, sessions.Set(context.Background(), signed))

	restored, err := a.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, StateAuthenticated, a.State())
	assert.Equal(t, "u@x.com", a.Email())

	assert.Zero(t, f.loginCalls.Load())
	assert.Zero(t, f.verifyCalls.Load())
}

func TestRestore_EmptySlotStaysAnonymous(t *testing.T) {
	a, _ := newAuth(t, &fakeClient{})

	restored, err := a.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, StateAnonymous, a.State())
}

func TestRestore_OpaqueTokenStillAuthenticates(t *testing.T) {
	a, sessions := newAuth(t, &fakeClient{})
	require.NoError(t, sessions.Set(context.Background(), "not-a-jwt"))

	restored, err := a.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, StateAuthenticated, a.State())
	assert.Empty(t, a.Email(), "claim decode is best effort, display only")
}

func TestInvalidated_ResetsFlowState(t *testing.T) {
	f := &fakeClient{verifyFn: func(context.Context, string, string) (*client.VerifyResult, error) {
		return &client.VerifyResult{Verified: true, AccessToken: "tok"}, nil
	}}
	a, _ := newAuth(t, f)

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))
	require.NoError(t, a.SubmitCode(context.Background(), "123456"))

	a.Invalidated()
	assert.Equal(t, StateAnonymous, a.State())
	assert.Empty(t, a.Email())
}

func TestAuthStateString(t *testing.T) {
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "challenge requested", StateChallengeRequested.String())
	assert.Equal(t, "verifying", StateVerifying.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}

func TestSubmitCode_SessionPersistFailure(t *testing.T) {
	f := &fakeClient{verifyFn: func(context.Context, string, string) (*client.VerifyResult, error) {
		return &client.VerifyResult{Verified: true, AccessToken: "tok"}, nil
	}}
	sessions := &failingSessions{}
	a := NewAuthService(f, sessions, testLogger())

	require.NoError(t, a.RequestLogin(context.Background(), "u@x.com"))
	err := a.SubmitCode(context.Background(), "123456")
	require.Error(t, err)
	assert.Equal(t, StateChallengeRequested, a.State())
}

type failingSessions struct{}

func (failingSessions) Get(context.Context) (string, error) { return "", nil }
func (failingSessions) Set(context.Context, string) error   { return errors.New("disk full") }
func (failingSessions) Clear(context.Context) error         { return nil }
