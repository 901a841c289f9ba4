package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
	"github.com/ashiqsultan/inbox-memory-ai/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient is a programmable client.Client. Unset functions succeed with
// zero values. Call counters are atomic so tests may ask concurrently.
type fakeClient struct {
	loginFn  func(ctx context.Context, email string) error
	signupFn func(ctx context.Context, email, name string) error
	verifyFn func(ctx context.Context, email, otp string) (*client.VerifyResult, error)
	listFn   func(ctx context.Context) ([]models.EmailSummary, error)
	getFn    func(ctx context.Context, id string) (*models.EmailDetail, error)
	askFn    func(ctx context.Context, question string) (string, error)

	loginCalls  atomic.Int64
	signupCalls atomic.Int64
	verifyCalls atomic.Int64
	listCalls   atomic.Int64
	getCalls    atomic.Int64
	askCalls    atomic.Int64
}

func (f *fakeClient) Close() error               { return nil }
func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Login(ctx context.Context, email string) error {
	f.loginCalls.Add(1)
	if f.loginFn != nil {
		return f.loginFn(ctx, email)
	}
	return nil
}

func (f *fakeClient) Signup(ctx context.Context, email string, name string) error {
	f.signupCalls.Add(1)
	if f.signupFn != nil {
		return f.signupFn(ctx, email, name)
	}
	return nil
}

func (f *fakeClient) VerifyOTP(ctx context.Context, email string, otp string) (*client.VerifyResult, error) {
	f.verifyCalls.Add(1)
	if f.verifyFn != nil {
		return f.verifyFn(ctx, email, otp)
	}
	return &client.VerifyResult{}, nil
}

func (f *fakeClient) ListEmails(ctx context.Context) ([]models.EmailSummary, error) {
	f.listCalls.Add(1)
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeClient) GetEmail(ctx context.Context, id string) (*models.EmailDetail, error) {
	f.getCalls.Add(1)
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return &models.EmailDetail{ID: id}, nil
}

func (f *fakeClient) Ask(ctx context.Context, question string) (string, error) {
	f.askCalls.Add(1)
	if f.askFn != nil {
		return f.askFn(ctx, question)
	}
	return "", nil
}

// memSessions is an in-memory session.Repository that counts writes.
type memSessions struct {
	mu       sync.Mutex
	token    string
	setCalls int
}

func (m *memSessions) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memSessions) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.setCalls++
	return nil
}

func (m *memSessions) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memSessions) stored() (string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.setCalls
}
