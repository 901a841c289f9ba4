package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/repositories/session"
	"github.com/ashiqsultan/inbox-memory-ai/internal/logging"
)

// HTTPClient talks JSON over HTTP(S) to the InboxMemory backend.
//
// Every outbound request carries the stored bearer token (when present) and a
// generated X-Request-Id. A 401 from any endpoint clears the session slot and
// fires the OnSessionInvalid hook before the caller sees ErrUnauthorized.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	sessions session.Repository
	log      logging.Logger

	mu               sync.Mutex
	onSessionInvalid func()
}

func NewHTTPClient(baseURL string, timeout time.Duration, sessions session.Repository, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
		log:      log.With("component", "transport"),
	}
}

// OnSessionInvalid registers the hook invoked after any unauthorized
// response. The hosting application wires this to its own navigation (for
// the CLI: drop back to the anonymous prompt).
func (c *HTTPClient) OnSessionInvalid(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionInvalid = fn
}

// apiMessage captures the error detail shapes the backend uses.
type apiMessage struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (m apiMessage) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Detail
}

// do performs one request/response cycle. in (when non-nil) is marshalled as
// the JSON body; out (when non-nil) receives the decoded JSON response.
// There are no retries: every failure is mapped and returned as-is.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	token, err := c.sessions.Get(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug(ctx, "sending request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "received response", "path", path, "request_id", requestID, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidateSession(ctx)
		return ErrUnauthorized

	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return ErrNotFound

	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)

	case resp.StatusCode >= http.StatusBadRequest:
		var m apiMessage
		_ = json.Unmarshal(data, &m)
		if msg := m.text(); msg != "" {
			return fmt.Errorf("request rejected: %s", msg)
		}
		return fmt.Errorf("request rejected: %s", resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// invalidateSession implements the global 401 policy: clear the durable slot
// first, then notify the host. The order matters so that by the time the UI
// reacts, the stale token is already gone and cannot be re-sent.
func (c *HTTPClient) invalidateSession(ctx context.Context) {
	c.log.Warn(ctx, "authorization rejected, clearing session")

	if err := c.sessions.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}

	c.mu.Lock()
	fn := c.onSessionInvalid
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

type signupRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type listEmailsResponse struct {
	Emails []models.EmailSummary `json:"emails"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Login asks the backend to mint a one-time code and deliver it to email.
func (c *HTTPClient) Login(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email}, nil)
}

// Signup creates an account and delivers a one-time code to email.
func (c *HTTPClient) Signup(ctx context.Context, email string, name string) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", signupRequest{Email: email, Name: name}, nil)
}

// VerifyOTP submits the one-time code. A rejection is not an error at this
// layer: the result carries verified=false plus the backend's reason.
func (c *HTTPClient) VerifyOTP(ctx context.Context, email string, otp string) (*VerifyResult, error) {
	var res VerifyResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", verifyOTPRequest{Email: email, OTP: otp}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListEmails fetches all knowledge-base summaries. An account with no emails
// yields an empty slice, not an error.
func (c *HTTPClient) ListEmails(ctx context.Context) ([]models.EmailSummary, error) {
	var res listEmailsResponse
	if err := c.do(ctx, http.MethodGet, "/kb/", nil, &res); err != nil {
		return nil, err
	}
	if res.Emails == nil {
		return []models.EmailSummary{}, nil
	}
	return res.Emails, nil
}

// GetEmail fetches one stored email by id.
func (c *HTTPClient) GetEmail(ctx context.Context, id string) (*models.EmailDetail, error) {
	var res models.EmailDetail
	if err := c.do(ctx, http.MethodGet, "/kb/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ask sends a natural-language question against the knowledge base.
func (c *HTTPClient) Ask(ctx context.Context, question string) (string, error) {
	var res askResponse
	if err := c.do(ctx, http.MethodPost, "/kb/qa", askRequest{Question: question}, &res); err != nil {
		return "", err
	}
	return res.Answer, nil
}

// Ping checks backend reachability via the public hello route.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

// Close releases idle connections held by the underlying HTTP client.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
