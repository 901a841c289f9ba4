package client

import (
	"context"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
)

// VerifyResult is the backend's answer to an OTP verification attempt.
// AccessToken is only present when Verified is true; Message carries the
// human-readable reason when it is false.
type VerifyResult struct {
	Verified    bool   `json:"verified"`
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// Client is the transport-agnostic contract to the InboxMemory backend.
type Client interface {
	Close() error
	Login(ctx context.Context, email string) error
	Signup(ctx context.Context, email string, name string) error
	VerifyOTP(ctx context.Context, email string, otp string) (*VerifyResult, error)
	ListEmails(ctx context.Context) ([]models.EmailSummary, error)
	GetEmail(ctx context.Context, id string) (*models.EmailDetail, error)
	Ask(ctx context.Context, question string) (string, error)
	Ping(ctx context.Context) error
}
