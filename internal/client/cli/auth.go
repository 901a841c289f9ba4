package cli

import (
	"context"
	"errors"
	"os"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/services"
)

// getSimpleText and getCode are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getCode = GetCode

// Signup prompts for an email and a display name, asks the backend to create
// the account and email a one-time code, then continues straight into code
// entry. Any I/O or service error is printed and returned unchanged.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter your name", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.RequestSignup(ctx, email, name); err != nil {
		printlnFn("Signup failed:", err.Error())
		return err
	}

	printlnFn("A verification code was sent to " + a.authService.Identity())
	return a.Verify(ctx)
}

// Login prompts for an email, requests a sign-in code for it and continues
// into code entry.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.RequestLogin(ctx, email); err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("A verification code was sent to " + a.authService.Identity())
	return a.Verify(ctx)
}

// Verify reads the emailed one-time code and submits it. A rejected code
// keeps the challenge open, so the user can run "verify" again without
// requesting a new one. On success the dashboard is activated.
func (a *App) Verify(ctx context.Context) error {
	code, err := getCode(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.SubmitCode(ctx, code); err != nil {
		var rejected *services.ChallengeRejectedError
		switch {
		case errors.As(err, &rejected):
			printlnFn(rejected.Reason)
			printlnFn("Run 'verify' to try again.")
		default:
			printlnFn("Verification failed:", err.Error())
		}
		return err
	}

	printlnFn("Signed in as " + a.signedInLabel())
	if err := a.dash.Activate(ctx); err != nil {
		a.log.Warn(ctx, "initial list load failed", "error", err)
	}
	return nil
}

// Logout signs out and clears the stored session. Safe to repeat.
func (a *App) Logout(ctx context.Context) error {
	if err := a.dash.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	printlnFn("Logged out.")
	return nil
}
