package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/services"
)

// List re-fetches and prints the email list, newest first as the backend
// returns it.
func (a *App) List(ctx context.Context) error {
	if err := a.dash.Refresh(ctx); err != nil {
		printlnFn("Could not load emails:", err.Error())
		return err
	}

	v := a.dash.View()
	if len(v.Summaries) == 0 {
		printlnFn("No emails yet. Forward something to your inbox address first.")
		return nil
	}
	for _, s := range v.Summaries {
		printlnFn(fmt.Sprintf("%s  %s  %s", s.ID, formatDate(s.CreatedAt), s.Subject))
	}
	return nil
}

// Refresh is List without the prompt noise of an empty result.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.dash.Refresh(ctx); err != nil {
		printlnFn("Refresh failed:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("%d emails.", len(a.dash.View().Summaries)))
	return nil
}

// Show fetches and displays a single email by ID. A missing ID leaves the
// list untouched; the user just picks another one.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter email id to show", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.dash.Select(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			printlnFn("Email not found.")
		} else {
			printlnFn("Could not load email:", err.Error())
		}
		return err
	}

	detail := a.dash.View().Detail
	if detail == nil {
		return nil
	}

	printlnFn("Subject:", detail.Subject)
	if d := formatDate(detail.CreatedAt); d != "" {
		printlnFn("Date:   ", d)
	}
	printlnFn("")
	printlnFn(bodyText(detail))
	return nil
}

// bodyText picks the displayable body of an email: the HTML part converted
// to terminal text when present, the plain-text part otherwise.
func bodyText(detail *models.EmailDetail) string {
	if !detail.HasContent() {
		return "No content available"
	}
	if detail.ContentHTML != "" {
		if text := htmlToText(detail.ContentHTML); text != "" {
			return text
		}
	}
	if detail.ContentText != "" {
		return detail.ContentText
	}
	return "No content available"
}

// Ask reads a question, routes it through the QA service and prints the
// answer. Blank input is reported locally without touching the network.
func (a *App) Ask(ctx context.Context) error {
	question, err := getSimpleText(a.reader, "Ask a question about your emails", os.Stdout)
	if err != nil {
		return err
	}

	exchange, err := a.dash.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) {
			printlnFn("Please enter a question.")
		} else {
			printlnFn("Could not get an answer:", err.Error())
		}
		return err
	}

	printlnFn("")
	printlnFn(renderAnswer(exchange.Answer))
	return nil
}

// ClearAnswer dismisses the current question/answer exchange.
func (a *App) ClearAnswer(ctx context.Context) error {
	a.dash.ClearExchange()
	printlnFn("Answer cleared.")
	return nil
}
