// Package dashboard coordinates the signed-in view: the email list, the
// detail pane and the question/answer exchange. It owns the view state and
// serializes access to it; the services it delegates to do the actual work.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/services"
	"github.com/ashiqsultan/inbox-memory-ai/internal/logging"
)

// View is a point-in-time snapshot of the dashboard. Snapshots are values;
// mutating one never affects the orchestrator.
type View struct {
	Loading   bool
	Summaries []models.EmailSummary
	ListErr   error

	SelectedID    string
	Detail        *models.EmailDetail
	DetailLoading bool
	DetailErr     error

	Exchange  *models.QAExchange
	Answering bool
}

// Orchestrator drives the dashboard. All view mutations go through its
// mutex; network calls run outside the lock so a slow fetch never blocks
// View().
type Orchestrator struct {
	auth services.AuthService
	kb   services.KnowledgeService
	qa   *services.QAService
	log  logging.Logger

	mu   sync.Mutex
	view View
}

func NewOrchestrator(auth services.AuthService, kb services.KnowledgeService, qa *services.QAService, log logging.Logger) *Orchestrator {
	return &Orchestrator{auth: auth, kb: kb, qa: qa, log: log}
}

// Activate loads the email list after sign-in. A failed load keeps the
// dashboard usable: the error lands in ListErr and a Refresh retries.
func (o *Orchestrator) Activate(ctx context.Context) error {
	return o.Refresh(ctx)
}

// Refresh re-fetches the email list, leaving the detail pane and the
// current exchange untouched.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	o.view.Loading = true
	o.mu.Unlock()

	summaries, err := o.kb.List(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.Loading = false
	if err != nil {
		o.view.ListErr = err
		return fmt.Errorf("refresh: %w", err)
	}
	o.view.ListErr = nil
	o.view.Summaries = summaries
	return nil
}

// Select opens the detail pane for the given email. The response is applied
// only while that id is still the selected one; a user who moved on never
// sees a stale detail flash in.
func (o *Orchestrator) Select(ctx context.Context, id string) error {
	o.mu.Lock()
	o.view.SelectedID = id
	o.view.Detail = nil
	o.view.DetailErr = nil
	o.view.DetailLoading = true
	o.mu.Unlock()

	detail, err := o.kb.Get(ctx, id)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.view.SelectedID != id {
		return nil
	}
	o.view.DetailLoading = false
	if err != nil {
		o.view.DetailErr = err
		return fmt.Errorf("select %s: %w", id, err)
	}
	o.view.Detail = detail
	return nil
}

// CloseDetail dismisses the detail pane. The list and the exchange stay.
func (o *Orchestrator) CloseDetail() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.SelectedID = ""
	o.view.Detail = nil
	o.view.DetailErr = nil
	o.view.DetailLoading = false
}

// Ask routes a question through the QA service and reflects its current
// exchange into the view. Validation errors pass through untouched so the
// caller can prompt again.
func (o *Orchestrator) Ask(ctx context.Context, question string) (*models.QAExchange, error) {
	o.mu.Lock()
	o.view.Answering = true
	o.mu.Unlock()

	exchange, err := o.qa.Ask(ctx, question)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.Answering = false
	o.view.Exchange = o.qa.Current()
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) {
			return nil, err
		}
		return nil, fmt.Errorf("ask: %w", err)
	}
	return exchange, nil
}

// ClearExchange dismisses the current answer.
func (o *Orchestrator) ClearExchange() {
	o.qa.Clear()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.Exchange = nil
}

// Logout tears the dashboard down and ends the session. The view is reset
// even if clearing the stored session fails, so no signed-in data survives
// on screen.
func (o *Orchestrator) Logout(ctx context.Context) error {
	o.Reset()
	if err := o.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Reset drops all view state. Used on logout and when the transport reports
// the session invalid.
func (o *Orchestrator) Reset() {
	o.qa.Clear()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view = View{}
}

// View returns a snapshot of the dashboard state.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}
