package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/config"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/dashboard"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/repositories/session"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/services"
	"github.com/ashiqsultan/inbox-memory-ai/internal/logging"
)

// App bundles the services behind the REPL commands. One App corresponds to
// one interactive session against one backend.
type App struct {
	config      *config.Config
	db          *sql.DB
	api         client.Client
	authService services.AuthService
	dash        *dashboard.Orchestrator
	log         logging.Logger
	reader      *bufio.Reader
}

// NewApp opens the local database, builds the API client and the service
// stack, and wires the transport's session-invalidation hook back into the
// auth flow and the dashboard.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := client.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sessions := session.NewSQLiteRepository(db)
	apiClient := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, sessions, log)

	as := services.NewAuthService(apiClient, sessions, log)
	qa := services.NewQAService(apiClient, log)
	kb := services.NewKnowledgeService(apiClient)
	dash := dashboard.NewOrchestrator(as, kb, qa, log)

	app := &App{
		config:      c,
		db:          db,
		api:         apiClient,
		authService: as,
		dash:        dash,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
	}

	// A 401 clears the stored session before this fires; here we only drop
	// the in-memory state and tell the user why the prompt changed.
	apiClient.OnSessionInvalid(func() {
		as.Invalidated()
		dash.Reset()
		printlnFn("Session expired, please log in again.")
	})

	return app, nil
}

// Run restores a persisted session if one exists and then blocks in the REPL
// until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.api.Ping(pingCtx); err != nil {
		printlnFn("Backend unreachable at " + a.config.ServerBaseURL + ", commands may fail.")
	}
	cancel()

	restored, err := a.authService.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	if restored {
		printlnFn("Signed in as " + a.signedInLabel())
		if err := a.dash.Activate(ctx); err != nil {
			a.log.Warn(ctx, "initial list load failed", "error", err)
		}
	}

	printlnFn("InboxMemory AI CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
	return nil
}

// Close releases the API client and the local database.
func (a *App) Close(ctx context.Context) error {
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "closing api client", "error", err)
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.authService.State() == services.StateAuthenticated
}

// signedInLabel is the address shown in the prompt; "you" when the token
// carries no displayable address.
func (a *App) signedInLabel() string {
	if email := a.authService.Email(); email != "" {
		return email
	}
	return "you"
}

func (a *App) status() string {
	switch a.authService.State() {
	case services.StateAuthenticated:
		return a.signedInLabel()
	case services.StateChallengeRequested, services.StateVerifying:
		return a.authService.Identity() + " (awaiting code)"
	default:
		return "not signed in"
	}
}
