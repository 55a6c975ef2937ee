package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studylog/internal/app"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Auth     service.AuthService
	Sessions service.SessionService
	Reports  service.ReportService
	Feed     service.SessionFeed

	// Location is the zone used to read typed times and report windows.
	Location *time.Location
	// ReportDir is the default output directory for generated reports.
	ReportDir string

	// Use-case overrides; nil falls back to the services above.
	SubmitSession  app.SubmitSessionUseCase
	ListSessions   app.ListSessionsUseCase
	GenerateReport app.GenerateReportUseCase
	SignIn         app.SignInUseCase

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
	// WatchStore refreshes live subscriptions on writes from other
	// processes until ctx is done. Optional.
	WatchStore func(ctx context.Context) error
	// WatchIdentity follows sign-ins and sign-outs from other processes
	// until ctx is done. Optional.
	WatchIdentity func(ctx context.Context) error
	// Now is the clock for "current period" shortcuts. Nil means time.Now.
	Now func() time.Time
}

// NewRootCmd creates the top-level "studylog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "studylog",
		Short:         "Log study sessions with proof-backed breaks and export reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSignInCmd(app),
		newSignOutCmd(app),
		newWhoAmICmd(app),
		newLogCmd(app),
		newListCmd(app),
		newWatchCmd(app),
		newReportCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// requireIdentity returns the signed-in identity or an error telling the
// user how to sign in.
func (a *App) requireIdentity(ctx context.Context) (*domain.Identity, error) {
	id, err := a.Auth.Current(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("%w (run 'studylog signin --email <address>')", service.ErrSignedOut)
	}
	return id, nil
}
