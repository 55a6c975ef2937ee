package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/studylog/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var outDir string
	format := formatFlag("pdf")

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the live session list and export reports with d/w/m",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("watch needs an interactive terminal (use 'studylog list' instead)")
			}
			if app.Feed == nil {
				return fmt.Errorf("live feed is not configured")
			}
			if outDir == "" {
				outDir = app.ReportDir
			}
			if outDir == "" {
				outDir = "."
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			tracker := service.NewTracker(app.Auth, app.Feed, app.Sessions, app.location())
			if err := tracker.Start(ctx); err != nil {
				return err
			}
			defer tracker.Close()

			startWatchers(ctx, tracker, app.WatchStore, app.WatchIdentity)

			m := newWatchModel(tracker, app.location(), app.Now, rendererFor(format.value()), outDir)
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Directory for exported reports (default from config)")
	cmd.Flags().Var(&format, "format", "Export format: pdf or text")

	return cmd
}

// feedFailer is the part of the Tracker that watcher errors are reported to.
type feedFailer interface {
	Fail(err error)
}

// startWatchers runs each non-nil watcher in the background. A watcher that
// stops with an error fails the live list so the view stops claiming it is
// current.
func startWatchers(ctx context.Context, f feedFailer, watchers ...func(context.Context) error) {
	for _, watch := range watchers {
		if watch == nil {
			continue
		}
		go func() {
			if err := watch(ctx); err != nil {
				f.Fail(err)
			}
		}()
	}
}
