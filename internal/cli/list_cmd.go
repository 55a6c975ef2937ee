package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studylog/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.requireIdentity(ctx)
			if err != nil {
				return err
			}

			sessions, err := app.listSessionsUseCase().List(ctx, id.ID)
			if err != nil {
				return err
			}
			total := len(sessions)
			if limit > 0 && total > limit {
				sessions = sessions[:limit]
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatSessionList(sessions, app.location()))
			if len(sessions) < total {
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("%d of %d sessions shown", len(sessions), total)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many sessions (0 for all)")

	return cmd
}
