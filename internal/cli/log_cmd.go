package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/studylog/internal/app"
	"github.com/alexanderramin/studylog/internal/cli/formatter"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// breakList is a repeatable --break flag holding parsed break specs.
type breakList []domain.BreakInput

var _ pflag.Value = (*breakList)(nil)

func (b *breakList) String() string {
	specs := make([]string, 0, len(*b))
	for _, in := range *b {
		specs = append(specs, strings.Join([]string{in.Start, in.End, in.Reason, in.Proof}, "|"))
	}
	return "[" + strings.Join(specs, ", ") + "]"
}

func (b *breakList) Set(spec string) error {
	in, err := app.ParseBreakSpec(spec)
	if err != nil {
		return err
	}
	*b = append(*b, in)
	return nil
}

func (b *breakList) Type() string { return "break" }

func newLogCmd(app *App) *cobra.Command {
	var start, end string
	var breaks breakList

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a study session",
		Long: `Log a study session with optional breaks.

Times are read in the configured timezone as YYYY-MM-DDTHH:MM. Each break is
given as "start|end|reason|proof-path"; the proof image is stored with it.
Run without flags on a terminal to fill in a form instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.requireIdentity(ctx)
			if err != nil {
				return err
			}

			form := domain.SessionInput{Start: start, End: end, Breaks: breaks}
			noFlags := !cmd.Flags().Changed("start") && !cmd.Flags().Changed("end") && len(breaks) == 0
			if noFlags && app.interactive() {
				form, err = runLogForm(app)
				if err != nil {
					return err
				}
			} else if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
				return fmt.Errorf("--start and --end are required")
			}

			submit := app.submitSessionUseCase()
			if submit == nil {
				return fmt.Errorf("submit-session use case is not configured")
			}
			s, err := submit.Submit(ctx, id.ID, form)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Success("Logged session "+formatter.TruncID(s.ID)))
			fmt.Fprint(out, formatter.FormatSessionDetail(s, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Session start (YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "Session end (YYYY-MM-DDTHH:MM)")
	cmd.Flags().Var(&breaks, "break", `Break as "start|end|reason|proof-path" (repeatable)`)

	return cmd
}

// runLogForm walks the user through the session times and any number of
// breaks.
func runLogForm(app *App) (domain.SessionInput, error) {
	loc := app.location()
	var draft sessionDraft
	if err := sessionTimesForm(loc, &draft).Run(); err != nil {
		return domain.SessionInput{}, err
	}
	for {
		more := false
		title := "Add a break?"
		if len(draft.Breaks) > 0 {
			title = "Add another break?"
		}
		if err := wizardConfirm(title, &more).Run(); err != nil {
			return domain.SessionInput{}, err
		}
		if !more {
			break
		}
		var b breakDraft
		if err := breakForm(loc, len(draft.Breaks)+1, &b).Run(); err != nil {
			return domain.SessionInput{}, err
		}
		draft.Breaks = append(draft.Breaks, b)
	}
	return draft.input(), nil
}
