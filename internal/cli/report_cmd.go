package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/studylog/internal/app"
	"github.com/alexanderramin/studylog/internal/cli/formatter"
	"github.com/alexanderramin/studylog/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// formatFlag is the --format value, checked when the flag is parsed.
type formatFlag app.ReportFormat

var _ pflag.Value = (*formatFlag)(nil)

func (f *formatFlag) String() string { return string(*f) }

func (f *formatFlag) Set(s string) error {
	v, err := app.ParseReportFormat(s)
	if err != nil {
		return err
	}
	*f = formatFlag(v)
	return nil
}

func (f *formatFlag) Type() string { return "format" }

func (f formatFlag) value() app.ReportFormat { return app.ReportFormat(f) }

// rendererFor returns the renderer for a report format.
func rendererFor(f app.ReportFormat) report.Renderer {
	if f == app.FormatText {
		return formatter.TextRenderer{}
	}
	return report.NewPDFRenderer()
}

func newReportCmd(app *App) *cobra.Command {
	var outDir string
	var show bool
	format := formatFlag("pdf")

	cmd := &cobra.Command{
		Use:   "report daily|weekly|monthly [DESIGNATOR]",
		Short: "Generate a study report for a day, week or month",
		Long: `Generate a study report.

DESIGNATOR is 2025-02-12 for a day, 2025-W07 for a week or 2025-02 for a
month. It defaults to the current period. Nothing is written when the period
has no sessions.`,
		Example: `  studylog report weekly 2025-W07
  studylog report daily 2025-02-12 --format text --out ./reports`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			req := report.CurrentRequest(kind, app.now().In(app.location()))
			if len(args) == 2 {
				req.Designator = args[1]
			}
			if outDir == "" {
				outDir = app.ReportDir
			}
			if outDir == "" {
				outDir = "."
			}

			id, err := app.requireIdentity(ctx)
			if err != nil {
				return err
			}
			gen := app.generateReportUseCase()
			if gen == nil {
				return fmt.Errorf("generate-report use case is not configured")
			}

			out := cmd.OutOrStdout()
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Generating report...")
			}
			path, err := gen.Generate(ctx, id.ID, req, rendererFor(format.value()), outDir)
			stop()
			if errors.Is(err, report.ErrNoData) {
				plan, perr := req.Resolve(app.location())
				if perr != nil {
					return perr
				}
				fmt.Fprintln(out, formatter.FormatNoData(plan.Label))
				return nil
			}
			if err != nil {
				return err
			}

			if show && app.Reports != nil {
				r, _, err := app.Reports.Build(ctx, id.ID, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatReport(r))
			}
			fmt.Fprintln(out, formatter.Success("Report written to "+path))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from config)")
	cmd.Flags().Var(&format, "format", "Output format: pdf or text")
	cmd.Flags().BoolVar(&show, "show", false, "Also print the report summary")

	return cmd
}
