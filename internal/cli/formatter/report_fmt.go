package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/studylog/internal/report"
)

// FormatReport renders a report for the terminal: summary with study share,
// then session and break tables.
func FormatReport(r *report.Report) string {
	var b strings.Builder

	total := r.TotalStudySeconds + r.TotalBreakSeconds
	share := 0.0
	if total > 0 {
		share = r.TotalStudySeconds / total
	}

	fmt.Fprintf(&b, "%s %s\n\n", Dim("Period:"), r.Period)
	fmt.Fprintf(&b, "%s %s\n", Bold("Total Study Time:"), StyleGreen.Render(Duration(r.TotalStudySeconds)))
	fmt.Fprintf(&b, "%s %s\n", Bold("Total Break Time:"), StyleYellow.Render(Duration(r.TotalBreakSeconds)))
	fmt.Fprintf(&b, "%s %s\n\n", Bold("Focus:"), RenderProgress(share, 20))

	b.WriteString(Header("Session Details") + "\n")
	rows := make([][]string, 0, len(r.SessionRows))
	for _, row := range r.SessionRows {
		rows = append(rows, []string{row.Start, row.End, row.StudyTime, row.BreakTime, strconv.Itoa(row.BreakCount)})
	}
	b.WriteString(RenderTableAligned(
		[]string{"START", "END", "STUDY TIME", "BREAK TIME", "BREAKS"},
		rows, map[int]bool{2: true, 3: true, 4: true}))

	if len(r.BreakRows) > 0 {
		b.WriteString("\n" + Header("Break Details") + "\n")
		brows := make([][]string, 0, len(r.BreakRows))
		for _, row := range r.BreakRows {
			brows = append(brows, []string{row.SessionDate, row.Start, row.End, row.Duration, row.Reason})
		}
		b.WriteString(RenderTableAligned(
			[]string{"SESSION DATE", "START", "END", "DURATION", "REASON"},
			brows, map[int]bool{3: true}))
	}

	return RenderBox(r.Title, b.String())
}

// FormatNoData is the notice shown instead of a report for an empty window.
func FormatNoData(label string) string {
	return fmt.Sprintf("No data available for %s.", label)
}

// TextRenderer writes FormatReport without colors, for --format text.
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, r *report.Report) error {
	if r == nil || len(r.Sessions) == 0 {
		return report.ErrNoData
	}
	_, err := io.WriteString(w, stripANSI(FormatReport(r))+"\n")
	return err
}

func (TextRenderer) Extension() string { return ".txt" }
