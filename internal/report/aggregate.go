// Package report turns a list of sessions and a report window into the
// tables shown in a study report, and renders them.
package report

import (
	"errors"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/period"
)

// ErrNoData means the window holds no sessions. It is distinct from a report
// whose totals happen to be zero.
var ErrNoData = errors.New("no data for this period")

const (
	rowTimeLayout = "2006-01-02 15:04"
	rowDateLayout = "2006-01-02"
)

// Report is an aggregated, render-ready view of the sessions in one window.
type Report struct {
	Title  string
	Period string
	Window period.Range

	Sessions          []domain.Session
	TotalStudySeconds float64
	TotalBreakSeconds float64

	SessionRows []SessionRow
	// BreakRows is nil when no session in the window has a break.
	BreakRows []BreakRow
}

// SessionRow is one line of the session details table.
type SessionRow struct {
	Start      string
	End        string
	StudyTime  string
	BreakTime  string
	BreakCount int
}

// BreakRow is one line of the break details table.
type BreakRow struct {
	SessionDate string
	Start       string
	End         string
	Duration    string
	Reason      string
}

// Aggregate filters sessions to those starting inside window, sorts them by
// start time and computes totals and table rows. The input slice is never
// modified.
func Aggregate(sessions []domain.Session, window period.Range) (*Report, error) {
	var filtered []domain.Session
	for _, s := range sessions {
		if window.Contains(s.StartTime) {
			filtered = append(filtered, *s.Clone())
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoData
	}

	r := &Report{Title: "Study Session Report", Window: window}
	for _, s := range filtered {
		r.TotalStudySeconds += s.StudyDurationSeconds
		r.TotalBreakSeconds += s.BreakDurationSeconds
	}

	domain.SortByStartAsc(filtered)
	r.Sessions = filtered

	loc := window.Start.Location()
	r.SessionRows = make([]SessionRow, 0, len(filtered))
	for _, s := range filtered {
		r.SessionRows = append(r.SessionRows, SessionRow{
			Start:      s.StartTime.In(loc).Format(rowTimeLayout),
			End:        s.EndTime.In(loc).Format(rowTimeLayout),
			StudyTime:  period.FormatDuration(s.StudyDurationSeconds),
			BreakTime:  period.FormatDuration(s.BreakDurationSeconds),
			BreakCount: len(s.Breaks),
		})
		for _, b := range s.Breaks {
			r.BreakRows = append(r.BreakRows, BreakRow{
				SessionDate: s.StartTime.In(loc).Format(rowDateLayout),
				Start:       b.StartTime.In(loc).Format(rowTimeLayout),
				End:         b.EndTime.In(loc).Format(rowTimeLayout),
				Duration:    period.FormatDuration(b.DurationSeconds()),
				Reason:      b.Reason,
			})
		}
	}
	return r, nil
}
