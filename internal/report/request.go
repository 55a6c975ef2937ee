package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/period"
)

// Kind selects the report window granularity.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// ParseKind accepts daily/weekly/monthly and the short forms day/week/month.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return KindDaily, nil
	case "weekly", "week":
		return KindWeekly, nil
	case "monthly", "month":
		return KindMonthly, nil
	}
	return "", fmt.Errorf("unknown report kind %q (want daily, weekly or monthly)", s)
}

// Request names a report by kind and designator (2025-03-14, 2025-W07, 2025-03).
type Request struct {
	Kind       Kind
	Designator string
}

// Plan is a resolved Request: the window to filter on, the human period
// label and the conventional output file name.
type Plan struct {
	Request
	Window   period.Range
	Label    string
	Filename string
}

// Resolve computes the window, label and filename for the request in loc.
func (r Request) Resolve(loc *time.Location) (Plan, error) {
	designator := strings.TrimSpace(r.Designator)
	if designator == "" {
		return Plan{}, fmt.Errorf("please select a %s first", r.unit())
	}

	var (
		window period.Range
		label  string
		err    error
	)
	switch r.Kind {
	case KindDaily:
		window, err = period.DayRange(designator, loc)
		label = "the date " + designator
	case KindWeekly:
		if designator, err = period.NormalizeWeek(designator); err != nil {
			return Plan{}, err
		}
		window, err = period.WeekRange(designator, loc)
		label = "the week starting " + window.Start.Format("2006-01-02")
	case KindMonthly:
		window, err = period.MonthRange(designator, loc)
		label = "the month of " + window.Start.Format("January 2006")
	default:
		return Plan{}, fmt.Errorf("unknown report kind %q", r.Kind)
	}
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Request:  Request{Kind: r.Kind, Designator: designator},
		Window:   window,
		Label:    label,
		Filename: fmt.Sprintf("study_report_%s_%s.pdf", r.Kind, designator),
	}, nil
}

func (r Request) unit() string {
	switch r.Kind {
	case KindWeekly:
		return "week"
	case KindMonthly:
		return "month"
	default:
		return "date"
	}
}

// CurrentRequest returns the request covering now for the given kind.
func CurrentRequest(kind Kind, now time.Time) Request {
	switch kind {
	case KindWeekly:
		return Request{Kind: kind, Designator: period.WeekDesignator(now)}
	case KindMonthly:
		return Request{Kind: kind, Designator: now.Format("2006-01")}
	default:
		return Request{Kind: KindDaily, Designator: now.Format("2006-01-02")}
	}
}

// FilenameFor is Filename with the extension the renderer produces.
func (p Plan) FilenameFor(r Renderer) string {
	return strings.TrimSuffix(p.Filename, ".pdf") + extensionOf(r)
}

// Build aggregates sessions over the plan's window and labels the result.
func (p Plan) Build(sessions []domain.Session) (*Report, error) {
	r, err := Aggregate(sessions, p.Window)
	if err != nil {
		return nil, err
	}
	r.Period = p.Label
	return r, nil
}
