package app

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studylog/internal/domain"
)

// ReportFormat selects how a generated report is written to disk.
type ReportFormat string

const (
	FormatPDF  ReportFormat = "pdf"
	FormatText ReportFormat = "text"
)

func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatText, "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q (want pdf or text)", s)
}

// ParseBreakSpec reads a break given as "start|end|reason|proof-path".
// The reason may itself contain "|": everything between the end time and
// the last field is the reason. It may be empty here; the validator decides
// whether that is acceptable.
func ParseBreakSpec(spec string) (domain.BreakInput, error) {
	parts := strings.Split(spec, "|")
	if len(parts) < 4 {
		return domain.BreakInput{}, fmt.Errorf("break %q: want start|end|reason|proof-path", spec)
	}
	last := len(parts) - 1
	return domain.BreakInput{
		Start:  strings.TrimSpace(parts[0]),
		End:    strings.TrimSpace(parts[1]),
		Reason: strings.TrimSpace(strings.Join(parts[2:last], "|")),
		Proof:  strings.TrimSpace(parts[last]),
	}, nil
}
