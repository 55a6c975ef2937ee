package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/period"
	"github.com/alexanderramin/studylog/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	window, err := period.DayRange("2025-02-12", time.UTC)
	require.NoError(t, err)
	r, err := report.Aggregate([]domain.Session{sampleSession()}, window)
	require.NoError(t, err)
	r.Period = "the date 2025-02-12"
	return r
}

func TestFormatReport(t *testing.T) {
	got := stripANSI(FormatReport(sampleReport(t)))

	assert.Contains(t, got, "STUDY SESSION REPORT")
	assert.Contains(t, got, "Period: the date 2025-02-12")
	assert.Contains(t, got, "Total Study Time: 02:40:00")
	assert.Contains(t, got, "Total Break Time: 00:20:00")
	assert.Contains(t, got, "SESSION DETAILS")
	assert.Contains(t, got, "BREAK DETAILS")
	assert.Contains(t, got, "coffee")
}

func TestFormatReport_OmitsBreakTableWithoutBreaks(t *testing.T) {
	s := sampleSession()
	s.Breaks = nil
	s.Derive()
	window, err := period.DayRange("2025-02-12", time.UTC)
	require.NoError(t, err)
	r, err := report.Aggregate([]domain.Session{s}, window)
	require.NoError(t, err)

	got := stripANSI(FormatReport(r))
	assert.NotContains(t, got, "BREAK DETAILS")
}

func TestFormatNoData(t *testing.T) {
	assert.Equal(t, "No data available for the week starting 2025-02-10.",
		FormatNoData("the week starting 2025-02-10"))
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextRenderer{}.Render(&buf, sampleReport(t)))
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Total Study Time")

	assert.ErrorIs(t, TextRenderer{}.Render(&buf, nil), report.ErrNoData)
	assert.Equal(t, ".txt", TextRenderer{}.Extension())
}
