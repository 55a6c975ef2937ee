package app

import (
	"testing"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportFormat
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{" PDF ", FormatPDF, false},
		{"text", FormatText, false},
		{"txt", FormatText, false},
		{"html", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReportFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBreakSpec(t *testing.T) {
	got, err := ParseBreakSpec("2025-02-12T10:00 | 2025-02-12T10:15 | coffee | ./proof.png")
	require.NoError(t, err)
	assert.Equal(t, domain.BreakInput{
		Start:  "2025-02-12T10:00",
		End:    "2025-02-12T10:15",
		Reason: "coffee",
		Proof:  "./proof.png",
	}, got)
}

func TestParseBreakSpec_KeepsEmptyFields(t *testing.T) {
	got, err := ParseBreakSpec("2025-02-12T10:00|2025-02-12T10:15||")
	require.NoError(t, err)
	assert.Empty(t, got.Reason)
	assert.Empty(t, got.Proof)
}

func TestParseBreakSpec_ReasonMayContainPipes(t *testing.T) {
	got, err := ParseBreakSpec("2025-02-12T10:00|2025-02-12T10:15| call | mum |./proof.png")
	require.NoError(t, err)
	assert.Equal(t, "call | mum", got.Reason)
	assert.Equal(t, "./proof.png", got.Proof)
}

func TestParseBreakSpec_TooFewFields(t *testing.T) {
	for _, spec := range []string{"", "a", "a|b|c"} {
		_, err := ParseBreakSpec(spec)
		assert.Error(t, err, spec)
	}
}
