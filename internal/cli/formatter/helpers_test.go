package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanDateFrom(t *testing.T) {
	now := time.Date(2025, 2, 12, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now.Add(-2 * time.Hour), "Today"},
		{"yesterday", now.AddDate(0, 0, -1), "Yesterday"},
		{"older", time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), "Mon Feb 3, 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanDateFrom(tt.input, now))
		})
	}
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "Just now", HumanTimestamp(now))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute)))
	assert.Equal(t, "2h ago", HumanTimestamp(now.Add(-2*time.Hour)))
	assert.NotEmpty(t, HumanTimestamp(now.Add(-48*time.Hour)))
}

func TestTruncID(t *testing.T) {
	id := "a1b2c3d4-e5f6-7890-abcd-ef1234567890"
	got := TruncID(id)
	assert.Contains(t, got, "a1b2c3d4")
	assert.NotContains(t, got, "e5f6")

	got = TruncID("short")
	assert.Contains(t, got, "short")
}

func TestTimeSpan(t *testing.T) {
	start := time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "09:00-12:00", TimeSpan(start, start.Add(3*time.Hour)))
	assert.Equal(t, "23:00-Feb 13 01:00", TimeSpan(start.Add(14*time.Hour), start.Add(16*time.Hour)))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "02:45:00", Duration(9900))
	assert.Equal(t, "00:00:00", Duration(-1))
}

func TestRenderBox(t *testing.T) {
	got := stripANSI(RenderBox("Report", "body"))
	assert.Contains(t, got, "REPORT")
	assert.Contains(t, got, "body")
}

func TestRenderBoxWithoutTitle(t *testing.T) {
	got := stripANSI(RenderBox("", "body"))
	assert.Contains(t, got, "body")
	assert.NotContains(t, got, "REPORT")
}

func TestFeedIndicator(t *testing.T) {
	assert.Contains(t, FeedIndicator("ready", nil), "LIVE")
	assert.Contains(t, FeedIndicator("loading", nil), "LOADING")
	assert.Contains(t, FeedIndicator("signed_out", nil), "SIGNED OUT")
	assert.Contains(t, FeedIndicator("error", assert.AnError), assert.AnError.Error())
}
