package period

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{900, "00:15:00"},
		{9900, "02:45:00"},
		{3599.9, "00:59:59"},
		{86400, "24:00:00"},
		{360000, "100:00:00"},
		{-1, "00:00:00"},
		{math.NaN(), "00:00:00"},
		{math.Inf(1), "00:00:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), "input %v", tc.in)
	}
}

var hhmmss = regexp.MustCompile(`^\d{2,}:[0-5]\d:[0-5]\d$`)

func TestFormatDuration_TotalOverNonNegativeIntegers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sec := rapid.Int64Range(0, 1<<40).Draw(t, "seconds")
		out := FormatDuration(float64(sec))
		if !hhmmss.MatchString(out) {
			t.Fatalf("FormatDuration(%d) = %q", sec, out)
		}
	})
}

func TestFormatDuration_NegativeIsZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sec := rapid.Float64Range(-1e12, -1e-9).Draw(t, "seconds")
		if out := FormatDuration(sec); out != "00:00:00" {
			t.Fatalf("FormatDuration(%v) = %q", sec, out)
		}
	})
}
