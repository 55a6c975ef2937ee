// Package period resolves report windows (day, week, month) and formats
// durations for display.
package period

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrBadDesignator is returned when a day, week or month designator cannot be parsed.
var ErrBadDesignator = errors.New("invalid period designator")

// Range is an inclusive window of time.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func midnight(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// lastInstant is the final millisecond of the given calendar day. It is
// computed from the next midnight so DST days keep their real length.
func lastInstant(year int, month time.Month, day int, loc *time.Location) time.Time {
	return midnight(year, month, day+1, loc).Add(-time.Millisecond)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// DayRange resolves a YYYY-MM-DD designator to that day, 00:00:00.000 through
// 23:59:59.999.
func DayRange(designator string, loc *time.Location) (Range, error) {
	loc = orLocal(loc)
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(designator), loc)
	if err != nil {
		return Range{}, fmt.Errorf("%w: day %q, want YYYY-MM-DD", ErrBadDesignator, designator)
	}
	return Range{
		Start: midnight(d.Year(), d.Month(), d.Day(), loc),
		End:   lastInstant(d.Year(), d.Month(), d.Day(), loc),
	}, nil
}

// WeekRange resolves a YYYY-Www designator (for example 2025-W07) to Monday
// 00:00:00.000 through the following Sunday 23:59:59.999.
//
// Week 1 is anchored on January 1st and rolled back to the Monday on or
// before it. This approximates ISO-8601 week numbering and differs from it
// around year boundaries.
func WeekRange(designator string, loc *time.Location) (Range, error) {
	loc = orLocal(loc)
	year, week, err := parseWeek(designator)
	if err != nil {
		return Range{}, err
	}
	d := midnight(year, time.January, 1+(week-1)*7, loc)
	back := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	start := midnight(d.Year(), d.Month(), d.Day()-back, loc)
	end := lastInstant(start.Year(), start.Month(), start.Day()+6, loc)
	return Range{Start: start, End: end}, nil
}

// MonthRange resolves a YYYY-MM designator to the first day 00:00:00.000
// through the last day 23:59:59.999 of that calendar month.
func MonthRange(designator string, loc *time.Location) (Range, error) {
	loc = orLocal(loc)
	m, err := time.ParseInLocation("2006-01", strings.TrimSpace(designator), loc)
	if err != nil {
		return Range{}, fmt.Errorf("%w: month %q, want YYYY-MM", ErrBadDesignator, designator)
	}
	start := midnight(m.Year(), m.Month(), 1, loc)
	// Day 0 of the next month is the last day of this one.
	return Range{Start: start, End: lastInstant(m.Year(), m.Month()+1, 0, loc)}, nil
}

// WeekDesignator returns the designator WeekRange maps back to the week
// containing t.
func WeekDesignator(t time.Time) string {
	year := t.Year()
	for _, y := range []int{year + 1, year, year - 1} {
		jan1 := midnight(y, time.January, 1, t.Location())
		back := (int(jan1.Weekday()) - int(time.Monday) + 7) % 7
		firstMonday := jan1.AddDate(0, 0, -back)
		day := midnight(t.Year(), t.Month(), t.Day(), t.Location())
		if day.Before(firstMonday) {
			continue
		}
		days := int(math.Round(day.Sub(firstMonday).Hours() / 24))
		week := days/7 + 1
		return fmt.Sprintf("%04d-W%02d", y, week)
	}
	return fmt.Sprintf("%04d-W01", year)
}

// NormalizeWeek returns designator in canonical YYYY-Www form, so 2025-w7
// becomes 2025-W07.
func NormalizeWeek(designator string) (string, error) {
	year, week, err := parseWeek(designator)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-W%02d", year, week), nil
}

func parseWeek(designator string) (int, int, error) {
	s := strings.ToUpper(strings.TrimSpace(designator))
	yearStr, weekStr, ok := strings.Cut(s, "-W")
	if !ok {
		return 0, 0, fmt.Errorf("%w: week %q, want YYYY-Www", ErrBadDesignator, designator)
	}
	year, errY := strconv.Atoi(yearStr)
	week, errW := strconv.Atoi(weekStr)
	if errY != nil || errW != nil || len(yearStr) != 4 || week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("%w: week %q, want YYYY-Www", ErrBadDesignator, designator)
	}
	return year, week, nil
}
