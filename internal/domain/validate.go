package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SessionInput is a session as typed by the user, before any parsing.
type SessionInput struct {
	Start  string
	End    string
	Breaks []BreakInput
}

// BreakInput is one break entry of a SessionInput. Proof is whatever the
// caller uses to reference the image at validation time.
type BreakInput struct {
	Start  string
	End    string
	Reason string
	Proof  string
}

// Verdict is the tagged outcome of validation: exactly one of Session and
// Rejection is set.
type Verdict struct {
	Session   *Session
	Rejection *ValidationError
}

// OK reports whether the session was accepted.
func (v Verdict) OK() bool {
	return v.Rejection == nil
}

// Err returns the rejection as an error, or nil when accepted.
func (v Verdict) Err() error {
	if v.Rejection == nil {
		return nil
	}
	return v.Rejection
}

func accepted(s *Session) Verdict { return Verdict{Session: s} }

func rejected(check CheckName, format string, args ...any) Verdict {
	return Verdict{Rejection: &ValidationError{Check: check, Message: fmt.Sprintf(format, args...)}}
}

var instantLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseInstant parses a datetime-local style value in loc, falling back to
// RFC3339 when the value carries its own offset.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return t.In(loc), nil
}

// Validator accepts or rejects a proposed session. It is stateless apart from
// its configuration and safe for concurrent use.
type Validator struct {
	loc    *time.Location
	policy OverlapPolicy
	now    func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// WithOverlapPolicy sets how overlapping breaks are treated.
func WithOverlapPolicy(p OverlapPolicy) ValidatorOption {
	return func(v *Validator) { v.policy = p }
}

// NewValidator returns a Validator that parses instants in loc.
func NewValidator(loc *time.Location, opts ...ValidatorOption) *Validator {
	if loc == nil {
		loc = time.Local
	}
	v := &Validator{loc: loc, policy: OverlapReject, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// candidate carries the parsed form of a SessionInput through the checks.
type candidate struct {
	start, end time.Time
	breaks     []Break
	session    *Session
}

type check struct {
	name CheckName
	run  func(v *Validator, in SessionInput, c *candidate) *Verdict
}

// checks run in order; the first rejection wins.
var checks = []check{
	{CheckSessionTimes, checkSessionTimes},
	{CheckBreakTimes, checkBreakTimes},
	{CheckBreakWithinSession, checkBreakWithinSession},
	{CheckBreakComplete, checkBreakComplete},
	{CheckBreaksDisjoint, checkBreaksDisjoint},
	{CheckStudyNonNegative, checkStudyNonNegative},
}

// Validate runs every check in order and returns the first rejection, or the
// fully derived session when all pass.
func (v *Validator) Validate(in SessionInput) Verdict {
	c := &candidate{}
	for _, ch := range checks {
		if verdict := ch.run(v, in, c); verdict != nil {
			return *verdict
		}
	}
	c.session.CreatedAt = v.now()
	return accepted(c.session)
}

func checkSessionTimes(v *Validator, in SessionInput, c *candidate) *Verdict {
	start, errStart := ParseInstant(in.Start, v.loc)
	end, errEnd := ParseInstant(in.End, v.loc)
	if errStart != nil || errEnd != nil {
		r := rejected(CheckSessionTimes, "session start and end must both be valid times")
		return &r
	}
	if !end.After(start) {
		r := rejected(CheckSessionTimes, "session end time must be after its start time")
		return &r
	}
	c.start, c.end = start, end
	return nil
}

func checkBreakTimes(v *Validator, in SessionInput, c *candidate) *Verdict {
	c.breaks = make([]Break, 0, len(in.Breaks))
	for i, bi := range in.Breaks {
		start, errStart := ParseInstant(bi.Start, v.loc)
		end, errEnd := ParseInstant(bi.End, v.loc)
		if errStart != nil || errEnd != nil {
			r := rejected(CheckBreakTimes, "break %d: start and end must both be valid times", i+1)
			return &r
		}
		if !end.After(start) {
			r := rejected(CheckBreakTimes, "break %d: end time must be after its start time", i+1)
			return &r
		}
		c.breaks = append(c.breaks, Break{
			StartTime:  start,
			EndTime:    end,
			Reason:     strings.TrimSpace(bi.Reason),
			ProofImage: bi.Proof,
		})
	}
	return nil
}

func checkBreakWithinSession(_ *Validator, _ SessionInput, c *candidate) *Verdict {
	for i, b := range c.breaks {
		if b.StartTime.Before(c.start) || b.EndTime.After(c.end) {
			r := rejected(CheckBreakWithinSession, "break %d: break times must be within the session start and end times", i+1)
			return &r
		}
	}
	return nil
}

func checkBreakComplete(_ *Validator, _ SessionInput, c *candidate) *Verdict {
	for i, b := range c.breaks {
		if b.Reason == "" {
			r := rejected(CheckBreakComplete, "break %d: a reason is required", i+1)
			return &r
		}
		if strings.TrimSpace(b.ProofImage) == "" {
			r := rejected(CheckBreakComplete, "break %d: an image proof is required for every break", i+1)
			return &r
		}
	}
	return nil
}

func checkBreaksDisjoint(v *Validator, _ SessionInput, c *candidate) *Verdict {
	if v.policy == OverlapAllow || len(c.breaks) < 2 {
		return nil
	}
	idx := make([]int, len(c.breaks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return c.breaks[idx[a]].StartTime.Before(c.breaks[idx[b]].StartTime)
	})
	for k := 1; k < len(idx); k++ {
		prev, cur := idx[k-1], idx[k]
		if c.breaks[prev].Overlaps(c.breaks[cur]) {
			first, second := prev, cur
			if first > second {
				first, second = second, first
			}
			r := rejected(CheckBreaksDisjoint, "break %d overlaps break %d", second+1, first+1)
			return &r
		}
	}
	return nil
}

func checkStudyNonNegative(_ *Validator, _ SessionInput, c *candidate) *Verdict {
	s := &Session{StartTime: c.start, EndTime: c.end, Breaks: c.breaks}
	s.Derive()
	if s.StudyDurationSeconds < 0 {
		r := rejected(CheckStudyNonNegative, "total break time cannot be longer than the total session time")
		return &r
	}
	c.session = s
	return nil
}
