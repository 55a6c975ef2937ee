package domain

import (
	"sort"
	"time"
)

// Session is one logged study period. Sessions are append-only: once the
// store assigns an ID nothing about them changes.
type Session struct {
	ID     string
	UserID string

	StartTime time.Time
	EndTime   time.Time
	Breaks    []Break

	StudyDurationSeconds float64
	BreakDurationSeconds float64

	CreatedAt time.Time
}

// Break is an interruption inside a session. It has no identity of its own
// and is persisted together with its parent.
type Break struct {
	StartTime  time.Time
	EndTime    time.Time
	Reason     string
	ProofImage string
}

// DurationSeconds is computed on demand; it is never stored.
func (b Break) DurationSeconds() float64 {
	return b.EndTime.Sub(b.StartTime).Seconds()
}

// Overlaps reports whether two breaks share any instant beyond a touching edge.
func (b Break) Overlaps(other Break) bool {
	return b.StartTime.Before(other.EndTime) && other.StartTime.Before(b.EndTime)
}

// TotalSeconds is the wall-clock length of the session.
func (s *Session) TotalSeconds() float64 {
	return s.EndTime.Sub(s.StartTime).Seconds()
}

// Derive recomputes the study and break totals from the session window and
// its breaks.
func (s *Session) Derive() {
	var breakSec float64
	for _, b := range s.Breaks {
		breakSec += b.DurationSeconds()
	}
	s.BreakDurationSeconds = breakSec
	s.StudyDurationSeconds = s.TotalSeconds() - breakSec
}

// Clone returns a deep copy so readers never share the break slice with the
// owner of the original.
func (s *Session) Clone() *Session {
	c := *s
	if s.Breaks != nil {
		c.Breaks = make([]Break, len(s.Breaks))
		copy(c.Breaks, s.Breaks)
	}
	return &c
}

// SortByCreatedDesc orders sessions for the live feed, newest first.
func SortByCreatedDesc(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}

// SortByStartAsc orders sessions for tabular reports.
func SortByStartAsc(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
}
