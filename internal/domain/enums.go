package domain

// OverlapPolicy decides what happens when two breaks of the same session
// overlap each other.
type OverlapPolicy string

const (
	// OverlapReject refuses a session whose breaks overlap.
	OverlapReject OverlapPolicy = "reject"
	// OverlapAllow accepts overlaps; only a negative study time is refused.
	OverlapAllow OverlapPolicy = "allow"
)

// ValidOverlapPolicies is the canonical set of accepted policy strings.
var ValidOverlapPolicies = map[string]bool{
	string(OverlapReject): true,
	string(OverlapAllow):  true,
}

// CheckName identifies one step of session validation.
type CheckName string

const (
	CheckSessionTimes       CheckName = "session_times"
	CheckBreakTimes         CheckName = "break_times"
	CheckBreakWithinSession CheckName = "break_within_session"
	CheckBreakComplete      CheckName = "break_complete"
	CheckBreaksDisjoint     CheckName = "breaks_disjoint"
	CheckStudyNonNegative   CheckName = "study_non_negative"
)
