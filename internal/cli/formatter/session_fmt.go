package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
)

// FormatSessionList renders sessions in the order given, times shown in loc.
func FormatSessionList(sessions []domain.Session, loc *time.Location) string {
	if len(sessions) == 0 {
		return Dim("No sessions logged yet.") + "\n"
	}

	headers := []string{"ID", "DATE", "TIME", "STUDY", "BREAKS", "BREAK TIME", "FOCUS", "LOGGED"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		start, end := s.StartTime.In(loc), s.EndTime.In(loc)
		rows = append(rows, []string{
			TruncID(s.ID),
			HumanDate(start),
			TimeSpan(start, end),
			StyleGreen.Render(Duration(s.StudyDurationSeconds)),
			strconv.Itoa(len(s.Breaks)),
			StyleYellow.Render(Duration(s.BreakDurationSeconds)),
			RenderCompactBar(focusShare(s), 8, false),
			Dim(HumanTimestamp(s.CreatedAt)),
		})
	}
	return RenderTableAligned(headers, rows, map[int]bool{3: true, 4: true, 5: true})
}

// FormatSessionDetail renders one session with its breaks as a tree.
func FormatSessionDetail(s *domain.Session, loc *time.Location) string {
	start, end := s.StartTime.In(loc), s.EndTime.In(loc)
	items := []TreeItem{{
		Title:  Bold(start.Format("Mon Jan 2, 2006")) + " " + TimeSpan(start, end),
		Detail: "study " + Duration(s.StudyDurationSeconds),
	}}
	for i, b := range s.Breaks {
		items = append(items, TreeItem{
			Title:  fmt.Sprintf("%s %s", TimeSpan(b.StartTime.In(loc), b.EndTime.In(loc)), b.Reason),
			Level:  1,
			IsLast: i == len(s.Breaks)-1,
			Detail: Duration(b.DurationSeconds()),
		})
	}
	return RenderTree(items)
}

// focusShare is the study part of a session's wall-clock span, 0 to 1.
func focusShare(s domain.Session) float64 {
	total := s.TotalSeconds()
	if total <= 0 {
		return 0
	}
	return s.StudyDurationSeconds / total
}
