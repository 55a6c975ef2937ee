package cli

import (
	"strconv"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/charmbracelet/huh"
)

// sessionDraft holds the raw values bound to the interactive log form.
type sessionDraft struct {
	Start  string
	End    string
	Breaks []breakDraft
}

type breakDraft struct {
	Start  string
	End    string
	Reason string
	Proof  string
}

func (d sessionDraft) input() domain.SessionInput {
	in := domain.SessionInput{Start: d.Start, End: d.End}
	for _, b := range d.Breaks {
		in.Breaks = append(in.Breaks, domain.BreakInput{
			Start:  b.Start,
			End:    b.End,
			Reason: b.Reason,
			Proof:  b.Proof,
		})
	}
	return in
}

// instantInput returns a huh.Input for a datetime field read in loc.
func instantInput(title, placeholder string, loc *time.Location, value *string) *huh.Input {
	if placeholder == "" {
		placeholder = "2025-02-12T09:00"
	}
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(value).
		Validate(validateInstant(loc))
}

// sessionTimesForm collects the session start and end.
func sessionTimesForm(loc *time.Location, d *sessionDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			instantInput("Session start", "", loc, &d.Start),
			instantInput("Session end", "", loc, &d.End),
		),
	).WithTheme(studylogHuhTheme()).WithShowHelp(false)
}

// breakForm collects one break, including the path of its proof image.
func breakForm(loc *time.Location, n int, b *breakDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(breakTitle(n)),
			instantInput("Break start", "", loc, &b.Start),
			instantInput("Break end", "", loc, &b.End),
			huh.NewInput().
				Title("Reason").
				Placeholder("coffee").
				Value(&b.Reason).
				Validate(validateRequired("reason")),
			huh.NewInput().
				Title("Proof image").
				Placeholder("./screenshot.png").
				Value(&b.Proof).
				Validate(validateProofPath),
		),
	).WithTheme(studylogHuhTheme()).WithShowHelp(false)
}

func breakTitle(n int) string {
	return "Break #" + strconv.Itoa(n)
}
