package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studylog/internal/cli/formatter"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/report"
	"github.com/alexanderramin/studylog/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// liveTracker is the part of service.Tracker the watch view drives.
type liveTracker interface {
	Updates() <-chan service.State
	State() service.State
	Export(req report.Request, r report.Renderer, outDir string) (string, error)
}

var _ liveTracker = (*service.Tracker)(nil)

// stateMsg carries a Tracker update into the model.
type stateMsg service.State

// feedClosedMsg is sent once the Tracker's update channel closes.
type feedClosedMsg struct{}

// exportDoneMsg reports the outcome of a shortcut export.
type exportDoneMsg struct {
	label string
	path  string
	err   error
}

type watchKeyMap struct {
	Daily   key.Binding
	Weekly  key.Binding
	Monthly key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Daily:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "today's report")),
		Weekly:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "this week")),
		Monthly: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "this month")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Daily, k.Weekly, k.Monthly, k.Up, k.Down, k.Quit}
}

// watchModel shows the live session list and exports reports for the
// current period on a single key press.
type watchModel struct {
	tracker  liveTracker
	loc      *time.Location
	now      func() time.Time
	renderer report.Renderer
	outDir   string

	keys   watchKeyMap
	help   help.Model
	table  table.Model
	state  service.State
	notice string
}

func newWatchModel(tracker liveTracker, loc *time.Location, now func() time.Time, renderer report.Renderer, outDir string) watchModel {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(formatter.ColorHeader).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(formatter.ColorDim).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(formatter.ColorFg).Background(formatter.ColorDim).Bold(false)

	t := table.New(
		table.WithColumns(watchColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithWidth(90),
		table.WithStyles(styles),
	)

	m := watchModel{
		tracker:  tracker,
		loc:      loc,
		now:      now,
		renderer: renderer,
		outDir:   outDir,
		keys:     defaultWatchKeys(),
		help:     help.New(),
		table:    t,
	}
	m.setState(tracker.State())
	return m
}

func watchColumns() []table.Column {
	return []table.Column{
		{Title: "DATE", Width: 16},
		{Title: "TIME", Width: 20},
		{Title: "STUDY", Width: 9},
		{Title: "BREAKS", Width: 6},
		{Title: "BREAK TIME", Width: 10},
		{Title: "ID", Width: 8},
	}
}

// sessionRows renders sessions as unstyled table rows in loc.
func sessionRows(sessions []domain.Session, loc *time.Location, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		start, end := s.StartTime.In(loc), s.EndTime.In(loc)
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, table.Row{
			formatter.HumanDateFrom(start, now.In(loc)),
			formatter.TimeSpan(start, end),
			formatter.Duration(s.StudyDurationSeconds),
			fmt.Sprintf("%d", len(s.Breaks)),
			formatter.Duration(s.BreakDurationSeconds),
			id,
		})
	}
	return rows
}

func (m *watchModel) setState(st service.State) {
	m.state = st
	m.table.SetRows(sessionRows(st.Sessions, m.loc, m.now()))
	if n := len(st.Sessions); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

// waitForUpdate blocks until the Tracker publishes a new State.
func waitForUpdate(ch <-chan service.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return stateMsg(st)
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForUpdate(m.tracker.Updates())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.setState(service.State(msg))
		return m, waitForUpdate(m.tracker.Updates())

	case feedClosedMsg:
		return m, tea.Quit

	case exportDoneMsg:
		switch {
		case errors.Is(msg.err, report.ErrNoData):
			m.notice = formatter.Dim(formatter.FormatNoData(msg.label))
		case msg.err != nil:
			m.notice = formatter.StyleRed.Render("Export failed: " + msg.err.Error())
		default:
			m.notice = formatter.Success("Saved " + msg.path)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if msg.Width > 20 {
			m.table.SetWidth(msg.Width)
		}
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Daily):
			return m.export(report.KindDaily)
		case key.Matches(msg, m.keys.Weekly):
			return m.export(report.KindWeekly)
		case key.Matches(msg, m.keys.Monthly):
			return m.export(report.KindMonthly)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// export starts a report export for the period containing now.
func (m watchModel) export(kind report.Kind) (tea.Model, tea.Cmd) {
	if m.state.Identity == nil {
		m.notice = formatter.StyleRed.Render("Sign in to export reports.")
		return m, nil
	}
	req := report.CurrentRequest(kind, m.now().In(m.loc))
	label := req.Designator
	if plan, err := req.Resolve(m.loc); err == nil {
		label = plan.Label
	}
	m.notice = formatter.Dim("Exporting " + label + "...")

	tracker, renderer, outDir := m.tracker, m.renderer, m.outDir
	return m, func() tea.Msg {
		path, err := tracker.Export(req, renderer, outDir)
		return exportDoneMsg{label: label, path: path, err: err}
	}
}

func (m watchModel) View() string {
	var b strings.Builder

	who := formatter.Dim("signed out")
	if m.state.Identity != nil {
		who = formatter.Bold(m.state.Identity.Email)
	}
	header := formatter.StyleHeader.Render("STUDYLOG") + "  " + who + "  " +
		formatter.FeedIndicator(string(m.state.Status), m.state.Err)
	if m.state.Submitting {
		header += "  " + formatter.StyleYellow.Render("saving...")
	}
	b.WriteString(header + "\n\n")

	switch {
	case m.state.Identity == nil:
		b.WriteString(formatter.Dim("Run 'studylog signin --email <address>' to start.") + "\n")
	case len(m.state.Sessions) == 0 && m.state.Status == service.FeedReady:
		b.WriteString(formatter.Dim("No sessions logged yet.") + "\n")
	default:
		b.WriteString(m.table.View() + "\n")
		b.WriteString(formatter.Dim(m.totals()) + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + m.notice + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m watchModel) totals() string {
	var study, breaks float64
	for _, s := range m.state.Sessions {
		study += s.StudyDurationSeconds
		breaks += s.BreakDurationSeconds
	}
	return fmt.Sprintf("%d sessions · study %s · breaks %s",
		len(m.state.Sessions), formatter.Duration(study), formatter.Duration(breaks))
}
