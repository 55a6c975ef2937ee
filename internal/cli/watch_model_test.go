package cli

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/app"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/report"
	"github.com/alexanderramin/studylog/internal/service"
	"github.com/alexanderramin/studylog/internal/teatest"
	"github.com/alexanderramin/studylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportCall struct {
	req    report.Request
	outDir string
}

type fakeTracker struct {
	mu      sync.Mutex
	updates chan service.State
	state   service.State
	calls   []exportCall
	path    string
	err     error
}

func newFakeTracker(st service.State) *fakeTracker {
	return &fakeTracker{updates: make(chan service.State), state: st}
}

func (f *fakeTracker) Updates() <-chan service.State { return f.updates }

func (f *fakeTracker) State() service.State { return f.state }

func (f *fakeTracker) Export(req report.Request, _ report.Renderer, outDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, exportCall{req: req, outDir: outDir})
	return f.path, f.err
}

func (f *fakeTracker) exports() []exportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]exportCall(nil), f.calls...)
}

var watchNow = time.Date(2025, 2, 12, 18, 0, 0, 0, time.UTC)

func readyState(sessions ...domain.Session) service.State {
	return service.State{
		Identity: &domain.Identity{ID: "u-1", Email: "student@example.com"},
		Status:   service.FeedReady,
		Sessions: sessions,
	}
}

func newWatchDriver(t *testing.T, tr *fakeTracker) *teatest.Driver {
	t.Helper()
	m := newWatchModel(tr, time.UTC, func() time.Time { return watchNow }, rendererFor(app.FormatText), "/tmp/reports")
	return teatest.New(t, m, teatest.WithSize(120, 30))
}

func TestWatch_SignedOut(t *testing.T) {
	d := newWatchDriver(t, newFakeTracker(service.State{Status: service.FeedSignedOut}))
	d.DrainInit()

	d.AssertViewContains("SIGNED OUT", "studylog signin")

	d.PressKey('d')
	d.AssertViewContains("Sign in to export reports.")
}

func TestWatch_ShowsLiveList(t *testing.T) {
	tr := newFakeTracker(service.State{
		Identity: &domain.Identity{ID: "u-1", Email: "student@example.com"},
		Status:   service.FeedLoading,
	})
	d := newWatchDriver(t, tr)
	d.DrainInit()
	d.AssertViewContains("LOADING", "student@example.com")

	s1 := *testutil.NewTestSession("u-1", time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC), 180,
		testutil.WithBreak(60, 15, "coffee"), testutil.WithSessionID("aaaaaaaa-1"))
	s2 := *testutil.NewTestSession("u-1", time.Date(2025, 2, 11, 14, 0, 0, 0, time.UTC), 60,
		testutil.WithSessionID("bbbbbbbb-2"))
	d.Send(stateMsg(readyState(s1, s2)))

	d.AssertViewContains("LIVE", "02:45:00", "01:00:00", "2 sessions", "study 03:45:00", "breaks 00:15:00")
}

func TestWatch_EmptyReadyList(t *testing.T) {
	d := newWatchDriver(t, newFakeTracker(readyState()))
	d.DrainInit()
	d.AssertViewContains("No sessions logged yet.")
}

func TestWatch_FeedErrorIsVisible(t *testing.T) {
	d := newWatchDriver(t, newFakeTracker(readyState()))
	d.DrainInit()

	st := readyState()
	st.Status = service.FeedError
	st.Err = errors.New("database is locked")
	d.Send(stateMsg(st))

	d.AssertViewContains("ERROR", "database is locked")
}

func TestWatch_ShortcutsExportCurrentPeriod(t *testing.T) {
	tr := newFakeTracker(readyState())
	tr.path = "/tmp/reports/study_report_weekly_2025-W07.txt"
	d := newWatchDriver(t, tr)
	d.DrainInit()

	d.PressKey('d')
	d.PressKey('w')
	d.PressKey('m')

	calls := tr.exports()
	require.Len(t, calls, 3)
	assert.Equal(t, report.Request{Kind: report.KindDaily, Designator: "2025-02-12"}, calls[0].req)
	assert.Equal(t, report.Request{Kind: report.KindWeekly, Designator: "2025-W07"}, calls[1].req)
	assert.Equal(t, report.Request{Kind: report.KindMonthly, Designator: "2025-02"}, calls[2].req)
	assert.Equal(t, "/tmp/reports", calls[0].outDir)

	d.AssertViewContains("Saved " + tr.path)
}

func TestWatch_ExportNoData(t *testing.T) {
	tr := newFakeTracker(readyState())
	tr.err = report.ErrNoData
	d := newWatchDriver(t, tr)
	d.DrainInit()

	d.PressKey('w')
	d.AssertViewContains("No data available for the week starting 2025-02-10.")
}

func TestWatch_ExportFailure(t *testing.T) {
	tr := newFakeTracker(readyState())
	tr.err = errors.New("disk full")
	d := newWatchDriver(t, tr)
	d.DrainInit()

	d.PressKey('m')
	d.AssertViewContains("Export failed: disk full")
}

func TestWatch_QuitAndFeedClose(t *testing.T) {
	d := newWatchDriver(t, newFakeTracker(readyState()))
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d = newWatchDriver(t, newFakeTracker(readyState()))
	d.Send(feedClosedMsg{})
	assert.True(t, d.Quitting)
}

func TestSessionRows(t *testing.T) {
	s := *testutil.NewTestSession("u-1", time.Date(2025, 2, 12, 23, 0, 0, 0, time.UTC), 120,
		testutil.WithBreak(30, 10, "stretch"), testutil.WithSessionID("12345678-abcd"))

	rows := sessionRows([]domain.Session{s}, time.UTC, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, rows, 1)
	assert.Equal(t, "Wed Feb 12, 2025", rows[0][0])
	assert.Equal(t, "23:00-Feb 13 01:00", rows[0][1])
	assert.Equal(t, "01:50:00", rows[0][2])
	assert.Equal(t, "1", rows[0][3])
	assert.Equal(t, "00:10:00", rows[0][4])
	assert.Equal(t, "12345678", rows[0][5])

	rows = sessionRows([]domain.Session{s}, time.UTC, time.Date(2025, 2, 13, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, "Yesterday", rows[0][0])
}
