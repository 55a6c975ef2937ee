package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/report"
	"github.com/alexanderramin/studylog/internal/repository"
)

// ErrSubmitInFlight is returned when Submit is called while another
// submission has not settled yet.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// ErrSignedOut is returned by operations that need an identity.
var ErrSignedOut = fmt.Errorf("%w: not signed in", domain.ErrAuth)

// FeedStatus describes the live session list.
type FeedStatus string

const (
	FeedSignedOut FeedStatus = "signed_out"
	FeedLoading   FeedStatus = "loading"
	FeedReady     FeedStatus = "ready"
	FeedError     FeedStatus = "error"
)

// State is a point-in-time view of the Tracker for UIs.
type State struct {
	Identity   *domain.Identity
	Status     FeedStatus
	Err        error
	Sessions   []domain.Session // newest first
	Submitting bool
}

// Tracker ties the signed-in identity to exactly one live subscription and
// keeps the latest snapshot in memory. It is safe for concurrent use.
type Tracker struct {
	auth     AuthService
	feed     SessionFeed
	sessions SessionService
	loc      *time.Location

	mu             sync.Mutex
	identity       *domain.Identity
	detach         repository.Detach
	gen            uint64
	list           []domain.Session
	status         FeedStatus
	feedErr        error
	failure        error
	submitting     bool
	closed         bool
	detachIdentity func()
	updates        chan State
}

func NewTracker(auth AuthService, feed SessionFeed, sessions SessionService, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{
		auth:     auth,
		feed:     feed,
		sessions: sessions,
		loc:      loc,
		status:   FeedSignedOut,
		updates:  make(chan State, 1),
	}
}

// Start follows identity changes until Close. The current identity, if any,
// is subscribed immediately.
func (t *Tracker) Start(ctx context.Context) error {
	detach, err := t.auth.OnIdentityChange(ctx, t.setIdentity)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.detachIdentity = detach
	t.mu.Unlock()
	return nil
}

// Close detaches the identity listener and the live subscription, then
// closes the Updates channel.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	detachIdentity := t.detachIdentity
	t.detachIdentity = nil
	t.mu.Unlock()

	if detachIdentity != nil {
		detachIdentity()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropSubscriptionLocked()
	t.closed = true
	close(t.updates)
}

// Updates delivers the latest State after every change. Intermediate states
// are dropped when the reader is slow.
func (t *Tracker) Updates() <-chan State {
	return t.updates
}

func (t *Tracker) SignIn(ctx context.Context, email string) (*domain.Identity, error) {
	return t.auth.SignIn(ctx, email)
}

func (t *Tracker) SignOut(ctx context.Context) error {
	return t.auth.SignOut(ctx)
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Sessions returns the live list, newest first. The slice is a copy.
func (t *Tracker) Sessions() []domain.Session {
	return t.State().Sessions
}

// Submit hands form to the SessionService for the signed-in user. Only one
// submission runs at a time; the flag clears whatever the outcome.
func (t *Tracker) Submit(ctx context.Context, form domain.SessionInput) (*domain.Session, error) {
	t.mu.Lock()
	if t.identity == nil {
		t.mu.Unlock()
		return nil, ErrSignedOut
	}
	if t.submitting {
		t.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	t.submitting = true
	userID := t.identity.ID
	t.publishLocked()
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.submitting = false
		t.publishLocked()
		t.mu.Unlock()
	}()

	return t.sessions.Submit(ctx, userID, form)
}

// Report aggregates the current snapshot for req.
func (t *Tracker) Report(req report.Request) (*report.Report, report.Plan, error) {
	plan, err := req.Resolve(t.loc)
	if err != nil {
		return nil, report.Plan{}, err
	}
	r, err := plan.Build(t.Sessions())
	if err != nil {
		return nil, plan, err
	}
	return r, plan, nil
}

// Export renders the report for req from the current snapshot into outDir.
func (t *Tracker) Export(req report.Request, renderer report.Renderer, outDir string) (string, error) {
	r, plan, err := t.Report(req)
	if err != nil {
		return "", err
	}
	out := filepath.Join(outDir, plan.FilenameFor(renderer))
	if err := writeReport(out, renderer, r); err != nil {
		return "", err
	}
	return out, nil
}

// Fail puts the live list in the error state because something it depends
// on, such as a file watcher, has stopped. The list is cleared, the
// subscription detached, and the state stays failed until Close.
func (t *Tracker) Fail(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.failure = err
	t.dropSubscriptionLocked()
	if t.identity != nil {
		t.status = FeedError
		t.feedErr = err
	}
	t.publishLocked()
}

// setIdentity swaps the subscription to follow id. A nil id leaves no
// subscription attached.
func (t *Tracker) setIdentity(id *domain.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.dropSubscriptionLocked()
	t.identity = id
	if id == nil {
		t.status = FeedSignedOut
		t.publishLocked()
		return
	}

	if t.failure != nil {
		t.status = FeedError
		t.feedErr = t.failure
		t.publishLocked()
		return
	}

	t.status = FeedLoading
	gen := t.gen
	t.detach = t.feed.Subscribe(id.ID,
		func(list []domain.Session) { t.onSnapshot(gen, list) },
		func(err error) { t.onFeedError(gen, err) },
	)
	t.publishLocked()
}

// dropSubscriptionLocked detaches the active subscription and invalidates
// callbacks that are still in flight.
func (t *Tracker) dropSubscriptionLocked() {
	if t.detach != nil {
		t.detach()
		t.detach = nil
	}
	t.gen++
	t.list = nil
	t.feedErr = nil
}

func (t *Tracker) onSnapshot(gen uint64, list []domain.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.closed {
		return
	}
	domain.SortByCreatedDesc(list)
	t.list = list
	t.status = FeedReady
	t.feedErr = nil
	t.publishLocked()
}

func (t *Tracker) onFeedError(gen uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.closed {
		return
	}
	t.list = nil
	t.status = FeedError
	t.feedErr = err
	t.publishLocked()
}

func (t *Tracker) stateLocked() State {
	sessions := make([]domain.Session, len(t.list))
	for i := range t.list {
		sessions[i] = *t.list[i].Clone()
	}
	return State{
		Identity:   t.identity,
		Status:     t.status,
		Err:        t.feedErr,
		Sessions:   sessions,
		Submitting: t.submitting,
	}
}

// publishLocked replaces any unread state with the current one. It never
// blocks because only this method sends and it runs under t.mu.
func (t *Tracker) publishLocked() {
	if t.closed {
		return
	}
	select {
	case <-t.updates:
	default:
	}
	t.updates <- t.stateLocked()
}
