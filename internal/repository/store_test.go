package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/db"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshots collects deliveries from a subscription.
type snapshots struct {
	mu   sync.Mutex
	got  [][]domain.Session
	errs []error
}

func (s *snapshots) onSnapshot(list []domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, list)
}

func (s *snapshots) onError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *snapshots) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func (s *snapshots) last() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.got) == 0 {
		return nil
	}
	return s.got[len(s.got)-1]
}

func newTestStore(t *testing.T) (*Store, *domain.Identity) {
	t.Helper()
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "a@example.com")
	return NewStore(database, testutil.NewTestUoW(database)), user
}

func TestStore_SubscribeDeliversInitialSnapshot(t *testing.T) {
	store, user := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, testutil.NewTestSession(user.ID, day, 60)))

	var rec snapshots
	detach := store.Subscribe(user.ID, rec.onSnapshot, rec.onError)
	defer detach()

	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, rec.last(), 1)
}

func TestStore_AppendPushesSnapshot(t *testing.T) {
	store, user := newTestStore(t)
	ctx := context.Background()

	var rec snapshots
	detach := store.Subscribe(user.ID, rec.onSnapshot, rec.onError)
	defer detach()
	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, rec.last())

	require.NoError(t, store.Append(ctx, testutil.NewTestSession(user.ID, day, 60)))
	require.Eventually(t, func() bool { return len(rec.last()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestStore_OtherUsersAppendIsInvisible(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.CreateUser(t, database, "alice@example.com")
	bob := testutil.CreateUser(t, database, "bob@example.com")
	store := NewStore(database, testutil.NewTestUoW(database))

	var rec snapshots
	detach := store.Subscribe(alice.ID, rec.onSnapshot, rec.onError)
	defer detach()
	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, store.Append(context.Background(), testutil.NewTestSession(bob.ID, day, 60)))
	store.Notify(alice.ID)
	require.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, rec.last())
}

func TestStore_DetachIsIdempotentAndStopsDelivery(t *testing.T) {
	store, user := newTestStore(t)

	var rec snapshots
	detach := store.Subscribe(user.ID, rec.onSnapshot, rec.onError)
	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, store.Subscribers())

	detach()
	detach()
	assert.Equal(t, 0, store.Subscribers())

	before := rec.count()
	require.NoError(t, store.Append(context.Background(), testutil.NewTestSession(user.ID, day, 60)))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, rec.count())
}

func TestStore_AppendFailureWritesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "a@example.com")
	injected := errors.New("disk full")
	// Second exec is the first break insert.
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: injected}
	store := NewStore(database, uow)

	sess := testutil.NewTestSession(user.ID, day, 60, testutil.WithBreak(10, 5, "coffee"))
	err := store.Append(context.Background(), sess)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, injected)
	assert.Equal(t, 2, uow.Execs())
	assert.Empty(t, sess.ID)

	got, err := store.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_SnapshotErrorReachesOnError(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewStore(database, testutil.NewTestUoW(database))
	require.NoError(t, database.Close())

	var rec snapshots
	detach := store.Subscribe("u1", rec.onSnapshot, rec.onError)
	defer detach()

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.errs) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, rec.count())
	assert.ErrorIs(t, rec.errs[0], domain.ErrStore)
}

func TestStore_WatchFileRefreshesOnForeignWrite(t *testing.T) {
	writer, path := testutil.NewFileTestDB(t)
	reader := testutil.OpenTestDB(t, path)

	user := testutil.CreateUser(t, writer, "a@example.com")
	foreign := NewStore(writer, db.NewSQLiteUnitOfWork(writer))
	local := NewStore(reader, db.NewSQLiteUnitOfWork(reader))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchErr := make(chan error, 1)
	go func() { watchErr <- local.WatchFile(ctx, path, 20*time.Millisecond) }()

	var rec snapshots
	detach := local.Subscribe(user.ID, rec.onSnapshot, rec.onError)
	defer detach()
	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, 5*time.Millisecond)
	// Let the watcher register the directory before the foreign write.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, foreign.Append(ctx, testutil.NewTestSession(user.ID, day, 60)))
	require.Eventually(t, func() bool { return len(rec.last()) == 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-watchErr)
}
