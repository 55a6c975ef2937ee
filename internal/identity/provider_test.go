package identity

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/repository"
	"github.com/alexanderramin/studylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) (*Provider, string) {
	t.Helper()
	database := testutil.NewTestDB(t)
	dir := t.TempDir()
	return NewProvider(repository.NewSQLiteUserRepo(database), dir), dir
}

type changes struct {
	mu  sync.Mutex
	ids []*domain.Identity
}

func (c *changes) record(id *domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
}

func (c *changes) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// lastID is the ID of the most recent identity received, "" for signed out.
func (c *changes) lastID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.ids) == 0 {
		return "", false
	}
	return idOf(c.ids[len(c.ids)-1]), true
}

func TestSignIn_PersistsAcrossProviders(t *testing.T) {
	database := testutil.NewTestDB(t)
	dir := t.TempDir()
	ctx := context.Background()

	first := NewProvider(repository.NewSQLiteUserRepo(database), dir)
	id, err := first.SignIn(ctx, "student@example.com")
	require.NoError(t, err)

	second := NewProvider(repository.NewSQLiteUserRepo(database), dir)
	cur, err := second.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, id.ID, cur.ID)
	assert.Equal(t, "student@example.com", cur.Email)
}

func TestSignIn_SameEmailSameID(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	a, err := p.SignIn(ctx, "student@example.com")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))
	b, err := p.SignIn(ctx, "STUDENT@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func TestSignIn_RejectsBadEmail(t *testing.T) {
	tests := []string{"", "   ", "not-an-email", "Ann <ann@example.com>", "a@b@c"}
	for _, email := range tests {
		t.Run(email, func(t *testing.T) {
			p, dir := newTestProvider(t)
			_, err := p.SignIn(context.Background(), email)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrAuth)

			_, statErr := os.Stat(filepath.Join(dir, StateFile))
			assert.True(t, os.IsNotExist(statErr), "no state should be written")
		})
	}
}

func TestSignIn_FailureKeepsPreviousIdentity(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	prev, err := p.SignIn(ctx, "first@example.com")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "bogus")
	require.Error(t, err)

	cur, err := p.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, prev.ID, cur.ID)
}

func TestSignOut(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignIn(ctx, "student@example.com")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))

	cur, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	err = p.SignOut(ctx)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestOnIdentityChange(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	var rec changes
	detach, err := p.OnIdentityChange(ctx, rec.record)
	require.NoError(t, err)

	id, err := p.SignIn(ctx, "student@example.com")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))

	detach()
	detach()
	_, err = p.SignIn(ctx, "student@example.com")
	require.NoError(t, err)

	require.Len(t, rec.ids, 3)
	assert.Nil(t, rec.ids[0], "initial call reports signed out")
	assert.Equal(t, id.ID, rec.ids[1].ID)
	assert.Nil(t, rec.ids[2])
}

func TestCurrent_CorruptStateIsAuthError(t *testing.T) {
	p, dir := newTestProvider(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte("{nope"), 0o644))

	_, err := p.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestCurrent_UnknownUserIsSignedOut(t *testing.T) {
	p, dir := newTestProvider(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte(`{"user_id":"gone"}`), 0o644))

	cur, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestWatch_FollowsOtherProcess(t *testing.T) {
	database := testutil.NewTestDB(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local := NewProvider(repository.NewSQLiteUserRepo(database), dir)
	other := NewProvider(repository.NewSQLiteUserRepo(database), dir)

	var rec changes
	detach, err := local.OnIdentityChange(ctx, rec.record)
	require.NoError(t, err)
	defer detach()

	watchErr := make(chan error, 1)
	go func() { watchErr <- local.Watch(ctx, 20*time.Millisecond) }()

	id, err := other.SignIn(ctx, "student@example.com")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, _ := rec.lastID()
		return got == id.ID
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, other.SignOut(ctx))
	require.Eventually(t, func() bool {
		got, _ := rec.lastID()
		return got == ""
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-watchErr)
}

func TestWatch_OwnChangesAreNotRepeated(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec changes
	detach, err := p.OnIdentityChange(ctx, rec.record)
	require.NoError(t, err)
	defer detach()

	watchErr := make(chan error, 1)
	go func() { watchErr <- p.Watch(ctx, 20*time.Millisecond) }()

	_, err = p.SignIn(ctx, "student@example.com")
	require.NoError(t, err)
	// Give the watcher time to see the write and settle.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, rec.count(), "initial call plus one sign-in")

	cancel()
	assert.NoError(t, <-watchErr)
}

func TestRefresh_PicksUpForeignSignIn(t *testing.T) {
	database := testutil.NewTestDB(t)
	dir := t.TempDir()
	ctx := context.Background()
	local := NewProvider(repository.NewSQLiteUserRepo(database), dir)
	other := NewProvider(repository.NewSQLiteUserRepo(database), dir)

	var rec changes
	_, err := local.OnIdentityChange(ctx, rec.record)
	require.NoError(t, err)

	require.NoError(t, local.Refresh(ctx))
	assert.Equal(t, 1, rec.count(), "unchanged state is not delivered again")

	id, err := other.SignIn(ctx, "student@example.com")
	require.NoError(t, err)
	require.NoError(t, local.Refresh(ctx))
	got, _ := rec.lastID()
	assert.Equal(t, id.ID, got)
}

func TestOnIdentityChange_LastDeliveryIsCurrent(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		var rec changes
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := p.SignIn(ctx, "student@example.com")
			assert.NoError(t, err)
		}()
		var detach func()
		go func() {
			defer wg.Done()
			var err error
			detach, err = p.OnIdentityChange(ctx, rec.record)
			assert.NoError(t, err)
		}()
		wg.Wait()

		cur, err := p.Current(ctx)
		require.NoError(t, err)
		got, ok := rec.lastID()
		require.True(t, ok)
		assert.Equal(t, idOf(cur), got, "round %d", round)

		if detach != nil {
			detach()
		}
		require.NoError(t, p.SignOut(ctx))
	}
}
