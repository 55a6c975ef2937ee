package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestSessionRepo_CreateAndGetByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, database, "a@example.com")
	repo := NewSQLiteSessionRepo(database)

	sess := testutil.NewTestSession(user.ID, day, 120,
		testutil.WithBreak(30, 10, "coffee"),
		testutil.WithBreak(60, 5, "phone"),
	)
	require.NoError(t, repo.Create(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.UserID)
	assert.True(t, sess.StartTime.Equal(fetched.StartTime))
	assert.True(t, sess.EndTime.Equal(fetched.EndTime))
	assert.Equal(t, 6300.0, fetched.StudyDurationSeconds)
	assert.Equal(t, 900.0, fetched.BreakDurationSeconds)
	require.Len(t, fetched.Breaks, 2)
	assert.Equal(t, "coffee", fetched.Breaks[0].Reason)
	assert.Equal(t, "phone", fetched.Breaks[1].Reason)
	assert.Equal(t, testutil.ProofPayload, fetched.Breaks[0].ProofImage)
}

func TestSessionRepo_CreateAssignsID(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "a@example.com")

	sess := testutil.NewTestSession(user.ID, day, 60, testutil.WithSessionID(""))
	require.NoError(t, NewSQLiteSessionRepo(database).Create(context.Background(), sess))
	assert.NotEmpty(t, sess.ID)
}

func TestSessionRepo_GetByID_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)

	_, err := NewSQLiteSessionRepo(database).GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_ListByUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, database, "alice@example.com")
	bob := testutil.CreateUser(t, database, "bob@example.com")
	repo := NewSQLiteSessionRepo(database)

	first := testutil.NewTestSession(alice.ID, day, 60, testutil.WithBreak(10, 5, "water"))
	second := testutil.NewTestSession(alice.ID, day.Add(3*time.Hour), 45)
	other := testutil.NewTestSession(bob.ID, day, 30, testutil.WithBreak(5, 5, "door"))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	got, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	require.Len(t, got[0].Breaks, 1)
	assert.Equal(t, "water", got[0].Breaks[0].Reason)
	assert.Empty(t, got[1].Breaks)
}

func TestSessionRepo_ListByUser_OrdersByCreation(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, database, "a@example.com")
	repo := NewSQLiteSessionRepo(database)

	late := testutil.NewTestSession(user.ID, day.Add(5*time.Hour), 30,
		testutil.WithCreatedAt(day.Add(-2*time.Hour)))
	early := testutil.NewTestSession(user.ID, day, 30,
		testutil.WithCreatedAt(day.Add(-time.Hour)))
	require.NoError(t, repo.Create(ctx, early))
	require.NoError(t, repo.Create(ctx, late))

	got, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, late.ID, got[0].ID, "earlier created_at comes first regardless of start")
	assert.Equal(t, early.ID, got[1].ID)
}

func TestSessionRepo_ListByUser_Empty(t *testing.T) {
	database := testutil.NewTestDB(t)

	got, err := NewSQLiteSessionRepo(database).ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSessionRepo_SubSecondPrecisionSurvives(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, database, "a@example.com")
	repo := NewSQLiteSessionRepo(database)

	start := day.Add(250 * time.Millisecond)
	sess := testutil.NewTestSession(user.ID, start, 10)
	require.NoError(t, repo.Create(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, start.Equal(fetched.StartTime))
}
