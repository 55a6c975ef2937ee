package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/db"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/identity"
	"github.com/alexanderramin/studylog/internal/proof"
	"github.com/alexanderramin/studylog/internal/repository"
	"github.com/alexanderramin/studylog/internal/testutil"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 2, 12, 18, 0, 0, 0, time.UTC)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type harness struct {
	db       *sql.DB
	store    *repository.Store
	auth     AuthService
	sessions SessionService
	reports  ReportService
	obs      *recordingObserver
	proofDir string
	provider *identity.Provider
	stateDir string
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	uow    db.UnitOfWork
	policy domain.OverlapPolicy
}

func withUoW(uow db.UnitOfWork) harnessOption {
	return func(c *harnessConfig) { c.uow = uow }
}

func withPolicy(p domain.OverlapPolicy) harnessOption {
	return func(c *harnessConfig) { c.policy = p }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	cfg := harnessConfig{uow: testutil.NewTestUoW(database), policy: domain.OverlapReject}
	for _, opt := range opts {
		opt(&cfg)
	}
	if f, ok := cfg.uow.(*testutil.FailOnNthExecUoW); ok && f.DB == nil {
		f.DB = database
	}

	obs := &recordingObserver{}
	store := repository.NewStore(database, cfg.uow)
	validator := domain.NewValidator(time.UTC,
		domain.WithClock(func() time.Time { return fixedNow }),
		domain.WithOverlapPolicy(cfg.policy),
	)
	stateDir := t.TempDir()
	provider := identity.NewProvider(repository.NewSQLiteUserRepo(database), stateDir)

	return &harness{
		db:       database,
		store:    store,
		auth:     NewAuthService(provider, obs),
		sessions: NewSessionService(store, validator, proof.NewEncoder(0), obs),
		reports:  NewReportService(store, time.UTC, obs),
		obs:      obs,
		proofDir: t.TempDir(),
		provider: provider,
		stateDir: stateDir,
	}
}

func (h *harness) signIn(t *testing.T, email string) *domain.Identity {
	t.Helper()
	id, err := h.auth.SignIn(context.Background(), email)
	require.NoError(t, err)
	return id
}

func (h *harness) proof(t *testing.T, name string) string {
	t.Helper()
	return testutil.WriteProof(t, h.proofDir, name)
}

func (h *harness) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, h.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
