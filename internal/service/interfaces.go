package service

import (
	"context"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/report"
	"github.com/alexanderramin/studylog/internal/repository"
)

type SessionService interface {
	// Submit validates form, encodes every break's proof and appends the
	// session for userID. Nothing is written unless all steps succeed.
	Submit(ctx context.Context, userID string, form domain.SessionInput) (*domain.Session, error)
	List(ctx context.Context, userID string) ([]domain.Session, error)
}

type ReportService interface {
	// Build aggregates the user's sessions for req without rendering.
	Build(ctx context.Context, userID string, req report.Request) (*report.Report, report.Plan, error)
	// Generate renders the report into outDir and returns the written path.
	Generate(ctx context.Context, userID string, req report.Request, r report.Renderer, outDir string) (string, error)
}

type AuthService interface {
	SignIn(ctx context.Context, email string) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	Current(ctx context.Context) (*domain.Identity, error)
	OnIdentityChange(ctx context.Context, fn func(*domain.Identity)) (func(), error)
}

// SessionStore is the persistence side the services need.
type SessionStore interface {
	Append(ctx context.Context, s *domain.Session) error
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
}

// SessionFeed delivers live snapshots of one user's sessions.
type SessionFeed interface {
	Subscribe(userID string, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) repository.Detach
}

// ProofEncoder turns proof references into stored payloads, all or nothing.
type ProofEncoder interface {
	EncodeAll(ctx context.Context, paths []string) ([]string, error)
}

// Compile-time checks that the concrete types satisfy the ports.
var (
	_ SessionStore = (*repository.Store)(nil)
	_ SessionFeed  = (*repository.Store)(nil)
)
