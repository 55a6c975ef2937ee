package app

import (
	"context"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/report"
)

type SubmitSessionUseCase interface {
	Submit(ctx context.Context, userID string, form domain.SessionInput) (*domain.Session, error)
}

type ListSessionsUseCase interface {
	List(ctx context.Context, userID string) ([]domain.Session, error)
}

type GenerateReportUseCase interface {
	Generate(ctx context.Context, userID string, req report.Request, r report.Renderer, outDir string) (string, error)
}

type SignInUseCase interface {
	SignIn(ctx context.Context, email string) (*domain.Identity, error)
}
