package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/identity"
)

type authService struct {
	provider *identity.Provider
	observer UseCaseObserver
}

func NewAuthService(provider *identity.Provider, observers ...UseCaseObserver) AuthService {
	return &authService{provider: provider, observer: useCaseObserverOrNoop(observers)}
}

func (s *authService) SignIn(ctx context.Context, email string) (id *domain.Identity, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		fields := map[string]any{}
		if id != nil {
			fields["user_id"] = id.ID
		}
		s.observe(ctx, "sign_in", startedAt, err, fields)
	}()
	return s.provider.SignIn(ctx, email)
}

func (s *authService) SignOut(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "sign_out", startedAt, err, nil) }()
	return s.provider.SignOut(ctx)
}

func (s *authService) Current(ctx context.Context) (*domain.Identity, error) {
	return s.provider.Current(ctx)
}

func (s *authService) OnIdentityChange(ctx context.Context, fn func(*domain.Identity)) (func(), error) {
	return s.provider.OnIdentityChange(ctx, fn)
}

func (s *authService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
