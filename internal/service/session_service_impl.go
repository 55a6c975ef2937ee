package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
)

type sessionService struct {
	store     SessionStore
	validator *domain.Validator
	encoder   ProofEncoder
	observer  UseCaseObserver
}

func NewSessionService(store SessionStore, validator *domain.Validator, encoder ProofEncoder, observers ...UseCaseObserver) SessionService {
	return &sessionService{
		store:     store,
		validator: validator,
		encoder:   encoder,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *sessionService) Submit(ctx context.Context, userID string, form domain.SessionInput) (session *domain.Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"user_id": userID,
		"breaks":  len(form.Breaks),
	}
	defer func() {
		if session != nil {
			fields["session_id"] = session.ID
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "submit_session",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	verdict := s.validator.Validate(form)
	if !verdict.OK() {
		fields["check"] = string(verdict.Rejection.Check)
		return nil, verdict.Err()
	}
	candidate := verdict.Session

	if len(candidate.Breaks) > 0 {
		paths := make([]string, len(candidate.Breaks))
		for i, b := range candidate.Breaks {
			paths[i] = b.ProofImage
		}
		var payloads []string
		payloads, err = s.encoder.EncodeAll(ctx, paths)
		if err != nil {
			return nil, err
		}
		for i := range candidate.Breaks {
			candidate.Breaks[i].ProofImage = payloads[i]
		}
	}

	candidate.UserID = userID
	if err = s.store.Append(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *sessionService) List(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	domain.SortByCreatedDesc(sessions)
	return sessions, nil
}
