package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/alexanderramin/studylog/internal/report"
)

type reportService struct {
	store    SessionStore
	loc      *time.Location
	observer UseCaseObserver
}

func NewReportService(store SessionStore, loc *time.Location, observers ...UseCaseObserver) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{store: store, loc: loc, observer: useCaseObserverOrNoop(observers)}
}

func (s *reportService) Build(ctx context.Context, userID string, req report.Request) (*report.Report, report.Plan, error) {
	plan, err := req.Resolve(s.loc)
	if err != nil {
		return nil, report.Plan{}, err
	}
	sessions, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, plan, err
	}
	r, err := plan.Build(sessions)
	if err != nil {
		return nil, plan, err
	}
	return r, plan, nil
}

func (s *reportService) Generate(ctx context.Context, userID string, req report.Request, renderer report.Renderer, outDir string) (path string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"kind":       string(req.Kind),
		"designator": req.Designator,
	}
	defer func() {
		fields["path"] = path
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "generate_report",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	r, plan, err := s.Build(ctx, userID, req)
	if err != nil {
		return "", err
	}
	fields["sessions"] = len(r.Sessions)

	out := filepath.Join(outDir, plan.FilenameFor(renderer))
	if err = writeReport(out, renderer, r); err != nil {
		return "", err
	}
	return out, nil
}
