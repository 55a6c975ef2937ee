package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/studylog/internal/cli"
	"github.com/alexanderramin/studylog/internal/config"
	"github.com/alexanderramin/studylog/internal/db"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/identity"
	"github.com/alexanderramin/studylog/internal/proof"
	"github.com/alexanderramin/studylog/internal/repository"
	"github.com/alexanderramin/studylog/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories and the live store
	uow := db.NewSQLiteUnitOfWork(database)
	store := repository.NewStore(database, uow)
	provider := identity.NewProvider(repository.NewSQLiteUserRepo(database), cfg.StateDir)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr, level)
	}

	// Wire services
	validator := domain.NewValidator(loc, domain.WithOverlapPolicy(cfg.Policy()))
	sessionSvc := service.NewSessionService(store, validator, proof.NewEncoder(cfg.MaxProofBytes), observer)
	reportSvc := service.NewReportService(store, loc, observer)
	authSvc := service.NewAuthService(provider, observer)

	app := &cli.App{
		Auth:      authSvc,
		Sessions:  sessionSvc,
		Reports:   reportSvc,
		Feed:      store,
		Location:  loc,
		ReportDir: cfg.ReportDir,

		SubmitSession:  sessionSvc,
		ListSessions:   sessionSvc,
		GenerateReport: reportSvc,
		SignIn:         authSvc,
	}

	// Detect interactive terminal for forms and the watch view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.WatchStore = func(ctx context.Context) error {
		return store.WatchFile(ctx, cfg.DBPath, repository.DefaultDebounce)
	}
	app.WatchIdentity = func(ctx context.Context) error {
		return provider.Watch(ctx, repository.DefaultDebounce)
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
