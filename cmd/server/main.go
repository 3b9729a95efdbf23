package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	httpadapter "venturelens/internal/adapters/http"
	pg "venturelens/internal/adapters/postgres"
	"venturelens/internal/analysis"
	"venturelens/internal/config"
	"venturelens/internal/logger"
	"venturelens/internal/ports"
	"venturelens/internal/registry"
	"venturelens/internal/report"
	"venturelens/internal/risk"
	reportsvc "venturelens/internal/services/reports"
	validationsvc "venturelens/internal/services/validation"
	runworker "venturelens/internal/workers/runworker"
)

func main() {
	_ = godotenv.Load()

	cfg, cfgErr := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfgErr != nil {
		log.Warn("config incomplete", "err", cfgErr)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	// The dimension table is validated up front; a bad table is a deploy
	// mistake and the server must not come up on it.
	reg, err := registry.Load()
	if err != nil {
		log.Fatal("dimension registry rejected", "err", err)
	}

	policy := risk.DefaultPolicy()
	if cfg.RiskPolicyFile != "" {
		policy, err = risk.LoadPolicy(cfg.RiskPolicyFile)
		if err != nil {
			log.Fatal("risk policy load failed", "path", cfg.RiskPolicyFile, "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatal("migrations failed", "err", err)
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect error", "err", err)
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.StartupRepository = db
	var _ ports.RunRepository = db
	var _ ports.ReportRepository = db
	var _ ports.JobRepository = db

	var provider ports.AnalysisProvider
	if cfg.AnalysisURL != "" {
		provider = analysis.NewHTTPProvider(cfg.AnalysisURL, cfg.AnalysisTimeout)
		log.Info("using remote analysis provider", "url", cfg.AnalysisURL)
	} else {
		provider = analysis.StubProvider{}
		log.Warn("ANALYSIS_URL not set, using stub analysis provider")
	}

	validator := validationsvc.New(db, db)
	reports := reportsvc.New(reg, db)
	processor := &runworker.Processor{
		Reg:             reg,
		Runs:            db,
		Jobs:            db,
		Reports:         db,
		Provider:        provider,
		Assembler:       report.NewAssembler(reg, policy),
		AssemblyTimeout: cfg.AssemblyTimeout,
		Log:             log,
	}

	srv := httpadapter.New(validator, reports, db, processor, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background job workers
	if cfg.RunWorkers > 0 {
		runworker.Run(ctx, db, processor, cfg.RunWorkers, 500*time.Millisecond, log)
		log.Info("run workers started", "count", cfg.RunWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", "addr", cfg.ListenAddr)

	// graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal("server error", "err", err)
	}
}
