package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/api"
	"github.com/pharmaguard-server/internal/cache"
	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/config"
	"github.com/pharmaguard-server/internal/database"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/generator"
	"github.com/pharmaguard-server/internal/orchestrator"
	"github.com/pharmaguard-server/internal/report"
	"github.com/pharmaguard-server/internal/ruletable"
	"github.com/pharmaguard-server/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting PharmaGuard server")

	// Reference data. Rule coverage gaps are configuration defects and
	// abort startup before the first request.
	cat := catalog.New()
	rules, err := ruletable.New()
	if err != nil {
		logger.WithError(err).Fatal("Rule table failed validation")
	}
	if err := rules.ValidateCoverage(cat); err != nil {
		logger.WithError(err).Fatal("Rule table does not cover every resolvable phenotype")
	}

	cacheStore, err := newCacheStore(cfg.Cache)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize explanation cache")
	}
	defer cacheStore.Close()

	var gen domain.Generator
	if !cfg.Generator.Disabled {
		client, err := generator.NewChatClient(cfg.Generator, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize explanation generator")
		}
		gen = client
	} else {
		logger.Warn("Explanation generation disabled; verdicts will carry no narrative")
	}

	reports, err := newReportStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize report store")
	}
	if reports != nil {
		defer reports.Close()
	}

	resolver := service.NewDiplotypeResolver(logger, cat)
	classifier := service.NewRiskClassifier(logger, resolver, rules)
	explainer := service.NewExplainer(logger, cacheStore, gen)

	orch := orchestrator.New(logger, classifier, explainer, reports, cfg.Orchestrator)
	orch.Start()

	server := api.NewServer(cfg, logger, orch, gen, cat, cacheStore, reports)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := orch.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Orchestrator shutdown incomplete")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.SetOutput(os.Stdout)
	return logger
}

// newCacheStore builds the configured durable backend and fronts it
// with the in-process LRU tier.
func newCacheStore(cfg domain.CacheConfig) (domain.ExplanationStore, error) {
	var durable domain.ExplanationStore
	var err error

	switch cfg.Backend {
	case "redis":
		durable, err = cache.NewRedisStore(cfg)
	default:
		durable, err = cache.NewSQLiteStore(cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MemorySize > 0 {
		return cache.NewTieredStore(durable, cfg.MemorySize)
	}
	return durable, nil
}

// newReportStore returns nil when persistence is disabled.
func newReportStore(cfg *domain.Config, logger *logrus.Logger) (domain.ReportStore, error) {
	if !cfg.Database.Enabled {
		return nil, nil
	}

	if cfg.Database.Driver == "sqlite" {
		return report.NewSQLiteStore(cfg.Database.SQLitePath)
	}

	url := database.ConnectionURL(cfg.Database)
	if cfg.Database.MigrationsPath != "" {
		runner, err := database.NewMigrationRunner(url, cfg.Database.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		if err := runner.Up(); err != nil {
			runner.Close()
			return nil, err
		}
		runner.Close()
	}

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return report.NewPostgresStore(db)
}
