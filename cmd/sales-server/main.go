package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"autosales-assistant-backend/internal/assistant"
	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/config"
	"autosales-assistant-backend/internal/db"
	"autosales-assistant-backend/internal/llm"
	"autosales-assistant-backend/internal/logger"
	"autosales-assistant-backend/internal/metrics"
	"autosales-assistant-backend/internal/prompt"
	"autosales-assistant-backend/internal/sales"
	"autosales-assistant-backend/internal/server"
	"autosales-assistant-backend/internal/session"
)

func main() {
	cfg, warns := config.Load()
	log := logger.New(cfg.LogFilePath, cfg.IsProduction())
	defer func() { _ = log.Sync() }()
	for _, w := range warns {
		log.Warn(w)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		source   catalog.Source
		database *db.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(cfg.DatabaseURL, log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		if err := database.RunMigrations(os.DirFS(cfg.MigrationsDir)); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database connection established")
		source = catalog.NewPostgresSource(database)
	} else {
		log.Info("DB_URL not provided, reading catalog from files",
			zap.String("clients", cfg.CRMFile), zap.String("products", cfg.KnowledgeFile))
		source = catalog.NewFileSource(cfg.CRMFile, cfg.KnowledgeFile)
	}
	tables, err := catalog.Load(source)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", zap.Int("clients", tables.ClientCount()), zap.Int("products", len(tables.Products())))

	var modes session.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		modes = session.NewRedisStore(client, "")
		log.Info("session modes stored in redis")
	} else {
		modes = session.NewMemoryStore()
	}

	prompts, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	rules := sales.DefaultUpsellRules
	if cfg.UpsellRulesFile != "" {
		if rules, err = sales.LoadUpsellRules(cfg.UpsellRulesFile); err != nil {
			return fmt.Errorf("failed to load upsell rules: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	core := assistant.New(assistant.Deps{
		Catalog: tables,
		Upsell:  sales.NewUpsellEngine(rules),
		Prompts: prompts,
		LLM: llm.NewClient(llm.Options{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			SiteURL: cfg.SiteURL,
			AppName: cfg.AppName,
		}),
		Modes:    modes,
		Examples: assistant.NewExampleCalls(cfg.CallsDir, cfg.ScriptExamples),
		Metrics:  metrics.NewAssistantMetrics(reg),
		Logger:   log,
	}, assistant.Options{
		FreeModel:     cfg.FreeModel,
		AdvancedModel: cfg.AdvancedModel,
		MaxSegmentLen: cfg.MaxSegmentLen,
		DemoMode:      cfg.DemoMode,
	})

	deps := server.Deps{Assistant: core, Gatherer: reg, Logger: log}
	if database != nil {
		deps.Database = database
	}
	s := server.NewServer(cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("sales assistant listening", zap.String("addr", srv.Addr), zap.Bool("demo_mode", cfg.DemoMode))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
