package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-classroom/internal/activity"
	"github.com/p-n-ai/pai-classroom/internal/ai"
	"github.com/p-n-ai/pai-classroom/internal/api"
	"github.com/p-n-ai/pai-classroom/internal/generation"
	"github.com/p-n-ai/pai-classroom/internal/platform/cache"
	"github.com/p-n-ai/pai-classroom/internal/platform/config"
	"github.com/p-n-ai/pai-classroom/internal/platform/database"
	"github.com/p-n-ai/pai-classroom/internal/seed"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

const (
	budgetKeyPrefix = "pai-classroom:budget:"
	activityPreload = 50
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var (
		db *database.DB
		rc *cache.Cache
	)
	if cfg.Store.Driver == config.StorePostgres {
		var err error
		db, err = database.New(ctx, cfg.Database.URL,
			database.WithMaxConns(cfg.Database.MaxConns),
			database.WithMinConns(cfg.Database.MinConns),
		)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
	}
	if cfg.NeedsCache() {
		var err error
		rc, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		defer rc.Close()
	}

	backend, err := newBackend(ctx, cfg, db, rc)
	if err != nil {
		return err
	}
	st := store.New(backend)

	if cfg.SeedPath != "" {
		f, err := seed.Load(cfg.SeedPath)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, st, f); err != nil {
			return err
		}
	}

	feed, err := newFeed(ctx, db)
	if err != nil {
		return err
	}

	router := newRouter(cfg.AI)
	if !cfg.HasAIProvider() {
		slog.Warn("no AI provider configured, generation will return defaults")
	}

	budget, err := newBudget(cfg, rc)
	if err != nil {
		return err
	}

	gen := generation.New(generation.Config{
		Completer: router,
		Budget:    budget,
		IDs:       st.IDs(),
		Timeout:   cfg.AI.Timeout,
	})

	handler := api.New(api.Config{
		Store:        st,
		Generator:    gen,
		Activity:     feed,
		Budget:       budget,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	mux := newMux(st)
	handler.Register(mux)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Wrap(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"store", cfg.Store.Driver,
			"ai_providers", router.Providers(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newBackend(ctx context.Context, cfg *config.Config, db *database.DB, rc *cache.Cache) (store.Backend, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		return store.NewPostgresBackend(ctx, db.Pool)
	case config.StoreRedis:
		return store.NewRedisBackend(rc.Client, cfg.Cache.Key)
	case config.StoreMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryBackend(), nil
	default:
		return store.NewFileBackend(cfg.Store.Path)
	}
}

// newFeed keeps activity in PostgreSQL when a database is configured.
func newFeed(ctx context.Context, db *database.DB) (*activity.Feed, error) {
	if db == nil {
		return activity.NewFeed(), nil
	}
	sink, err := activity.NewPostgresLogger(ctx, db.Pool)
	if err != nil {
		return nil, err
	}
	feed := activity.NewFeed(activity.WithSink(sink))
	recent, err := sink.Recent(ctx, activityPreload)
	if err != nil {
		slog.Warn("failed to preload activity", "error", err)
		return feed, nil
	}
	feed.Preload(recent)
	return feed, nil
}

// newRouter registers every configured provider, in fallback order.
func newRouter(cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter()
	if cfg.HuggingFace.APIKey != "" {
		router.Register("huggingface", ai.NewHuggingFaceProvider(cfg.HuggingFace.APIKey,
			ai.WithDefaultModel(cfg.HuggingFace.Model)))
	}
	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey,
			ai.WithDefaultModel(cfg.OpenAI.Model)))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey))
	}
	if cfg.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL,
			ai.WithDefaultModel(cfg.Ollama.Model)))
	}
	return router
}

func newBudget(cfg *config.Config, rc *cache.Cache) (ai.BudgetChecker, error) {
	if cfg.AI.TokenBudget <= 0 {
		return nil, nil
	}
	limit := int64(cfg.AI.TokenBudget)
	if cfg.AI.BudgetDriver == config.BudgetRedis {
		return ai.NewRedisBudget(rc.Client, budgetKeyPrefix, limit)
	}
	return ai.NewInMemoryBudget(limit), nil
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// newMux creates the HTTP router with health check endpoints.
func newMux(ready healthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		handleReadyz(w, r, ready)
	})
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(w http.ResponseWriter, r *http.Request, ready healthChecker) {
	w.Header().Set("Content-Type", "application/json")
	if err := ready.HealthCheck(r.Context()); err != nil {
		slog.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
