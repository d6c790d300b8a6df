package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/greenplate/myfridge/internal/config"
	dbRedis "github.com/greenplate/myfridge/internal/db/redis"
	"github.com/greenplate/myfridge/internal/domain"
	logpkg "github.com/greenplate/myfridge/internal/logger"
	"github.com/greenplate/myfridge/internal/metrics"
	catalogrepo "github.com/greenplate/myfridge/internal/repository/catalog"
	"github.com/greenplate/myfridge/internal/repository/embcache"
	"github.com/greenplate/myfridge/internal/repository/searchindex"
	chiTransport "github.com/greenplate/myfridge/internal/transport/chi"
	openaiEmb "github.com/greenplate/myfridge/internal/transport/openai"
	healthuc "github.com/greenplate/myfridge/internal/usecase/health"
	reindexuc "github.com/greenplate/myfridge/internal/usecase/reindex"
	searchuc "github.com/greenplate/myfridge/internal/usecase/search"
	"github.com/greenplate/myfridge/internal/version"
)

func main() {
	// .env is optional; real deployments set variables in the environment
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting myfridge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	gormDB, err := catalogrepo.Open(catalogrepo.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetimeSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to catalog database", zap.Error(err))
	}

	catalog := catalogrepo.New(gormDB)
	if err := catalog.Migrate(ctx); err != nil {
		logger.Fatal("Catalog migration failed", zap.Error(err))
	}
	logger.Info("Connected to catalog database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain — composition root. An unset provider disables vector
	// search entirely; lexical retrieval keeps working.
	var (
		queryEmbedder searchuc.Embedder
		docEmbedder   reindexuc.BatchEmbedder
		embHealth     healthuc.EmbeddingChecker
	)
	if cfg.Embedding.Enabled() {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})

		cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger).
			WithTTL(time.Duration(cfg.Embedding.CacheTTLSec) * time.Second)

		// Instruction prefix goes outermost so the cache key includes it
		queryEmbedder = domain.NewInstructionEmbedder(cached, cfg.Embedding.QueryInstruction)
		docEmbedder = domain.NewInstructionEmbedder(base, cfg.Embedding.DocumentInstruction)
		embHealth = base

		logger.Info("Embedders created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Warn("No embedding provider configured, running lexical-only")
	}

	indexRepo := searchindex.New(store, cfg.Embedding.Dimensions).
		WithHNSW(searchindex.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create search index", zap.Error(err))
	}

	searchSvc := searchuc.New(indexRepo, queryEmbedder, logger).
		WithWindow(cfg.Search.CandidateWindow).
		WithModeCounter(metrics.SearchModeTotal)

	reindexSvc := reindexuc.New(catalog, indexRepo, store, docEmbedder, logger).
		WithBatchSize(cfg.Reindex.BatchSize).
		WithDelay(time.Duration(cfg.Reindex.BatchDelayMS) * time.Millisecond).
		WithMetrics(reindexuc.Metrics{
			Documents:     metrics.ReindexDocumentsTotal,
			Runs:          metrics.ReindexRunsTotal,
			FailedBatches: metrics.ReindexFailedBatchesTotal,
		})

	healthSvc := healthuc.New(store, catalog, embHealth)

	server := chiTransport.NewServer(searchSvc, reindexSvc, catalog, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
