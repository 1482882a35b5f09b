package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/carenavigator/backend/internal/adapters/cache"
	"github.com/zatekoja/carenavigator/backend/internal/api/handlers"
	"github.com/zatekoja/carenavigator/backend/internal/api/routes"
	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/application/services"
	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carenavigator/backend/pkg/config"
	"github.com/zatekoja/carenavigator/backend/pkg/secrets"
)

const shutdownTimeout = 10 * time.Second

func main() {
	res, err := secrets.Apply(context.Background(), secrets.VaultConfigFromEnv(), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load secrets from vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)
	if len(res.Loaded) > 0 {
		log.Info().Strs("keys", res.Loaded).Msg("loaded secrets from vault")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			log.Logger = log.Logger.Hook(observability.NewOTelHook())
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Model backend; without a key the server still starts and model endpoints answer 503
	var (
		completion    providers.CompletionProvider
		transcription providers.TranscriptionProvider
	)
	if cfg.OpenAI.Configured() {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize OpenAI client")
		}
		completion, transcription = client, client
		log.Info().Str("model", cfg.OpenAI.Model).Msg("OpenAI client initialized")
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set; analysis and transcription are disabled")
	}

	pipeline := services.NewPipelineService(cfg.OpenAI, llm.NewSchemaInvoker(completion), metrics)

	// Rate-limit counters: Redis when enabled and reachable, in-process otherwise
	var counters providers.CounterStore
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis; using in-process rate limiting")
		} else {
			defer redisClient.Close()
			counters = cache.NewRedisAdapter(redisClient, "carenav:")
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis rate limiting enabled")
		}
	}
	if counters == nil {
		local, err := cache.NewRistrettoAdapter(10_000)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize in-process rate limiter")
		}
		defer local.Close()
		counters = local
	}

	router := routes.NewRouter(
		handlers.NewAnalyzeHandler(pipeline, int64(cfg.Server.MaxConcurrentAnalyses), cfg.Server.RequestTimeout),
		handlers.NewTranscribeHandler(transcription),
		handlers.NewSamplesHandler(services.NewSampleCatalog()),
		routes.Options{
			Counters:          counters,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			AllowedOrigins:    cfg.Server.AllowedOrigins,
			Metrics:           metrics,
		},
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
