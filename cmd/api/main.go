package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/civitas-ai/citizen-assist-platform/cmd/mainconfig"
	"github.com/civitas-ai/citizen-assist-platform/internal/api/router"
	"github.com/civitas-ai/citizen-assist-platform/internal/casework"
	"github.com/civitas-ai/citizen-assist-platform/internal/config"
	"github.com/civitas-ai/citizen-assist-platform/internal/conversation"
	"github.com/civitas-ai/citizen-assist-platform/internal/http/handlers"
	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
	"github.com/civitas-ai/citizen-assist-platform/internal/knowledge"
	"github.com/civitas-ai/citizen-assist-platform/internal/notify"
	"github.com/civitas-ai/citizen-assist-platform/internal/observability/metrics"
	"github.com/civitas-ai/citizen-assist-platform/internal/scheduling"
	"github.com/civitas-ai/citizen-assist-platform/internal/webchat"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting citizen assist api", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}
	bedrockClient := bedrockruntime.NewFromConfig(awsCfg)

	// LLM client: Bedrock by default, Gemini as alternative provider or as
	// fallback when both are configured.
	var llmClient intent.LLMClient
	modelID := cfg.BedrockModelID
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := intent.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		llmClient = gemini
		modelID = cfg.GeminiModelID
	default:
		llmClient = intent.NewBedrockLLMClient(bedrockClient)
		if cfg.GeminiAPIKey != "" {
			gemini, err := intent.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
			if err != nil {
				logger.Warn("gemini fallback unavailable", "error", err)
			} else {
				llmClient = intent.NewFallbackLLMClient(llmClient, gemini, logger)
			}
		}
	}

	classifier := intent.NewLLMClassifier(llmClient, modelID, cfg.ClassifierTimeout, logger)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, history and knowledge persistence degraded", "error", err)
	}

	embedder := knowledge.NewBedrockEmbeddingClient(bedrockClient)
	knowledgeStore := knowledge.NewMemoryStore(embedder, cfg.BedrockEmbeddingModelID, logger)
	knowledgeRepo := knowledge.NewRedisRepository(redisClient)
	if err := knowledge.Hydrate(ctx, knowledgeRepo, knowledgeStore); err != nil {
		logger.Warn("knowledge hydration failed, answering without stored documents", "error", err)
	}
	responder := knowledge.NewResponder(llmClient, knowledgeStore, modelID, cfg.RetrievalTopK, cfg.AnswerTimeout, logger)

	availability := scheduling.NewAvailabilityStore(scheduling.AvailabilityConfig{
		WindowDays:   cfg.BookingWindowDays,
		SlotCapacity: cfg.SlotCapacity,
		Hours:        append(append([]string{}, cfg.MorningHours...), cfg.AfternoonHours...),
	})

	var emailSender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		emailSender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "ses":
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
		}, logger)
	default:
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, logger)

	schedulingHooks := []scheduling.Hook{notifier}
	caseworkHooks := []casework.Hook{notifier}
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		schedulingHooks = append(schedulingHooks, scheduling.NewRepository(pool, logger))
		caseworkHooks = append(caseworkHooks, casework.NewRepository(pool, logger))
	} else {
		logger.Warn("DATABASE_URL not set, appointments and cases are not persisted")
	}

	scheduler := scheduling.NewScheduler(availability, logger, schedulingHooks...)
	cases := casework.NewService(logger, caseworkHooks...)

	registry := prometheus.NewRegistry()
	queryMetrics := metrics.NewQueryMetrics(registry)

	processor := conversation.NewQueryProcessor(
		classifier,
		responder,
		availability,
		cases,
		logger,
		conversation.WithHistoryStore(conversation.NewRedisHistoryStore(redisClient)),
		conversation.WithQueryObserver(queryMetrics),
	)

	var queue conversation.Queue
	if cfg.UseMemoryQueue || cfg.QueryQueueURL == "" {
		logger.Info("using in-memory query queue")
		queue = conversation.NewMemoryQueue(0)
	} else {
		logger.Info("using sqs query queue", "queue_url", cfg.QueryQueueURL)
		queue = conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.QueryQueueURL)
	}
	orchestrator := conversation.NewOrchestrator(processor, queue, logger,
		conversation.WithWorkerCount(cfg.WorkerCount),
	)

	routerCfg := &router.Config{
		Logger:             logger,
		Queries:            handlers.NewQueriesHandler(orchestrator, logger),
		Appointments:       handlers.NewAppointmentsHandler(scheduler, availability, queryMetrics, logger),
		Cases:              handlers.NewCasesHandler(cases, queryMetrics, logger),
		Knowledge:          handlers.NewKnowledgeHandler(knowledgeRepo, knowledgeStore, logger),
		Webchat:            webchat.NewHandler(orchestrator, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		logger.Error("orchestrator shutdown failed", "error", err)
	}
	_ = redisClient.Close()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
