// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inventory-nlu/internal/common/camunda"
	"inventory-nlu/internal/common/config"
	"inventory-nlu/internal/common/database"
	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/common/observability"
	"inventory-nlu/internal/nlu/classify"
	"inventory-nlu/internal/nlu/conversation"
	"inventory-nlu/internal/nlu/dispatch"
	"inventory-nlu/internal/nlu/extract"
	"inventory-nlu/internal/nlu/inference"
	"inventory-nlu/internal/nlu/processor"
	"inventory-nlu/internal/nlu/store"
	"inventory-nlu/pkg/registry"

	puq "inventory-nlu/internal/workers/query/process-user-query"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Activity Registry ---
	if cfg.NLU.RegistryPath != "" {
		reg, err := registry.LoadRegistry(cfg.NLU.RegistryPath)
		if err != nil {
			zapLog.Warn("activity registry not loaded", zap.Error(err))
		} else if err := reg.Validate(); err != nil {
			zapLog.Warn("activity registry invalid", zap.Error(err))
		} else if activity, ok := reg.FindByTaskType(puq.TaskType); ok {
			zapLog.Info("activity registered",
				zap.String("taskType", activity.TaskType),
				zap.String("status", activity.ImplementationStatus),
				zap.String("version", activity.Version),
			)
		}
	}

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Inference Client ---
	inferenceClient, err := inference.NewClient(&inference.Config{
		BaseURL:    cfg.APIs.Inference.BaseURL,
		APIKey:     cfg.APIs.Inference.APIKey,
		Timeout:    time.Duration(cfg.APIs.Inference.Timeout) * time.Millisecond,
		MaxRetries: 2,
	}, log)
	if err != nil {
		zapLog.Fatal("inference client init failed", zap.Error(err))
	}
	zapLog.Info("Inference client initialized", zap.String("baseURL", cfg.APIs.Inference.BaseURL))

	// --- Assemble Query Pipeline ---
	classifier := classify.New(inferenceClient, log)
	extractor := extract.NewDefault(log)
	contextStore := conversation.NewRedisStore(
		redisClient.GetClient(),
		cfg.NLU.ContextKeyPrefix,
		time.Duration(cfg.NLU.ContextTTL)*time.Second,
	)
	contextManager := conversation.NewManager(contextStore, log)
	itemStore := store.New(pg.GetDB(), log)
	dispatcher := dispatch.New(itemStore, log)
	pipeline := processor.New(classifier, extractor, contextManager, dispatcher, obs, log)

	zapLog.Info("Query pipeline assembled")

	// --- Register Query Worker ---
	queryHandler, err := puq.NewHandler(puq.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Pipeline:  pipeline,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create process-user-query handler", zap.Error(err))
	}
	if err := queryHandler.Register(); err != nil {
		zapLog.Fatal("failed to register process-user-query worker", zap.Error(err))
	}
	defer queryHandler.Close()

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			w.Header().Set("Content-Type", "application/json")
			if err := queryHandler.HealthCheck(checkCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	queryHandler.Close()

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
