package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/awo/internal/application/engine"
	"github.com/aescanero/awo/internal/application/gate"
	"github.com/aescanero/awo/internal/application/orchestrator"
	"github.com/aescanero/awo/internal/application/steps"
	"github.com/aescanero/awo/internal/config"
	"github.com/aescanero/awo/pkg/adapters/clock"
	"github.com/aescanero/awo/pkg/adapters/events/redis"
	"github.com/aescanero/awo/pkg/adapters/llm"
	"github.com/aescanero/awo/pkg/adapters/metrics/prometheus"
	redisstorage "github.com/aescanero/awo/pkg/adapters/storage/redis"
	"github.com/aescanero/awo/pkg/api/grpc"
	"github.com/aescanero/awo/pkg/api/http"
	"github.com/aescanero/awo/pkg/api/websocket"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting AWO",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize adapters
	eventBus, err := redis.NewStreamsEventBus(
		redisClient,
		"awo-workers",
		fmt.Sprintf("awo-%d", os.Getpid()),
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create event bus", zap.Error(err))
	}

	summaryStore := redisstorage.NewSummaryStore(
		redisClient,
		cfg.Timeouts.SummaryTTL,
		logger,
	)

	metricsCollector := prometheus.NewCollector()
	systemClock := clock.NewSystemClock()

	// Load policy rules. No rules means the default posture applies:
	// every request is denied.
	rules, err := config.LoadPolicyRules(cfg.PolicyFile)
	if err != nil {
		logger.Fatal("failed to load policy rules", zap.Error(err))
	}
	if len(rules) == 0 {
		logger.Warn("no policy rules loaded - all requests will be denied")
	} else {
		logger.Info("loaded policy rules", zap.Int("count", len(rules)))
	}

	// Initialize application components
	admissionGate := gate.New(
		gate.Config{
			TripThreshold:  cfg.Gate.TripThreshold,
			Cooldown:       cfg.Gate.Cooldown,
			BucketCapacity: cfg.Gate.BucketCapacity,
			RefillRate:     cfg.Gate.RefillRate,
		},
		rules,
		systemClock,
		eventBus,
		metricsCollector,
		logger,
	)

	taskEngine := engine.New(
		engine.Config{MaxConcurrent: cfg.Engine.MaxConcurrent},
		systemClock,
		metricsCollector,
		logger,
	)

	monitor := engine.NewOccupancyMonitor(taskEngine, cfg.Engine.MonitorInterval, logger)
	monitor.Start()

	validator := orchestrator.NewValidator()

	orchestratorMgr := orchestrator.NewManager(
		admissionGate,
		taskEngine,
		eventBus,
		summaryStore,
		metricsCollector,
		validator,
		systemClock,
		logger,
		cfg.Timeouts.StepExecution,
	)

	// Step registry: builtins always, llm.prompt only when configured.
	registry := steps.NewRegistry(logger)
	if err := steps.RegisterBuiltins(registry); err != nil {
		logger.Fatal("failed to register builtin steps", zap.Error(err))
	}
	if cfg.LLM.Enabled {
		llmClient, err := llm.NewClient(&llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			Logger:   logger,
		})
		if err != nil {
			logger.Fatal("failed to create LLM client", zap.Error(err))
		}
		if err := steps.RegisterLLM(registry, llmClient, steps.LLMDefaults{
			Model:       cfg.LLM.DefaultModel,
			Temperature: cfg.LLM.DefaultTemperature,
			MaxTokens:   cfg.LLM.DefaultMaxTokens,
		}); err != nil {
			logger.Fatal("failed to register LLM step", zap.Error(err))
		}
	}

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:         cfg.HTTPPort,
		Orchestrator: orchestratorMgr,
		Gate:         admissionGate,
		Registry:     registry,
		Logger:       logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:         cfg.GRPCPort,
		Orchestrator: orchestratorMgr,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("AWO started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("engine_capacity", cfg.Engine.MaxConcurrent))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	// Shutdown components
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	monitor.Stop()

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("AWO shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
