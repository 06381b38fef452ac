package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/config"
	"github.com/serroba/shortlink/internal/container"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	opts := &config.Options{
		DatabaseURL: getEnv("SERVICE_DATABASE_URL", ""),
		RedisURL:    getEnv("SERVICE_REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:    getEnv("SERVICE_CACHE_TTL", "1h"),
		LogLevel:    getEnv("SERVICE_LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
	}

	sweepOpts := &container.SweeperOptions{
		Interval: getDuration("SWEEP_INTERVAL", time.Minute),
		Batch:    getInt("SWEEP_BATCH", 100),
	}

	if opts.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "SERVICE_DATABASE_URL is required")
		os.Exit(1)
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	do.ProvideValue(injector, sweepOpts)
	container.LoggerPackage(injector)
	container.PostgresPackage(injector)
	container.RedisPackage(injector)
	container.RepositoryPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("sweeper running",
		zap.Duration("interval", sweepOpts.Interval),
		zap.Int64("batch", sweepOpts.Batch),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	_ = logger.Sync()
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}

	return d
}

func getInt(key string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}

	return n
}
