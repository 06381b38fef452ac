package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/config"
	"github.com/serroba/shortlink/internal/container"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *config.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.PostgresPackage(injector)
	container.RedisPackage(injector)
	container.RepositoryPackage(injector)
	container.ShortenerPackage(injector)
	container.PublisherGroupPackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *config.Options) {
		injector := do.New()
		registerPackages(injector, options)

		var (
			server *http.Server
			logger = zap.NewNop()
		)

		hooks.OnStart(func() {
			if err := options.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
				os.Exit(1)
			}

			logger = do.MustInvoke[*zap.Logger](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)
			router := do.MustInvoke[*chi.Mux](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("baseUrl", options.ResolvedBaseURL()),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
			_ = logger.Sync()
		})
	})

	cli.Run()
}
