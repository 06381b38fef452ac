package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/config"
	"github.com/serroba/shortlink/internal/expiry"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/logging"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

const (
	// ConsumerGroupExpiry is the redis stream consumer group of the sweeper.
	ConsumerGroupExpiry = "shortlink-expiry"
	// ExpiryIndexKey must not collide with the shortlink cache keys.
	ExpiryIndexKey = "shortlink-expiry"
)

// Database owns the postgres pool.
type Database struct {
	Pool *pgxpool.Pool
}

// Ping implements health.Checker.
func (d *Database) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

func (d *Database) Shutdown() error {
	d.Pool.Close()

	return nil
}

// Redis owns the optional redis client. Client is nil when redis is not configured.
type Redis struct {
	Client redis.UniversalClient
}

// Enabled reports whether a redis URL was configured.
func (r *Redis) Enabled() bool {
	return r.Client != nil
}

func (r *Redis) Shutdown() error {
	if r.Client == nil {
		return nil
	}

	return r.Client.Close()
}

// SweeperOptions tune the expiry sweeper.
type SweeperOptions struct {
	Interval time.Duration
	Batch    int64
}

// LoggerPackage provides the process logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*config.Options](i)

		return logging.New(opts.LogLevel, opts.LogFormat, opts.LogFile)
	})
}

// PostgresPackage provides the postgres pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Database, error) {
		opts := do.MustInvoke[*config.Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		logger.Info("connected to postgres", zap.String("url", config.MaskPassword(opts.DatabaseURL)))

		return &Database{Pool: pool}, nil
	})
}

// RedisPackage provides the redis client when a redis URL is configured.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*config.Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.RedisURL == "" {
			logger.Info("redis disabled, running without cache and event stream")

			return &Redis{}, nil
		}

		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}

		return &Redis{Client: redis.NewClient(redisOpts)}, nil
	})
}

// RepositoryPackage provides the shortlink repository, cached when redis is enabled.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (store.Repository, error) {
		opts := do.MustInvoke[*config.Options](i)
		db := do.MustInvoke[*Database](i)
		rdb := do.MustInvoke[*Redis](i)

		var repo store.Repository = store.NewPostgresStore(db.Pool)

		if rdb.Enabled() {
			repo = store.NewRedisCacheRepository(repo, rdb.Client, opts.CacheDuration())
		}

		return repo, nil
	})
}

// ShortenerPackage provides the create and redirect service.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*config.Options](i)
		repo := do.MustInvoke[store.Repository](i)

		resolver := shortener.NewResolver(repo, opts.CodeLength, opts.MaxHashRetries)

		return shortener.NewService(repo, resolver, opts.Retention()), nil
	})
}

// PublisherGroupPackage provides the event publisher: redis streams when redis is
// enabled, an in-process channel otherwise.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)
		adapter := messaging.NewLoggerAdapter(logger)

		if !rdb.Enabled() {
			return messaging.NewPublisherGroup(newGoChannel(adapter)), nil
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: rdb.Client,
		}, adapter)
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.Recoverer)

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*config.Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		service := do.MustInvoke[*shortener.Service](i)
		publishers := do.MustInvoke[*messaging.PublisherGroup](i)
		db := do.MustInvoke[*Database](i)
		rdb := do.MustInvoke[*Redis](i)

		api := humachi.New(router, huma.DefaultConfig("Shortlink", "1.0.0"))
		api.UseMiddleware(middleware.RequestLogger(logger))

		shortlinkHandler := handlers.NewShortlinkHandler(
			service,
			opts.ResolvedBaseURL(),
			messaging.NewPublishFunc[expiry.ShortlinkCreatedEvent](publishers.Publisher(), expiry.TopicShortlinkCreated),
		)

		checkers := map[string]health.Checker{"postgres": db}
		if rdb.Enabled() {
			checkers["redis"] = health.NewRedisChecker(rdb.Client)
		}

		health.RegisterRoutes(api, health.NewHandler(checkers))
		handlers.RegisterRoutes(api, shortlinkHandler, handlers.NewConfigHandler(opts))

		return api, nil
	})
}

// ConsumerGroupPackage provides the sweeper's consumer group: a consumer that
// indexes new shortlinks by expiry and the periodic sweeper itself.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)
		repo := do.MustInvoke[store.Repository](i)
		sweepOpts := do.MustInvoke[*SweeperOptions](i)

		if !rdb.Enabled() {
			return nil, errors.New("expiry sweeper requires redis")
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb.Client,
			ConsumerGroup: ConsumerGroupExpiry,
		}, messaging.NewLoggerAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		index := store.NewRedisExpiryIndex(rdb.Client, ExpiryIndexKey)
		scheduler := expiry.NewScheduler(index)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[expiry.ShortlinkCreatedEvent](
			subscriber,
			expiry.TopicShortlinkCreated,
			scheduler.HandleCreated,
			logger,
		))
		group.Add(expiry.NewSweeper(index, repo, sweepOpts.Interval, sweepOpts.Batch, logger))

		return group, nil
	})
}

func newGoChannel(logger watermill.LoggerAdapter) message.Publisher {
	return gochannel.NewGoChannel(gochannel.Config{}, logger)
}
