package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jaevor/go-nanoid"
	"github.com/serroba/shortlink/internal/logging"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const requestIDLength = 16

// RequestLogger tags every request with an id, stores a request-scoped logger in
// its context and logs the outcome once the handler returns.
func RequestLogger(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	newID, err := nanoid.Standard(requestIDLength)
	if err != nil {
		panic(err)
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		id := ctx.Header(HeaderRequestID)
		if id == "" {
			id = newID()
		}

		path := ctx.URL().Path
		reqLogger := logger.With(
			zap.String("requestId", id),
			zap.String("method", ctx.Method()),
			zap.String("path", path),
		)

		c := logging.WithLogger(ctx.Context(), reqLogger)
		c = logging.WithRequestID(c, id)
		ctx = huma.WithContext(ctx, c)

		ctx.SetHeader(HeaderRequestID, id)

		next(ctx)

		reqLogger.Info("request completed",
			zap.Int("status", ctx.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
