package expiry

import (
	"context"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// Purger deletes shortlinks that have expired.
type Purger interface {
	PurgeExpired(ctx context.Context, codes []shortener.Code, now time.Time) (int64, error)
}

// Sweeper periodically deletes shortlinks whose expiry has passed.
type Sweeper struct {
	index    Index
	purger   Purger
	interval time.Duration
	batch    int64
	logger   *zap.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper that runs every interval, purging up to batch codes per round.
func NewSweeper(index Index, purger Purger, interval time.Duration, batch int64, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		index:    index,
		purger:   purger,
		interval: interval,
		batch:    batch,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in the background until ctx is cancelled or Shutdown is called.
func (s *Sweeper) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep purges due codes in batches until none are left and returns how many rows were deleted.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	var total int64

	for {
		now := s.now()

		codes, err := s.index.Due(ctx, now, s.batch)
		if err != nil {
			return total, err
		}

		if len(codes) == 0 {
			break
		}

		purged, err := s.purger.PurgeExpired(ctx, codes, now)
		if err != nil {
			return total, err
		}

		if err := s.index.Remove(ctx, codes...); err != nil {
			return total, err
		}

		total += purged

		if int64(len(codes)) < s.batch {
			break
		}
	}

	if total > 0 {
		s.logger.Info("expired shortlinks purged", zap.Int64("count", total))
	}

	return total, nil
}

// Shutdown stops the sweep loop and waits for the current round to finish.
func (s *Sweeper) Shutdown() error {
	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done

	return nil
}
