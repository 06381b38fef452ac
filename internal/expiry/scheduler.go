package expiry

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/shortlink/internal/logging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

var errMissingCode = errors.New("event has no code")

// Index tracks when each code expires.
type Index interface {
	Schedule(ctx context.Context, code shortener.Code, at time.Time) error
	Due(ctx context.Context, now time.Time, limit int64) ([]shortener.Code, error)
	Remove(ctx context.Context, codes ...shortener.Code) error
}

// Scheduler records created shortlinks in the expiry index.
type Scheduler struct {
	index Index
}

// NewScheduler creates a scheduler writing to index.
func NewScheduler(index Index) *Scheduler {
	return &Scheduler{index: index}
}

// HandleCreated is a messaging.Handler for ShortlinkCreatedEvent.
func (s *Scheduler) HandleCreated(ctx context.Context, event *ShortlinkCreatedEvent) error {
	if event.Code == "" {
		return errMissingCode
	}

	if err := s.index.Schedule(ctx, shortener.Code(event.Code), event.ExpireAt); err != nil {
		return err
	}

	logging.FromContext(ctx).Debug("expiry scheduled",
		zap.String("code", event.Code),
		zap.Time("expireAt", event.ExpireAt),
	)

	return nil
}
