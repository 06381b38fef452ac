package shortener

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/serroba/shortlink/internal/logging"
	"go.uber.org/zap"
)

// insertRaceRetries is how many extra reservations follow a duplicate-key insert.
const insertRaceRetries = 1

// Service implements the create and redirect flows.
type Service struct {
	store     Repository
	resolver  *Resolver
	retention time.Duration
	now       func() time.Time
}

// NewService creates a service that keeps every shortlink for retention.
func NewService(store Repository, resolver *Resolver, retention time.Duration) *Service {
	return &Service{
		store:     store,
		resolver:  resolver,
		retention: retention,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now

	return s
}

// Create reserves a code for targetURL and stores the new shortlink.
func (s *Service) Create(ctx context.Context, targetURL, identifier string) (*Shortlink, error) {
	if strings.TrimSpace(targetURL) == "" {
		return nil, ErrInvalidURL
	}

	logger := logging.FromContext(ctx)

	for cycle := 0; ; cycle++ {
		now := s.now()

		code, err := s.resolver.Reserve(ctx, targetURL, identifier, now)
		if err != nil {
			return nil, err
		}

		link := &Shortlink{
			Code:      code,
			TargetURL: targetURL,
			CreatedAt: now,
			ExpiresAt: now.Add(s.retention),
		}

		err = s.store.Insert(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrDuplicateCode) || cycle >= insertRaceRetries {
			return nil, err
		}

		logger.Info("shortlink code taken at insert, reserving again", zap.String("code", string(code)))
	}
}

// Resolve returns the live shortlink for code. Unknown, malformed and expired codes
// all yield ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code string) (*Shortlink, error) {
	if !ValidCode(code) {
		return nil, ErrNotFound
	}

	link, err := s.store.GetByCode(ctx, Code(code))
	if err != nil {
		return nil, err
	}

	if link.Expired(s.now()) {
		logging.FromContext(ctx).Debug("shortlink expired",
			zap.String("code", code),
			zap.Time("expireAt", link.ExpiresAt),
		)

		return nil, ErrNotFound
	}

	return link, nil
}
