package shortener

import (
	"context"
	"strconv"
	"time"

	"github.com/serroba/shortlink/internal/logging"
	"go.uber.org/zap"
)

const (
	// candidateSuffix is appended to the generated prefix and mutated on collision.
	candidateSuffix = '0'

	// MaxRetryLimit bounds the configurable attempt budget. Past it the mutated
	// suffix would cycle back through the alphabet.
	MaxRetryLimit = len(Alphabet)
)

// Lookup reports whether a code is already taken.
type Lookup interface {
	Exists(ctx context.Context, code Code) (bool, error)
}

// Resolver finds a free code for a target URL within a bounded number of probes.
type Resolver struct {
	store       Lookup
	length      int
	maxAttempts int
}

// NewResolver creates a resolver producing codes of the given length.
// length is clamped to [MinCodeLength, MaxCodeLength] and maxAttempts to [1, MaxRetryLimit].
func NewResolver(store Lookup, length, maxAttempts int) *Resolver {
	return &Resolver{
		store:       store,
		length:      min(max(length, MinCodeLength), MaxCodeLength),
		maxAttempts: min(max(maxAttempts, 1), MaxRetryLimit),
	}
}

// MaxAttempts returns the probe budget of a single reservation.
func (r *Resolver) MaxAttempts() int {
	return r.maxAttempts
}

// Reserve returns a code that was free when probed. The identifier and the current time
// are mixed into the hash so repeated requests for one URL start from different candidates.
//
// The store's uniqueness constraint stays the final authority: a concurrent writer can
// still take the code between this probe and the insert.
func (r *Resolver) Reserve(ctx context.Context, targetURL, identifier string, now time.Time) (Code, error) {
	candidate := r.initialCandidate(targetURL, identifier+strconv.FormatInt(now.UnixNano(), 10))
	logger := logging.FromContext(ctx)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		taken, err := r.store.Exists(ctx, Code(candidate))
		if err != nil {
			return "", err
		}

		if !taken {
			return Code(candidate), nil
		}

		logger.Debug("shortlink code collision",
			zap.String("code", string(candidate)),
			zap.Int("attempt", attempt),
		)

		last := len(candidate) - 1
		candidate[last] = nextSymbol(candidate[last])
	}

	return "", &RetryBudgetExhaustedError{Attempts: r.maxAttempts}
}

func (r *Resolver) initialCandidate(targetURL, salt string) []byte {
	candidate := make([]byte, 0, r.length)

	if r.length > 1 {
		candidate = append(candidate, Generate(targetURL, salt, r.length-1)...)
	}

	return append(candidate, candidateSuffix)
}
