package shortener_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const retention = 10 * 24 * time.Hour

func newTestService(s shortener.Repository) *shortener.Service {
	return shortener.NewService(s, shortener.NewResolver(s, 8, 4), retention).
		WithClock(func() time.Time { return fixedNow })
}

func TestService_Create(t *testing.T) {
	t.Run("stores a new shortlink", func(t *testing.T) {
		s := newMockStore()
		svc := newTestService(s)

		link, err := svc.Create(context.Background(), fooURL, "")

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("7VsZuMZ0"), link.Code)
		assert.Equal(t, fooURL, link.TargetURL)
		assert.Equal(t, fixedNow, link.CreatedAt)
		assert.Equal(t, fixedNow.Add(retention), link.ExpiresAt)
		assert.NotZero(t, link.ID)
		assert.True(t, link.ExpiresAt.After(link.CreatedAt))
	})

	t.Run("rejects blank url", func(t *testing.T) {
		s := newMockStore()
		svc := newTestService(s)

		for _, url := range []string{"", "   "} {
			link, err := svc.Create(context.Background(), url, "")

			assert.Nil(t, link)
			assert.ErrorIs(t, err, shortener.ErrInvalidURL)
		}

		assert.Zero(t, s.inserts)
		assert.Empty(t, s.probes)
	})

	t.Run("returns budget error without inserting", func(t *testing.T) {
		s := newMockStore("7VsZuMZ0", "7VsZuMZ1", "7VsZuMZ2", "7VsZuMZ3")
		svc := newTestService(s)

		link, err := svc.Create(context.Background(), fooURL, "")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrRetryBudgetExhausted)
		assert.Zero(t, s.inserts)
	})

	t.Run("reserves again after a duplicate insert", func(t *testing.T) {
		s := newMockStore()
		s.insertDuplicates = 1
		svc := newTestService(s)

		link, err := svc.Create(context.Background(), fooURL, "")

		require.NoError(t, err)
		assert.NotEmpty(t, link.Code)
		assert.Equal(t, 2, s.inserts)
	})

	t.Run("gives up after repeated duplicate inserts", func(t *testing.T) {
		s := newMockStore()
		s.insertDuplicates = 5
		svc := newTestService(s)

		link, err := svc.Create(context.Background(), fooURL, "")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrDuplicateCode)
		assert.Equal(t, 2, s.inserts)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		s := newMockStore()
		s.insertErr = errMock
		svc := newTestService(s)

		_, err := svc.Create(context.Background(), fooURL, "")

		assert.ErrorIs(t, err, errMock)
		assert.Equal(t, 1, s.inserts)
	})
}

func TestService_Resolve(t *testing.T) {
	t.Run("round trips a created shortlink", func(t *testing.T) {
		svc := newTestService(store.NewMemoryStore())

		created, err := svc.Create(context.Background(), fooURL, "")
		require.NoError(t, err)

		link, err := svc.Resolve(context.Background(), string(created.Code))

		require.NoError(t, err)
		assert.Equal(t, fooURL, link.TargetURL)
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		svc := newTestService(newMockStore())

		link, err := svc.Resolve(context.Background(), "unknown1")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("returns not found for malformed code without hitting the store", func(t *testing.T) {
		s := newMockStore()
		s.getErr = errMock
		svc := newTestService(s)

		_, err := svc.Resolve(context.Background(), "not-a-code!")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("treats expired shortlink as not found", func(t *testing.T) {
		s := newMockStore()
		created, err := newTestService(s).Create(context.Background(), fooURL, "")
		require.NoError(t, err)

		later := shortener.NewService(s, shortener.NewResolver(s, 8, 4), retention).
			WithClock(func() time.Time { return fixedNow.Add(retention) })

		link, err := later.Resolve(context.Background(), string(created.Code))

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		s := newMockStore()
		s.getErr = errMock
		svc := newTestService(s)

		_, err := svc.Resolve(context.Background(), "abc12345")

		assert.ErrorIs(t, err, errMock)
	})
}
