package expiry_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// mockIndex is an in-memory expiry index with injectable failures.
type mockIndex struct {
	mu          sync.Mutex
	entries     map[shortener.Code]time.Time
	scheduleErr error
	dueErr      error
	removeErr   error
}

func newMockIndex() *mockIndex {
	return &mockIndex{entries: make(map[shortener.Code]time.Time)}
}

func (m *mockIndex) Schedule(_ context.Context, code shortener.Code, at time.Time) error {
	if m.scheduleErr != nil {
		return m.scheduleErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[code] = at

	return nil
}

func (m *mockIndex) Due(_ context.Context, now time.Time, limit int64) ([]shortener.Code, error) {
	if m.dueErr != nil {
		return nil, m.dueErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var due []shortener.Code

	for code, at := range m.entries {
		if !at.After(now) {
			due = append(due, code)
		}
	}

	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	if limit > 0 && int64(len(due)) > limit {
		due = due[:limit]
	}

	return due, nil
}

func (m *mockIndex) Remove(_ context.Context, codes ...shortener.Code) error {
	if m.removeErr != nil {
		return m.removeErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, code := range codes {
		delete(m.entries, code)
	}

	return nil
}

func (m *mockIndex) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
