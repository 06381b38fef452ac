package shortener_test

import (
	"context"
	"errors"
	"sync"

	"github.com/serroba/shortlink/internal/shortener"
)

var errMock = errors.New("mock error")

// mockStore is a test double for shortener.Repository that records probes and can
// be configured to fail.
type mockStore struct {
	mu        sync.Mutex
	links     map[shortener.Code]*shortener.Shortlink
	probes    []shortener.Code
	existsErr error
	insertErr error
	getErr    error

	// insertDuplicates makes the next N inserts fail with ErrDuplicateCode.
	insertDuplicates int
	inserts          int
}

func newMockStore(taken ...shortener.Code) *mockStore {
	m := &mockStore{links: make(map[shortener.Code]*shortener.Shortlink)}
	for _, code := range taken {
		m.links[code] = &shortener.Shortlink{Code: code, TargetURL: "https://taken.example"}
	}

	return m
}

func (m *mockStore) Exists(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.probes = append(m.probes, code)

	if m.existsErr != nil {
		return false, m.existsErr
	}

	_, ok := m.links[code]

	return ok, nil
}

func (m *mockStore) Insert(_ context.Context, link *shortener.Shortlink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inserts++

	if m.insertErr != nil {
		return m.insertErr
	}

	if m.insertDuplicates > 0 {
		m.insertDuplicates--

		return shortener.ErrDuplicateCode
	}

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrDuplicateCode
	}

	link.ID = int64(len(m.links) + 1)
	stored := *link
	m.links[link.Code] = &stored

	return nil
}

func (m *mockStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Shortlink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *link

	return &found, nil
}
