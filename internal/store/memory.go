package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[shortener.Code]shortener.Shortlink
	nextID int64
}

// NewMemoryStore creates a new in-memory shortlink store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[shortener.Code]shortener.Shortlink),
	}
}

func (m *MemoryStore) Exists(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[code]

	return ok, nil
}

func (m *MemoryStore) Insert(_ context.Context, link *shortener.Shortlink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrDuplicateCode
	}

	m.nextID++
	link.ID = m.nextID
	m.links[link.Code] = *link

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Shortlink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

// PurgeExpired deletes the given codes whose expiry is at or before now.
func (m *MemoryStore) PurgeExpired(_ context.Context, codes []shortener.Code, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64

	for _, code := range codes {
		link, ok := m.links[code]
		if !ok || !link.Expired(now) {
			continue
		}

		delete(m.links, code)
		purged++
	}

	return purged, nil
}
