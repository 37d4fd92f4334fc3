package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gitshopapp/storefront/internal/cache"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists session data by session id.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Set(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// CacheStore keeps sessions as JSON in a cache provider, so the memory and
// Redis backends behave the same way carts do.
type CacheStore struct {
	backend cache.Provider
}

func NewStore(backend cache.Provider) *CacheStore {
	return &CacheStore{backend: backend}
}

func (s *CacheStore) Get(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := s.backend.Get(ctx, cache.SessionKey(id))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &data, nil
}

func (s *CacheStore) Set(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	if id == "" || data == nil {
		return fmt.Errorf("session id and data are required")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.backend.Set(ctx, cache.SessionKey(id), string(raw), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, cache.SessionKey(id))
}

func (s *CacheStore) Close() error {
	return s.backend.Close()
}
