// Package memstore keeps session credentials in process memory.
package memstore

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/jrsteele09/go-cms-client/session"
)

// Store is an in-memory credential store. Entries never expire.
type Store struct {
	cache *cache.Cache
}

var _ session.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	value, ok := v.(string)
	return value, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
