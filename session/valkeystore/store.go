// Package valkeystore keeps session credentials in Valkey, so that several
// processes or hosts can share one login.
package valkeystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/jrsteele09/go-cms-client/session"
)

type Store struct {
	valkey valkey.Client
	prefix string
}

var _ session.Store = (*Store)(nil)

// New wraps an existing client. Keys are stored as "<prefix>:<key>".
func New(client valkey.Client, prefix string) *Store {
	return &Store{
		valkey: client,
		prefix: strings.TrimSuffix(prefix, ":"),
	}
}

// Dial connects to the Valkey instance at addr
func Dial(addr, prefix string) (*Store, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("[valkeystore Dial] connecting to %s: %w", addr, err)
	}
	return New(client, prefix), nil
}

// Close releases the underlying client
func (s *Store) Close() {
	s.valkey.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(key)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("executing get command: %w", err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Set().Key(s.key(key)).Value(value).Build()).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}
	return nil
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
