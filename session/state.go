package session

import (
	"context"
	"encoding/json"
	"fmt"

	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
)

// Credentials is the access/refresh token pair of a session.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// State is the explicit session-state object shared by the HTTP client and
// its collaborators. Every read goes to the store so that concurrent
// writers (other clients, other processes) are observed.
type State struct {
	store Store
}

// NewState creates a session state over the given credential store
func NewState(store Store) *State {
	return &State{store: store}
}

// AccessToken returns the stored access token, or "" when none is stored
func (s *State) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when none is stored
func (s *State) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// Credentials returns both stored tokens
func (s *State) Credentials(ctx context.Context) (Credentials, error) {
	access, err := s.AccessToken(ctx)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// User returns the cached user profile, or nil when none is cached
func (s *State) User(ctx context.Context) (*User, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil || raw == "" || raw == "null" {
		return nil, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("[session User] %w: %v", cmserrors.ErrInvalidUserProfile, err)
	}
	return &u, nil
}

// SaveTokens persists a new token pair. The access token is written first;
// a failure between the two writes leaves the pair inconsistent.
func (s *State) SaveTokens(ctx context.Context, access, refresh string) error {
	if err := s.store.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("[session SaveTokens] storing access token: %w", err)
	}
	if err := s.store.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("[session SaveTokens] storing refresh token: %w", err)
	}
	return nil
}

// SaveUser caches the user profile
func (s *State) SaveUser(ctx context.Context, u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("[session SaveUser] encoding user: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("[session SaveUser] storing user: %w", err)
	}
	return nil
}

// SaveLogin persists the outcome of a login or registration
func (s *State) SaveLogin(ctx context.Context, u *User, access, refresh string) error {
	if err := s.SaveUser(ctx, u); err != nil {
		return err
	}
	return s.SaveTokens(ctx, access, refresh)
}

// Clear deletes all three credential entries. Every key is attempted even
// if an earlier delete fails; the failures are joined.
func (s *State) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return cmserrors.Join(errs...)
}

// IsLoggedIn reports whether an access token is stored
func (s *State) IsLoggedIn(ctx context.Context) (bool, error) {
	token, err := s.AccessToken(ctx)
	return token != "", err
}

// IsAdmin reports whether the cached user has the admin role
func (s *State) IsAdmin(ctx context.Context) (bool, error) {
	u, err := s.User(ctx)
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

func (s *State) get(ctx context.Context, key string) (string, error) {
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("[session] reading %s: %w", key, err)
	}
	if !found {
		return "", nil
	}
	return value, nil
}
