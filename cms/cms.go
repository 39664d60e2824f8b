// Package cms wraps the CMS REST endpoints on top of the authenticated client.
package cms

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-cms-client/session"
)

// API is the subset of *apiclient.Client the services depend on
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string, out any) error
	State() *session.State
}

// Client groups the CMS services
type Client struct {
	Auth       *AuthService
	Articles   *ArticlesService
	Categories *CategoriesService
	Users      *UsersService
}

// New creates the services over api
func New(api API, logger zerolog.Logger) *Client {
	return &Client{
		Auth:       &AuthService{api: api, logger: logger},
		Articles:   &ArticlesService{api: api},
		Categories: &CategoriesService{api: api},
		Users:      &UsersService{api: api},
	}
}
