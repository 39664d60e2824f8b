package session

import (
	"context"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"golang.org/x/oauth2"
)

// ExpiryOf reads the exp claim of a JWT without verifying its signature.
// The zero time is returned for a token without an exp claim.
func ExpiryOf(rawToken string) (time.Time, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", cmserrors.ErrInvalidToken, err)
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", cmserrors.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// AccessTokenExpiry returns the expiry of the stored access token
func (s *State) AccessTokenExpiry(ctx context.Context) (time.Time, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if token == "" {
		return time.Time{}, cmserrors.ErrNotLoggedIn
	}
	return ExpiryOf(token)
}

// TokenSource adapts the state to an oauth2.TokenSource so that the stored
// credentials can drive an oauth2 transport. It never refreshes by itself.
func (s *State) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &stateTokenSource{ctx: ctx, state: s}
}

type stateTokenSource struct {
	ctx   context.Context
	state *State
}

func (ts *stateTokenSource) Token() (*oauth2.Token, error) {
	creds, err := ts.state.Credentials(ts.ctx)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, cmserrors.ErrNotLoggedIn
	}

	// Opaque (non-JWT) access tokens carry no expiry
	expiry, _ := ExpiryOf(creds.AccessToken)
	return &oauth2.Token{
		AccessToken:  creds.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: creds.RefreshToken,
		Expiry:       expiry,
	}, nil
}
