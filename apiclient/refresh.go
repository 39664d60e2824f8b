package apiclient

import (
	"context"
	"fmt"
	"net/http"

	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/session"
)

// RefreshCookieName is the cookie the backend reads the refresh token from
const RefreshCookieName = "refresh_token"

// refreshOnUnauthorized recovers once from an expired access token: on a 401
// for a request that has not been retried yet it refreshes the token pair
// and resubmits a copy of the request, marked as retried, through Send.
// Whatever that resubmission returns is final.
func (c *Client) refreshOnUnauthorized(next Handler) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := next(ctx, req)
		if !isUnauthorized(err) || req.Retried() {
			return resp, err
		}

		refreshToken, storeErr := c.state.RefreshToken(ctx)
		if storeErr != nil {
			c.logger.Warn().Err(storeErr).Msg("reading refresh token")
			return resp, err
		}
		if refreshToken == "" {
			return resp, err
		}

		creds, refreshErr := c.refresh(ctx, refreshToken)
		if refreshErr != nil {
			if ctx.Err() != nil {
				// The caller gave up; that says nothing about the session
				return nil, refreshErr
			}
			return nil, c.expireSession(ctx, refreshErr)
		}

		retry := req.Clone()
		retry.retried = true
		retry.Header.Set(HeaderAuthorization, bearer(creds.AccessToken))
		return c.Send(ctx, retry)
	}
}

// refresh exchanges the refresh token for a new pair and persists it. The
// call is unauthenticated: it carries the refresh token and any cookies in
// the jar, never the bearer header.
func (c *Client) refresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	c.logger.Debug().Msg("refreshing access token")

	cookie := &http.Cookie{Name: RefreshCookieName, Value: refreshToken}
	req := NewRequest(http.MethodPost, c.refreshPath, struct{}{})
	req.Header.Set("Cookie", cookie.String())

	resp, err := c.transport(ctx, req)
	if err != nil {
		return session.Credentials{}, err
	}

	var creds session.Credentials
	if err := resp.Decode(&creds); err != nil {
		return session.Credentials{}, fmt.Errorf("%w: %v", cmserrors.ErrInvalidRefreshResponse, err)
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return session.Credentials{}, fmt.Errorf("%w: access_token and refresh_token are required", cmserrors.ErrInvalidRefreshResponse)
	}

	if err := c.state.SaveTokens(ctx, creds.AccessToken, creds.RefreshToken); err != nil {
		return session.Credentials{}, err
	}
	return creds, nil
}

// expireSession clears the stored credentials, then sends the navigator to
// the login page. Clearing completes before navigation starts.
func (c *Client) expireSession(ctx context.Context, cause error) error {
	c.logger.Warn().Err(cause).Msg("token refresh failed, clearing session")

	if err := c.state.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error().Err(err).Msg("clearing session credentials")
	}
	c.navigator.NavigateToLogin(ctx, c.loginURL)

	return &AuthExpiredError{Err: cause}
}
