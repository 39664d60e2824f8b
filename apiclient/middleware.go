package apiclient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-cms-client/session"
)

// Handler sends a request and returns its response
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware transforms a request on the way down and its response on the way up
type Middleware func(next Handler) Handler

// Chain wraps h so that mw[0] is the outermost middleware
func Chain(h Handler, mw ...Middleware) Handler {
	chained := h
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// RequestID tags every request with an X-Request-ID unless one is set.
// A retried request keeps the id of the original.
func RequestID() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Header.Get(HeaderRequestID) == "" {
				req.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return next(ctx, req)
		}
	}
}

// Logging writes one debug line per request. Credentials are never logged.
func Logging(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			status := StatusCode(err)
			if resp != nil {
				status = resp.StatusCode
			}
			logger.Debug().
				Err(err).
				Str("method", req.Method).
				Str("path", req.Path).
				Str("request_id", req.Header.Get(HeaderRequestID)).
				Int("status", status).
				Bool("retried", req.Retried()).
				Dur("duration", time.Since(start)).
				Msg("api request")
			return resp, err
		}
	}
}

// BearerAuth reads the access token from the session state at send time and
// attaches it, unless the request already carries an Authorization header.
func BearerAuth(state *session.State) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Header.Get(HeaderAuthorization) == "" {
				token, err := state.AccessToken(ctx)
				if err != nil {
					return nil, err
				}
				if token != "" {
					req.Header.Set(HeaderAuthorization, bearer(token))
				}
			}
			return next(ctx, req)
		}
	}
}
