package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-cms-client/internal/config"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/session"
)

const (
	defaultAPIPath     = "/api"
	defaultRefreshPath = "/auth/refresh"
	defaultLoginPath   = "/login"
)

// Client is the authenticated HTTP client for the CMS API. It attaches the
// stored access token to every request and recovers once from an expired
// token by refreshing it and resubmitting the request. A Client is safe for
// concurrent use; concurrent 401s each perform their own refresh.
type Client struct {
	baseURL     *url.URL
	apiPath     string
	refreshPath string
	loginURL    string

	state      *session.State
	httpClient *http.Client
	logger     zerolog.Logger
	navigator  Navigator
	middleware []Middleware

	pipeline Handler
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Cookies set by the backend
// are only carried when the supplied client has a Jar.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithNavigator(n Navigator) Option {
	return func(cl *Client) {
		cl.navigator = n
	}
}

// WithMiddleware appends middleware after the built-in ones, closest to the transport
func WithMiddleware(mw ...Middleware) Option {
	return func(cl *Client) {
		cl.middleware = append(cl.middleware, mw...)
	}
}

// New creates a client for the API described by cfg
func New(cfg config.APIConfig, state *session.State, opts ...Option) (*Client, error) {
	if state == nil {
		return nil, fmt.Errorf("[apiclient New] session state is required: %w", cmserrors.ErrInvalidArgument)
	}
	base, err := url.Parse(cfg.GetBaseURL())
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("[apiclient New] base url %q must be absolute: %w", cfg.GetBaseURL(), cmserrors.ErrInvalidArgument)
	}

	c := &Client{
		baseURL:     base,
		apiPath:     valueOr(cfg.GetAPIPath(), defaultAPIPath),
		refreshPath: valueOr(cfg.GetRefreshPath(), defaultRefreshPath),
		loginURL:    base.JoinPath(valueOr(cfg.GetLoginPath(), defaultLoginPath)).String(),
		state:       state,
		logger:      zerolog.Nop(),
		navigator:   NopNavigator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("[apiclient New] creating cookie jar: %w", err)
		}
		c.httpClient = &http.Client{Jar: jar}
	}

	mw := []Middleware{
		RequestID(),
		Logging(c.logger),
		c.refreshOnUnauthorized,
		BearerAuth(c.state),
	}
	c.pipeline = Chain(c.transport, append(mw, c.middleware...)...)
	return c, nil
}

// State returns the session state the client reads credentials from
func (c *Client) State() *session.State {
	return c.state
}

// LoginURL returns the absolute login entry point
func (c *Client) LoginURL() string {
	return c.loginURL
}

// Send runs req through the middleware pipeline. The caller's request is
// never modified. Errors are *NetworkError, *HTTPError or *AuthExpiredError.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("[apiclient Send] nil request: %w", cmserrors.ErrInvalidArgument)
	}
	return c.pipeline(ctx, req.Clone())
}

// Do sends a JSON request and decodes the JSON response into out (which may be nil)
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, NewRequest(method, path, in), out)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	req := NewRequest(http.MethodGet, path, nil)
	if query != nil {
		req.Query = query
	}
	return c.do(ctx, req, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, req *Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// transport is the innermost handler: it performs the HTTP exchange
func (c *Client) transport(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	target := httpReq.URL.String()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: target, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(req.Method, target, resp.StatusCode, body)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u := c.endpoint(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("[apiclient] encoding %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient] building %s %s: %w", req.Method, req.Path, err)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	httpReq.Header.Set(HeaderContentType, contentTypeJSON)
	if httpReq.Header.Get(HeaderAccept) == "" {
		httpReq.Header.Set(HeaderAccept, contentTypeJSON)
	}
	return httpReq, nil
}

func (c *Client) endpoint(path string) *url.URL {
	return c.baseURL.JoinPath(c.apiPath, path)
}

// unwrapURLError drops the *url.Error layer; NetworkError already names the method and URL
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
