package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"

	contentTypeJSON = "application/json"
)

// Request describes one call to the CMS API. The pipeline always works on a
// private copy, so a Request can be reused by the caller after Send returns.
type Request struct {
	Method string
	Path   string // relative to the API base path, e.g. "/articles"
	Query  url.Values
	Header http.Header
	Body   any // JSON-encoded when non-nil

	retried bool
}

// NewRequest creates a request with empty headers and query
func NewRequest(method, path string, body any) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Query:  url.Values{},
		Header: http.Header{},
		Body:   body,
	}
}

// Retried reports whether this request is the single resubmission that
// follows a successful token refresh.
func (r *Request) Retried() bool {
	return r.retried
}

// Clone returns a deep copy of the descriptor, retry marker included.
// The body value itself is shared.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	c.Query = url.Values{}
	for k, v := range r.Query {
		c.Query[k] = append([]string(nil), v...)
	}
	return &c
}

// Response is a successful (2xx) reply from the API
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

func bearer(token string) string {
	return "Bearer " + token
}
