package apiclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-cms-client/apiclient"
)

func TestRequest_CloneIsDeep(t *testing.T) {
	req := apiclient.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("X-Trace", "1")
	req.Query.Set("page", "1")

	clone := req.Clone()
	clone.Header.Set("X-Trace", "2")
	clone.Query.Set("page", "2")

	require.Equal(t, "1", req.Header.Get("X-Trace"))
	require.Equal(t, "1", req.Query.Get("page"))
	require.False(t, clone.Retried())
}

func TestRequest_CloneOfBareStruct(t *testing.T) {
	clone := (&apiclient.Request{Method: http.MethodGet, Path: "/x"}).Clone()
	require.NotNil(t, clone.Header)
	require.NotNil(t, clone.Query)
}

func TestResponse_Decode(t *testing.T) {
	var out map[string]int
	require.NoError(t, (&apiclient.Response{}).Decode(&out))
	require.Nil(t, out)

	require.NoError(t, (&apiclient.Response{Body: []byte(`{"total":3}`)}).Decode(&out))
	require.Equal(t, 3, out["total"])

	require.Error(t, (&apiclient.Response{Body: []byte(`<html>`)}).Decode(&out))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) apiclient.Middleware {
		return func(next apiclient.Handler) apiclient.Handler {
			return func(ctx context.Context, req *apiclient.Request) (*apiclient.Response, error) {
				order = append(order, name+">")
				resp, err := next(ctx, req)
				order = append(order, "<"+name)
				return resp, err
			}
		}
	}
	final := func(context.Context, *apiclient.Request) (*apiclient.Response, error) {
		order = append(order, "send")
		return &apiclient.Response{StatusCode: http.StatusOK}, nil
	}

	_, err := apiclient.Chain(final, mw("a"), mw("b"))(t.Context(), apiclient.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, []string{"a>", "b>", "send", "<b", "<a"}, order)
}

func TestRequestID_KeepsExisting(t *testing.T) {
	var got string
	h := apiclient.Chain(func(_ context.Context, req *apiclient.Request) (*apiclient.Response, error) {
		got = req.Header.Get(apiclient.HeaderRequestID)
		return &apiclient.Response{}, nil
	}, apiclient.RequestID())

	req := apiclient.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiclient.HeaderRequestID, "fixed")
	_, err := h(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, "fixed", got)

	_, err = h(t.Context(), apiclient.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Len(t, got, 36)
}
