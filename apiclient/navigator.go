package apiclient

import "context"

// Navigator sends the user to the login entry point once the session can no
// longer be recovered. It is the Go stand-in for a full-page redirect: any
// in-memory application state should be discarded by the implementation.
type Navigator interface {
	NavigateToLogin(ctx context.Context, loginURL string)
}

// NavigatorFunc adapts a function to a Navigator
type NavigatorFunc func(ctx context.Context, loginURL string)

func (f NavigatorFunc) NavigateToLogin(ctx context.Context, loginURL string) {
	f(ctx, loginURL)
}

// NopNavigator ignores navigation requests
type NopNavigator struct{}

func (NopNavigator) NavigateToLogin(context.Context, string) {}
