package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/jrsteele09/go-cms-client/apiclient"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail adds the command name and, for an expired session, a hint to log in again
func (a *app) fail(command string, err error) error {
	b := oops.In(errorDomain).With("command", command)
	if errors.Is(err, apiclient.ErrSessionExpired) {
		b = b.Hint("run `cmsctl login` to start a new session")
	}
	return b.Wrapf(err, "%s failed", command)
}

// loginHint tells the user to log in again once the session is cleared
func (a *app) loginHint() apiclient.Navigator {
	return apiclient.NavigatorFunc(func(_ context.Context, loginURL string) {
		fmt.Fprintf(a.stderr, "Your session has expired. Run `cmsctl login` or sign in at %s\n", loginURL)
	})
}

// readSecret returns flagValue, or the first line of stdin when it is empty
func (a *app) readSecret(flagValue, name string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprintf(a.stderr, "%s: ", name)
	if a.input == nil {
		a.input = bufio.NewReader(a.stdin)
	}
	line, err := a.input.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
		return "", fmt.Errorf("%s is required", name)
	}
	return line, nil
}
