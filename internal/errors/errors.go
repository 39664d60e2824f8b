package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the CMS client packages
var (
	// Session errors
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrInvalidUserProfile  = errors.New("invalid user profile")

	// Token errors
	ErrInvalidToken           = errors.New("invalid token")
	ErrInvalidRefreshResponse = errors.New("invalid refresh response")

	// Storage errors
	ErrDecrypt     = errors.New("unable to decrypt credential store")
	ErrStoreConfig = errors.New("invalid credential store configuration")

	// General errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnsupported     = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, nil when all are nil
func Join(errs ...error) error {
	return errors.Join(errs...)
}
