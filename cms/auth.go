package cms

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
)

// AuthService manages the login session: it is the only writer of the
// stored credentials besides the HTTP client's refresh path.
type AuthService struct {
	api    API
	logger zerolog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type authResponse struct {
	Message      string `json:"message"`
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	User *User `json:"user"`
}

// Login authenticates with a username (or email) and stores the new session.
// remember asks the backend for persistent cookies.
func (s *AuthService) Login(ctx context.Context, username, password string, remember bool) (*User, error) {
	var resp authResponse
	if err := s.api.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password, Remember: remember}, &resp); err != nil {
		return nil, err
	}
	return s.storeSession(ctx, resp)
}

// Register creates an account and stores its session
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp authResponse
	if err := s.api.Post(ctx, "/auth/register", registerRequest{Username: username, Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return s.storeSession(ctx, resp)
}

// Logout tells the backend and clears the local session. A failed backend
// call is logged and does not prevent the local logout.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.logger.Warn().Err(err).Msg("logout request failed")
	}
	return s.api.State().Clear(context.WithoutCancel(ctx))
}

// Me fetches the current user and refreshes the cached profile
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var resp userResponse
	if err := s.api.Get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("[cms Me] response has no user: %w", cmserrors.ErrInvalidUserProfile)
	}
	if err := s.api.State().SaveUser(ctx, resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// CheckAuth reports whether the stored session is still usable. Without a
// stored access token it returns false without contacting the backend; if
// the backend rejects the session the local session is logged out.
func (s *AuthService) CheckAuth(ctx context.Context) (bool, error) {
	loggedIn, err := s.api.State().IsLoggedIn(ctx)
	if err != nil || !loggedIn {
		return false, err
	}
	if _, err := s.Me(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("stored session rejected")
		return false, s.Logout(ctx)
	}
	return true, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return s.api.Put(ctx, "/auth/password", changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}, nil)
}

func (s *AuthService) storeSession(ctx context.Context, resp authResponse) (*User, error) {
	if resp.User == nil || resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, fmt.Errorf("[cms] auth response is missing user or tokens: %w", cmserrors.ErrInvalidToken)
	}
	if err := s.api.State().SaveLogin(ctx, resp.User, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}
	return resp.User, nil
}
