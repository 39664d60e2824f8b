package cms

import (
	"context"
	"strconv"
)

// UsersService covers the admin-only user management endpoints
type UsersService struct {
	api API
}

func adminUserPath(id int, suffix ...string) string {
	path := "/admin/users/" + strconv.Itoa(id)
	for _, s := range suffix {
		path += "/" + s
	}
	return path
}

func (s *UsersService) List(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := s.api.Get(ctx, "/admin/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (s *UsersService) Get(ctx context.Context, id int) (*User, error) {
	var resp userResponse
	if err := s.api.Get(ctx, adminUserPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *UsersService) Update(ctx context.Context, id int, in UserUpdate) (*User, error) {
	var resp userResponse
	if err := s.api.Put(ctx, adminUserPath(id), in, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *UsersService) Delete(ctx context.Context, id int) error {
	return s.api.Delete(ctx, adminUserPath(id), nil)
}

// ToggleActive flips the user's is_active flag and returns the updated user
func (s *UsersService) ToggleActive(ctx context.Context, id int) (*User, error) {
	var resp userResponse
	if err := s.api.Post(ctx, adminUserPath(id, "toggle-active"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *UsersService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := s.api.Get(ctx, "/admin/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
