package backendtest

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-cms-client/session"
)

type ctxKey struct{}

func currentUser(ctx context.Context) *storedUser {
	u, _ := ctx.Value(ctxKey{}).(*storedUser)
	return u
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}
		id, jti, err := b.parse(raw, tokenTypeAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		b.mu.Lock()
		valid := b.accessTokens[jti]
		user := b.users[id]
		active := user != nil && user.IsActive
		b.mu.Unlock()

		if !valid {
			writeError(w, http.StatusUnauthorized, "Token has expired")
			return
		}
		if !active {
			writeError(w, http.StatusUnauthorized, "User not found or inactive")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func (b *Backend) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == req.Username || u.Email == req.Email {
			writeError(w, http.StatusBadRequest, "Username or email already exists")
			return
		}
	}
	role := "user"
	if len(b.users) == 0 {
		role = session.RoleAdmin
	}
	id := b.addUserLocked(req.Username, req.Email, req.Password, role)
	b.writeSessionLocked(w, http.StatusCreated, "Registration successful", id)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, u := range b.users {
		if (u.Username == req.Username || u.Email == req.Username) && u.Password == req.Password {
			if !u.IsActive {
				writeError(w, http.StatusForbidden, "Account is disabled")
				return
			}
			b.writeSessionLocked(w, http.StatusOK, "Login successful", id)
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid username or password")
}

func (b *Backend) writeSessionLocked(w http.ResponseWriter, status int, msg string, userID int) {
	access, refresh, err := b.issueTokensLocked(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	setAuthCookies(w, access, refresh)
	writeJSON(w, status, map[string]any{
		"message":       msg,
		"user":          b.users[userID].User,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (b *Backend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.logoutCalls++
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "access_token", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	b.mu.Unlock()

	cookie, err := r.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}
	id, jti, err := b.parse(cookie.Value, tokenTypeRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.users[id]
	if !b.refreshTokens[jti] || user == nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(b.refreshTokens, jti)
	b.writeSessionLocked(w, http.StatusOK, "Token refreshed", id)
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"user": currentUser(r.Context()).User})
}

func (b *Backend) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := decode(r, &req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "New password is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user := currentUser(r.Context())
	if user.Password != req.OldPassword {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	user.Password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
