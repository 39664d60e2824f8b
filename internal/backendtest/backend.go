// Package backendtest provides an in-memory CMS backend for tests. It speaks
// the same JSON API as the real server, issues HS256 JWTs and lets tests
// expire or revoke tokens on demand.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jrsteele09/go-cms-client/session"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type storedUser struct {
	session.User
	Password string
}

type storedArticle struct {
	ID          int
	Title       string
	Slug        string
	Content     string
	Excerpt     string
	Status      string
	CategoryID  *int
	UserID      int
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type storedCategory struct {
	ID          int
	Name        string
	Slug        string
	Description string
	SortOrder   int
	CreatedAt   time.Time
}

// Backend is a fake CMS API server
type Backend struct {
	Server *httptest.Server

	secret         []byte
	accessTokenTTL time.Duration

	mu            sync.Mutex
	nextID        int
	users         map[int]*storedUser
	articles      map[string]*storedArticle
	categories    map[int]*storedCategory
	accessTokens  map[string]bool // jti -> valid
	refreshTokens map[string]bool
	refreshCalls  int
	logoutCalls   int
}

// New starts a backend that is closed with the test
func New(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		secret:         []byte("backendtest-" + uuid.NewString()),
		accessTokenTTL: 15 * time.Minute,
		nextID:         1,
		users:          map[int]*storedUser{},
		articles:       map[string]*storedArticle{},
		categories:     map[int]*storedCategory{},
		accessTokens:   map[string]bool{},
		refreshTokens:  map[string]bool{},
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend origin, without the /api path
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser creates a user directly and returns its id
func (b *Backend) AddUser(username, email, password, role string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, email, password, role)
}

// ExpireAccessTokens rejects every access token issued so far
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessTokens = map[string]bool{}
}

// RevokeRefreshTokens rejects every refresh token issued so far
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens = map[string]bool{}
}

// RefreshCalls returns how many times /auth/refresh was called
func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

// LogoutCalls returns how many times /auth/logout was called
func (b *Backend) LogoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logoutCalls
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", b.register)
		r.Post("/auth/login", b.login)
		r.Post("/auth/logout", b.logout)
		r.Post("/auth/refresh", b.refresh)

		r.Get("/articles", b.listArticles)
		r.Get("/articles/{slug}", b.getArticle)

		r.Get("/categories", b.listCategories)

		r.Group(func(r chi.Router) {
			r.Use(b.requireAuth)
			r.Get("/auth/me", b.me)
			r.Put("/auth/password", b.changePassword)

			r.Post("/articles", b.createArticle)
			r.Put("/articles/{slug}", b.updateArticle)
			r.Delete("/articles/{slug}", b.deleteArticle)
			r.Post("/articles/{slug}/publish", b.setArticleStatus("published"))
			r.Post("/articles/{slug}/unpublish", b.setArticleStatus("draft"))
		})

		r.Group(func(r chi.Router) {
			r.Use(b.requireAuth, b.requireAdmin)
			r.Post("/categories", b.createCategory)
			r.Put("/categories/{id}", b.updateCategory)
			r.Delete("/categories/{id}", b.deleteCategory)

			r.Get("/admin/users", b.listUsers)
			r.Get("/admin/users/{id}", b.getUser)
			r.Put("/admin/users/{id}", b.updateUser)
			r.Delete("/admin/users/{id}", b.deleteUser)
			r.Post("/admin/users/{id}/toggle-active", b.toggleActive)
			r.Get("/admin/dashboard", b.dashboard)
		})
	})
	return r
}

func (b *Backend) addUserLocked(username, email, password, role string) int {
	id := b.nextID
	b.nextID++
	now := NowTimeFunc().UTC()
	b.users[id] = &storedUser{
		User: session.User{
			ID:        id,
			Username:  username,
			Email:     email,
			Role:      role,
			IsActive:  true,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
		Password: password,
	}
	return id
}

// issueTokensLocked mints an access/refresh pair for userID
func (b *Backend) issueTokensLocked(userID int) (string, string, error) {
	access, accessID, err := b.sign(userID, tokenTypeAccess, b.accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, refreshID, err := b.sign(userID, tokenTypeRefresh, 7*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	b.accessTokens[accessID] = true
	b.refreshTokens[refreshID] = true
	return access, refresh, nil
}

func (b *Backend) sign(userID int, tokenType string, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":  fmt.Sprint(userID),
		"type": tokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"jti":  jti,
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", "", fmt.Errorf("signing %s token: %w", tokenType, err)
	}
	return signed, jti, nil
}

// parse verifies a token and returns its user id and jti
func (b *Backend) parse(raw, wantType string) (int, string, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
		return b.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, "", err
	}
	if claims["type"] != wantType {
		return 0, "", fmt.Errorf("token type %v is not %s", claims["type"], wantType)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, "", err
	}
	var id int
	if _, err := fmt.Sscan(sub, &id); err != nil {
		return 0, "", err
	}
	jti, _ := claims["jti"].(string)
	return id, jti, nil
}

func setAuthCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: access, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: refresh, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
