package backendtest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jrsteele09/go-cms-client/session"
)

func (b *Backend) userFromURLLocked(w http.ResponseWriter, r *http.Request) *storedUser {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	u := b.users[id]
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
	}
	return u
}

func (b *Backend) listUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make([]session.User, 0, len(b.users))
	for _, u := range b.users {
		users = append(users, u.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u := b.userFromURLLocked(w, r); u != nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": u.User})
	}
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.userFromURLLocked(w, r)
	if u == nil {
		return
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User updated", "user": u.User})
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.userFromURLLocked(w, r)
	if u == nil {
		return
	}
	if u.ID == currentUser(r.Context()).ID {
		writeError(w, http.StatusBadRequest, "Cannot delete yourself")
		return
	}
	delete(b.users, u.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (b *Backend) toggleActive(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.userFromURLLocked(w, r)
	if u == nil {
		return
	}
	if u.ID == currentUser(r.Context()).ID {
		writeError(w, http.StatusBadRequest, "Cannot disable yourself")
		return
	}
	u.IsActive = !u.IsActive
	writeJSON(w, http.StatusOK, map[string]any{"message": "User status updated", "user": u.User})
}

func (b *Backend) dashboard(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]int{
		"total_users":        len(b.users),
		"total_articles":     len(b.articles),
		"published_articles": 0,
		"draft_articles":     0,
	}
	recent := make([]*storedArticle, 0, len(b.articles))
	for _, a := range b.articles {
		switch a.Status {
		case "published":
			stats["published_articles"]++
		case "draft":
			stats["draft_articles"]++
		}
		recent = append(recent, a)
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].ID > recent[j].ID })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	articles := make([]map[string]any, 0, len(recent))
	for _, a := range recent {
		articles = append(articles, b.articleJSONLocked(a, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "recent_articles": articles})
}
