package backendtest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type articleInput struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Content    string `json:"content"`
	Excerpt    string `json:"excerpt"`
	CategoryID *int   `json:"category_id"`
	Status     string `json:"status"`
}

func slugify(s string) string {
	return strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, s), "-")
}

func (b *Backend) articleJSONLocked(a *storedArticle, detail bool) map[string]any {
	out := map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"slug":       a.Slug,
		"excerpt":    a.Excerpt,
		"status":     a.Status,
		"view_count": 0,
		"user_id":    a.UserID,
		"created_at": a.CreatedAt,
	}
	if u := b.users[a.UserID]; u != nil {
		out["author_name"] = u.Username
	}
	if a.CategoryID != nil {
		out["category_id"] = *a.CategoryID
		if c := b.categories[*a.CategoryID]; c != nil {
			out["category_name"] = c.Name
		}
	}
	if a.PublishedAt != nil {
		out["published_at"] = a.PublishedAt
	}
	if detail {
		out["content"] = a.Content
	}
	return out
}

func intParam(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func (b *Backend) listArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := "published"
	if q.Has("status") {
		status = q.Get("status")
	}
	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 10)
	categoryID := intParam(r, "category_id", 0)
	search := strings.ToLower(q.Get("search"))

	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []*storedArticle
	for _, a := range b.articles {
		if status != "null" && a.Status != status {
			continue
		}
		if categoryID != 0 && (a.CategoryID == nil || *a.CategoryID != categoryID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Title), search) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	articles := make([]map[string]any, 0, end-start)
	for _, a := range matched[start:end] {
		articles = append(articles, b.articleJSONLocked(a, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    (total + perPage - 1) / perPage,
	})
}

func (b *Backend) getArticle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.articles[chi.URLParam(r, "slug")]
	if a == nil {
		writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"article": b.articleJSONLocked(a, true)})
}

func (b *Backend) createArticle(w http.ResponseWriter, r *http.Request) {
	var in articleInput
	if err := decode(r, &in); err != nil || in.Title == "" || in.Content == "" {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}
	if in.Slug == "" {
		in.Slug = slugify(in.Title)
	}
	if in.Status == "" {
		in.Status = "draft"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.articles[in.Slug] != nil {
		writeError(w, http.StatusBadRequest, "Slug already exists")
		return
	}
	a := &storedArticle{
		ID:         b.nextID,
		Title:      in.Title,
		Slug:       in.Slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		Status:     in.Status,
		CategoryID: in.CategoryID,
		UserID:     currentUser(r.Context()).ID,
		CreatedAt:  NowTimeFunc().UTC(),
	}
	b.nextID++
	if a.Status == "published" {
		now := NowTimeFunc().UTC()
		a.PublishedAt = &now
	}
	b.articles[a.Slug] = a
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Article created", "article": b.articleJSONLocked(a, true)})
}

// ownedArticleLocked finds the article named in the URL and checks that the
// caller may change it
func (b *Backend) ownedArticleLocked(w http.ResponseWriter, r *http.Request) *storedArticle {
	a := b.articles[chi.URLParam(r, "slug")]
	if a == nil {
		writeError(w, http.StatusNotFound, "Article not found")
		return nil
	}
	user := currentUser(r.Context())
	if a.UserID != user.ID && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Permission denied")
		return nil
	}
	return a
}

func (b *Backend) updateArticle(w http.ResponseWriter, r *http.Request) {
	var in articleInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.ownedArticleLocked(w, r)
	if a == nil {
		return
	}
	if in.Title != "" {
		a.Title = in.Title
	}
	if in.Content != "" {
		a.Content = in.Content
	}
	if in.Excerpt != "" {
		a.Excerpt = in.Excerpt
	}
	if in.CategoryID != nil {
		a.CategoryID = in.CategoryID
	}
	if in.Status != "" {
		a.Status = in.Status
	}
	if in.Slug != "" && in.Slug != a.Slug {
		delete(b.articles, a.Slug)
		a.Slug = in.Slug
		b.articles[a.Slug] = a
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Article updated", "article": b.articleJSONLocked(a, true)})
}

func (b *Backend) deleteArticle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.ownedArticleLocked(w, r)
	if a == nil {
		return
	}
	delete(b.articles, a.Slug)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Article deleted"})
}

func (b *Backend) setArticleStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		a := b.ownedArticleLocked(w, r)
		if a == nil {
			return
		}
		a.Status = status
		if status == "published" {
			now := NowTimeFunc().UTC()
			a.PublishedAt = &now
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Article " + status, "article": b.articleJSONLocked(a, false)})
	}
}

type categoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order"`
}

func categoryJSON(c *storedCategory) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"sort_order":  c.SortOrder,
		"created_at":  c.CreatedAt,
	}
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cats := make([]*storedCategory, 0, len(b.categories))
	for _, c := range b.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].ID < cats[j].ID
	})
	out := make([]map[string]any, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (b *Backend) categoryFromURLLocked(w http.ResponseWriter, r *http.Request) *storedCategory {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c := b.categories[id]
	if c == nil {
		writeError(w, http.StatusNotFound, "Category not found")
	}
	return c
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decode(r, &in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if in.Slug == "" {
		in.Slug = slugify(in.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	c := &storedCategory{
		ID:          b.nextID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   NowTimeFunc().UTC(),
	}
	b.nextID++
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	b.categories[c.ID] = c
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Category created", "category": categoryJSON(c)})
}

func (b *Backend) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.categoryFromURLLocked(w, r)
	if c == nil {
		return
	}
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Slug != "" {
		c.Slug = in.Slug
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category updated", "category": categoryJSON(c)})
}

func (b *Backend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.categoryFromURLLocked(w, r)
	if c == nil {
		return
	}
	for _, a := range b.articles {
		if a.CategoryID != nil && *a.CategoryID == c.ID {
			writeError(w, http.StatusBadRequest, "Category has articles")
			return
		}
	}
	delete(b.categories, c.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
