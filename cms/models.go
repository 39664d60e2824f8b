package cms

import (
	"time"

	"github.com/jrsteele09/go-cms-client/session"
)

// User is the profile returned by the backend and cached in the session
type User = session.User

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"

	// StatusAny lists articles in every status (admin listing)
	StatusAny = "null"
)

type Article struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Excerpt      string     `json:"excerpt,omitempty"`
	CoverImage   string     `json:"cover_image,omitempty"`
	Status       string     `json:"status"`
	ViewCount    int        `json:"view_count"`
	CategoryID   *int       `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	UserID       int        `json:"user_id"`
	AuthorName   string     `json:"author_name,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`

	// Only present on detail responses
	Content     string `json:"content,omitempty"`
	HTMLContent string `json:"html_content,omitempty"`
}

// ArticleInput is the body of create and update calls
type ArticleInput struct {
	Title      string `json:"title,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Content    string `json:"content,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
	CoverImage string `json:"cover_image,omitempty"`
	CategoryID *int   `json:"category_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

type ArticleList struct {
	Articles []Article `json:"articles"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
	Pages    int       `json:"pages"`
}

type Category struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type CategoryInput struct {
	Name        string `json:"name,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	SortOrder   *int   `json:"sort_order,omitempty"`
}

// UserUpdate is what an administrator may change on a user
type UserUpdate struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type DashboardStats struct {
	TotalUsers        int `json:"total_users"`
	TotalArticles     int `json:"total_articles"`
	PublishedArticles int `json:"published_articles"`
	DraftArticles     int `json:"draft_articles"`
}

type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	RecentArticles []Article      `json:"recent_articles"`
}

// Message is the {"message": "..."} acknowledgement most mutations return
type Message struct {
	Message string `json:"message"`
}
