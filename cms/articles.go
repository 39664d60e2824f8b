package cms

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-cms-client/internal/utils"
)

type ArticlesService struct {
	api API
}

// ListArticlesParams filters an article listing. Nil fields are omitted and
// the backend defaults apply (page 1, 10 per page, published only).
type ListArticlesParams struct {
	Page       *int
	PerPage    *int
	Status     *string // StatusAny lists every status
	CategoryID *int
	Search     string
}

func (p ListArticlesParams) query() url.Values {
	q := url.Values{}
	if p.Page != nil {
		q.Set("page", strconv.Itoa(*p.Page))
	}
	if p.PerPage != nil {
		q.Set("per_page", strconv.Itoa(*p.PerPage))
	}
	if p.Status != nil {
		q.Set("status", utils.Value(p.Status))
	}
	if p.CategoryID != nil {
		q.Set("category_id", strconv.Itoa(*p.CategoryID))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

type articleResponse struct {
	Message string   `json:"message,omitempty"`
	Article *Article `json:"article"`
}

func articlePath(slug string, suffix ...string) string {
	path := "/articles/" + url.PathEscape(slug)
	for _, s := range suffix {
		path += "/" + s
	}
	return path
}

func (s *ArticlesService) List(ctx context.Context, params ListArticlesParams) (*ArticleList, error) {
	var list ArticleList
	if err := s.api.Get(ctx, "/articles", params.query(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Get returns the article with its full content
func (s *ArticlesService) Get(ctx context.Context, slug string) (*Article, error) {
	return s.send(func(resp *articleResponse) error {
		return s.api.Get(ctx, articlePath(slug), nil, resp)
	})
}

func (s *ArticlesService) Create(ctx context.Context, in ArticleInput) (*Article, error) {
	return s.send(func(resp *articleResponse) error {
		return s.api.Post(ctx, "/articles", in, resp)
	})
}

func (s *ArticlesService) Update(ctx context.Context, slug string, in ArticleInput) (*Article, error) {
	return s.send(func(resp *articleResponse) error {
		return s.api.Put(ctx, articlePath(slug), in, resp)
	})
}

func (s *ArticlesService) Delete(ctx context.Context, slug string) error {
	return s.api.Delete(ctx, articlePath(slug), nil)
}

func (s *ArticlesService) Publish(ctx context.Context, slug string) (*Article, error) {
	return s.send(func(resp *articleResponse) error {
		return s.api.Post(ctx, articlePath(slug, "publish"), nil, resp)
	})
}

func (s *ArticlesService) Unpublish(ctx context.Context, slug string) (*Article, error) {
	return s.send(func(resp *articleResponse) error {
		return s.api.Post(ctx, articlePath(slug, "unpublish"), nil, resp)
	})
}

func (s *ArticlesService) send(call func(*articleResponse) error) (*Article, error) {
	var resp articleResponse
	if err := call(&resp); err != nil {
		return nil, err
	}
	return resp.Article, nil
}
