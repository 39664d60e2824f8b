package cms

import (
	"context"
	"strconv"
)

type CategoriesService struct {
	api API
}

func categoryPath(id int) string {
	return "/categories/" + strconv.Itoa(id)
}

func (s *CategoriesService) List(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := s.api.Get(ctx, "/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (s *CategoriesService) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	var resp struct {
		Category *Category `json:"category"`
	}
	if err := s.api.Post(ctx, "/categories", in, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

func (s *CategoriesService) Update(ctx context.Context, id int, in CategoryInput) (*Category, error) {
	var resp struct {
		Category *Category `json:"category"`
	}
	if err := s.api.Put(ctx, categoryPath(id), in, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

// Delete fails with a 400 while articles still reference the category
func (s *CategoriesService) Delete(ctx context.Context, id int) error {
	return s.api.Delete(ctx, categoryPath(id), nil)
}
