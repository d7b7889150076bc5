package service

import (
	"context"
	"strings"

	"grocery-list/internal/model"
	"grocery-list/internal/repository"
)

// CategoryService validates input and delegates ordering to the repository.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name, err := cleanName("name", name)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, name)
}

func (s *CategoryService) Update(ctx context.Context, id uint, upd model.CategoryUpdate) (*model.Category, error) {
	if upd.Name != nil {
		name, err := cleanName("name", *upd.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete removes the category; its entries become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *CategoryService) Reorder(ctx context.Context, ids []uint) ([]model.Category, error) {
	if err := checkOrder(ids); err != nil {
		return nil, err
	}
	return s.repo.Reorder(ctx, ids)
}

// Suggestions returns category names matching query for autocomplete.
func (s *CategoryService) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	names, err := s.repo.MatchNames(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	return rankSuggestions(names, query, suggestionLimit(limit)), nil
}
