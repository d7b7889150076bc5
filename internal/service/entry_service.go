package service

import (
	"context"
	"strings"

	"grocery-list/internal/model"
	"grocery-list/internal/repository"
)

// EntryInput represents data required to create an entry.
type EntryInput struct {
	Name       string `json:"name"`
	CategoryID *uint  `json:"categoryId"`
	Quantity   string `json:"quantity"`
	Completed  bool   `json:"completed"`
}

// EntryService wraps entry-related business logic.
type EntryService struct {
	entryRepo *repository.EntryRepository
	nameRepo  *repository.NameRepository
}

func NewEntryService(entryRepo *repository.EntryRepository, nameRepo *repository.NameRepository) *EntryService {
	return &EntryService{entryRepo: entryRepo, nameRepo: nameRepo}
}

func (s *EntryService) List(ctx context.Context, filter repository.EntryFilter) ([]model.Entry, error) {
	return s.entryRepo.List(ctx, filter)
}

func (s *EntryService) Create(ctx context.Context, input EntryInput) (*model.Entry, error) {
	name, err := cleanName("name", input.Name)
	if err != nil {
		return nil, err
	}

	entry := model.Entry{
		Name:       name,
		CategoryID: input.CategoryID,
		Quantity:   strings.TrimSpace(input.Quantity),
		Completed:  input.Completed,
	}
	if err := s.entryRepo.Create(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *EntryService) Update(ctx context.Context, id uint, upd model.EntryUpdate) (*model.Entry, error) {
	if upd.Name != nil {
		name, err := cleanName("name", *upd.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if upd.Quantity != nil {
		q := strings.TrimSpace(*upd.Quantity)
		upd.Quantity = &q
	}
	return s.entryRepo.Update(ctx, id, upd)
}

func (s *EntryService) Delete(ctx context.Context, id uint) error {
	return s.entryRepo.Delete(ctx, id)
}

// Reorder applies the order and returns the full, freshly ordered list.
func (s *EntryService) Reorder(ctx context.Context, ids []uint) ([]model.Entry, error) {
	if err := checkOrder(ids); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Reorder(ctx, ids); err != nil {
		return nil, err
	}
	return s.entryRepo.List(ctx, repository.EntryFilter{})
}

// ClearCompleted deletes checked-off entries and reports how many went.
func (s *EntryService) ClearCompleted(ctx context.Context) (int64, error) {
	return s.entryRepo.DeleteCompleted(ctx)
}

// Suggestions returns previously used entry names matching query.
func (s *EntryService) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	names, err := s.nameRepo.MatchNames(ctx, strings.TrimSpace(query), suggestionPool)
	if err != nil {
		return nil, err
	}
	return rankSuggestions(names, query, suggestionLimit(limit)), nil
}
