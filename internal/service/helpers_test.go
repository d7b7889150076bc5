package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"grocery-list/internal/model"
	"grocery-list/internal/repository"
)

type fixture struct {
	db         *gorm.DB
	categories *CategoryService
	entries    *EntryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openDB(t, filepath.Join(t.TempDir(), "grocery.db"))
	return &fixture{
		db:         db,
		categories: NewCategoryService(repository.NewCategoryRepository(db)),
		entries:    NewEntryService(repository.NewEntryRepository(db), repository.NewNameRepository(db)),
	}
}

func openDB(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func positions[T any](items []T, pos func(T) int) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, pos(it))
	}
	return out
}

func categoryPositions(cs []model.Category) []int {
	return positions(cs, func(c model.Category) int { return c.Position })
}

func contiguous(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func ptr[T any](v T) *T { return &v }
