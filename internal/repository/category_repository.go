package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"grocery-list/internal/model"
)

// CategoryRepository manages categories and keeps their positions contiguous.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &category, nil
}

// Create appends a category at the end of the ordering.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	category := model.Category{Name: name}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Category{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		category.Position = int(count)
		if err := tx.Create(&category).Error; err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uint, upd model.CategoryUpdate) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "category", id)
		}
		if upd.Name != nil {
			category.Name = *upd.Name
		}
		if err := tx.Save(&category).Error; err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		if upd.Position != nil {
			ids, err := orderedIDs(tx, &model.Category{}, allRows)
			if err != nil {
				return err
			}
			if err := writePositions(tx, &model.Category{}, insertAt(ids, id, *upd.Position)); err != nil {
				return err
			}
		}
		return tx.First(&category, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category. Its entries become uncategorized and are
// appended to the uncategorized scope in their previous order.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, "category", id)
		}

		orphans, err := orderedIDs(tx, &model.Entry{}, categoryScope(&id))
		if err != nil {
			return err
		}
		if len(orphans) > 0 {
			loose, err := orderedIDs(tx, &model.Entry{}, categoryScope(nil))
			if err != nil {
				return err
			}
			if err := tx.Model(&model.Entry{}).Where("category_id = ?", id).
				Updates(map[string]any{"category_id": nil}).Error; err != nil {
				return fmt.Errorf("detach entries: %w", err)
			}
			if err := writePositions(tx, &model.Entry{}, append(loose, orphans...)); err != nil {
				return err
			}
		}

		if err := tx.Delete(&model.Category{}, id).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return renumber(tx, &model.Category{}, allRows)
	})
}

// Reorder gives the listed categories the leading positions in list order.
// Unknown ids abort the whole operation.
func (r *CategoryRepository) Reorder(ctx context.Context, ids []uint) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := orderedIDs(tx, &model.Category{}, allRows)
		if err != nil {
			return err
		}
		if err := checkKnown(ids, current); err != nil {
			return err
		}
		if err := writePositions(tx, &model.Category{}, leading(ids, current)); err != nil {
			return err
		}
		return tx.Order("position ASC, id ASC").Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Exists reports whether a category with id is present.
func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return categoryExists(r.db.WithContext(ctx), id)
}

// MatchNames returns category names containing query, in display order.
func (r *CategoryRepository) MatchNames(ctx context.Context, query string) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(query)).
		Order("position ASC, id ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("match categories: %w", err)
	}
	return names, nil
}

func categoryExists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&model.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("find category: %w", err)
	}
	return count > 0, nil
}
