package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"grocery-list/internal/model"
)

// EntryRepository handles CRUD for entries. Positions are kept contiguous
// within each category scope.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// EntryFilter narrows List. A zero filter lists everything.
type EntryFilter struct {
	CategoryID *uint
}

// List returns entries grouped by category display order (uncategorized last)
// and ordered by position inside each group.
func (r *EntryRepository) List(ctx context.Context, filter EntryFilter) ([]model.Entry, error) {
	var entries []model.Entry
	q := r.db.WithContext(ctx).Model(&model.Entry{}).
		Select("entries.*").
		Joins("LEFT JOIN categories ON categories.id = entries.category_id")
	if filter.CategoryID != nil {
		q = q.Where("entries.category_id = ?", *filter.CategoryID)
	}
	if err := q.Order("categories.position IS NULL, categories.position ASC, entries.position ASC, entries.id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id uint) (*model.Entry, error) {
	var entry model.Entry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, notFound(err, "entry", id)
	}
	return &entry, nil
}

// Create appends entry at the end of its category scope and records its name.
func (r *EntryRepository) Create(ctx context.Context, entry *model.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCategory(tx, entry.CategoryID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&model.Entry{}).Scopes(categoryScope(entry.CategoryID)).Count(&count).Error; err != nil {
			return fmt.Errorf("count entries: %w", err)
		}
		entry.Position = int(count)
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		return recordName(tx, entry.Name, entry.CreatedAt)
	})
}

func (r *EntryRepository) Update(ctx context.Context, id uint, upd model.EntryUpdate) (*model.Entry, error) {
	var entry model.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, id).Error; err != nil {
			return notFound(err, "entry", id)
		}
		oldCategory := entry.CategoryID

		if upd.CategoryID.Set {
			if err := requireCategory(tx, upd.CategoryID.Value); err != nil {
				return err
			}
			entry.CategoryID = upd.CategoryID.Value
		}
		renamed := upd.Name != nil && *upd.Name != entry.Name
		if upd.Name != nil {
			entry.Name = *upd.Name
		}
		if upd.Completed != nil {
			entry.Completed = *upd.Completed
		}
		if upd.Quantity != nil {
			entry.Quantity = *upd.Quantity
		}

		moved := !sameCategory(oldCategory, entry.CategoryID)
		var target []uint
		if moved || upd.Position != nil {
			ids, err := orderedIDs(tx, &model.Entry{}, categoryScope(entry.CategoryID))
			if err != nil {
				return err
			}
			pos := len(ids)
			if upd.Position != nil {
				pos = *upd.Position
			}
			target = insertAt(ids, entry.ID, pos)
		}

		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if target != nil {
			if err := writePositions(tx, &model.Entry{}, target); err != nil {
				return err
			}
		}
		if moved {
			if err := renumber(tx, &model.Entry{}, categoryScope(oldCategory)); err != nil {
				return err
			}
		}
		if renamed {
			if err := recordName(tx, entry.Name, entry.UpdatedAt); err != nil {
				return err
			}
		}
		return tx.First(&entry, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *EntryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry model.Entry
		if err := tx.First(&entry, id).Error; err != nil {
			return notFound(err, "entry", id)
		}
		if err := tx.Delete(&model.Entry{}, id).Error; err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return renumber(tx, &model.Entry{}, categoryScope(entry.CategoryID))
	})
}

// Reorder groups ids by category scope; in each touched scope the listed
// entries take the leading positions in list order.
func (r *EntryRepository) Reorder(ctx context.Context, ids []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []model.Entry
		if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return fmt.Errorf("load entries: %w", err)
		}
		known := make([]uint, 0, len(rows))
		scopeOf := make(map[uint]*uint, len(rows))
		for _, e := range rows {
			known = append(known, e.ID)
			scopeOf[e.ID] = e.CategoryID
		}
		if err := checkKnown(ids, known); err != nil {
			return err
		}

		type group struct {
			categoryID *uint
			ids        []uint
		}
		var groups []*group
		byKey := make(map[string]*group)
		for _, id := range ids {
			key := scopeKey(scopeOf[id])
			g, ok := byKey[key]
			if !ok {
				g = &group{categoryID: scopeOf[id]}
				byKey[key] = g
				groups = append(groups, g)
			}
			g.ids = append(g.ids, id)
		}

		for _, g := range groups {
			current, err := orderedIDs(tx, &model.Entry{}, categoryScope(g.categoryID))
			if err != nil {
				return err
			}
			if err := writePositions(tx, &model.Entry{}, leading(g.ids, current)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCompleted removes every completed entry and closes the gaps.
func (r *EntryRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var scopes []sql.NullInt64
		if err := tx.Model(&model.Entry{}).Where("completed = ?", true).
			Distinct().Pluck("category_id", &scopes).Error; err != nil {
			return fmt.Errorf("load completed: %w", err)
		}
		res := tx.Where("completed = ?", true).Delete(&model.Entry{})
		if res.Error != nil {
			return fmt.Errorf("delete completed: %w", res.Error)
		}
		removed = res.RowsAffected
		for _, s := range scopes {
			var categoryID *uint
			if s.Valid {
				id := uint(s.Int64)
				categoryID = &id
			}
			if err := renumber(tx, &model.Entry{}, categoryScope(categoryID)); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

func requireCategory(tx *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	ok, err := categoryExists(tx, *categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return model.Invalid("categoryId", "category %d does not exist", *categoryID)
	}
	return nil
}

func sameCategory(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func scopeKey(categoryID *uint) string {
	if categoryID == nil {
		return "-"
	}
	return fmt.Sprint(*categoryID)
}
