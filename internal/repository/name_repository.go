package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grocery-list/internal/model"
)

// NameRepository reads the history of entry names used for suggestions.
type NameRepository struct {
	db *gorm.DB
}

func NewNameRepository(db *gorm.DB) *NameRepository {
	return &NameRepository{db: db}
}

// MatchNames returns up to max remembered names containing query. Names
// starting with query come first, then the other matches; each group is
// ordered most used first.
func (r *NameRepository) MatchNames(ctx context.Context, query string, max int) ([]string, error) {
	db := r.db.WithContext(ctx)
	prefix := prefixPattern(query)

	var names []string
	if err := db.Model(&model.EntryName{}).
		Where("name_key LIKE ? ESCAPE '\\'", prefix).
		Order("uses DESC, last_used_at DESC").
		Limit(max).
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("match names: %w", err)
	}
	if len(names) >= max {
		return names, nil
	}

	var rest []string
	if err := db.Model(&model.EntryName{}).
		Where("name_key LIKE ? ESCAPE '\\' AND name_key NOT LIKE ? ESCAPE '\\'", containsPattern(query), prefix).
		Order("uses DESC, last_used_at DESC").
		Limit(max - len(names)).
		Pluck("name", &rest).Error; err != nil {
		return nil, fmt.Errorf("match names: %w", err)
	}
	return append(names, rest...), nil
}

// recordName bumps the use count of name, keeping the latest spelling.
func recordName(tx *gorm.DB, name string, at time.Time) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	row := model.EntryName{Key: key, Name: name, Uses: 1, LastUsedAt: at}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":         name,
			"uses":         gorm.Expr("uses + 1"),
			"last_used_at": at,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("record name: %w", err)
	}
	return nil
}
