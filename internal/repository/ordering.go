package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"grocery-list/internal/model"
)

// scope narrows a query to one ordering group.
type scope func(*gorm.DB) *gorm.DB

func allRows(db *gorm.DB) *gorm.DB { return db }

// categoryScope selects the entries of one category, or the uncategorized
// entries when categoryID is nil.
func categoryScope(categoryID *uint) scope {
	return func(db *gorm.DB) *gorm.DB {
		if categoryID == nil {
			return db.Where("category_id IS NULL")
		}
		return db.Where("category_id = ?", *categoryID)
	}
}

func orderedIDs(tx *gorm.DB, table any, sc scope) ([]uint, error) {
	var ids []uint
	if err := tx.Model(table).Scopes(sc).Order("position ASC, id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return ids, nil
}

// writePositions assigns position = index to every id, touching only rows
// whose position actually changes.
func writePositions(tx *gorm.DB, table any, ids []uint) error {
	for i, id := range ids {
		if err := tx.Model(table).Where("id = ? AND position <> ?", id, i).UpdateColumn("position", i).Error; err != nil {
			return fmt.Errorf("write position: %w", err)
		}
	}
	return nil
}

// renumber closes gaps left by deletes so positions are 0..n-1 again.
func renumber(tx *gorm.DB, table any, sc scope) error {
	ids, err := orderedIDs(tx, table, sc)
	if err != nil {
		return err
	}
	return writePositions(tx, table, ids)
}

// leading puts front first, in the given order, followed by the rest of
// current in its existing order.
func leading(front, current []uint) []uint {
	seen := make(map[uint]struct{}, len(front))
	out := make([]uint, 0, len(current))
	for _, id := range front {
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// insertAt places id at pos, clamped to the bounds of ids. Any existing
// occurrence of id is removed first.
func insertAt(ids []uint, id uint, pos int) []uint {
	rest := without(ids, id)
	if pos < 0 {
		pos = 0
	}
	if pos > len(rest) {
		pos = len(rest)
	}
	out := make([]uint, 0, len(rest)+1)
	out = append(out, rest[:pos]...)
	out = append(out, id)
	return append(out, rest[pos:]...)
}

func without(ids []uint, id uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// checkKnown fails when ids names a record missing from known.
func checkKnown(ids, known []uint) error {
	set := make(map[uint]struct{}, len(known))
	for _, id := range known {
		set[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return model.Invalid("ids", "unknown id %d", id)
		}
	}
	return nil
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, model.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern (used with ESCAPE '\') matching
// values that contain the lower-cased query.
func containsPattern(query string) string {
	return "%" + prefixPattern(query)
}

// prefixPattern matches values starting with the lower-cased query.
func prefixPattern(query string) string {
	return likeEscaper.Replace(strings.ToLower(query)) + "%"
}
