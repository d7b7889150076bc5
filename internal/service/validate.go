package service

import (
	"strings"
	"unicode/utf8"

	"grocery-list/internal/model"
)

const maxNameLength = 200

// cleanName trims name and rejects empty or oversized values.
func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.Invalid(field, "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", model.Invalid(field, "must be at most %d characters", maxNameLength)
	}
	return name, nil
}

// checkOrder rejects empty id lists and duplicate ids.
func checkOrder(ids []uint) error {
	if len(ids) == 0 {
		return model.Invalid("ids", "must not be empty")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return model.Invalid("ids", "duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
