package model

import (
	"bytes"
	"encoding/json"
)

// CategoryUpdate carries the fields a client may change on a category.
// Nil fields are left untouched.
type CategoryUpdate struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

// EntryUpdate carries the fields a client may change on an entry.
type EntryUpdate struct {
	Name       *string    `json:"name"`
	CategoryID OptionalID `json:"categoryId"`
	Completed  *bool      `json:"completed"`
	Quantity   *string    `json:"quantity"`
	Position   *int       `json:"position"`
}

// OptionalID distinguishes an absent JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *uint
}

// Some returns an OptionalID set to id.
func Some(id uint) OptionalID {
	return OptionalID{Set: true, Value: &id}
}

// Null returns an OptionalID explicitly set to null.
func Null() OptionalID {
	return OptionalID{Set: true}
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
