package api

import (
	"bytes"
	"encoding/json"
)

// reorderRequest accepts either a bare JSON array of ids or {"ids": [...]}.
type reorderRequest []uint

func (r *reorderRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var ids []uint
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*r = ids
		return nil
	}
	var wrapped struct {
		IDs []uint `json:"ids"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*r = wrapped.IDs
	return nil
}
