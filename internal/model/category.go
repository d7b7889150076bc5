package model

import "time"

// Category groups entries (produce, dairy, etc.) and has an explicit display order.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Position  int       `gorm:"not null;default:0;index" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
