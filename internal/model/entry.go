package model

import "time"

// Entry is a single item on the grocery list. Positions are scoped per
// category; entries without a category form their own scope.
type Entry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	CategoryID *uint     `gorm:"index" json:"categoryId"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	Quantity   string    `gorm:"not null;default:''" json:"quantity"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EntryName remembers names used for entries so suggestions survive deletion.
type EntryName struct {
	Key        string    `gorm:"column:name_key;primaryKey" json:"-"`
	Name       string    `gorm:"not null" json:"name"`
	Uses       int       `gorm:"not null;default:0" json:"uses"`
	LastUsedAt time.Time `gorm:"index" json:"lastUsedAt"`
}
