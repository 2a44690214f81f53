package models

import "time"

// Record is one durable key/value entry (tasks, username, theme)
type Record struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
