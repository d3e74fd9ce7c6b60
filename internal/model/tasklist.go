package model

import (
	"time"

	"gorm.io/gorm"
)

// TaskList is a named collection of tasks owned by exactly one user.
// Deleting a list is a soft delete: the row stays, default queries skip it.
type TaskList struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Name      string         `gorm:"not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Tasks []Task `gorm:"foreignKey:TaskListID" json:"-"`
}

// DefaultListName is the list every new user starts with.
const DefaultListName = "My Tasks"
