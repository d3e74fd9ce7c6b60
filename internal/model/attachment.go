package model

import "time"

// TaskAttachment records a file stored alongside a task. FilePath is the
// reference inside the attachment store; URL is derived from it at read
// time and never persisted.
type TaskAttachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index;not null" json:"task_id"`
	FilePath  string    `gorm:"not null" json:"-"`
	FileName  string    `gorm:"not null" json:"file_name"`
	URL       string    `gorm:"-" json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
