package model

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the open/closed state of a task. The two states transition
// directly into each other, there are no intermediate states.
type TaskStatus string

const (
	StatusOpen   TaskStatus = "open"
	StatusClosed TaskStatus = "closed"
)

// ValidStatus reports whether s is one of the two task states.
func ValidStatus(s string) bool {
	return s == string(StatusOpen) || s == string(StatusClosed)
}

// Frequency is the recurrence setting of a task.
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ValidFrequency reports whether f names a known recurrence.
func ValidFrequency(f string) bool {
	switch Frequency(f) {
	case FrequencyNone, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Task is a single item in a list. Dates and times are kept as ISO strings
// ("2006-01-02", "15:04") so they survive JSON round trips without timezone
// drift and still sort chronologically.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TaskListID  uint           `gorm:"index;not null" json:"task_list_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description *string        `json:"description"`
	DueDate     *string        `gorm:"type:date" json:"due_date"`
	StartTime   *string        `gorm:"type:varchar(5)" json:"start_time"`
	EndTime     *string        `gorm:"type:varchar(5)" json:"end_time"`
	Frequency   Frequency      `gorm:"type:varchar(8);not null;default:none" json:"frequency"`
	Status      TaskStatus     `gorm:"type:varchar(8);not null;default:open;index" json:"status"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	List        TaskList         `gorm:"foreignKey:TaskListID" json:"-"`
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID" json:"attachments"`
}
