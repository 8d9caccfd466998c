package models

import "time"

// Task statuses. Any status may follow any other; there is no
// ordering constraint between them.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is one of the three task statuses.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Task represents a tracked work item owned by a user.
type Task struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Status       string    `gorm:"size:16;not null;default:todo;index" json:"status"`
	TotalMinutes int       `gorm:"not null;default:0" json:"totalMinutes"`
	UserID       *uint     `gorm:"index" json:"userId"`
	User         *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
