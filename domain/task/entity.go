package task

import (
	"errors"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
)

// ErrNotFound is returned when a task does not exist or belongs to another
// user. Callers cannot tell the two cases apart.
var ErrNotFound = errors.New("task not found")

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority validates s as a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", validation.Field("priority", "must be one of low, med, high")
	}
	return p, nil
}

// Task is a single to-do item owned by one user.
type Task struct {
	ID          string     `json:"_id" bson:"_id" gorm:"primaryKey;size:36"`
	UserID      string     `json:"userId" bson:"userId" gorm:"size:36;not null;index:idx_tasks_owner_due,priority:1"`
	Title       string     `json:"title" bson:"title" gorm:"not null"`
	Description string     `json:"description" bson:"description"`
	DueAt       *time.Time `json:"dueAt" bson:"dueAt" gorm:"index:idx_tasks_owner_due,priority:2"`
	Priority    Priority   `json:"priority" bson:"priority" gorm:"size:4;not null;default:med"`
	Completed   bool       `json:"completed" bson:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether t is incomplete and due before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueAt != nil && t.DueAt.Before(now)
}

// HasDueDate reports whether a due date is set.
func (t *Task) HasDueDate() bool {
	return t.DueAt != nil
}
