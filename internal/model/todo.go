package model

import "time"

// Todo represents a single item on a user's list.
type Todo struct {
	ID          string     `gorm:"primaryKey;size:36" json:"_id"`
	UserID      string     `gorm:"index;size:36" json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	DueTime     string     `json:"dueTime,omitempty"`
	Priority    Priority   `gorm:"default:normal" json:"priority"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasDueDate reports whether the todo is scheduled on a calendar day.
func (t Todo) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}
