package models

import "time"

// TaskGroup represents a group of tasks shared by its member users.
// A task group only exists together with at least one membership: creation
// persists the group and its initial memberships in one transaction, and
// deletion removes the group and all its memberships in one transaction.
type TaskGroup struct {
	// ID is the unique identifier for the task group, assigned by the sequence allocator.
	ID uint64 `gorm:"primaryKey;autoIncrement:false"`
	// Name is the display name of the task group.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:255;not null"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the TaskGroup model.
func (TaskGroup) TableName() string {
	return "task_groups"
}
