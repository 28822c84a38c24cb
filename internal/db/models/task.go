package models

import "time"

// Task represents a unit of work owned by a task group and assigned to a
// responsible user. Both references must resolve to existing records before a
// task is persisted.
type Task struct {
	// ID is the unique identifier for the task, assigned by the sequence allocator.
	ID uint64 `gorm:"primaryKey;autoIncrement:false"`
	// Name is the display name of the task.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable explanation of the task.
	Description string `gorm:"size:255;not null"`
	// FrequencyKind is how often the task repeats.
	FrequencyKind FrequencyKind `gorm:"type:varchar(20);not null"`
	// ResponsibleID is the ID of the user responsible for the task.
	// An existing task blocks deletion of its responsible user.
	ResponsibleID uint64 `gorm:"column:responsible_id;not null"`
	// TaskGroupID is the ID of the task group owning the task.
	TaskGroupID uint64 `gorm:"column:task_group_id;not null"`
	// Responsible is the associated user (loaded via foreign key).
	Responsible User `gorm:"foreignKey:ResponsibleID;references:ID"`
	// TaskGroup is the associated group (loaded via foreign key).
	TaskGroup TaskGroup `gorm:"foreignKey:TaskGroupID;references:ID"`
	// CreatedAt is the timestamp when the task was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the task was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}
