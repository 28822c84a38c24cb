package models

import "time"

// Membership represents the many-to-many relationship between users and task groups.
// Its identity is the composite primary key (task_group_id, user_id), so a user
// holds at most one role in a given group. Memberships are exclusively owned by
// the pair: they are created together with their group and removed when the
// group is deleted.
type Membership struct {
	// TaskGroupID is the ID of the task group in this membership.
	TaskGroupID uint64 `gorm:"primaryKey;column:task_group_id"`
	// UserID is the ID of the user in this membership.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// RoleKind is the role the user holds within the group.
	RoleKind RoleKind `gorm:"type:varchar(20);not null"`
	// TaskGroup is the associated group (loaded via foreign key).
	// When a group is deleted, all memberships in that group are removed (CASCADE).
	TaskGroup TaskGroup `gorm:"foreignKey:TaskGroupID;constraint:OnDelete:CASCADE"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, all their memberships are removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the membership was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the membership was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Membership model.
func (Membership) TableName() string {
	return "task_group_users"
}
