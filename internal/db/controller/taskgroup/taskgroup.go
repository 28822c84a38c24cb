// Package taskgroup provides store operations for task groups and their
// memberships. A group and its memberships form one consistent unit: every
// multi-row write runs inside a single transaction, and destructive group
// operations are gated on the caller holding the ADMIN role in the group.
package taskgroup

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
)

const (
	groupQueryPattern  = "task_group_id = ?"
	memberQueryPattern = "task_group_id = ? AND user_id = ?"
	userQueryPattern   = "user_id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrGroupNotFound is returned when a task group is not found.
	ErrGroupNotFound = errors.New("task group not found")
	// ErrNameEmpty is returned when attempting to save a group with an empty name.
	ErrNameEmpty = errors.New("task group name cannot be empty")
	// ErrDescriptionEmpty is returned when attempting to save a group with an empty description.
	ErrDescriptionEmpty = errors.New("task group description cannot be empty")
	// ErrNoMembers is returned when a group would be created without any membership.
	ErrNoMembers = errors.New("task group needs at least one member")
	// ErrInvalidRole is returned when a membership carries an unregistered role code.
	ErrInvalidRole = errors.New("invalid role kind")
	// ErrNotAdmin is returned when the caller is not an ADMIN member of the group.
	ErrNotAdmin = errors.New("caller is not an admin of the task group")
)

// MemberInput describes one membership to attach when creating a group.
type MemberInput struct {
	UserID   uint64
	RoleKind models.RoleKind
}

// Create persists a new task group together with its initial memberships.
// The group id allocation, the group row and every membership row commit or
// roll back as one unit; a group is never visible without a membership.
func Create(db *gorm.DB, name, description string, members []MemberInput) (*models.TaskGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrNameEmpty
	}

	if description == "" {
		return nil, ErrDescriptionEmpty
	}

	if len(members) == 0 {
		return nil, ErrNoMembers
	}

	for _, m := range members {
		if !m.RoleKind.Valid() {
			return nil, ErrInvalidRole
		}
	}

	var group models.TaskGroup

	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := sequence.Next(tx, sequence.KindTaskGroup)
		if err != nil {
			return err
		}

		group = models.TaskGroup{
			ID:          id,
			Name:        name,
			Description: description,
		}

		if err = tx.Create(&group).Error; err != nil {
			return err
		}

		for _, m := range members {
			membership := models.Membership{
				TaskGroupID: id,
				UserID:      m.UserID,
				RoleKind:    m.RoleKind,
			}

			if err = tx.Create(&membership).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// Get retrieves a task group by its id.
func Get(db *gorm.DB, id uint64) (*models.TaskGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var group models.TaskGroup
	result := db.First(&group, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, result.Error
	}

	return &group, nil
}

// Update mutates name and description of an already resolved group.
// Memberships are not touched.
func Update(db *gorm.DB, group *models.TaskGroup, name, description string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrNameEmpty
	}

	if description == "" {
		return ErrDescriptionEmpty
	}

	group.Name = name
	group.Description = description

	return db.Save(group).Error
}

// Delete removes a task group and all its memberships in one transaction.
// The caller must hold the ADMIN role in the group: a missing membership row
// or any other role refuses the operation and leaves the group untouched.
func Delete(db *gorm.DB, groupID, callerUserID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	var membership models.Membership
	result := db.Where(memberQueryPattern, groupID, callerUserID).First(&membership)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrNotAdmin
		}
		return result.Error
	}

	if membership.RoleKind != models.RoleKindAdmin {
		return ErrNotAdmin
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(groupQueryPattern, groupID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.TaskGroup{}, groupID).Error
	})
}

// List retrieves all task groups, without membership expansion.
func List(db *gorm.DB) ([]models.TaskGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.TaskGroup
	if err := db.Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// ListByUser retrieves the memberships of the given user with their groups
// resolved, so projections can expand group name/description and the user's
// role per group.
func ListByUser(db *gorm.DB, userID uint64) ([]models.Membership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var memberships []models.Membership
	err := db.Preload("TaskGroup").
		Where(userQueryPattern, userID).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// Clear removes every membership and every task group in one transaction.
// Clearing an already empty store is a no-op.
func Clear(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.Membership{}).Error
		if err != nil {
			return err
		}

		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.TaskGroup{}).Error
	})
}
