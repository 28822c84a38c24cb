// Package task provides store operations for tasks. A task references a
// responsible user and an owning task group; both references are validated
// before anything is persisted, and read paths resolve them for projection.
package task

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
)

const (
	responsibleQueryPattern = "responsible_id = ?"

	preloadResponsible = "Responsible"
	preloadTaskGroup   = "TaskGroup"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNameEmpty is returned when attempting to save a task with an empty name.
	ErrNameEmpty = errors.New("task name cannot be empty")
	// ErrDescriptionEmpty is returned when attempting to save a task with an empty description.
	ErrDescriptionEmpty = errors.New("task description cannot be empty")
	// ErrInvalidFrequency is returned for an unregistered frequency code.
	ErrInvalidFrequency = errors.New("invalid frequency kind")
	// ErrResponsibleNotFound is returned when the referenced responsible user does not exist.
	ErrResponsibleNotFound = errors.New("responsible user does not exist")
	// ErrTaskGroupNotFound is returned when the referenced task group does not exist.
	ErrTaskGroupNotFound = errors.New("task group does not exist")
)

// Create validates that the referenced user and task group exist, allocates an
// id and persists the task. The returned task has both references resolved.
func Create(
	db *gorm.DB,
	name, description string,
	frequency models.FrequencyKind,
	responsibleID, taskGroupID uint64,
) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrNameEmpty
	}

	if description == "" {
		return nil, ErrDescriptionEmpty
	}

	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	if err := checkResponsible(db, responsibleID); err != nil {
		return nil, err
	}

	var group models.TaskGroup
	if err := db.First(&group, taskGroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskGroupNotFound
		}
		return nil, err
	}

	var task models.Task

	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := sequence.Next(tx, sequence.KindTask)
		if err != nil {
			return err
		}

		task = models.Task{
			ID:            id,
			Name:          name,
			Description:   description,
			FrequencyKind: frequency,
			ResponsibleID: responsibleID,
			TaskGroupID:   taskGroupID,
		}

		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, task.ID)
}

// Get retrieves a task by its id with the responsible user and owning group resolved.
func Get(db *gorm.DB, id uint64) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var task models.Task
	result := db.Preload(preloadResponsible).Preload(preloadTaskGroup).First(&task, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}

	return &task, nil
}

// Update mutates an already resolved task. The new responsible user must
// exist; the owning group is not reassignable.
func Update(
	db *gorm.DB,
	task *models.Task,
	name, description string,
	frequency models.FrequencyKind,
	responsibleID uint64,
) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrNameEmpty
	}

	if description == "" {
		return nil, ErrDescriptionEmpty
	}

	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	if err := checkResponsible(db, responsibleID); err != nil {
		return nil, err
	}

	task.Name = name
	task.Description = description
	task.FrequencyKind = frequency
	task.ResponsibleID = responsibleID

	if err := db.Omit(preloadResponsible, preloadTaskGroup).Save(task).Error; err != nil {
		return nil, err
	}

	return Get(db, task.ID)
}

// Delete removes a task by its id. Tasks have no dependents, so deletion is
// unconditional.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Delete(&models.Task{}, id).Error
}

// List retrieves all tasks with their references resolved, optionally
// filtered by the responsible user. A responsibleID of 0 means no filter.
func List(db *gorm.DB, responsibleID uint64) ([]models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Preload(preloadResponsible).Preload(preloadTaskGroup)
	if responsibleID != 0 {
		tx = tx.Where(responsibleQueryPattern, responsibleID)
	}

	var tasks []models.Task
	if err := tx.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Clear removes every task.
func Clear(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Task{}).Error
}

// CountByResponsible counts the tasks referencing the given user as responsible.
func CountByResponsible(db *gorm.DB, userID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	err := db.Model(&models.Task{}).Where(responsibleQueryPattern, userID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Count counts all tasks.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func checkResponsible(db *gorm.DB, userID uint64) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResponsibleNotFound
		}
		return err
	}

	return nil
}
