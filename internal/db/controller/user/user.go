// Package user provides store operations for user accounts. Deleting users is
// guarded by dependent tasks: a user referenced as responsible by any task
// cannot be removed.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/db/controller/task"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
)

const emailQueryPattern = "email = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrNameEmpty is returned when attempting to save a user with an empty name.
	ErrNameEmpty = errors.New("user name cannot be empty")
	// ErrEmailEmpty is returned when attempting to save a user with an empty email.
	ErrEmailEmpty = errors.New("user email cannot be empty")
	// ErrPasswordEmpty is returned when attempting to save a user with an empty password.
	ErrPasswordEmpty = errors.New("user password cannot be empty")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrHasTasks is returned when deletion is blocked by dependent tasks.
	ErrHasTasks = errors.New("user is still responsible for tasks")
)

// Create registers a new user with a hashed password. The email must not be
// registered yet.
func Create(db *gorm.DB, name, email, password string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrNameEmpty
	}

	if email == "" {
		return nil, ErrEmailEmpty
	}

	if password == "" {
		return nil, ErrPasswordEmpty
	}

	var existing models.User
	result := db.Where(emailQueryPattern, email).First(&existing)
	if result.Error == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	var user models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := sequence.Next(tx, sequence.KindUser)
		if err != nil {
			return err
		}

		user = models.User{
			ID:       id,
			Name:     name,
			Email:    email,
			Password: models.HashPassword(password),
		}

		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Get retrieves a user by its id.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail retrieves a user by its email address.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if email == "" {
		return nil, ErrEmailEmpty
	}

	var user models.User
	result := db.Where(emailQueryPattern, email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// Update replaces email and password of an already resolved user.
// The new password is hashed before it is stored.
func Update(db *gorm.DB, user *models.User, email, password string) error {
	if db == nil {
		return ErrDBNil
	}

	if email == "" {
		return ErrEmailEmpty
	}

	if password == "" {
		return ErrPasswordEmpty
	}

	user.Email = email
	user.Password = models.HashPassword(password)

	return db.Save(user).Error
}

// Delete removes a user by its id. Deletion is refused while any task still
// references the user as responsible.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	count, err := task.CountByResponsible(db, id)
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrHasTasks
	}

	return db.Delete(&models.User{}, id).Error
}

// List retrieves all users.
func List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// Clear removes every user. Clearing is refused while any task exists.
func Clear(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	count, err := task.Count(db)
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrHasTasks
	}

	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}
