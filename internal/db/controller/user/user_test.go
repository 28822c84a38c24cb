package user

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/db/controller/task"
	"github.com/taskery/taskery/internal/db/controller/taskgroup"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/db/sequence"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.TaskGroup{},
		&models.Membership{},
		&models.Task{},
		&sequence.Sequence{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		userName      string
		email         string
		password      string
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			userName:      "alice",
			email:         "alice@example.com",
			password:      "secret",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			userName:      "",
			email:         "alice@example.com",
			password:      "secret",
			expectedError: ErrNameEmpty,
		},
		{
			name:          "empty email",
			dbParam:       db,
			userName:      "alice",
			email:         "",
			password:      "secret",
			expectedError: ErrEmailEmpty,
		},
		{
			name:          "empty password",
			dbParam:       db,
			userName:      "alice",
			email:         "alice@example.com",
			password:      "",
			expectedError: ErrPasswordEmpty,
		},
		{
			name:     "successful create",
			dbParam:  db,
			userName: "alice",
			email:    "alice@example.com",
			password: "secret",
		},
		{
			name:          "duplicate email",
			dbParam:       db,
			userName:      "alice again",
			email:         "alice@example.com",
			password:      "secret",
			expectedError: ErrEmailTaken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := Create(tc.dbParam, tc.userName, tc.email, tc.password)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotZero(t, user.ID)

			// the raw password is never stored
			assert.NotEqual(t, tc.password, user.Password)
			assert.True(t, user.VerifyPassword(tc.password))
			assert.False(t, user.VerifyPassword("wrong"))
		})
	}
}

func TestGetByEmail(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	_, err = GetByEmail(db, "")
	require.ErrorIs(t, err, ErrEmailEmpty)

	_, err = GetByEmail(db, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	user, err := GetByEmail(db, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	user, err := Create(db, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, Update(db, user, "alice@new.example.com", "changed"))

	reloaded, err := Get(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", reloaded.Email)
	assert.True(t, reloaded.VerifyPassword("changed"))
	assert.False(t, reloaded.VerifyPassword("secret"))
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	user, err := Create(db, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	group, err := taskgroup.Create(db, "chores", "household chores",
		[]taskgroup.MemberInput{{UserID: user.ID, RoleKind: models.RoleKindAdmin}})
	require.NoError(t, err)

	assigned, err := task.Create(db, "dishes", "do the dishes",
		models.FrequencyKindDaily, user.ID, group.ID)
	require.NoError(t, err)

	t.Run("blocked by dependent task", func(t *testing.T) {
		require.ErrorIs(t, Delete(db, user.ID), ErrHasTasks)

		// the refusal left both records in place
		_, err := Get(db, user.ID)
		require.NoError(t, err)
		_, err = task.Get(db, assigned.ID)
		require.NoError(t, err)
	})

	t.Run("succeeds once tasks are gone", func(t *testing.T) {
		require.NoError(t, task.Delete(db, assigned.ID))
		require.NoError(t, Delete(db, user.ID))

		_, err := Get(db, user.ID)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestClear(t *testing.T) {
	db := setupTestDB(t)

	user, err := Create(db, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	group, err := taskgroup.Create(db, "chores", "household chores",
		[]taskgroup.MemberInput{{UserID: user.ID, RoleKind: models.RoleKindAdmin}})
	require.NoError(t, err)

	_, err = task.Create(db, "dishes", "do the dishes",
		models.FrequencyKindDaily, user.ID, group.ID)
	require.NoError(t, err)

	require.ErrorIs(t, Clear(db), ErrHasTasks)

	require.NoError(t, task.Clear(db))
	require.NoError(t, Clear(db))

	users, err := List(db)
	require.NoError(t, err)
	assert.Empty(t, users)
}
