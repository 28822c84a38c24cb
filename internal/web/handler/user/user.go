// Package user provides the JSON handlers for user accounts. Deletion is
// blocked while tasks still reference the user as responsible.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = "/users"

	// RouteByID addresses a single user.
	RouteByID = Path + "/:" + handler.ParamUserID

	// ErrInvalidID is returned when the provided id parameter is invalid or non-positive.
	ErrInvalidID = "Invalid id"
	// ErrUserNotFound is returned when a user with the given id does not exist.
	ErrUserNotFound = "User not found"
	// ErrUserHasTasks is returned when deletion is blocked by dependent tasks.
	ErrUserHasTasks = "User is still responsible for tasks"
	// ErrFailedUpdateUser indicates the update operation failed unexpectedly.
	ErrFailedUpdateUser = "Failed to update user"
	// ErrFailedDeleteUser indicates the delete operation failed unexpectedly.
	ErrFailedDeleteUser = "Failed to delete user"
	// ErrFailedLoadUsers indicates an unexpected error occurred while loading users.
	ErrFailedLoadUsers = "Failed to load users"
)

type updateInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	app.Get(Path, s.List)
	app.Delete(Path, s.Clear)
	app.Get(RouteByID, s.resolve, s.Read)
	app.Put(RouteByID, s.resolve, s.Update)
	app.Delete(RouteByID, s.resolve, s.Delete)

	return nil
}

// resolve loads the user addressed by the path id into the request locals,
// or short-circuits with 404.
func (s *Service) resolve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params(handler.ParamUserID), 10, 64)
	if err != nil || id == 0 {
		return handler.BadRequest(c, ErrInvalidID)
	}

	user, err := usercontroller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return handler.NotFound(c, ErrUserNotFound)
		}

		log.Error().Err(err).Msg("load user failed")

		return handler.Internal(c, ErrFailedLoadUsers)
	}

	c.Locals(handler.LocalUser, user)

	return c.Next()
}

// Read returns the resolved user's public fields.
func (s *Service) Read(c *fiber.Ctx) error {
	user := c.Locals(handler.LocalUser).(*models.User) //nolint:forcetypeassert

	return c.JSON(user.Client())
}

// Update replaces email and password of the resolved user.
func (s *Service) Update(c *fiber.Ctx) error {
	user := c.Locals(handler.LocalUser).(*models.User) //nolint:forcetypeassert

	var input updateInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for update user")
		return handler.BadRequest(c, err.Error())
	}

	if err := usercontroller.Update(s.db, user, input.Email, input.Password); err != nil {
		log.Error().Err(err).Msg("failed to update user")
		return handler.Internal(c, ErrFailedUpdateUser)
	}

	return c.JSON(user.Client())
}

// Delete removes the resolved user, unless tasks still reference them.
func (s *Service) Delete(c *fiber.Ctx) error {
	user := c.Locals(handler.LocalUser).(*models.User) //nolint:forcetypeassert

	if err := usercontroller.Delete(s.db, user.ID); err != nil {
		if errors.Is(err, usercontroller.ErrHasTasks) {
			return handler.Conflict(c, ErrUserHasTasks)
		}

		log.Error().Err(err).Msg("failed to delete user")

		return handler.Internal(c, ErrFailedDeleteUser)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// List returns all users projected to their public fields.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := usercontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return handler.Internal(c, ErrFailedLoadUsers)
	}

	out := make([]models.UserClient, 0, len(users))
	for i := range users {
		out = append(out, users[i].Client())
	}

	return c.JSON(out)
}

// Clear removes every user, unless any task still exists.
func (s *Service) Clear(c *fiber.Ctx) error {
	if err := usercontroller.Clear(s.db); err != nil {
		if errors.Is(err, usercontroller.ErrHasTasks) {
			return handler.Conflict(c, ErrUserHasTasks)
		}

		log.Error().Err(err).Msg("failed to clear users")

		return handler.Internal(c, ErrFailedDeleteUser)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
