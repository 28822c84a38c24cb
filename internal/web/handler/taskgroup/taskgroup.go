// Package taskgroup provides the JSON handlers for task groups and their
// memberships. Destructive operations are gated on the caller holding the
// ADMIN role inside the group; group and membership writes commit atomically.
package taskgroup

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	taskgroupcontroller "github.com/taskery/taskery/internal/db/controller/taskgroup"
	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/web/handler"
	authmiddleware "github.com/taskery/taskery/internal/web/middleware/auth"
)

const (
	// Path is the base path for task group management.
	Path = "/task-groups"

	// RouteByID addresses a single task group.
	RouteByID = Path + "/:" + handler.ParamTaskGroupID
	// RouteByUser lists the task groups of one user.
	RouteByUser = "/users/:" + handler.ParamUserID + "/task-groups"

	// ErrInvalidID is returned when the provided id parameter is invalid or non-positive.
	ErrInvalidID = "Invalid id"
	// ErrGroupNotFound is returned when a task group with the given id does not exist.
	ErrGroupNotFound = "Task group not found"
	// ErrUserNotFound is returned when a user with the given id does not exist.
	ErrUserNotFound = "User not found"
	// ErrFailedCreateGroup indicates the create operation failed unexpectedly.
	ErrFailedCreateGroup = "Failed to create task group"
	// ErrFailedUpdateGroup indicates the update operation failed unexpectedly.
	ErrFailedUpdateGroup = "Failed to update task group"
	// ErrFailedDeleteGroup indicates the delete operation failed unexpectedly.
	ErrFailedDeleteGroup = "Failed to delete task group"
	// ErrFailedLoadGroups indicates an unexpected error occurred while loading task groups.
	ErrFailedLoadGroups = "Failed to load task groups"
)

type memberInput struct {
	UserID   uint64 `json:"userId" validate:"required"`
	RoleKind string `json:"roleKind" validate:"required"`
}

type saveInput struct {
	Name        string        `json:"name" validate:"required,min=1,max=100"`
	Description string        `json:"description" validate:"required,max=255"`
	Users       []memberInput `json:"users" validate:"omitempty,dive"`
}

// Service provides CRUD operations for task groups.
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

	app.Post(Path, s.Create)
	app.Get(Path, s.List)
	app.Delete(Path, s.Clear)
	app.Get(RouteByID, s.resolve, s.Read)
	app.Put(RouteByID, s.resolve, s.Update)
	app.Delete(RouteByID, s.resolve, s.Delete)
	app.Get(RouteByUser, s.ListByUser)

	return nil
}

// resolve loads the task group addressed by the path id into the request
// locals, or short-circuits with 404. Handlers behind it assume the group
// exists.
func (s *Service) resolve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params(handler.ParamTaskGroupID), 10, 64)
	if err != nil || id == 0 {
		return handler.BadRequest(c, ErrInvalidID)
	}

	group, err := taskgroupcontroller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, taskgroupcontroller.ErrGroupNotFound) {
			return handler.NotFound(c, ErrGroupNotFound)
		}

		log.Error().Err(err).Msg("load task group failed")

		return handler.Internal(c, ErrFailedLoadGroups)
	}

	c.Locals(handler.LocalTaskGroup, group)

	return c.Next()
}

// Create persists a new task group with its initial memberships. The caller
// becomes an ADMIN member when the submitted list does not mention them.
func (s *Service) Create(c *fiber.Ctx) error {
	var input saveInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for create task group")
		return handler.BadRequest(c, err.Error())
	}

	members := make([]taskgroupcontroller.MemberInput, 0, len(input.Users)+1)
	callerIncluded := false
	callerID := authmiddleware.CurrentUserID(c)

	for _, m := range input.Users {
		if m.UserID == callerID {
			callerIncluded = true
		}

		members = append(members, taskgroupcontroller.MemberInput{
			UserID:   m.UserID,
			RoleKind: models.RoleKind(m.RoleKind),
		})
	}

	if !callerIncluded {
		members = append(members, taskgroupcontroller.MemberInput{
			UserID:   callerID,
			RoleKind: models.RoleKindAdmin,
		})
	}

	group, err := taskgroupcontroller.Create(s.db, input.Name, input.Description, members)
	if err != nil {
		if errors.Is(err, taskgroupcontroller.ErrNoMembers) ||
			errors.Is(err, taskgroupcontroller.ErrInvalidRole) {
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create task group")

		return handler.Internal(c, ErrFailedCreateGroup)
	}

	return c.Status(fiber.StatusCreated).JSON(group.Client())
}

// Read returns the resolved task group.
func (s *Service) Read(c *fiber.Ctx) error {
	group := c.Locals(handler.LocalTaskGroup).(*models.TaskGroup) //nolint:forcetypeassert

	return c.JSON(group.Client())
}

// Update mutates name and description of the resolved task group.
// Memberships stay untouched.
func (s *Service) Update(c *fiber.Ctx) error {
	group := c.Locals(handler.LocalTaskGroup).(*models.TaskGroup) //nolint:forcetypeassert

	var input saveInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for update task group")
		return handler.BadRequest(c, err.Error())
	}

	if err := taskgroupcontroller.Update(s.db, group, input.Name, input.Description); err != nil {
		log.Error().Err(err).Msg("failed to update task group")
		return handler.Internal(c, ErrFailedUpdateGroup)
	}

	return c.JSON(group.Client())
}

// Delete removes the resolved task group and all its memberships, provided
// the caller is an ADMIN member of it.
func (s *Service) Delete(c *fiber.Ctx) error {
	group := c.Locals(handler.LocalTaskGroup).(*models.TaskGroup) //nolint:forcetypeassert

	err := taskgroupcontroller.Delete(s.db, group.ID, authmiddleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, taskgroupcontroller.ErrNotAdmin) {
			return handler.Unauthorized(c)
		}

		log.Error().Err(err).Msg("failed to delete task group")

		return handler.Internal(c, ErrFailedDeleteGroup)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// List returns all task groups, without membership expansion.
func (s *Service) List(c *fiber.Ctx) error {
	groups, err := taskgroupcontroller.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list task groups")
		return handler.Internal(c, ErrFailedLoadGroups)
	}

	out := make([]models.TaskGroupClient, 0, len(groups))
	for i := range groups {
		out = append(out, groups[i].Client())
	}

	return c.JSON(out)
}

// ListByUser returns the task groups of the path-addressed user, each with
// that user's role expanded.
func (s *Service) ListByUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params(handler.ParamUserID), 10, 64)
	if err != nil || userID == 0 {
		return handler.BadRequest(c, ErrInvalidID)
	}

	if _, err = usercontroller.Get(s.db, userID); err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return handler.NotFound(c, ErrUserNotFound)
		}

		log.Error().Err(err).Msg("load user failed")

		return handler.Internal(c, ErrFailedLoadGroups)
	}

	memberships, err := taskgroupcontroller.ListByUser(s.db, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list task groups by user")
		return handler.Internal(c, ErrFailedLoadGroups)
	}

	out := make([]models.MembershipClient, 0, len(memberships))
	for i := range memberships {
		out = append(out, memberships[i].Client())
	}

	return c.JSON(out)
}

// Clear removes every membership and every task group.
func (s *Service) Clear(c *fiber.Ctx) error {
	if err := taskgroupcontroller.Clear(s.db); err != nil {
		log.Error().Err(err).Msg("failed to clear task groups")
		return handler.Internal(c, ErrFailedDeleteGroup)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
