// Package task provides the JSON handlers for tasks. A task references a
// responsible user and an owning task group; both references are validated
// before anything is persisted and expanded on every read.
package task

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	taskcontroller "github.com/taskery/taskery/internal/db/controller/task"
	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/db/models"
	"github.com/taskery/taskery/internal/web/handler"
)

const (
	// Path is the base path for task management.
	Path = "/tasks"

	// RouteByID addresses a single task.
	RouteByID = Path + "/:" + handler.ParamTaskID
	// RouteByUser lists the tasks of one responsible user.
	RouteByUser = "/users/:" + handler.ParamUserID + "/tasks"

	// QueryUserID optionally filters the task list by responsible user.
	QueryUserID = "user_id"

	// ErrInvalidID is returned when the provided id parameter is invalid or non-positive.
	ErrInvalidID = "Invalid id"
	// ErrTaskNotFound is returned when a task with the given id does not exist.
	ErrTaskNotFound = "Task not found"
	// ErrUserNotFound is returned when a user with the given id does not exist.
	ErrUserNotFound = "User not found"
	// ErrFailedCreateTask indicates the create operation failed unexpectedly.
	ErrFailedCreateTask = "Failed to create task"
	// ErrFailedUpdateTask indicates the update operation failed unexpectedly.
	ErrFailedUpdateTask = "Failed to update task"
	// ErrFailedDeleteTask indicates the delete operation failed unexpectedly.
	ErrFailedDeleteTask = "Failed to delete task"
	// ErrFailedLoadTasks indicates an unexpected error occurred while loading tasks.
	ErrFailedLoadTasks = "Failed to load tasks"
)

type kindInput struct {
	Code string `json:"code" validate:"required"`
}

type refInput struct {
	ID uint64 `json:"id" validate:"required"`
}

type createInput struct {
	Name          string    `json:"name" validate:"required,min=1,max=100"`
	Description   string    `json:"description" validate:"required,max=255"`
	FrequencyKind kindInput `json:"frequencyKind" validate:"required"`
	Responsible   refInput  `json:"responsible" validate:"required"`
	TaskGroup     refInput  `json:"taskGroup" validate:"required"`
}

type updateInput struct {
	Name          string    `json:"name" validate:"required,min=1,max=100"`
	Description   string    `json:"description" validate:"required,max=255"`
	FrequencyKind kindInput `json:"frequencyKind" validate:"required"`
	Responsible   refInput  `json:"responsible" validate:"required"`
}

// Service provides CRUD operations for tasks.
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

// resolve loads the task addressed by the path id into the request locals,
// or short-circuits with 404.
func (s *Service) resolve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params(handler.ParamTaskID), 10, 64)
	if err != nil || id == 0 {
		return handler.BadRequest(c, ErrInvalidID)
	}

	task, err := taskcontroller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, taskcontroller.ErrTaskNotFound) {
			return handler.NotFound(c, ErrTaskNotFound)
		}

		log.Error().Err(err).Msg("load task failed")

		return handler.Internal(c, ErrFailedLoadTasks)
	}

	c.Locals(handler.LocalTask, task)

	return c.Next()
}

// Create persists a new task. Unresolved user or group references are a
// validation failure, not a missing resource: the reference is caller
// supplied data.
func (s *Service) Create(c *fiber.Ctx) error {
	var input createInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for create task")
		return handler.BadRequest(c, err.Error())
	}

	task, err := taskcontroller.Create(
		s.db,
		input.Name,
		input.Description,
		models.FrequencyKind(input.FrequencyKind.Code),
		input.Responsible.ID,
		input.TaskGroup.ID,
	)
	if err != nil {
		if isValidationErr(err) {
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create task")

		return handler.Internal(c, ErrFailedCreateTask)
	}

	return c.Status(fiber.StatusCreated).JSON(task.Client())
}

// Read returns the resolved task with its references expanded.
func (s *Service) Read(c *fiber.Ctx) error {
	task := c.Locals(handler.LocalTask).(*models.Task) //nolint:forcetypeassert

	return c.JSON(task.Client())
}

// Update mutates the resolved task. The owning group is not reassignable.
func (s *Service) Update(c *fiber.Ctx) error {
	task := c.Locals(handler.LocalTask).(*models.Task) //nolint:forcetypeassert

	var input updateInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for update task")
		return handler.BadRequest(c, err.Error())
	}

	updated, err := taskcontroller.Update(
		s.db,
		task,
		input.Name,
		input.Description,
		models.FrequencyKind(input.FrequencyKind.Code),
		input.Responsible.ID,
	)
	if err != nil {
		if isValidationErr(err) {
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to update task")

		return handler.Internal(c, ErrFailedUpdateTask)
	}

	return c.JSON(updated.Client())
}

// Delete removes the resolved task. Tasks have no dependents, so deletion is
// unconditional.
func (s *Service) Delete(c *fiber.Ctx) error {
	task := c.Locals(handler.LocalTask).(*models.Task) //nolint:forcetypeassert

	if err := taskcontroller.Delete(s.db, task.ID); err != nil {
		log.Error().Err(err).Msg("failed to delete task")
		return handler.Internal(c, ErrFailedDeleteTask)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// List returns all tasks with expanded references, optionally filtered by
// the user_id query parameter.
func (s *Service) List(c *fiber.Ctx) error {
	var responsibleID uint64

	if filter := c.Query(QueryUserID); filter != "" {
		id, err := strconv.ParseUint(filter, 10, 64)
		if err != nil {
			return handler.BadRequest(c, ErrInvalidID)
		}

		responsibleID = id
	}

	return s.list(c, responsibleID)
}

// ListByUser returns the tasks of the path-addressed responsible user.
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

		return handler.Internal(c, ErrFailedLoadTasks)
	}

	return s.list(c, userID)
}

// Clear removes every task.
func (s *Service) Clear(c *fiber.Ctx) error {
	if err := taskcontroller.Clear(s.db); err != nil {
		log.Error().Err(err).Msg("failed to clear tasks")
		return handler.Internal(c, ErrFailedDeleteTask)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) list(c *fiber.Ctx, responsibleID uint64) error {
	tasks, err := taskcontroller.List(s.db, responsibleID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")
		return handler.Internal(c, ErrFailedLoadTasks)
	}

	out := make([]models.TaskClient, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].Client())
	}

	return c.JSON(out)
}

func isValidationErr(err error) bool {
	return errors.Is(err, taskcontroller.ErrResponsibleNotFound) ||
		errors.Is(err, taskcontroller.ErrTaskGroupNotFound) ||
		errors.Is(err, taskcontroller.ErrInvalidFrequency) ||
		errors.Is(err, taskcontroller.ErrNameEmpty) ||
		errors.Is(err, taskcontroller.ErrDescriptionEmpty)
}
