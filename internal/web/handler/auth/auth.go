// Package auth provides the register and login endpoints. Login verifies the
// password and mints an opaque bearer token; everything else in the API
// consumes the identity this package establishes.
package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/web/handler"
	"github.com/taskery/taskery/internal/web/session"
)

const (
	// PathLogin is the login route.
	PathLogin = "/login"
	// PathLogout is the logout route.
	PathLogout = "/logout"
	// PathRegister is the register route.
	PathRegister = "/register"

	bearerPrefix = "Bearer "

	// ErrInvalidCredentials is returned on a failed login without telling which part failed.
	ErrInvalidCredentials = "invalid email or password"
	// ErrFailedRegister indicates the register operation failed unexpectedly.
	ErrFailedRegister = "failed to register user"
	// ErrFailedLogin indicates the login operation failed unexpectedly.
	ErrFailedLogin = "failed to log in"
)

type registerInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginOutput struct {
	Token string `json:"token"`
}

// Service provides the register and login handlers.
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

	app.Post(PathRegister, s.Register)
	app.Post(PathLogin, s.Login)
	app.Post(PathLogout, s.Logout)

	return nil
}

// Register creates a new user account.
func (s *Service) Register(c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for register")
		return handler.BadRequest(c, err.Error())
	}

	created, err := usercontroller.Create(s.db, input.Name, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, usercontroller.ErrEmailTaken) {
			return handler.Conflict(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create user")

		return handler.Internal(c, ErrFailedRegister)
	}

	return c.Status(fiber.StatusCreated).JSON(created.Client())
}

// Login verifies the credentials and returns a bearer token.
func (s *Service) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.validator.Struct(input); err != nil {
		log.Warn().Err(err).Msg("validation failed for login")
		return handler.BadRequest(c, err.Error())
	}

	dbUser, err := usercontroller.GetByEmail(s.db, input.Email)
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return handler.Error(c, fiber.StatusUnauthorized, ErrInvalidCredentials)
		}

		log.Error().Err(err).Msg("failed to load user for login")

		return handler.Internal(c, ErrFailedLogin)
	}

	if !dbUser.VerifyPassword(input.Password) {
		return handler.Error(c, fiber.StatusUnauthorized, ErrInvalidCredentials)
	}

	token := session.GenerateToken()

	sessData := &session.Data{
		UserID: dbUser.ID,
		Email:  dbUser.Email,
	}

	if err = sessData.Write(token, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return handler.Internal(c, ErrFailedLogin)
	}

	return c.JSON(loginOutput{Token: token})
}

// Logout invalidates the caller's bearer token.
func (s *Service) Logout(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), bearerPrefix)

	if err := session.Delete(token); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
		return handler.Internal(c, ErrFailedLogin)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
