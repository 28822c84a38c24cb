// Package handler holds shared pieces of the JSON API handlers: the service
// interface they implement, locals keys, and error response helpers.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/taskery/taskery/internal/config"
	"github.com/taskery/taskery/internal/db/models"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error
}

// CurrentUser returns the authenticated user resolved by the auth middleware,
// or nil when the request is unauthenticated.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(LocalCurrentUser).(*models.User)
	if !ok {
		return nil
	}

	return user
}
