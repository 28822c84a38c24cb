// Package auth provides the bearer token authentication middleware.
// It resolves the caller's user account from the Authorization header and
// stores it in the request locals; every handler behind it can trust the
// resolved identity.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	usercontroller "github.com/taskery/taskery/internal/db/controller/user"
	"github.com/taskery/taskery/internal/web/handler"
	"github.com/taskery/taskery/internal/web/session"
)

const bearerPrefix = "Bearer "

// openPaths are reachable without authentication.
var openPaths = map[string]struct{}{
	"/login":      {},
	"/register":   {},
	"/checkalive": {},
}

// New creates the authentication middleware backed by the given database.
func New(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := openPaths[c.Path()]; ok {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return handler.Unauthorized(c)
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		if token == "" {
			return handler.Unauthorized(c)
		}

		sessData := new(session.Data)
		if err := sessData.Read(token); err != nil {
			return handler.Unauthorized(c)
		}

		// the session only holds the id; always resolve the current record
		current, err := usercontroller.Get(db, sessData.UserID)
		if err != nil {
			return handler.Unauthorized(c)
		}

		c.Locals(handler.LocalCurrentUser, current)

		return c.Next()
	}
}

// CurrentUserID returns the authenticated caller's user id, or 0 when the
// request carries no resolved identity.
func CurrentUserID(c *fiber.Ctx) uint64 {
	user := handler.CurrentUser(c)
	if user == nil {
		return 0
	}

	return user.ID
}
