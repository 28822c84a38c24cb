package handler

import "github.com/gofiber/fiber/v2"

// ErrorBody is the structured error payload of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error writes a structured error response with the given status.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorBody{Error: msg})
}

// BadRequest writes a 400 validation failure response.
func BadRequest(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusBadRequest, msg)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "unauthorized")
}

// NotFound writes a 404 response.
func NotFound(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusNotFound, msg)
}

// Conflict writes a 409 response for deletes blocked by dependents.
func Conflict(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusConflict, msg)
}

// Internal writes a 500 response.
func Internal(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusInternalServerError, msg)
}
