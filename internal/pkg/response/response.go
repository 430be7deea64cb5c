package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"conveyease/internal/core/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnprocessableEntity, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// StatusFor maps a service error onto an HTTP status code.
// A workflow refusal is a 403: the caller is authenticated but the
// transition table does not grant the move.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCommentRequired):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrWriteConflict), errors.Is(err, domain.ErrTransient), errors.Is(err, domain.ErrDuplicateEntry):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenRevoked):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// FromError sends err with the status StatusFor picks. Internal errors
// are not echoed to the client.
func FromError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		return InternalServerError(c, "Internal server error")
	}
	return Error(c, status, err.Error())
}
