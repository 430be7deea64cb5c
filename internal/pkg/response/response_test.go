package response

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"conveyease/internal/core/domain"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"workflow_refusal", fmt.Errorf("bill 1: %w", domain.ErrUnauthorized), fiber.StatusForbidden},
		{"comment_required", domain.ErrCommentRequired, fiber.StatusUnprocessableEntity},
		{"bill_not_found", domain.ErrBillNotFound, fiber.StatusNotFound},
		{"write_conflict", fmt.Errorf("%w: %w", domain.ErrTransient, domain.ErrWriteConflict), fiber.StatusConflict},
		{"not_visible", domain.ErrForbidden, fiber.StatusForbidden},
		{"bad_amount", domain.ErrInvalidAmount, fiber.StatusBadRequest},
		{"duplicate_user", domain.ErrUserAlreadyExists, fiber.StatusConflict},
		{"bad_login", domain.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusFor(tc.err))
		})
	}
}
