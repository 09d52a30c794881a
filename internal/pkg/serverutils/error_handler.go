// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-level fiber error handler: fiber errors keep their
// status, everything else is a 500 with a generic message so internals never
// leak to clients.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// UserId reads the authenticated user id set by the JWT middleware.
func UserId(ctx *fiber.Ctx) (string, bool) {
	raw, ok := ctx.Locals("user_id").(string)
	return raw, ok && raw != ""
}
