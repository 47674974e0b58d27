package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tutorlink-be/internal/pkg/apperrors"
)

// ErrorHandlerMiddleware converts domain sentinel errors into HTTP statuses
// in one place so controllers can plainly return service errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			status = fiber.StatusBadRequest
		case errors.Is(err, apperrors.ErrForbidden):
			status = fiber.StatusForbidden
		case errors.Is(err, apperrors.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, apperrors.ErrInvalidTransition):
			status = fiber.StatusConflict
		case errors.Is(err, apperrors.ErrConflict):
			status = fiber.StatusConflict
		case errors.Is(err, apperrors.ErrPaymentFailed):
			status = fiber.StatusPaymentRequired
		}

		return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
	}
}
