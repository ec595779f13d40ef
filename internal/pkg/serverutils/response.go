package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform JSON shape every endpoint returns.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type ErrorBody struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func SuccessResponse[T any](message string, data T) Envelope[T] {
	return Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// ErrorHandlerMiddleware converts errors bubbling out of controllers into the
// envelope shape. Validation errors keep their per-field detail; fiber errors
// keep their status; everything else is a 500 with the message passed through.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			body := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
			body.Fields = ve.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(
			ErrorResponse(fiber.StatusInternalServerError, err.Error()),
		)
	}
}
