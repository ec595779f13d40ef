package controller

import (
	"errors"

	"trace-journal-be/internal/service"
	editorsession "trace-journal-be/pkg/editor/session"

	"github.com/gofiber/fiber/v2"
)

// httpError maps domain errors to HTTP statuses; anything unknown passes
// through untouched and the envelope middleware renders it as a 500.
func httpError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrDeviceNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, service.ErrNoSession):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrVersionConflict),
		errors.Is(err, editorsession.ErrSaveInFlight):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, editorsession.ErrNoDraft):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidDeviceToken):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	default:
		return err
	}
}
