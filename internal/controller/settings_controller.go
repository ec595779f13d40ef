package controller

import (
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/pkg/serverutils"
	"trace-journal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
}

type settingsController struct {
	settingsService service.ISettingsService
}

func NewSettingsController(settingsService service.ISettingsService) ISettingsController {
	return &settingsController{
		settingsService: settingsService,
	}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Get)
	h.Put("", c.Save)
}

func (c *settingsController) Get(ctx *fiber.Ctx) error {
	deviceId, _ := uuid.Parse(ctx.Locals("device_id").(string))

	res, err := c.settingsService.Get(ctx.Context(), deviceId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

// Save acknowledges immediately; the write lands after the debounce delay.
func (c *settingsController) Save(ctx *fiber.Ctx) error {
	deviceId, _ := uuid.Parse(ctx.Locals("device_id").(string))

	var req dto.SaveSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	c.settingsService.Save(deviceId, &req)

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Settings queued", nil))
}
