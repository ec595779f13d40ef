package controller

import (
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/pkg/serverutils"
	"trace-journal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDeviceController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type deviceController struct {
	deviceService service.IDeviceService
}

func NewDeviceController(deviceService service.IDeviceService) IDeviceController {
	return &deviceController{
		deviceService: deviceService,
	}
}

func (c *deviceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/device/v1")
	h.Post("register", c.Register)
	h.Post("login", c.Login)

	protected := h.Group("")
	protected.Use(serverutils.JwtMiddleware)
	protected.Get("", c.List)
}

func (c *deviceController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterDeviceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.deviceService.Register(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Device registered", res))
}

func (c *deviceController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginDeviceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.deviceService.Login(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Login success", res))
}

func (c *deviceController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.deviceService.List(ctx.Context(), userId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list devices", res))
}
