package controller

import (
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/pkg/serverutils"
	"trace-journal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ISessionController exposes the device's editing session over HTTP. Every
// route is device-scoped: the JWT's device id selects the session, so a
// device can only ever drive its own edit.
type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Open(ctx *fiber.Ctx) error
	OpenNew(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	UpdateFields(ctx *fiber.Ctx) error
	SetContent(ctx *fiber.Ctx) error
	Focus(ctx *fiber.Ctx) error
	Blur(ctx *fiber.Ctx) error
	QueueAttachment(ctx *fiber.Ctx) error
	UnqueueAttachment(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("open", c.Open)
	h.Post("new", c.OpenNew)
	h.Post("close", c.Close)
	h.Get("state", c.State)
	h.Patch("fields", c.UpdateFields)
	h.Put("content", c.SetContent)
	h.Post("focus", c.Focus)
	h.Post("blur", c.Blur)
	h.Post("attachments/queue", c.QueueAttachment)
	h.Delete("attachments/queue/:localId", c.UnqueueAttachment)
	h.Post("save", c.Save)
}

func identity(ctx *fiber.Ctx) (userId, deviceId uuid.UUID, err error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token identity")
	}
	deviceIdStr, ok := ctx.Locals("device_id").(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token identity")
	}
	userId, err = uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token identity")
	}
	deviceId, err = uuid.Parse(deviceIdStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token identity")
	}
	return userId, deviceId, nil
}

func (c *sessionController) Open(ctx *fiber.Ctx) error {
	userId, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	var req dto.OpenSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Open(ctx.Context(), userId, deviceId, req.EntryId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Session opened", res))
}

func (c *sessionController) OpenNew(ctx *fiber.Ctx) error {
	userId, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	var req dto.NewSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.OpenNew(ctx.Context(), userId, deviceId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Session opened for new entry", res))
}

func (c *sessionController) Close(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Close(ctx.Context(), deviceId); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session closed", nil))
}

func (c *sessionController) State(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.State(ctx.Context(), deviceId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Session state", res))
}

func (c *sessionController) UpdateFields(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateFieldsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.UpdateFields(ctx.Context(), deviceId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Fields updated", res))
}

func (c *sessionController) SetContent(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	var req dto.SetContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.sessionService.SetContent(ctx.Context(), deviceId, req.Content); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Content updated", nil))
}

func (c *sessionController) Focus(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	var req dto.FocusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessionService.Focus(ctx.Context(), deviceId, req.Field); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Field focused", nil))
}

func (c *sessionController) Blur(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Blur(ctx.Context(), deviceId); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Field blurred", nil))
}

func (c *sessionController) QueueAttachment(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	var req dto.QueueAttachmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessionService.QueueAttachment(ctx.Context(), deviceId, &req); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Attachment queued", nil))
}

func (c *sessionController) UnqueueAttachment(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	localId := ctx.Params("localId")
	if localId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing local id")
	}

	if err := c.sessionService.UnqueueAttachment(ctx.Context(), deviceId, localId); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Attachment unqueued", nil))
}

func (c *sessionController) Save(ctx *fiber.Ctx) error {
	_, deviceId, err := identity(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Save(ctx.Context(), deviceId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Entry saved", res))
}
