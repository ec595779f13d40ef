package controller

import (
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/pkg/serverutils"
	"trace-journal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEntryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	RegisterAttachment(ctx *fiber.Ctx) error
	ListAttachments(ctx *fiber.Ctx) error
	AttachmentCount(ctx *fiber.Ctx) error
	CompleteUpload(ctx *fiber.Ctx) error
	DeleteAttachment(ctx *fiber.Ctx) error
}

type entryController struct {
	entryService      service.IEntryService
	attachmentService service.IAttachmentService
}

func NewEntryController(entryService service.IEntryService, attachmentService service.IAttachmentService) IEntryController {
	return &entryController{
		entryService:      entryService,
		attachmentService: attachmentService,
	}
}

func (c *entryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/entry/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
	h.Post(":id/attachments", c.RegisterAttachment)
	h.Get(":id/attachments", c.ListAttachments)
	h.Get(":id/attachments/count", c.AttachmentCount)
	h.Put(":id/attachments/:attachmentId/uploaded", c.CompleteUpload)
	h.Delete(":id/attachments/:attachmentId", c.DeleteAttachment)
}

func (c *entryController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ListEntriesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.entryService.List(ctx.Context(), userId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list entries", res))
}

func (c *entryController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
	}

	res, err := c.entryService.Show(ctx.Context(), userId, id)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show entry", res))
}

func (c *entryController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
	}

	if err := c.entryService.Delete(ctx.Context(), userId, id); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete entry", nil))
}

func (c *entryController) RegisterAttachment(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	entryId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
	}

	var req dto.RegisterAttachmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.attachmentService.Register(ctx.Context(), userId, entryId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Attachment registered", res))
}

func (c *entryController) ListAttachments(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	entryId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
	}

	res, err := c.attachmentService.List(ctx.Context(), userId, entryId, ctx.Query("status"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list attachments", res))
}

func (c *entryController) AttachmentCount(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	entryId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
	}

	res, err := c.attachmentService.Count(ctx.Context(), userId, entryId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success count attachments", res))
}

func (c *entryController) CompleteUpload(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	attachmentId, err := uuid.Parse(ctx.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid attachment id")
	}

	if err := c.attachmentService.CompleteUpload(ctx.Context(), userId, attachmentId); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Upload completed", nil))
}

func (c *entryController) DeleteAttachment(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	attachmentId, err := uuid.Parse(ctx.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid attachment id")
	}

	if err := c.attachmentService.Delete(ctx.Context(), userId, attachmentId); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete attachment", nil))
}
