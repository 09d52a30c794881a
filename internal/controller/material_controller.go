package controller

import (
	"strconv"

	"ai-studyassistant-be/internal/pkg/serverutils"
	"ai-studyassistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMaterialController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	DownloadURL(ctx *fiber.Ctx) error
}

type materialController struct {
	materials service.IMaterialService
}

func NewMaterialController(materials service.IMaterialService) IMaterialController {
	return &materialController{materials: materials}
}

func (c *materialController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/materials", serverutils.JwtMiddleware)
	h.Post("/", c.Upload)
	h.Get("/", c.List)
	h.Delete("/:id", c.Delete)
	h.Get("/:id/download-url", c.DownloadURL)
}

func (c *materialController) Upload(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "file is required"))
	}

	title := ctx.FormValue("title")
	if title == "" {
		title = fileHeader.Filename
	}
	pageCount, _ := strconv.Atoi(ctx.FormValue("page_count", "1"))
	if pageCount < 1 {
		pageCount = 1
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.materials.Upload(ctx.Context(), userId, &service.MaterialUpload{
		Title:       title,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		PageCount:   pageCount,
		Body:        file,
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Material uploaded", res))
}

func (c *materialController) List(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.materials.List(ctx.Context(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Materials retrieved", res))
}

func (c *materialController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	materialId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid material id"))
	}

	if err := c.materials.Delete(ctx.Context(), userId, materialId); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Material deleted", nil))
}

func (c *materialController) DownloadURL(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	materialId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid material id"))
	}

	url, err := c.materials.DownloadURL(ctx.Context(), userId, materialId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Download URL", fiber.Map{"url": url}))
}
