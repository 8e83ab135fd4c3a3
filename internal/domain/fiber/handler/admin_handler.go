package handler

import (
	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/usecase"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	auth    *usecase.AuthUsecase
	prompts *usecase.PromptUsecase
}

func NewAdminHandler(auth *usecase.AuthUsecase, prompts *usecase.PromptUsecase) *AdminHandler {
	return &AdminHandler{auth: auth, prompts: prompts}
}

// RegisterRoutes mounts login openly and the prompt CRUD behind requireAdmin.
func (h *AdminHandler) RegisterRoutes(r fiber.Router, requireAdmin fiber.Handler) {
	r.Post("/admin/login", h.Login)

	p := r.Group("/admin/prompts", requireAdmin)
	p.Get("/", h.ListPrompts)
	p.Post("/", h.CreatePrompt)
	p.Get("/:id", h.GetPrompt)
	p.Put("/:id", h.UpdatePrompt)
	p.Delete("/:id", h.DeletePrompt)
	p.Get("/:id/versions", h.PromptVersions)
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	res, err := h.auth.Login(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Login successful",
		Data:    res,
	})
}

func (h *AdminHandler) ListPrompts(c *fiber.Ctx) error {
	var q dto.PromptListQuery
	if err := c.QueryParser(&q); err != nil {
		return util.HandleError(c, &util.AppError{Kind: util.KindValidation, Message: "invalid query", Err: err})
	}
	items, page, err := h.prompts.List(c.UserContext(), q)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get prompts",
		Data:       items,
		Pagination: page,
	})
}

func (h *AdminHandler) GetPrompt(c *fiber.Ctx) error {
	p, err := h.prompts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get prompt",
		Data:    p,
	})
}

func (h *AdminHandler) PromptVersions(c *fiber.Ctx) error {
	versions, err := h.prompts.Versions(c.UserContext(), c.Params("id"))
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get prompt versions",
		Data:    versions,
	})
}

func (h *AdminHandler) CreatePrompt(c *fiber.Ctx) error {
	var req dto.CreatePromptRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	p, err := h.prompts.Create(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Prompt created",
		Data:    p,
	})
}

func (h *AdminHandler) UpdatePrompt(c *fiber.Ctx) error {
	var req dto.UpdatePromptRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	p, err := h.prompts.Update(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Prompt updated",
		Data:    p,
	})
}

func (h *AdminHandler) DeletePrompt(c *fiber.Ctx) error {
	n, err := h.prompts.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Prompt deleted",
		Data:    fiber.Map{"deleted_versions": n},
	})
}
