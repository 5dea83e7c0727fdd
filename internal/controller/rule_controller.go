package controller

import (
	"hof-chatbot-be/internal/dto"
	"hof-chatbot-be/internal/pkg/serverutils"
	"hof-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRuleController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reload(ctx *fiber.Ctx) error
}

type ruleController struct {
	service service.IRuleService
}

func NewRuleController(service service.IRuleService) IRuleController {
	return &ruleController{service: service}
}

func (c *ruleController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1/rules")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post("reload", c.Reload)
}

func (c *ruleController) Reload(ctx *fiber.Ctx) error {
	c.service.Reload()
	return ctx.JSON(serverutils.SuccessResponse[any]("Success reload rules", nil))
}

func (c *ruleController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get rules", res))
}

func (c *ruleController) Create(ctx *fiber.Ctx) error {
	var req dto.AmbiguityRuleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create rule", res))
}

func (c *ruleController) Update(ctx *fiber.Ctx) error {
	var req dto.AmbiguityRuleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update rule", res))
}

func (c *ruleController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete rule", nil))
}
