package controller

import (
	"ai-meetingassist-be/internal/dto"
	"ai-meetingassist-be/internal/pkg/serverutils"
	"ai-meetingassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IQuestionController interface {
	RegisterRoutes(r fiber.Router)
	Detect(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type questionController struct {
	questionService service.IQuestionService
}

func NewQuestionController(questionService service.IQuestionService) IQuestionController {
	return &questionController{
		questionService: questionService,
	}
}

func (c *questionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/question/v1")
	h.Post("detect", c.Detect)
	h.Get(":id/status", c.Status)
}

func (c *questionController) Detect(ctx *fiber.Ctx) error {
	var req dto.DetectQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.questionService.Detect(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success detect question", res))
}

func (c *questionController) Status(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid question id")
	}

	res, err := c.questionService.Status(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show question status", res))
}
