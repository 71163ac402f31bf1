package controller

import (
	"ai-meetingassist-be/internal/dto"
	"ai-meetingassist-be/internal/pkg/serverutils"
	"ai-meetingassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITranscriptController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
}

type transcriptController struct {
	transcriptService service.ITranscriptService
}

func NewTranscriptController(transcriptService service.ITranscriptService) ITranscriptController {
	return &transcriptController{
		transcriptService: transcriptService,
	}
}

func (c *transcriptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/transcript/v1")
	h.Post("chunks", c.Ingest)
}

func (c *transcriptController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestChunkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.transcriptService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest chunk", res))
}
