package controller

import (
	"github.com/gofiber/fiber/v2"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/pkg/serverutils"
	"wine-sommelier-be/internal/repository/unitofwork"
	"wine-sommelier-be/internal/service"
)

const debugChunkSample = 20

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Stats(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
	DebugChunks(ctx *fiber.Ctx) error
}

type adminController struct {
	memoryService service.IMemoryService
	ingestService service.IIngestService
	uowFactory    unitofwork.RepositoryFactory
	modelName     string
}

func NewAdminController(
	memoryService service.IMemoryService,
	ingestService service.IIngestService,
	uowFactory unitofwork.RepositoryFactory,
	modelName string,
) IAdminController {
	return &adminController{
		memoryService: memoryService,
		ingestService: ingestService,
		uowFactory:    uowFactory,
		modelName:     modelName,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/stats", c.Stats)
	h.Post("/ingest", c.Ingest)
	h.Get("/chunks", c.DebugChunks)
}

func (c *adminController) Stats(ctx *fiber.Ctx) error {
	res, err := c.memoryService.Stats(ctx.Context())
	if err != nil {
		return err
	}
	res.Service = constant.ServiceName
	res.Model = c.modelName
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}

func (c *adminController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.IngestCatalogueFile(ctx.Context(), req.CataloguePath)
	if err != nil {
		return err
	}

	if req.KnowledgeDir != "" {
		knowledge, err := c.ingestService.IngestKnowledgeDir(ctx.Context(), req.KnowledgeDir)
		if err != nil {
			return err
		}
		res.KnowledgeChunks = knowledge.KnowledgeChunks
		res.Skipped += knowledge.Skipped
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion enqueued", res))
}

// DebugChunks exposes a small sample of stored chunks for eyeballing what
// the chunker produced.
func (c *adminController) DebugChunks(ctx *fiber.Ctx) error {
	uow := c.uowFactory.NewUnitOfWork(ctx.Context())
	chunks, err := uow.KnowledgeRepository().FindSample(ctx.Context(), debugChunkSample)
	if err != nil {
		return err
	}

	res := make([]dto.DebugChunkResponse, 0, len(chunks))
	for _, chunk := range chunks {
		res = append(res, dto.DebugChunkResponse{
			Id:       chunk.Id,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chunk sample", res))
}
