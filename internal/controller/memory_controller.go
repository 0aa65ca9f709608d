package controller

import (
	"github.com/gofiber/fiber/v2"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/pkg/serverutils"
	"wine-sommelier-be/internal/service"
)

type IMemoryController interface {
	RegisterRoutes(r fiber.Router)
	RateWine(ctx *fiber.Ctx) error
	UpsertPreferences(ctx *fiber.Ctx) error
	GetUserContext(ctx *fiber.Ctx) error
}

type memoryController struct {
	service service.IMemoryService
}

func NewMemoryController(service service.IMemoryService) IMemoryController {
	return &memoryController{service: service}
}

func (c *memoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/memory/v1")
	h.Post("/ratings", c.RateWine)
	h.Post("/preferences", c.UpsertPreferences)
	h.Get("/context/:user_id", c.GetUserContext)
}

func (c *memoryController) RateWine(ctx *fiber.Ctx) error {
	var req dto.RateWineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AddRating(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success rate wine", res))
}

func (c *memoryController) UpsertPreferences(ctx *fiber.Ctx) error {
	var req dto.UpsertPreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.UpsertPreferences(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update preferences", nil))
}

func (c *memoryController) GetUserContext(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if userId == "" {
		return serverutils.BadRequest("user_id is required")
	}

	userContext, err := c.service.GetContext(ctx.Context(), userId, constant.ContextTurnLimit)
	if err != nil {
		return err
	}

	res := &dto.UserContextResponse{
		UserId:        userContext.UserId,
		UserName:      userContext.UserName,
		Recent:        make([]dto.ConversationTurnResponse, 0, len(userContext.Recent)),
		Preferences:   userContext.Preferences,
		FavoriteWines: userContext.FavoriteWines,
		TopRated:      userContext.TopRated,
	}
	for _, turn := range userContext.Recent {
		labels := make([]string, 0, len(turn.Recommended))
		for i := range turn.Recommended {
			labels = append(labels, turn.Recommended[i].Label())
		}
		res.Recent = append(res.Recent, dto.ConversationTurnResponse{
			Query:       turn.Query,
			Response:    turn.Response,
			Recommended: labels,
			CreatedAt:   turn.CreatedAt,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get user context", res))
}
