package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/internal/pkg/serverutils"
	"wine-sommelier-be/internal/service"
)

type ISommelierController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type sommelierController struct {
	service service.ISommelierService
	logger  logger.ILogger
}

func NewSommelierController(service service.ISommelierService, log logger.ILogger) ISommelierController {
	return &sommelierController{service: service, logger: log}
}

func (c *sommelierController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sommelier/v1")
	h.Post("/query", c.Query)

	h.Use("/query/stream", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/query/stream", websocket.New(c.stream))
}

func (c *sommelierController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Respond(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}

// stream handles one websocket conversation: the client sends a query
// request, the server answers with fragment frames and a closing done
// frame. Closing the socket mid-answer cancels generation; the partial
// answer is still persisted by the service.
func (c *sommelierController) stream(conn *websocket.Conn) {
	defer conn.Close()

	for {
		var req dto.QueryRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			_ = conn.WriteJSON(dto.StreamEnvelope{Type: "error", Error: err.Error()})
			continue
		}

		if !c.streamAnswer(conn, &req) {
			return
		}
	}
}

func (c *sommelierController) streamAnswer(conn *websocket.Conn, req *dto.QueryRequest) bool {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := c.service.RespondStream(ctx, req)
	if err != nil {
		_ = conn.WriteJSON(dto.StreamEnvelope{Type: "error", Error: err.Error()})
		return false
	}

	if result.Fragments == nil {
		if err := conn.WriteJSON(dto.StreamEnvelope{Type: "fragment", Fragment: result.Text}); err != nil {
			return false
		}
	} else {
		for fragment := range result.Fragments {
			if err := conn.WriteJSON(dto.StreamEnvelope{Type: "fragment", Fragment: fragment}); err != nil {
				// Client went away; cancel so the stream flushes its
				// partial text and stops pulling from the provider.
				cancel()
				for range result.Fragments {
				}
				return false
			}
		}
	}

	err = conn.WriteJSON(dto.StreamEnvelope{
		Type:            "done",
		Category:        result.Category,
		UsedRetrieval:   result.UsedRetrieval,
		Recommendations: result.Recommendations,
	})
	return err == nil
}
