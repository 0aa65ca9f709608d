package server

import (
	"fmt"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"wine-sommelier-be/internal/bootstrap"
	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/pkg/serverutils"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "Wine Sommelier API",
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.ErrorHandlerMiddleware())

	s := &Server{app: app, cfg: cfg, container: container}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")
	s.container.SommelierController.RegisterRoutes(api)
	s.container.MemoryController.RegisterRoutes(api)
	s.container.AdminController.RegisterRoutes(api)
}

func (s *Server) Run() error {
	return s.app.Listen(fmt.Sprintf(":%s", s.cfg.App.Port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
