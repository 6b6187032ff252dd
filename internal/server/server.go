package server

import (
	"github.com/amirkokoaa-byte/kabten/internal/config"
	"github.com/amirkokoaa-byte/kabten/internal/fare"
	"github.com/amirkokoaa-byte/kabten/internal/stream"
	"github.com/amirkokoaa-byte/kabten/internal/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	Engine *tracker.Engine
	Stream *stream.Hub
}

func NewServer(cfg config.Config, engine *tracker.Engine, hub *stream.Hub) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		Engine: engine,
		Stream: hub,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	tracker.RegisterRoutes(s.App.Group("/tracking"), s.Engine)
	fare.RegisterRoutes(s.App.Group("/fare"), fare.NewFormatter(s.Cfg.FareLocale))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
