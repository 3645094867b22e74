package server

import (
	"chatd/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:           name,
		ReduceMemoryUsage: true,
	})

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		// Compressing the event stream would buffer frames at the proxy
		// layer and defeat the heartbeat.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/events"
		},
	}))
	app.Use(cors.New(middleware.CORSConfig()))

	return app
}
