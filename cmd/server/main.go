package main

import (
	"log"
	"os"
	"time"

	"chatd/pkg/cache"
	"chatd/pkg/database"
	"chatd/pkg/events"
	"chatd/pkg/handlers"
	"chatd/pkg/middleware"
	"chatd/pkg/repository"
	"chatd/pkg/server"
	"chatd/pkg/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func main() {
	db := database.Connect()
	defer db.Close()
	database.Migrate(db)

	log.Println("[SERVER] connecting to Redis...")
	redis := cache.New()
	defer redis.Close()
	log.Println("[SERVER] Redis connected")

	registry := events.NewRegistry(events.DefaultCapacity, envDuration("REGISTRY_EVICT_GRACE", 0))
	defer registry.Close()

	listener, err := events.NewListener(database.ConnString(), events.NewPublisher(registry))
	if err != nil {
		log.Fatalf("[SERVER] event listener failed: %v", err)
	}
	defer listener.Close()

	baseDir := os.Getenv("BASE_DIR")
	if baseDir == "" {
		baseDir = "/tmp/chatd"
	}

	authRepo := repository.NewAuthRepository(db)
	wsRepo := repository.NewWorkspaceRepository(db)
	chatRepo := repository.NewChatRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	authSvc := services.NewAuthService(authRepo, wsRepo, middleware.JWTSecret())
	chatSvc := services.NewChatService(chatRepo, authRepo, redis)
	msgSvc := services.NewMessageService(msgRepo, baseDir)
	fileSvc := services.NewFileService(baseDir)

	auth := handlers.NewAuth(authSvc)
	chats := handlers.NewChat(chatSvc)
	messages := handlers.NewMessages(msgSvc, chatSvc)
	files := handlers.NewFiles(fileSvc)
	eventsH := handlers.NewEvents(registry, listener, envDuration("HEARTBEAT_INTERVAL", events.DefaultHeartbeat))

	app := server.NewApp("chatd")

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		code := 200
		if !listener.Healthy() {
			// Without the listener no events reach any client.
			status = "degraded"
			code = 503
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "service": "chatd"})
	})

	api := app.Group("/api")
	api.Post("/signup", authLimiter(5), auth.Signup)
	api.Post("/signin", authLimiter(10), auth.Signin)

	protected := api.Group("", middleware.AuthMiddleware)
	protected.Get("/users", auth.ListUsers)
	protected.Get("/chats", chats.List)
	protected.Post("/chats", chats.Create)
	protected.Get("/chats/:id", chats.Get)
	protected.Patch("/chats/:id", chats.Update)
	protected.Delete("/chats/:id", chats.Delete)
	protected.Post("/chats/:id", messages.Send)
	protected.Get("/chats/:id/messages", messages.List)
	protected.Post("/upload", files.Upload)

	app.Get("/files/:wsid/*", middleware.AuthMiddleware, files.Download)

	app.Get("/events", middleware.AuthMiddleware, eventsH.Subscribe)
	app.Get("/events/status", eventsH.Status)

	app.Use("/ws", requireUpgrade, middleware.AuthMiddleware)
	app.Get("/ws", eventsH.SubscribeWS())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := "0.0.0.0:" + port
	log.Printf("[SERVER] event stream: GET /events (sse), GET /ws (websocket)")
	log.Printf("[SERVER] starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[SERVER] failed to start: %v", err)
	}
}

func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func authLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[SERVER] bad %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
