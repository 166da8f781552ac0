package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/cache"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/handlers"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/httpx"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/middleware"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/repository"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/service"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Trade Hive Backend",
		// Support attachment uploads up to 25MB + overhead.
		BodyLimit: 28 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-TH-CSRF",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	serverCache := cache.NewServerCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	serverRepo := repository.NewServerRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	readStateRepo := repository.NewReadStateRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo)
	userService := service.NewUserService(userRepo)
	serverService := service.NewServerService(serverRepo, readStateRepo, inviteRepo, serverCache)
	messageService := service.NewMessageService(messageRepo, serverRepo, serverCache)

	// Initialize S3/MinIO storage (best-effort; feature endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(messageService, serverService, userService)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	serverHandler := handlers.NewServerHandler(serverService, wsHandler.GetHub())
	messageHandler := handlers.NewMessageHandler(messageService, serverService, wsHandler.GetHub())
	mediaHandler := handlers.NewMediaHandler(s3Store, serverService)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Get("/csrf", authHandler.CSRF)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh) // No CSRF required - protected by HttpOnly refresh token
	auth.Post("/logout", middleware.CSRFRequired(), authHandler.Logout)
	api.Get("/users/check-username", userHandler.CheckUsername) // Public endpoint for username check
	api.Get("/join/:token", serverHandler.GetInvitePreview)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(), middleware.CSRFRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Get("/users/search", userHandler.SearchUsers)
	protected.Get("/users/:identifier", userHandler.GetUser)

	// Server routes
	protected.Post("/servers", serverHandler.CreateServer)
	protected.Get("/servers", serverHandler.GetMyServers)
	protected.Get("/servers/public/search", serverHandler.SearchServers)
	protected.Get("/servers/:id", serverHandler.GetServer)
	protected.Delete("/servers/:id", serverHandler.DeleteServer)
	protected.Post("/servers/:id/join", serverHandler.JoinServer)
	protected.Post("/servers/:id/leave", serverHandler.LeaveServer)
	protected.Get("/servers/:id/members", serverHandler.GetMembers)
	protected.Get("/servers/:id/members/count", serverHandler.GetMemberCount)
	protected.Put("/servers/:id/members/:userId/role", serverHandler.SetMemberRole)
	protected.Delete("/servers/:id/members/:userId", serverHandler.RemoveMember)
	protected.Post("/servers/:id/invite-links", serverHandler.CreateInviteLink)
	protected.Delete("/servers/:id/invite-links/:linkId", serverHandler.RevokeInviteLink)
	protected.Post("/join/:token", serverHandler.JoinByInvite)

	// Message routes
	protected.Get("/servers/:id/messages", messageHandler.GetMessages)
	protected.Post(
		"/servers/:id/messages",
		limiter.New(limiter.Config{
			Max:        60,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "post:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		messageHandler.PostMessage,
	)
	protected.Delete("/messages/:id", messageHandler.DeleteMessage)
	protected.Get("/servers/:id/messages/latest", messageHandler.GetLatestMessageID)
	protected.Post("/servers/:id/read", messageHandler.MarkRead)
	protected.Get("/servers/:id/read-state", messageHandler.GetReadState)

	// Platform admin routes
	admin := protected.Group("/admin", middleware.RequireRole(models.PlatformAdmin))
	admin.Get("/servers/:id/read-states", messageHandler.ListReadStates)

	// Attachment routes
	protected.Post("/servers/:id/attachments", mediaHandler.UploadAttachment)
	protected.Get("/servers/:id/attachments/*", mediaHandler.GetAttachment)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			// Upgrade to WebSocket
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Trade Hive backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
