package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/api/handlers"
	"github.com/maheshrc27/socialbridge/internal/api/middleware"
	job "github.com/maheshrc27/socialbridge/internal/jobs"
	"github.com/maheshrc27/socialbridge/internal/queue"
	"github.com/maheshrc27/socialbridge/internal/repository"
	"github.com/maheshrc27/socialbridge/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	if cfg.EncryptionKey == "" {
		log.Fatal("ENCRYPTION_KEY is required")
	}
	if cfg.FacebookAppID == "" || cfg.FacebookAppSecret == "" {
		log.Fatal("FACEBOOK_APP_ID and FACEBOOK_APP_SECRET are required")
	}
	if cfg.PostgresURI == "" {
		log.Fatal("POSTGRES_URI is required")
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	connectionRepo := repository.NewConnectionRepository(db)
	postRepo := repository.NewPostRepository(db)
	websiteRepo := repository.NewWebsiteRepository(db)
	websiteConnectionRepo := repository.NewWebsiteConnectionRepository(db)
	deliveryRepo := repository.NewWebhookDeliveryRepository(db)
	attachmentMappingRepo := repository.NewAttachmentMappingRepository(db)

	identityService := service.NewIdentityService(*cfg)
	facebookService := service.NewFacebookService(*cfg)
	tokenService := service.NewTokenService(*cfg, facebookService, connectionRepo)
	webhookService := service.NewWebhookService(*cfg, websiteRepo, postRepo, deliveryRepo, connectionRepo, tokenService, facebookService, identityService)
	syncService := service.NewSyncService(*cfg, connectionRepo, postRepo, attachmentMappingRepo, tokenService, facebookService, webhookService, identityService)
	connectionService := service.NewConnectionService(*cfg, connectionRepo, facebookService, identityService)
	websiteService := service.NewWebsiteService(*cfg, websiteRepo, websiteConnectionRepo, connectionRepo, identityService)
	postService := service.NewPostService(postRepo, identityService)
	deliveryService := service.NewDeliveryService(deliveryRepo, postRepo, identityService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, connectionService)
	app.Get("/auth/facebook/callback", auth.ConnectFacebookCallback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/auth/facebook", auth.ConnectFacebook)

	connection := handlers.NewConnectionHandler(connectionService)
	api.Get("/connections", connection.ListConnections)
	api.Get("/connections/:id", connection.GetConnection)
	api.Post("/connections/:id/rename", connection.RenameConnection)
	api.Post("/connections/:id/deactivate", connection.DeactivateConnection)

	website := handlers.NewWebsiteHandler(websiteService, webhookService)
	api.Post("/websites/create", website.CreateWebsite)
	api.Get("/websites", website.ListWebsites)
	api.Get("/websites/:id", website.GetWebsite)
	api.Post("/websites/:id/update", website.UpdateWebsite)
	api.Post("/websites/:id/remove", website.DeleteWebsite)
	api.Get("/websites/:id/connections", website.ListWebsiteConnections)
	api.Post("/websites/:id/connections", website.LinkConnection)
	api.Post("/websites/:id/connections/:connectionId/remove", website.UnlinkConnection)
	api.Post("/websites/:id/test", website.TestWebsiteWebhook)

	post := handlers.NewPostHandler(postService, client)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Post("/posts/:id/remove", post.DeletePost)
	api.Post("/posts/:id/resend", post.ResendPost)

	delivery := handlers.NewDeliveryHandler(deliveryService)
	api.Get("/deliveries", delivery.ListDeliveries)
	api.Get("/deliveries/:id", delivery.GetDelivery)
	api.Get("/posts/:id/deliveries", delivery.ListPostDeliveries)

	// cron jobs
	syncJob := job.NewSyncJob(syncService)

	sync := handlers.NewSyncHandler(syncService, connectionService, syncJob, client)
	api.Post("/sync", sync.TriggerSyncAll)
	api.Get("/sync/:id", sync.SyncConnection)
	api.Post("/sync/:id", sync.QueueSyncConnection)

	//queue
	queueW := queue.NewQueue(syncService, webhookService)

	c := cron.New()
	c.AddFunc(cfg.CronInterval, syncJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSyncConnection, queueW.HandleSyncConnectionTask)
		mux.HandleFunc(queue.TaskTypeResendWebhook, queueW.HandleResendWebhookTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
