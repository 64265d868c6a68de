package main

import (
	"context"
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
	"github.com/robfig/cron"

	config "github.com/clipcast/clipcast/configs"
	"github.com/clipcast/clipcast/internal/api/handlers"
	"github.com/clipcast/clipcast/internal/api/middleware"
	job "github.com/clipcast/clipcast/internal/jobs"
	"github.com/clipcast/clipcast/internal/queue"
	"github.com/clipcast/clipcast/internal/repository"
	"github.com/clipcast/clipcast/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

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
		ReadTimeout: 30 * time.Second,
		// Uploads go straight to storage via presigned URLs, so request
		// bodies stay small.
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	postRepo := repository.NewPostRepository(db, jobRepo)

	storageService := service.NewStorageService(*cfg)
	uploadService := service.NewUploadService(storageService)
	postService := service.NewPostService(postRepo, storageService, queue.NewCleanupScheduler(client))
	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)

	if err := storageService.EnsureBucket(context.Background()); err != nil {
		log.Printf("Warning: failed to ensure storage bucket: %v", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	app.Use("/upload", authMiddleware.AuthMiddleware())
	app.Use("/posts", authMiddleware.AuthMiddleware())
	app.Use("/api", authMiddleware.AuthMiddleware())

	upload := handlers.NewUploadHandler(uploadService)
	app.Post("/upload/presigned", upload.CreatePresignedURL)

	post := handlers.NewPostHandler(postService)
	app.Post("/posts", post.CreatePost)
	app.Get("/posts", post.ListPosts)
	app.Get("/posts/:id", post.GetPost)
	app.Patch("/posts/:id", post.UpdatePost)
	app.Delete("/posts/:id", post.RemovePost)

	user := handlers.NewUserHandler(userService)
	app.Get("/api/user/info", user.GetUserInfo)

	// periodic storage reconciliation
	auditJob := job.NewStorageAuditJob(postRepo, storageService)

	c := cron.New()
	c.AddFunc("@every 6h0m0s", auditJob.AuditVideos)
	c.Start()

	// queue worker
	queueW := queue.NewQueue(storageService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeMediaCleanup, queueW.HandleMediaCleanupTask)

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
