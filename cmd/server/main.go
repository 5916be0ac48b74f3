package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/api/handlers"
	"github.com/anuragdev21/socialbridge/internal/api/middleware"
	job "github.com/anuragdev21/socialbridge/internal/jobs"
	"github.com/anuragdev21/socialbridge/internal/queue"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/anuragdev21/socialbridge/internal/service"
	"github.com/anuragdev21/socialbridge/views"
	"github.com/robfig/cron"
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

	engine := html.NewFileSystem(http.FS(views.FS), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
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

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	metaAccountRepo := repository.NewMetaAccountRepository(db)
	linkedinAccountRepo := repository.NewLinkedinAccountRepository(db)
	pinterestAccountRepo := repository.NewPinterestAccountRepository(db)
	tiktokAccountRepo := repository.NewTiktokAccountRepository(db)
	userAccountRepo := repository.NewUserAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	userService := service.NewUserService(*cfg, userRepo)
	r2Service := service.NewR2Service(*cfg)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo, r2Service)
	postService := service.NewPostService(postRepo)

	facebookService := service.NewFacebookService(*cfg)
	instagramService := service.NewInstagramService(*cfg)
	threadsService := service.NewThreadsService(*cfg)
	linkedinService := service.NewLinkedinService(*cfg)
	pinterestService := service.NewPinterestService(*cfg)
	tiktokService := service.NewTiktokService(*cfg)

	reconcilerService := service.NewReconcilerService(*cfg,
		metaAccountRepo, linkedinAccountRepo, pinterestAccountRepo, tiktokAccountRepo, userAccountRepo)
	platformService := service.NewPlatformService(*cfg,
		metaAccountRepo, linkedinAccountRepo, pinterestAccountRepo, tiktokAccountRepo, userAccountRepo, tiktokService)
	publishService := service.NewPublishService(*cfg, postRepo,
		metaAccountRepo, linkedinAccountRepo, pinterestAccountRepo, tiktokAccountRepo,
		facebookService, instagramService, threadsService, linkedinService, pinterestService, tiktokService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	webhook := handlers.NewWebhookHandler(userService)
	app.Post("/webhooks/identity", webhook.IdentityWebhook)

	platform := handlers.NewPlatformHandler(platformService, reconcilerService,
		facebookService, instagramService, threadsService, linkedinService, pinterestService, tiktokService, *cfg)
	app.Get("/auth/:platform", authMiddleware.AuthMiddleware(), platform.AddSocialAccount)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)
	app.Post("/auth/tiktok/callback", webhook.TiktokVerify)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)
	api.Post("/posts/retry", post.RetryPost)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Get("/media/presign", media.Presign)
	api.Get("/media", media.ListAssets)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg,
		metaAccountRepo, pinterestAccountRepo, tiktokAccountRepo,
		instagramService, threadsService, pinterestService, tiktokService)

	//queue
	queueW := queue.NewQueue(publishService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

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
