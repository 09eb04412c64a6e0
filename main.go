package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"subcanvas/internal/handlers"
	"subcanvas/internal/middleware"
	"subcanvas/internal/models"
	"subcanvas/internal/repositories"
	"subcanvas/internal/services"
	"subcanvas/internal/storage"
	"subcanvas/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "host=localhost user=subcanvas password=subcanvas dbname=subcanvas port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.SnsAccount{},
		&models.ProfilePage{},
		&models.ProfileContent{},
		&models.PageVisit{},
		&models.AbuseReport{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- File storage ---
	storageService := storage.New(storage.Config{
		SupabaseURL:        viper.GetString("SUPABASE_URL"),
		SupabaseAccessKey:  viper.GetString("SUPABASE_ACCESS_KEY"),
		SupabaseSecretKey:  viper.GetString("SUPABASE_SECRET_KEY"),
		SupabaseBucket:     viper.GetString("SUPABASE_BUCKET"),
		AWSRegion:          viper.GetString("AWS_REGION"),
		AWSAccessKeyID:     viper.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: viper.GetString("AWS_SECRET_ACCESS_KEY"),
		AWSBucket:          viper.GetString("AWS_S3_BUCKET"),
		LocalDir:           viper.GetString("UPLOAD_DIR"),
	})

	// --- RabbitMQ (optional) ---
	// The moderation event stream is best effort; without a broker URL the
	// API runs with publishing disabled.
	var publisher services.ReportEventPublisher
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, report events disabled: %v", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)
	reportRepo := repositories.NewGORMReportRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"))
	userService := services.NewUserService(userRepo)
	profileService := services.NewProfileService(profileRepo, reportRepo, storageService, publisher)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	// --- API routes ---
	api := app.Group("/api")

	authRequired := middleware.AuthRequired(authService)
	authOptional := middleware.AuthOptional(authService)

	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api, authRequired)
	profileHandler.RegisterRoutes(api, authRequired, authOptional)

	// Locally stored uploads are served straight from disk.
	app.Static("/uploads", viper.GetString("UPLOAD_DIR"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Report event consumer ---
	// Logs moderation events so operators can tail new abuse reports. Runs
	// only when a broker is connected.
	if mqClient != nil && publisher != nil {
		go func() {
			log.Println("Starting report event consumer...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received report event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeReportEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start report event consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
