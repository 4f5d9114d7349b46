// @title Quiz Grader API
// @version 1.0
// @description Anonymous biology quiz: participant registration, answer grading and admin result views.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quiz-grader/internal/adapter"
	"quiz-grader/internal/cache"
	"quiz-grader/internal/config"
	"quiz-grader/internal/database"
	"quiz-grader/internal/domain"
	"quiz-grader/internal/handler"
	"quiz-grader/internal/logger"
	"quiz-grader/internal/middleware"
	"quiz-grader/internal/repository"
	"quiz-grader/internal/service"
	"quiz-grader/internal/validation"

	_ "quiz-grader/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Process request
		err := c.Next()

		// Render the error now so the logged status is the one sent.
		if err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("request_id", middleware.RequestIDFromCtx(c)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return nil
	}
}

func loadAnswerKey(cfg config.QuizConfig) (*domain.AnswerKey, error) {
	if cfg.AnswerKeyFile == "" {
		return domain.DefaultAnswerKey(), nil
	}
	return domain.LoadAnswerKeyFile(cfg.AnswerKeyFile)
}

func newCache(cfg *config.Config, appLogger *zap.Logger) domain.Cache {
	if cfg.Redis.Address == "" {
		appLogger.Info("Redis not configured, result views are not cached")
		return adapter.NewNoopCache()
	}
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	return adapter.NewRedisCacheAdapter(redisClient)
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	answerKey, err := loadAnswerKey(cfg.Quiz)
	if err != nil {
		appLogger.Fatal("Failed to load answer key", zap.Error(err))
	}
	appLogger.Info("Answer key loaded", zap.Int("questions", answerKey.Len()))

	if cfg.Admin.Password == "" {
		appLogger.Warn("ADMIN_PASSWORD is not set; admin login will be refused")
	}

	// Connect to database
	db, err := database.NewSQLXPostgresDB(context.Background(), cfg.GetDSN(), database.Options{
		MaxRetries:   cfg.DB.MaxRetries,
		RetryDelay:   cfg.DB.RetryDelay,
		MaxOpenConns: cfg.DB.MaxOpenConns,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	participantRepository := repository.NewParticipantDatabaseAdapter(db)
	responseRepository := repository.NewResponseDatabaseAdapter(db)
	resultsRepository := repository.NewResultsDatabaseAdapter(db)
	adminRepository := repository.NewAdminDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	resultsService := service.NewResultsService(resultsRepository, newCache(cfg, appLogger), cfg.Cache.TTL)
	submissionService := service.NewSubmissionService(answerKey, responseRepository, txManager, resultsService)
	authService, err := service.NewAuthService(participantRepository, adminRepository, resultsService, cfg.JWT, cfg.Admin)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	requestValidator, err := validation.NewValidator()
	if err != nil {
		appLogger.Fatal("Failed to create validator", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.SetupRoutes(app, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService, requestValidator),
		Submission: handler.NewSubmissionHandler(submissionService),
		Admin:      handler.NewAdminHandler(resultsService),
		Tokens:     authService,
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
