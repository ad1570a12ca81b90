// @title Study Pulse API
// @version 1.0
// @description Quiz generation, quiz sessions and performance analytics over stored study notes.
// @host localhost:4000
// @BasePath /api
// @schemes http
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"study-pulse/internal/adapter"
	"study-pulse/internal/adapter/backend"
	"study-pulse/internal/adapter/quizgen"
	"study-pulse/internal/cache"
	"study-pulse/internal/config"
	"study-pulse/internal/domain"
	"study-pulse/internal/handler"
	"study-pulse/internal/logger"
	"study-pulse/internal/middleware"
	"study-pulse/internal/service"
	"study-pulse/internal/session"

	_ "study-pulse/cmd/api/docs"

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

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// The backend client is always needed: notes, score history and score
	// submission live there even when quizzes are generated locally.
	backendClient, err := backend.NewClient(cfg.Backend)
	if err != nil {
		appLogger.Fatal("Failed to create backend client", zap.Error(err))
	}

	var quizSource domain.QuizSource
	switch cfg.Generator.Source {
	case "backend":
		quizSource = backendClient
		appLogger.Info("Using backend quiz generation")
	case "ollama":
		quizSource, err = quizgen.NewOllamaQuizGenerator(cfg.Generator.OllamaServerURL, cfg.Generator.OllamaModel, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create Ollama quiz generator", zap.Error(err))
		}
		appLogger.Info("Using Ollama quiz generation",
			zap.String("server_url", cfg.Generator.OllamaServerURL),
			zap.String("model", cfg.Generator.OllamaModel))
	default:
		appLogger.Fatal("Unsupported generator source. Please check GENERATOR_SOURCE in config.",
			zap.String("source", cfg.Generator.Source))
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	sessionStore := session.NewStore()

	quizService := service.NewQuizService(quizSource, backendClient, sessionStore)
	analyticsService := service.NewAnalyticsService(backendClient, backendClient, cacheAdapter, cfg.Cache)

	quizHandler := handler.NewQuizHandler(quizService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	apiGroup := app.Group("/api")

	apiGroup.Get("/notes", analyticsHandler.ListNotes)

	apiGroup.Post("/quizzes/generate", quizHandler.GenerateQuiz)
	apiGroup.Delete("/quizzes/generate", quizHandler.CancelGeneration)

	sessionGroup := apiGroup.Group("/sessions")
	sessionGroup.Post("/", quizHandler.StartSession)
	sessionGroup.Get("/:id", quizHandler.GetSession)
	sessionGroup.Delete("/:id", quizHandler.CancelSession)
	sessionGroup.Put("/:id/answers", quizHandler.RecordAnswer)
	sessionGroup.Post("/:id/advance", quizHandler.Advance)
	sessionGroup.Post("/:id/retreat", quizHandler.Retreat)
	sessionGroup.Post("/:id/jump", quizHandler.JumpTo)
	sessionGroup.Get("/:id/result", quizHandler.Result)

	apiGroup.Get("/analytics", analyticsHandler.GetAnalytics)
	apiGroup.Get("/analytics/courses", analyticsHandler.ListCourses)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
