// @title Gradebook API
// @version 1.0
// @description Class gradebook with evidence-based score submissions.
// @host localhost:8090
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

	"gradebook/internal/adapter"
	"gradebook/internal/adapter/challenge"
	"gradebook/internal/adapter/mailer"
	"gradebook/internal/adapter/verifier"
	"gradebook/internal/cache"
	"gradebook/internal/config"
	"gradebook/internal/database"
	"gradebook/internal/handler"
	"gradebook/internal/logger"
	"gradebook/internal/middleware"
	"gradebook/internal/repository"
	"gradebook/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// requestLogger logs every HTTP request with method, path, status and latency.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

// lateInvalidator breaks the constructor cycle between the submission service,
// which needs a ReportInvalidator, and the report service, which needs the
// submission service for deadline gating. The target is set once both exist,
// before the server starts.
type lateInvalidator struct {
	target service.ReportInvalidator
}

func (l *lateInvalidator) InvalidateUserReport(ctx context.Context, userID string) {
	if l.target != nil {
		l.target.InvalidateUserReport(ctx, userID)
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

	// AI classifier client for evidence screenshots
	ctx := context.Background()
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini client", zap.Error(err))
	}
	evidenceVerifier := verifier.NewGeminiVerifier(llm, cfg.Gemini.Timeout)

	challengeVerifier := challenge.NewTurnstileVerifier(cfg.Turnstile.SecretKey, cfg.Turnstile.VerifyURL)
	if cfg.Turnstile.SecretKey == "" {
		appLogger.Warn("Turnstile secret key not set, challenge verification runs in bypass mode")
	}

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	userRepository := repository.NewUserDatabaseAdapter(db)
	examRepository := repository.NewExamTypeDatabaseAdapter(db)
	scoreRepository := repository.NewScoreDatabaseAdapter(db)
	logRepository := repository.NewSubmissionLogDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("RedisCacheAdapter initialized")

	invalidator := &lateInvalidator{}
	submissionService := service.NewSubmissionService(
		examRepository, scoreRepository, logRepository, txManager,
		evidenceVerifier, challengeVerifier, invalidator,
	)
	reportService := service.NewReportService(
		userRepository, examRepository, scoreRepository, submissionService, cacheAdapter,
	)
	invalidator.target = reportService
	adminService := service.NewAdminService(
		userRepository, examRepository, scoreRepository, logRepository, txManager, invalidator,
	)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository)

	resultMailer := mailer.NewResendMailer(cfg.Notifier.APIKey, cfg.Notifier.FromAddress)
	notifyService := service.NewNotifyService(userRepository, reportService, resultMailer, cfg.Notifier.RatePerSecond)

	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)
	studentHandler := handler.NewStudentHandler(reportService, submissionService)
	adminHandler := handler.NewAdminHandler(adminService, notifyService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	apiGroup := app.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMyProfile)

	meGroup := apiGroup.Group("/me", middleware.Protected(authService))
	meGroup.Get("/report", studentHandler.GetMyReport)
	meGroup.Post("/submissions", studentHandler.SubmitScore)
	meGroup.Get("/submissions", studentHandler.GetMyLogs)
	meGroup.Get("/submissions/:examId", studentHandler.GetSubmissionState)

	adminGroup := apiGroup.Group("/admin", middleware.Protected(authService), middleware.AdminOnly())
	adminGroup.Post("/exams", adminHandler.CreateExam)
	adminGroup.Get("/exams", adminHandler.ListExams)
	adminGroup.Put("/exams/mandatory", adminHandler.SetMandatoryExams)
	adminGroup.Put("/exams/:examId/open", adminHandler.SetExamOpen)
	adminGroup.Put("/exams/:examId/deadline", adminHandler.SetExamDeadline)
	adminGroup.Delete("/exams/:examId", adminHandler.DeleteExam)
	adminGroup.Put("/scores", adminHandler.UpsertScore)
	adminGroup.Get("/scores/matrix", adminHandler.GetScoreMatrix)
	adminGroup.Get("/submissions", adminHandler.ListSubmissionLogs)
	adminGroup.Post("/roster", adminHandler.ImportRoster)
	adminGroup.Get("/export", adminHandler.ExportBundle)
	adminGroup.Post("/import", adminHandler.ImportBundle)
	adminGroup.Post("/notify", adminHandler.NotifyResults)

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
