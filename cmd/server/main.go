package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hiremind/hiremind-api/internal/config"
	"github.com/hiremind/hiremind-api/internal/domain/fiber/handler"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/middleware"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/hiremind/hiremind-api/internal/usecase"
	"github.com/hiremind/hiremind-api/internal/util"
	"github.com/hiremind/hiremind-api/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zl, err := logger.New(logger.Options{
		Service: appConfig.Name,
		JSON:    appConfig.LogJSON,
		Debug:   appConfig.Debug,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := ConnectDB(zl)

	jobRepo := repository.NewJobRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewInterviewReportRepository(db)

	gemini, err := service.NewGeminiService(ctx, zl)
	if err != nil {
		zl.Fatal("creating gemini client", zap.Error(err))
	}

	notifier := newNotifier(ctx, appConfig, notificationRepo, zl)

	var (
		appOpts       []usecase.ApplicationUsecaseOption
		interviewOpts []usecase.InterviewUsecaseOption
	)

	if storageConfig := config.LoadStorageConfig(); storageConfig.Enabled() {
		storage, err := service.NewStorageService(ctx, storageConfig)
		if err != nil {
			zl.Fatal("creating object storage client", zap.Error(err))
		}
		appOpts = append(appOpts, usecase.WithResumeStorage(storage))
		interviewOpts = append(interviewOpts, usecase.WithRecordingStorage(storage))
		zl.Info("object storage enabled", zap.String("bucket", storageConfig.Bucket))
	}

	var broker *service.BrokerService
	if brokerConfig := config.LoadBrokerConfig(); brokerConfig.Enabled() {
		broker, err = service.NewBrokerService(brokerConfig)
		if err != nil {
			zl.Fatal("connecting to rabbitmq", zap.Error(err))
		}
		defer broker.Close()
		appOpts = append(appOpts, usecase.WithEventPublisher(broker))
		interviewOpts = append(interviewOpts, usecase.WithAnalysisQueue(broker))
		zl.Info("rabbitmq enabled", zap.String("queue", brokerConfig.AnalysisQueue))
	}

	jobUC := usecase.NewJobUsecase(jobRepo, appRepo, reportRepo, gemini, zl)
	appUC := usecase.NewApplicationUsecase(appRepo, jobRepo, notifier, zl, appOpts...)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)
	interviewUC := usecase.NewInterviewUsecase(appRepo, reportRepo, gemini, zl, interviewOpts...)

	workersDone := make(chan struct{})
	if broker != nil {
		pool := worker.NewAnalysisPool(broker, interviewUC, appConfig.AnalysisWorkers, zl)
		go func() {
			defer close(workersDone)
			if err := pool.Run(ctx); err != nil {
				zl.Error("analysis workers stopped", zap.Error(err))
			}
		}()
	} else {
		close(workersDone)
	}

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			if code >= fiber.StatusInternalServerError {
				zl.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}

			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    code,
				Message: message,
			}, err)
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	api := app.Group("/api", middleware.Authenticate(config.LoadAuthConfig()))
	handler.NewJobHandler(jobUC, zl).RegisterRoutes(api)
	handler.NewApplicationHandler(appUC, zl).RegisterRoutes(api)
	handler.NewNotificationHandler(notificationUC, zl).RegisterRoutes(api)
	handler.NewInterviewHandler(interviewUC, zl).RegisterRoutes(api)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				zl.Debug("runtime stats", zap.Int("goroutines", runtime.NumGoroutine()))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			zl.Error("server shutdown", zap.Error(err))
		}
	}()

	zl.Info("server running", zap.String("port", appConfig.Port), zap.String("env", appConfig.Env))
	if err := app.Listen(appConfig.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}

	<-workersDone
}

func newNotifier(ctx context.Context, appConfig *config.AppConfig, repo *repository.NotificationRepository, zl *zap.Logger) service.NotifierInterface {
	if appConfig.NotifierMode != config.NotifierModeEmail {
		zl.Info("notifier mode", zap.String("mode", config.NotifierModeNotification))
		return service.NewNotificationNotifier(repo, zl)
	}

	sender, err := service.NewEmailSender(ctx, config.LoadEmailConfig())
	if err != nil {
		zl.Fatal("creating email sender", zap.Error(err))
	}
	zl.Info("notifier mode", zap.String("mode", config.NotifierModeEmail))
	return service.NewEmailNotifier(sender, zl)
}

func ConnectDB(zl *zap.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), repository.NewGormConfig())
	if err != nil {
		zl.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		zl.Fatal("could not get database instance", zap.Error(err))
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		zl.Fatal("enabling pgvector", zap.Error(err))
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		zl.Warn("enabling pgcrypto", zap.Error(err))
	}

	err = db.AutoMigrate(
		&model.Job{},
		&model.Application{},
		&model.Notification{},
		&model.InterviewReport{},
	)
	if err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	return db
}
