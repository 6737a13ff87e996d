package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	appcontext "github.com/openlearn/certforge/internal/app_context"
	"github.com/openlearn/certforge/internal/config"
	"github.com/openlearn/certforge/internal/controller"
	"github.com/openlearn/certforge/internal/database"
	"github.com/openlearn/certforge/internal/env"
	filestorage "github.com/openlearn/certforge/internal/file_storage"
	"github.com/openlearn/certforge/internal/mailer"
	"github.com/openlearn/certforge/internal/middleware"
	"github.com/openlearn/certforge/internal/queue"
	ratelimiter "github.com/openlearn/certforge/internal/rate_limiter"
	"github.com/openlearn/certforge/internal/repository"
	"github.com/openlearn/certforge/internal/route"
	"github.com/openlearn/certforge/internal/service"
	"github.com/openlearn/certforge/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			logger.Panicf("Failed to register custom validations: %v", err)
		}
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	repo := repository.NewRepository(db, logger, s3)

	// The API still serves without a broker, bulk requests above the
	// threshold run inline and mails are sent synchronously.
	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQ.Host != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
		if err != nil {
			logger.Errorf("Error connecting to RabbitMQ, running without a broker: %v", err)
			rabbitMQ = nil
		} else {
			logger.Info("RabbitMQ connected \n")
			defer rabbitMQ.Close()
		}
	}

	var mailClient mailer.Client = mail
	if rabbitMQ != nil {
		mailClient = queue.NewQueueMailer(rabbitMQ)
	}

	svc, err := service.NewServices(logger, &cfg, repo, s3, mailClient)
	if err != nil {
		logger.Panic(err)
	}

	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mailClient,
		S3:         s3,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.ENV == "production" {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Actor-Id", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))

	_controller := controller.NewController(&app, svc, rabbitMQ)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Index(rApi, _controller.Index)
	route.V1_Templates(rApi, _controller.Template, _middleware)
	route.V1_Issuances(rApi, _controller.Issuance, _middleware)
	route.V1_Assignments(rApi, _controller.Assignment, _middleware)
	route.V1_Verify(rApi, _controller.Verify, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panic("Error running server: %v \n", err)
	}
}
