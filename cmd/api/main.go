package main

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/config"
	"github.com/noah-isme/spk-prodi-api/internal/database"
	"github.com/noah-isme/spk-prodi-api/internal/handler"
	"github.com/noah-isme/spk-prodi-api/internal/middleware"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
	"github.com/noah-isme/spk-prodi-api/internal/router"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/token"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	logger = logger.With().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database pool")
	}
	defer sqlDB.Close()

	healthChecks := map[string]handler.HealthCheckFunc{
		"database": sqlDB.PingContext,
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		logger.Warn().Msg("redis url not set; dashboard cache and redis events disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
		healthChecks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName)
	rounding := scoring.ParseRoundingMode(cfg.ScoringRounding)

	userRepo := repository.NewUserRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)
	subCriterionRepo := repository.NewSubCriterionRepository(db)
	alternativeRepo := repository.NewAlternativeRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	events := service.NewEventPublisher(natsConn, redisClient, cfg.EventSubjectBase, logger)
	evaluator := service.NewEvaluator(userRepo, criterionRepo, alternativeRepo, answerRepo, rounding, logger)

	criterionService := service.NewCriterionService(criterionRepo, activityService, validate, logger)
	subCriterionService := service.NewSubCriterionService(subCriterionRepo, criterionRepo, activityService, validate, logger)
	alternativeService := service.NewAlternativeService(alternativeRepo, activityService, validate, logger)
	questionService := service.NewQuestionService(questionRepo, criterionRepo, alternativeRepo, activityService, validate, logger)
	assessmentService := service.NewAssessmentService(service.AssessmentRepositories{
		Users:        userRepo,
		Criteria:     criterionRepo,
		SubCriteria:  subCriterionRepo,
		Alternatives: alternativeRepo,
		Questions:    questionRepo,
		Answers:      answerRepo,
	}, activityService, events, validate, logger)
	calculationService := service.NewCalculationService(evaluator, alternativeRepo, logger)
	rankingService := service.NewRankingService(evaluator, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, criterionRepo, alternativeRepo, redisClient, cfg.DashboardCacheTTL, logger)
	authService := service.NewAuthService(userRepo, tokens, activityService, validate, logger)
	userService := service.NewUserService(userRepo, activityService, validate, logger)
	profileService := service.NewProfileService(userRepo, activityService, validate, logger)

	if cfg.SeedsTeacher() {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := userService.EnsureTeacher(seedCtx, cfg.SeedTeacherName, cfg.SeedTeacherUsername, cfg.SeedTeacherPassword); err != nil {
			logger.Error().Err(err).Msg("failed to seed teacher account")
		}
		cancel()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		CriterionHandler:    handler.NewCriterionHandler(criterionService, logger),
		SubCriterionHandler: handler.NewSubCriterionHandler(subCriterionService, logger),
		AlternativeHandler:  handler.NewAlternativeHandler(alternativeService, logger),
		QuestionHandler:     handler.NewQuestionHandler(questionService, logger),
		AssessmentHandler:   handler.NewAssessmentHandler(assessmentService, logger),
		CalculationHandler:  handler.NewCalculationHandler(calculationService, logger),
		RankingHandler:      handler.NewRankingHandler(rankingService, assessmentService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		HealthChecks:        healthChecks,
		JWTMiddleware:       middleware.JWTProtected(tokens),
		LoginLimiter:        middleware.RateLimit("login", cfg.LoginRateLimit, cfg.LoginRateWindow),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("rounding", rounding.String()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

// jsonFieldName reports validation errors by their JSON field names.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
