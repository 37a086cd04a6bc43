package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/blood-uber/server/internal/config"
	"github.com/blood-uber/server/internal/database"
	"github.com/blood-uber/server/internal/handler"
	"github.com/blood-uber/server/internal/middleware"
	"github.com/blood-uber/server/internal/queue"
	"github.com/blood-uber/server/internal/repository"
	"github.com/blood-uber/server/internal/router"
	"github.com/blood-uber/server/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	donors := repository.NewDonorRepo(db)
	patients := repository.NewPatientRepo(db)
	matches := repository.NewMatchRepo(db)
	messages := repository.NewMessageRepo(db)
	donations := repository.NewDonationRepo(db)
	badges := repository.NewBadgeRepo(db)
	tokens := repository.NewTokenRepo(db)
	rewards := repository.NewRewardRepo(db)
	predictions := repository.NewPredictionRepo(db)

	publisher := queue.NewPublisher("")
	matching := service.NewMatchService(matches, donors, patients, users, donations)
	accrual := service.NewAccrualService(db, donations, donors, badges, tokens, publisher)
	redemption := service.NewRewardService(db, rewards, donors)
	assistant := service.NewAssistant()

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users, donors, patients),
		Users:      handler.NewUserHandler(users),
		Donors:     handler.NewDonorHandler(donors, users),
		Patients:   handler.NewPatientHandler(patients, users),
		Matches:    handler.NewMatchHandler(matching),
		Messages:   handler.NewMessageHandler(messages, users),
		Donations:  handler.NewDonationHandler(accrual, donations, donors, patients),
		Rewards:    handler.NewRewardHandler(redemption, rewards, badges, tokens),
		Prediction: handler.NewPredictionHandler(predictions, patients),
		Chat:       handler.NewChatHandler(assistant),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Identity(cfg.JWTSecret))

	// Redis backs the cache and the rate limiter; either degrades to a
	// pass-through when the connection fails.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limit disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/healthz", handler.Health(db))
	router.Register(e, h, cached)

	go func() {
		if err := queue.StartDonationConsumer(); err != nil {
			logger.Warn("donation consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
