package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/clock"
	"github.com/hemolink/blood-bank-api/internal/config"
	"github.com/hemolink/blood-bank-api/internal/database"
	"github.com/hemolink/blood-bank-api/internal/handler"
	"github.com/hemolink/blood-bank-api/internal/middleware"
	"github.com/hemolink/blood-bank-api/internal/queue"
	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/router"
	"github.com/hemolink/blood-bank-api/internal/service"
)

func main() {
	// Load .env when present; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting, response caching and the OTP store. A nil
	// client disables all three; the API itself keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting, caching and OTP login disabled")
	}

	store := repository.NewStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	campaigns := repository.NewCampaignRepo(db)
	sessions := repository.NewSessionRepo(db)
	reservations := repository.NewReservationRepo(db)
	banks := repository.NewBloodBankRepo(db)
	notifications := repository.NewNotificationRepo(db)

	var otp *repository.OTPStore
	if rdb != nil {
		otp = repository.NewOTPStore(rdb, cfg.OTPTTL, cfg.OTPMaxAttempts)
	}

	appointments := service.NewAppointmentService(
		store, reservations, sessions, campaigns, banks,
		service.NewFeedNotifier(notifications), clock.NewSystem(),
	)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, otp), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(campaigns, sessions, appointments))
	router.RegisterDonor(e, handler.NewDonorHandler(appointments, reservations, users), cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminCampaignHandler(store, campaigns, sessions, appointments),
		handler.NewAdminAppointmentHandler(appointments, reservations, campaigns),
		handler.NewBloodBankHandler(store, banks),
		handler.NewDashboardHandler(reservations, sessions, banks, users),
		cfg.JWTSecret)
	router.RegisterNotifications(e, handler.NewNotificationHandler(notifications), cfg.JWTSecret)

	// Background consumer appends completed donations to logs/donations.log.
	go func() {
		if err := queue.StartDonationConsumer(); err != nil {
			log.Printf("donation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
