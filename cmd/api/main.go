package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"schooldir/internal/config"
	"schooldir/internal/db"
	"schooldir/internal/email"
	apihttp "schooldir/internal/http"
	"schooldir/internal/repository"
	"schooldir/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	otpRepo := repository.NewPgOTPRepository(pool)
	schoolRepo := repository.NewPgSchoolRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	otpTTL := time.Duration(cfg.OTPTTLMinutes) * time.Minute

	var (
		otpLimiter   service.OTPRateLimiter
		sessionStore service.SessionStore
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, otpTTL, 3)
			sessionStore = service.NewRedisSessionStore(redisClient)
		}
		cancel()
		defer redisClient.Close()
	}

	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	tokenSvc := service.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTLMinutes)*time.Minute,
		sessionStore,
	)

	userSvc := service.NewUserService(logger, userRepo, otpRepo, emailSender, otpLimiter, otpTTL)
	schoolSvc := service.NewSchoolService(logger, schoolRepo)

	cookie := apihttp.CookieSettings{Name: cfg.AuthCookieName, Secure: cfg.AuthCookieSecure}
	userHandler := apihttp.NewUserHandler(logger, userSvc, tokenSvc, cookie)
	schoolHandler := apihttp.NewSchoolHandler(logger, schoolSvc)
	router := apihttp.NewRouter(logger, tokenSvc, userHandler, schoolHandler, cookie.Name)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
