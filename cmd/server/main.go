package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"fintrack/backend/internal/audit"
	auditrepo "fintrack/backend/internal/audit/repository"
	"fintrack/backend/internal/auth/service"
	"fintrack/backend/internal/blacklist"
	"fintrack/backend/internal/config"
	"fintrack/backend/internal/db"
	devicerepo "fintrack/backend/internal/device/repository"
	"fintrack/backend/internal/email"
	"fintrack/backend/internal/handler"
	"fintrack/backend/internal/handler/middleware"
	"fintrack/backend/internal/lockout"
	"fintrack/backend/internal/security"
	sessionrepo "fintrack/backend/internal/session/repository"
	"fintrack/backend/internal/telemetry/otel"
	userrepo "fintrack/backend/internal/user/repository"
	"fintrack/backend/internal/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "fintrack-auth", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	devices := devicerepo.NewPostgresRepository(database)
	audits := auditrepo.NewPostgresRepository(database)

	var mailer email.Mailer = email.LogMailer{}
	if cfg.ResendAPIKey != "" {
		resendMailer, err := email.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
		if err != nil {
			log.Fatalf("mailer: %v", err)
		}
		mailer = resendMailer
	}

	bl := blacklist.NewTokenBlacklist(redisClient)
	if redisClient == nil {
		bl = nil
	}

	svc := service.NewAuthService(
		users,
		sessions,
		devices,
		security.NewHasher(cfg.BcryptCost),
		tokens,
		lockout.NewGuard(cfg.LockoutThreshold, cfg.LockWindow()),
		bl,
		mailer,
		audit.NewLogger(audits, nil),
		service.Config{
			SessionCap:    cfg.SessionCap,
			SessionTTL:    cfg.SessionTTL(),
			ResetTokenTTL: cfg.ResetTokenTTL(),
			ResetLinkBase: cfg.ResetLinkBase + "?token=",
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      "fintrack-auth",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(middleware.Recovery())
	app.Use(middleware.Logger())

	authHandler := handler.NewAuthHandler(svc, validator.New())
	healthHandler := handler.NewHealthHandler(database, redisPinger(redisClient))
	handler.SetupRoutes(app, authHandler, healthHandler, middleware.Auth(tokens, bl))

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// redisPinger adapts a redis client to the health handler's probe. A nil
// client returns a nil Pinger so the probe is skipped.
func redisPinger(c *redis.Client) handler.Pinger {
	if c == nil {
		return nil
	}
	return redisProbe{c: c}
}

type redisProbe struct {
	c *redis.Client
}

func (p redisProbe) PingContext(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}
