package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auth "github.com/mukbit/acs-auth"
	"github.com/mukbit/acs-auth/mailer"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "acs-auth").Logger()

	cfg, err := auth.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	logger := auth.NewZerologAdapter(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("mongodb ping failed")
	}

	accounts := auth.NewAccountsRepository(client.Database(cfg.MongoDatabase))
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure account indexes")
	}

	notifier, err := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize mailer")
	}

	var challenge auth.ChallengeVerifier = auth.NoopChallenge{}
	if cfg.RecaptchaSecret != "" {
		challenge = auth.NewRecaptchaVerifier(cfg.RecaptchaSecret).WithLogger(logger)
	} else {
		log.Warn().Msg("RECAPTCHA_SECRET not set, signup challenge disabled")
	}

	auther := auth.NewAuthenticator(accounts, cfg).
		WithLogger(logger).
		WithActivitySink(activityLogger(log))

	httpAuth, err := auth.NewHTTPAuthenticator(auther, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize http authenticator")
	}
	httpAuth.Logger = logger

	app := fiber.New(fiber.Config{
		AppName:      "acs-auth",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowCredentials: true,
	}))

	auth.RegisterAuthRoutes(app.Group("/api/auth"), func(c *auth.AuthController) *auth.AuthController {
		c.Debug = cfg.Debug
		c.Logger = logger
		c.Accounts = accounts
		c.Notifier = notifier
		c.Challenge = challenge
		c.Auther = httpAuth
		c.Tokens = auther.TokenService()
		c.Config = cfg
		return c
	})

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// activityLogger forwards auth activity events into the structured log.
func activityLogger(log zerolog.Logger) auth.ActivitySinkFunc {
	return func(_ context.Context, event auth.ActivityEvent) error {
		log.Info().
			Str("event", string(event.EventType)).
			Str("account_id", event.AccountID).
			Str("actor_type", event.Actor.Type).
			Time("occurred_at", event.OccurredAt).
			Msg("auth activity")
		return nil
	}
}
