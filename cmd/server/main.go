// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/config"
	"github.com/codr1/Padelicious/internal/db"
	"github.com/codr1/Padelicious/internal/email"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/payment"
	"github.com/codr1/Padelicious/internal/ratelimit"
	"github.com/codr1/Padelicious/internal/scheduler"
)

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// policyFromConfig turns the booking section into the service policy.
func policyFromConfig(cfg *config.Config) booking.Policy {
	return booking.Policy{
		DepositPercentage:    cfg.Booking.DepositPercentage,
		PaymentFeeFlat:       cfg.Booking.PaymentFeeFlat,
		PaymentFeePercentBps: cfg.Booking.PaymentFeePercentBps,
		RefundWindow:         cfg.RefundWindow(),
		CheckoutExpiry:       cfg.CheckoutExpiry(),
		GatewayTimeout:       cfg.GatewayTimeout(),
		ReminderLead:         time.Duration(cfg.Scheduler.ReminderHoursBefore) * time.Hour,
		PhoneRegion:          cfg.Booking.PhoneRegion,
		Currency:             cfg.Booking.Currency,
		Location:             cfg.Location(),
	}
}

// buildEmitters assembles the admin notification fan-out. The store always
// receives events; Telegram and the broker join when configured.
func buildEmitters(cfg *config.Config, store *notify.Store) (notify.Multi, func()) {
	emitters := notify.Multi{store}
	cleanup := func() {}

	if cfg.Notifications.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram alerts disabled")
		} else {
			emitters = append(emitters, tg)
		}
	}

	if cfg.Notifications.RabbitMQURL != "" {
		broker, err := notify.DialBroker(cfg.Notifications.RabbitMQURL, cfg.Notifications.RabbitMQExchange)
		if err != nil {
			log.Warn().Err(err).Msg("Event broker disabled")
		} else {
			emitters = append(emitters, broker)
			cleanup = func() {
				if err := broker.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close event broker")
				}
			}
		}
	}
	return emitters, cleanup
}

func buildMailer(ctx context.Context, cfg *config.Config) booking.Mailer {
	if !cfg.Email.Enabled {
		log.Info().Msg("Customer email disabled")
		return nil
	}
	client, err := email.NewSESClient(ctx, cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.From)
	if err != nil {
		log.Warn().Err(err).Msg("Customer email disabled: SES client unavailable")
		return nil
	}
	return email.NewMailer(client, cfg.Email.From, cfg.Email.FacilityName)
}

// buildLimiter prefers the shared Redis bucket when REDIS_ADDR is set.
func buildLimiter(cfg *config.Config) (ratelimit.Checker, func()) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}
	}
	if cfg.RateLimit.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
		})
		limiter := ratelimit.NewRedis(client, ratelimit.RedisConfig{
			Burst:          cfg.RateLimit.Burst,
			RefillInterval: time.Duration(cfg.RateLimit.RefillIntervalSeconds) * time.Second,
			KeyPrefix:      cfg.App.Name + ":ratelimit:",
		})
		return limiter, func() { client.Close() }
	}

	limits := ratelimit.DefaultConfig()
	limits.MaxPerIPPerHour = cfg.RateLimit.BookingsPerHour
	limiter := ratelimit.New(limits)
	return limiter, limiter.Close
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := payment.NewMidtransGateway(payment.MidtransConfig{
		ServerKey:   cfg.Payment.ServerKey,
		Production:  cfg.Payment.Environment == "production",
		FinishURL:   cfg.Payment.FinishURL,
		Timeout:     cfg.GatewayTimeout(),
		ExpiryAfter: cfg.CheckoutExpiry(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure payment gateway")
	}

	store := notify.NewStore(database.Queries)
	emitters, closeEmitters := buildEmitters(cfg, store)
	defer closeEmitters()

	mailer := buildMailer(ctx, cfg)
	svc := booking.NewService(database, gateway, emitters, mailer, policyFromConfig(cfg))

	limiter, closeLimiter := buildLimiter(cfg)
	defer closeLimiter()

	if err := scheduler.Init(cfg.Location()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterBookingJobs(svc, cfg.Scheduler, mailer != nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scheduler jobs")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}()

	server := newServer(cfg, serverDeps{
		service:  svc,
		store:    store,
		limiter:  limiter,
		verifier: newVerifier(cfg),
	})
	shutdownTimeout := time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
