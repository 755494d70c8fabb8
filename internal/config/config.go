// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BookingConfig struct {
	DepositPercentage     int64  `yaml:"deposit_percentage"`
	PaymentFeeFlat        int64  `yaml:"payment_fee_flat"`
	PaymentFeePercentBps  int64  `yaml:"payment_fee_percent_bps"`
	RefundWindowHours     int    `yaml:"refund_window_hours"`
	CheckoutExpiryMinutes int    `yaml:"checkout_expiry_minutes"`
	PhoneRegion           string `yaml:"phone_region"`
	Currency              string `yaml:"currency"`
}

type PaymentConfig struct {
	Provider       string `yaml:"provider"`
	Environment    string `yaml:"environment"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	FinishURL      string `yaml:"finish_url"`
	ServerKey      string `yaml:"-"` // MIDTRANS_SERVER_KEY
}

type EmailConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Region          string `yaml:"region"`
	From            string `yaml:"from"`
	FacilityName    string `yaml:"facility_name"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type SchedulerConfig struct {
	SessionSweepCron     string `yaml:"session_sweep_cron"`
	ReminderCron         string `yaml:"reminder_cron"`
	PendingReconcileCron string `yaml:"pending_reconcile_cron"`
	ReminderHoursBefore  int    `yaml:"reminder_hours_before"`
}

type NotificationsConfig struct {
	TelegramChatID   int64  `yaml:"telegram_chat_id"`
	TelegramToken    string `yaml:"-"` // TELEGRAM_BOT_TOKEN
	RabbitMQExchange string `yaml:"rabbitmq_exchange"`
	RabbitMQURL      string `yaml:"-"` // RABBITMQ_URL
}

type RateLimitConfig struct {
	Enabled               bool   `yaml:"enabled"`
	BookingsPerHour       int    `yaml:"bookings_per_hour"`
	Burst                 int    `yaml:"burst"`
	RefillIntervalSeconds int    `yaml:"refill_interval_seconds"`
	RedisAddr             string `yaml:"-"` // REDIS_ADDR
	RedisPassword         string `yaml:"-"` // REDIS_PASSWORD
}

type AuthConfig struct {
	Issuer    string `yaml:"issuer"`
	JWTSecret string `yaml:"-"` // ADMIN_JWT_SECRET
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		Timezone    string `yaml:"timezone"`
		TrustProxy  bool   `yaml:"trust_proxy"`
	} `yaml:"app"`

	Database      DatabaseConfig      `yaml:"database"`
	Booking       BookingConfig       `yaml:"booking"`
	Payment       PaymentConfig       `yaml:"payment"`
	Email         EmailConfig         `yaml:"email"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationsConfig `yaml:"notifications"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Auth          AuthConfig          `yaml:"auth"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, overlaying secrets from the
// environment and filling defaults before validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Sensitive values never live in the YAML file.
	cfg.Payment.ServerKey = os.Getenv("MIDTRANS_SERVER_KEY")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Auth.JWTSecret = os.Getenv("ADMIN_JWT_SECRET")
	cfg.Notifications.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Notifications.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	cfg.RateLimit.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RateLimit.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Asia/Jakarta"
	}
	if c.Booking.DepositPercentage == 0 {
		c.Booking.DepositPercentage = 50
	}
	if c.Booking.RefundWindowHours == 0 {
		c.Booking.RefundWindowHours = 24
	}
	if c.Booking.CheckoutExpiryMinutes == 0 {
		c.Booking.CheckoutExpiryMinutes = 60
	}
	if c.Booking.PhoneRegion == "" {
		c.Booking.PhoneRegion = "ID"
	}
	if c.Booking.Currency == "" {
		c.Booking.Currency = "IDR"
	}
	if c.Payment.Provider == "" {
		c.Payment.Provider = "midtrans"
	}
	if c.Payment.Environment == "" {
		c.Payment.Environment = "sandbox"
	}
	if c.Payment.TimeoutSeconds == 0 {
		c.Payment.TimeoutSeconds = 10
	}
	if c.Scheduler.SessionSweepCron == "" {
		c.Scheduler.SessionSweepCron = "*/5 * * * *"
	}
	if c.Scheduler.ReminderCron == "" {
		c.Scheduler.ReminderCron = "*/15 * * * *"
	}
	if c.Scheduler.PendingReconcileCron == "" {
		c.Scheduler.PendingReconcileCron = "*/10 * * * *"
	}
	if c.Scheduler.ReminderHoursBefore == 0 {
		c.Scheduler.ReminderHoursBefore = 24
	}
	if c.Notifications.RabbitMQExchange == "" {
		c.Notifications.RabbitMQExchange = "booking.events"
	}
	if c.RateLimit.BookingsPerHour == 0 {
		c.RateLimit.BookingsPerHour = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.RateLimit.RefillIntervalSeconds == 0 {
		c.RateLimit.RefillIntervalSeconds = 360
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app timezone %q: %w", c.App.Timezone, err)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Booking.DepositPercentage <= 0 || c.Booking.DepositPercentage >= 100 {
		return fmt.Errorf("booking deposit_percentage must be between 1 and 99")
	}
	if c.Booking.PaymentFeeFlat < 0 || c.Booking.PaymentFeePercentBps < 0 {
		return fmt.Errorf("booking payment fees cannot be negative")
	}

	switch c.Payment.Provider {
	case "midtrans":
	default:
		return fmt.Errorf("unsupported payment provider: %s", c.Payment.Provider)
	}
	switch c.Payment.Environment {
	case "sandbox", "production":
	default:
		return fmt.Errorf("payment environment must be sandbox or production")
	}
	if c.App.Environment == "production" && c.Payment.ServerKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is required in production")
	}

	if c.Email.Enabled && c.Email.From == "" {
		return fmt.Errorf("email from address is required when email is enabled")
	}

	for name, expr := range map[string]string{
		"session_sweep_cron":     c.Scheduler.SessionSweepCron,
		"reminder_cron":          c.Scheduler.ReminderCron,
		"pending_reconcile_cron": c.Scheduler.PendingReconcileCron,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("scheduler %s %q: %w", name, expr, err)
		}
	}

	return nil
}

// Location returns the venue time zone used to interpret slot dates and times.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RefundWindow is the minimum lead time for a self-service full refund.
func (c *Config) RefundWindow() time.Duration {
	return time.Duration(c.Booking.RefundWindowHours) * time.Hour
}

// CheckoutExpiry is how long a booking may stay PENDING before it is polled.
func (c *Config) CheckoutExpiry() time.Duration {
	return time.Duration(c.Booking.CheckoutExpiryMinutes) * time.Minute
}

// GatewayTimeout bounds a single payment gateway call.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Payment.TimeoutSeconds) * time.Second
}
