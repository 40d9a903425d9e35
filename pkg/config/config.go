package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Venue    VenueConfig
	Catalog  CatalogConfig
	Booking  BookingConfig
	Payments PaymentsConfig
	Events   EventsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// VenueConfig describes the shop-wide grid and the zone calendar dates are
// interpreted in.
type VenueConfig struct {
	Open            string
	Close           string
	SlotGranularity time.Duration
	Timezone        string
}

// CatalogConfig governs catalog caching in Redis.
type CatalogConfig struct {
	CacheEnabled        bool
	ServicesCacheTTL    time.Duration
	ProfessionalsTTL    time.Duration
	CacheWarmupOnBoot   bool
	FeaturedServicesMax int
}

// BookingConfig tunes the server-side booking flow.
type BookingConfig struct {
	HidePastSlots bool
	SessionTTL    time.Duration
}

// PaymentsConfig configures the Stripe checkout integration. An empty secret
// key disables online payment preferences.
type PaymentsConfig struct {
	StripeSecretKey string
	Currency        string
	SuccessURL      string
	CancelURL       string
}

// EventsConfig configures the Kafka publisher. No brokers means events are dropped.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Venue = VenueConfig{
		Open:            v.GetString("VENUE_OPEN"),
		Close:           v.GetString("VENUE_CLOSE"),
		SlotGranularity: parseDuration(v.GetString("SLOT_GRANULARITY"), 30*time.Minute),
		Timezone:        v.GetString("VENUE_TIMEZONE"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled:        v.GetBool("ENABLE_CATALOG_CACHE"),
		ServicesCacheTTL:    parseDuration(v.GetString("SERVICES_CACHE_TTL"), time.Hour),
		ProfessionalsTTL:    parseDuration(v.GetString("PROFESSIONALS_CACHE_TTL"), 30*time.Minute),
		CacheWarmupOnBoot:   v.GetBool("CATALOG_CACHE_WARMUP"),
		FeaturedServicesMax: v.GetInt("FEATURED_SERVICES_MAX"),
	}

	cfg.Booking = BookingConfig{
		HidePastSlots: v.GetBool("BOOKING_HIDE_PAST_SLOTS"),
		SessionTTL:    parseDuration(v.GetString("BOOKING_SESSION_TTL"), 30*time.Minute),
	}

	cfg.Payments = PaymentsConfig{
		StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
		Currency:        strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
		SuccessURL:      v.GetString("PAYMENT_SUCCESS_URL"),
		CancelURL:       v.GetString("PAYMENT_CANCEL_URL"),
	}

	cfg.Events = EventsConfig{
		Brokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
		Topic:   v.GetString("KAFKA_TOPIC"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const devJWTSecret = "dev_secret"

// Validate reports every setting the API cannot start with, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	opens, openErr := time.Parse("15:04", c.Venue.Open)
	closes, closeErr := time.Parse("15:04", c.Venue.Close)
	switch {
	case openErr != nil || closeErr != nil:
		errs = append(errs, fmt.Errorf("VENUE_OPEN/VENUE_CLOSE must be HH:MM, got %q/%q", c.Venue.Open, c.Venue.Close))
	case !opens.Before(closes):
		errs = append(errs, fmt.Errorf("VENUE_OPEN %s must be before VENUE_CLOSE %s", c.Venue.Open, c.Venue.Close))
	}
	if c.Venue.SlotGranularity <= 0 {
		errs = append(errs, errors.New("SLOT_GRANULARITY must be positive"))
	}
	if c.Payments.StripeSecretKey != "" && len(c.Payments.Currency) != 3 {
		errs = append(errs, fmt.Errorf("PAYMENT_CURRENCY %q is not an ISO 4217 code", c.Payments.Currency))
	}
	if c.Env == EnvProduction && (c.JWT.Secret == "" || c.JWT.Secret == devJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Location resolves the venue time zone, falling back to UTC for unknown names.
func (c VenueConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shop_booking")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("VENUE_OPEN", "09:00")
	v.SetDefault("VENUE_CLOSE", "22:00")
	v.SetDefault("SLOT_GRANULARITY", "30m")
	v.SetDefault("VENUE_TIMEZONE", "America/Argentina/Buenos_Aires")

	v.SetDefault("ENABLE_CATALOG_CACHE", true)
	v.SetDefault("SERVICES_CACHE_TTL", "1h")
	v.SetDefault("PROFESSIONALS_CACHE_TTL", "30m")
	v.SetDefault("CATALOG_CACHE_WARMUP", false)
	v.SetDefault("FEATURED_SERVICES_MAX", 6)

	v.SetDefault("BOOKING_HIDE_PAST_SLOTS", true)
	v.SetDefault("BOOKING_SESSION_TTL", "30m")

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("PAYMENT_CURRENCY", "ars")
	v.SetDefault("PAYMENT_SUCCESS_URL", "http://localhost:3000/booking/success")
	v.SetDefault("PAYMENT_CANCEL_URL", "http://localhost:3000/booking/cancel")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "shop-booking.events")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
