package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "09:00", cfg.Venue.Open)
	assert.Equal(t, "22:00", cfg.Venue.Close)
	assert.Equal(t, 30*time.Minute, cfg.Venue.SlotGranularity)
	assert.Equal(t, time.Hour, cfg.Catalog.ServicesCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Catalog.ProfessionalsTTL)
	assert.True(t, cfg.Booking.HidePastSlots)
	assert.Empty(t, cfg.Events.Brokers)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("SERVICES_CACHE_TTL", "15m")
	t.Setenv("PAYMENT_CURRENCY", "USD")
	t.Setenv("BOOKING_HIDE_PAST_SLOTS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Catalog.ServicesCacheTTL)
	assert.Equal(t, "usd", cfg.Payments.Currency)
	assert.False(t, cfg.Booking.HidePastSlots)
}

func TestVenueLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, VenueConfig{Timezone: "Nowhere/Atlantis"}.Location())
	assert.Equal(t, time.UTC, VenueConfig{}.Location())
	if _, err := os.Stat("/usr/share/zoneinfo/America/Argentina/Buenos_Aires"); err == nil {
		assert.Equal(t, "America/Argentina/Buenos_Aires", VenueConfig{Timezone: "America/Argentina/Buenos_Aires"}.Location().String())
	}
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func validConfig() *Config {
	return &Config{
		Env:   EnvDevelopment,
		Port:  8080,
		JWT:   JWTConfig{Secret: devJWTSecret},
		Venue: VenueConfig{Open: "09:00", Close: "22:00", SlotGranularity: 30 * time.Minute},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadVenueHours(t *testing.T) {
	cfg := validConfig()
	cfg.Venue.Open, cfg.Venue.Close = "22:00", "09:00"
	assert.ErrorContains(t, cfg.Validate(), "must be before")

	cfg.Venue.Open = "9am"
	assert.ErrorContains(t, cfg.Validate(), "HH:MM")
}

func TestValidateRequiresProductionSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = EnvProduction
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWT.Secret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateJoinsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0
	cfg.Venue.SlotGranularity = 0
	cfg.Payments = PaymentsConfig{StripeSecretKey: "sk_test", Currency: "pesos"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "SLOT_GRANULARITY")
	assert.Contains(t, err.Error(), "PAYMENT_CURRENCY")
}

func TestLoadFailsOnInvalidSettings(t *testing.T) {
	chdirTemp(t)
	t.Setenv("VENUE_CLOSE", "08:00")

	_, err := Load()
	assert.Error(t, err)
}
