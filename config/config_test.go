package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8081"
database:
  host: db
  port: 5432
  user: tour
  password: secret
  name: tourbooking
  ssl_mode: disable
kafka:
  brokers: ["kafka:9092"]
  booking_events_topic: booking-events
booking:
  default_hold_minutes: 45
  agency_defaults:
    minimum_advance_percentage: 20
    use_percentage: true
    allow_agent_hold: true
  agencies:
    ag-1:
      minimum_advance_amount: 1500
      hold_duration_minutes: 90
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "host=db port=5432 user=tour password=secret dbname=tourbooking sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 45, cfg.Booking.DefaultHoldMinutes)
	assert.Equal(t, time.Minute, cfg.Booking.LayoutCacheTTL())
	assert.Equal(t, 30*time.Second, cfg.Worker.SweepInterval())
	assert.True(t, cfg.Booking.AgencyDefaults.UsePercentage)
	assert.Equal(t, float64(20), cfg.Booking.AgencyDefaults.MinimumAdvancePercentage)
	assert.Equal(t, int64(1500), cfg.Booking.Agencies["ag-1"].MinimumAdvanceAmount)
	assert.Equal(t, 90, cfg.Booking.Agencies["ag-1"].HoldDurationMinutes)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: [not, a, map"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, "storage: sqlite\n"))
	assert.ErrorContains(t, err, "storage must be")
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Booking: BookingConfig{DefaultHoldMinutes: -1},
		Worker:  WorkerConfig{BatchSize: -5},
	}
	cfg.Booking.AgencyDefaults.MinimumAdvancePercentage = 150

	err := cfg.Validate()

	require.Error(t, err)
	assert.ErrorContains(t, err, "default_hold_minutes")
	assert.ErrorContains(t, err, "minimum_advance_percentage")
	assert.ErrorContains(t, err, "worker settings")
	assert.False(t, Config{}.Kafka.Enabled())
}

func TestValidate_InMemoryEmbedsWorker(t *testing.T) {
	cfg := Config{Storage: StorageMemory}

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Worker.Embedded)

	pg := Config{}
	require.NoError(t, pg.Validate())
	assert.False(t, pg.Worker.Embedded)
}
