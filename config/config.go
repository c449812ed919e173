package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "inmemory"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Storage  string         `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address      string   `yaml:"address"`
	SwaggerDir   string   `yaml:"swagger_dir"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// Enabled is false when no broker is configured; events are then dropped.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type BookingConfig struct {
	DefaultHoldMinutes    int                                     `yaml:"default_hold_minutes"`
	LayoutCacheTTLSeconds int                                     `yaml:"layout_cache_ttl_seconds"`
	AgencyDefaults        domain.AgencyBookingSettings            `yaml:"agency_defaults"`
	Agencies              map[string]domain.AgencyBookingSettings `yaml:"agencies"`
}

func (b BookingConfig) LayoutCacheTTL() time.Duration {
	return time.Duration(b.LayoutCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	ExpirySweepSeconds int `yaml:"expiry_sweep_seconds"`
	BatchSize          int `yaml:"batch_size"`
	// Embedded runs the expiry sweep inside the API process. In-memory
	// storage always does, since a separate worker cannot see its data.
	Embedded bool `yaml:"embedded"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.ExpirySweepSeconds) * time.Second
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate fills defaults and rejects values the services cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Storage == "" {
		c.Storage = StoragePostgres
	}
	if c.Booking.DefaultHoldMinutes == 0 {
		c.Booking.DefaultHoldMinutes = 30
	}
	if c.Booking.LayoutCacheTTLSeconds == 0 {
		c.Booking.LayoutCacheTTLSeconds = 60
	}
	if c.Worker.ExpirySweepSeconds == 0 {
		c.Worker.ExpirySweepSeconds = 30
	}
	if c.Worker.BatchSize == 0 {
		c.Worker.BatchSize = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage == StorageMemory {
		c.Worker.Embedded = true
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "tourbooking-notifier"
	}

	var errs []error
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		errs = append(errs, fmt.Errorf("storage must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage))
	}
	if c.Booking.DefaultHoldMinutes < 0 {
		errs = append(errs, errors.New("booking.default_hold_minutes must not be negative"))
	}
	if c.Booking.LayoutCacheTTLSeconds < 0 {
		errs = append(errs, errors.New("booking.layout_cache_ttl_seconds must not be negative"))
	}
	if p := c.Booking.AgencyDefaults.MinimumAdvancePercentage; p < 0 || p > 100 {
		errs = append(errs, fmt.Errorf("booking.agency_defaults.minimum_advance_percentage %v is outside 0..100", p))
	}
	if c.Worker.ExpirySweepSeconds < 0 || c.Worker.BatchSize < 0 {
		errs = append(errs, errors.New("worker settings must not be negative"))
	}
	return errors.Join(errs...)
}
