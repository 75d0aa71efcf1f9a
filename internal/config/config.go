package config

import (
	"errors"
	"fmt"
	"os"

	"grislo/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Service    ServiceConfig    `yaml:"service"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Seed       SeedConfig       `yaml:"seed"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
	Sheets     SheetsConfig     `yaml:"sheets"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

// ServiceConfig is the reservation-policy singleton. Loaded once per process
// and never partially mutated; a reload replaces it wholesale.
type ServiceConfig struct {
	Name                string   `yaml:"name"`
	VehicleCapacity     int      `yaml:"vehicle_capacity"`
	MaxPassengers       int      `yaml:"max_passengers"`
	BookingWindowDays   int      `yaml:"booking_window_days"`
	CancelDeadlineHours int      `yaml:"cancel_deadline_hours"`
	TimeSlots           []string `yaml:"time_slots"`
	AdminPassword       string   `yaml:"admin_password"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	// Path to the sqlite file backing the remote authoritative tier.
	// Empty means the remote tier is not configured and the engine runs
	// cache+seed only.
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SeedConfig struct {
	// Dir holds the bundled read-only datasets consulted when both the
	// remote tier and the cache are empty.
	Dir string `yaml:"dir"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	// Enabled is a tri-state: unset defaults to on whenever the API is
	// exposed; an explicit false disables auth deliberately.
	Enabled      *bool          `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

// AuthEnabled resolves the auth toggle against its default.
func (c APIConfig) AuthEnabled() bool {
	if c.Auth.Enabled != nil {
		return *c.Auth.Enabled
	}
	return c.Enabled
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type SheetsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled"`
	BotToken string  `yaml:"bot_token"`
	ChatIDs  []int64 `yaml:"chat_ids"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Environment variable substitution before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Service.VehicleCapacity < 1 {
		return errors.New("service.vehicle_capacity must be at least 1")
	}
	if c.Service.BookingWindowDays < 0 {
		return errors.New("service.booking_window_days must not be negative")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when telegram is enabled")
	}
	if c.Sheets.Enabled {
		if c.Sheets.CredentialsFile == "" {
			return errors.New("sheets.credentials_file is required when sheets is enabled")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("sheets.spreadsheet_id is required when sheets is enabled")
		}
	}
	return ValidateTimeSlots(c.Service.TimeSlots)
}

// ValidateTimeSlots rejects duplicate or malformed HH:MM entries.
func ValidateTimeSlots(slots []string) error {
	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if len(slot) != 5 || slot[2] != ':' {
			return fmt.Errorf("invalid time slot %q, expected HH:MM", slot)
		}
		if seen[slot] {
			return fmt.Errorf("duplicate time slot: %s", slot)
		}
		seen[slot] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "Town Shuttle Reservations"
	}
	if c.Service.VehicleCapacity == 0 {
		c.Service.VehicleCapacity = models.DefaultVehicleCapacity
	}
	if c.Service.MaxPassengers == 0 {
		c.Service.MaxPassengers = models.DefaultMaxPassengers
	}
	if c.Service.BookingWindowDays == 0 {
		c.Service.BookingWindowDays = models.DefaultBookingWindowDays
	}
	if c.Service.CancelDeadlineHours == 0 {
		c.Service.CancelDeadlineHours = models.DefaultCancelDeadlineHours
	}
	if len(c.Service.TimeSlots) == 0 {
		c.Service.TimeSlots = append([]string(nil), models.DefaultTimeSlots...)
	}

	if c.API.Enabled && c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Seed.Dir == "" {
		c.Seed.Dir = "data"
	}
}
