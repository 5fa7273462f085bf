package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// EnvConfigFile names the environment variable pointing at an optional TOML file.
const EnvConfigFile = "TASKNEST_CONFIG"

type Config struct {
	ServerPort string
	GinMode    string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	OpenAIAPIKey string
	OpenAIModel  string

	OTLPEndpoint string
	ServiceName  string
	Environment  string

	// StatsSchedule is a cron spec for the stats reporter; empty disables it.
	StatsSchedule string
}

// fileConfig mirrors the TOML layout of the optional config file.
type fileConfig struct {
	Server struct {
		Port    string `toml:"port"`
		GinMode string `toml:"gin_mode"`
	} `toml:"server"`
	Database struct {
		Driver   string `toml:"driver"`
		Path     string `toml:"path"`
		Host     string `toml:"host"`
		Port     string `toml:"port"`
		User     string `toml:"user"`
		Password string `toml:"password"`
		Name     string `toml:"name"`
	} `toml:"database"`
	OpenAI struct {
		APIKey string `toml:"api_key"`
		Model  string `toml:"model"`
	} `toml:"openai"`
	Telemetry struct {
		Endpoint    string `toml:"endpoint"`
		ServiceName string `toml:"service_name"`
		Environment string `toml:"environment"`
	} `toml:"telemetry"`
	Jobs struct {
		StatsSchedule string `toml:"stats_schedule"`
	} `toml:"jobs"`
}

// Load builds the configuration. Values come from the environment, then from
// the TOML file named by TASKNEST_CONFIG (or path, when non-empty), then from
// built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	var file fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", or(file.Server.Port, "8080")),
		GinMode:       getEnv("GIN_MODE", or(file.Server.GinMode, "debug")),
		DBDriver:      getEnv("DB_DRIVER", or(file.Database.Driver, DriverSQLite)),
		DBPath:        getEnv("DB_PATH", or(file.Database.Path, "tasknest.db")),
		DBHost:        getEnv("DB_HOST", or(file.Database.Host, "localhost")),
		DBPort:        getEnv("DB_PORT", file.Database.Port),
		DBUser:        getEnv("DB_USER", or(file.Database.User, "tasknest")),
		DBPassword:    getEnv("DB_PASSWORD", file.Database.Password),
		DBName:        getEnv("DB_NAME", or(file.Database.Name, "tasknest")),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", file.OpenAI.APIKey),
		OpenAIModel:   getEnv("OPENAI_MODEL", file.OpenAI.Model),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", file.Telemetry.Endpoint),
		ServiceName:   getEnv("OTEL_SERVICE_NAME", or(file.Telemetry.ServiceName, "tasknest")),
		Environment:   getEnv("ENVIRONMENT", or(file.Telemetry.Environment, "development")),
		StatsSchedule: getEnv("STATS_SCHEDULE", file.Jobs.StatsSchedule),
	}

	if cfg.DBPort == "" {
		cfg.DBPort = defaultDBPort(cfg.DBDriver)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if err := validatePort("SERVER_PORT", c.ServerPort); err != nil {
		return err
	}
	if c.DBDriver != DriverSQLite {
		if err := validatePort("DB_PORT", c.DBPort); err != nil {
			return err
		}
	} else if c.DBPath == "" {
		return errors.New("DB_PATH is required for sqlite")
	}

	if c.StatsSchedule != "" {
		if _, err := cron.ParseStandard(c.StatsSchedule); err != nil {
			return fmt.Errorf("invalid STATS_SCHEDULE %q: %w", c.StatsSchedule, err)
		}
	}

	return nil
}

// TelemetryEnabled reports whether an OTLP collector is configured.
func (c *Config) TelemetryEnabled() bool {
	return c.OTLPEndpoint != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultDBPort(driver string) string {
	switch driver {
	case DriverMySQL:
		return "3306"
	case DriverPostgres:
		return "5432"
	default:
		return ""
	}
}

func validatePort(name, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid %s %q: must be between 1 and 65535", name, port)
	}
	return nil
}
