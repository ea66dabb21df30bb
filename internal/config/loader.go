package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration of the attendance service.
// Values are resolved in three layers: built-in defaults, an optional YAML
// file, and environment variables with the ATTENDANCE_ prefix, each layer
// overriding the previous one.
type Config struct {
	HTTPPort     int
	SQLitePath   string
	SessionTTL   time.Duration
	Timezone     string
	RootPassword string
}

type fileConfig struct {
	HTTPPort     int    `yaml:"http_port"`
	SQLitePath   string `yaml:"sqlite_path"`
	SessionTTL   string `yaml:"session_ttl"`
	Timezone     string `yaml:"timezone"`
	RootPassword string `yaml:"root_password"`
}

// Load resolves the configuration. A .env file in the working directory is
// honoured before the environment is read. The optional configPath argument
// names a YAML file; when empty, ATTENDANCE_CONFIG_FILE is consulted instead.
func Load(configPath string) (Config, error) {
	// Missing .env files are not an error; the environment may be set
	// directly by the operator or the process manager.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:     8080,
		SQLitePath:   "attendance.db",
		SessionTTL:   24 * time.Hour,
		Timezone:     "America/Mexico_City",
		RootPassword: "PE18_admin_2024",
	}

	path := strings.TrimSpace(configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("ATTENDANCE_CONFIG_FILE"))
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvironment(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if parsed.HTTPPort > 0 {
		cfg.HTTPPort = parsed.HTTPPort
	}
	if value := strings.TrimSpace(parsed.SQLitePath); value != "" {
		cfg.SQLitePath = value
	}
	if value := strings.TrimSpace(parsed.SessionTTL); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("config file %s: session_ttl %q is not a valid duration", path, value)
		}
		cfg.SessionTTL = ttl
	}
	if value := strings.TrimSpace(parsed.Timezone); value != "" {
		cfg.Timezone = value
	}
	if value := strings.TrimSpace(parsed.RootPassword); value != "" {
		cfg.RootPassword = value
	}

	return nil
}

func applyEnvironment(cfg *Config) error {
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ATTENDANCE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ATTENDANCE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := strings.TrimSpace(os.Getenv("ATTENDANCE_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ATTENDANCE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ATTENDANCE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if tz := strings.TrimSpace(os.Getenv("ATTENDANCE_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "ATTENDANCE_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if password := strings.TrimSpace(os.Getenv("ATTENDANCE_ROOT_PASSWORD")); password != "" {
		cfg.RootPassword = password
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return nil
}

// Location resolves the configured timezone. An unresolvable name falls back
// to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
