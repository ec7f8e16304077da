package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup and handed to the components that need it.
// Nothing mutates it afterwards.
type Config struct {
	Env         string          `yaml:"env"`
	Port        int             `yaml:"port"`
	LogLevel    string          `yaml:"log_level"`
	CORSOrigins []string        `yaml:"cors_origins"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	Superuser   SuperuserConfig `yaml:"superuser"`
	Export      ExportConfig    `yaml:"export"`
}

// DatabaseConfig holds Postgres connection settings. DSN wins over the discrete fields.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	SecretKey  string        `yaml:"secret_key"`
	Algorithm  string        `yaml:"algorithm"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// SuperuserConfig is the account bootstrapped at startup. Empty username disables it.
type SuperuserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ExportConfig configures the scheduled roster export to an S3-compatible bucket.
type ExportConfig struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	Schedule        string `yaml:"schedule"`
}

// Enabled reports whether scheduled exports should run.
func (e ExportConfig) Enabled() bool {
	return e.Bucket != ""
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

// Default returns the settings used when neither the YAML file nor the environment says otherwise.
func Default() Config {
	return Config{
		Env:      "production",
		Port:     8000,
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			Algorithm:  "HS256",
			TokenTTL:   60 * time.Minute,
			BcryptCost: 12,
		},
		Export: ExportConfig{
			Region:   "auto",
			Schedule: "0 3 * * *",
		},
	}
}

// Load reads .env (if any), then the YAML file at path (if it exists), then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading environment variables directly")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config file not found, using environment", "path", path)
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if err := setInt(&cfg.Port, "PORT"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("BACKEND_CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Host, "POSTGRES_HOST")
	setString(&cfg.Database.User, "POSTGRES_USER")
	setString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Database.Name, "POSTGRES_DB")
	if err := setInt(&cfg.Database.Port, "POSTGRES_PORT"); err != nil {
		return err
	}

	setString(&cfg.Auth.SecretKey, "TOKEN_SECRET_KEY")
	setString(&cfg.Auth.Algorithm, "ALGORITHM")
	if v, ok := os.LookupEnv("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be an integer: %w", err)
		}
		cfg.Auth.TokenTTL = time.Duration(minutes) * time.Minute
	}
	if err := setInt(&cfg.Auth.BcryptCost, "BCRYPT_COST"); err != nil {
		return err
	}

	setString(&cfg.Superuser.Username, "SUPERUSER_USERNAME")
	setString(&cfg.Superuser.Password, "SUPERUSER_PASSWORD")

	setString(&cfg.Export.Bucket, "EXPORT_BUCKET")
	setString(&cfg.Export.Endpoint, "EXPORT_ENDPOINT")
	setString(&cfg.Export.Region, "EXPORT_REGION")
	setString(&cfg.Export.AccessKeyID, "EXPORT_ACCESS_KEY_ID")
	setString(&cfg.Export.SecretAccessKey, "EXPORT_SECRET_ACCESS_KEY")
	setString(&cfg.Export.PublicBaseURL, "EXPORT_PUBLIC_BASE_URL")
	setString(&cfg.Export.Schedule, "EXPORT_SCHEDULE")
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.ConnString() == "" {
		errs = append(errs, errors.New("database: DATABASE_URL or POSTGRES_USER/POSTGRES_DB is required"))
	}
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("auth: TOKEN_SECRET_KEY is required"))
	}
	if !supportedAlgorithms[c.Auth.Algorithm] {
		errs = append(errs, fmt.Errorf("auth: unsupported ALGORITHM %q (use HS256, HS384 or HS512)", c.Auth.Algorithm))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth: token lifetime must be positive"))
	}
	if c.Superuser.Username != "" && c.Superuser.Password == "" {
		errs = append(errs, errors.New("superuser: SUPERUSER_PASSWORD is required when SUPERUSER_USERNAME is set"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	return errors.Join(errs...)
}

// ConnString returns the DSN, or builds a postgres URL from the discrete fields.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.User == "" || d.Name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// IsDevelopment switches logging to human-readable output.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
