package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Token modes
const (
	TokenModeDev = "dev"
	TokenModeJWT = "jwt"
)

// Config holds all configuration for the application
type Config struct {
	Environment string            `yaml:"environment"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Auth        AuthConfig        `yaml:"auth"`
	OTP         OTPConfig         `yaml:"otp"`
	Feed        FeedConfig        `yaml:"feed"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	CORS        CORSConfig        `yaml:"cors"`
	ProfileSink ProfileSinkConfig `yaml:"profile_sink"`
	Admin       AdminConfig       `yaml:"admin"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Host         string        `yaml:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// AuthConfig holds bearer token configuration
type AuthConfig struct {
	TokenMode   string        `yaml:"token_mode"`
	TokenPrefix string        `yaml:"token_prefix"`
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTTTL      time.Duration `yaml:"jwt_ttl"`
}

// OTPConfig holds one-time code configuration
type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxAttempts int           `yaml:"max_attempts"` // 0 disables the lockout
}

// FeedConfig holds live feed configuration
type FeedConfig struct {
	BufferSize int           `yaml:"buffer_size"`
	Heartbeat  time.Duration `yaml:"heartbeat"`
}

// RateLimitConfig limits OTP endpoints per client IP
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProfileSinkConfig selects where signup profiles are exported
type ProfileSinkConfig struct {
	CSVPath  string         `yaml:"csv_path"`
	Postgres PostgresConfig `yaml:"postgres"`
	S3       S3Config       `yaml:"s3"`
}

// PostgresConfig holds database configuration for the postgres profile sink
type PostgresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// S3Config holds configuration for the S3 profile sink
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible storage
}

// AdminConfig toggles the dev data endpoints. It defaults on and must be
// switched off for production.
type AdminConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a development configuration
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
		Auth: AuthConfig{
			TokenMode:   TokenModeDev,
			TokenPrefix: "dev-token",
			JWTTTL:      30 * 24 * time.Hour,
		},
		OTP:  OTPConfig{TTL: 5 * time.Minute, MaxAttempts: 5},
		Feed: FeedConfig{BufferSize: 32, Heartbeat: 25 * time.Second},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 10,
			Window:   time.Minute,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		ProfileSink: ProfileSinkConfig{
			Postgres: PostgresConfig{Port: 5432, SSLMode: "disable"},
			S3:       S3Config{Prefix: "signup-profiles/"},
		},
		Admin: AdminConfig{Enabled: true},
	}
}

// Load reads configuration from a YAML file on top of Default. A missing file
// is not an error. Variables from .env and the process environment are
// applied last.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SEVAGAN_ENVIRONMENT":   &c.Environment,
		"SEVAGAN_HOST":          &c.Server.Host,
		"SEVAGAN_LOG_LEVEL":     &c.Log.Level,
		"SEVAGAN_LOG_FORMAT":    &c.Log.Format,
		"SEVAGAN_TOKEN_MODE":    &c.Auth.TokenMode,
		"SEVAGAN_JWT_SECRET":    &c.Auth.JWTSecret,
		"SEVAGAN_PROFILES_CSV":  &c.ProfileSink.CSVPath,
		"SEVAGAN_DB_PASSWORD":   &c.ProfileSink.Postgres.Password,
		"SEVAGAN_S3_ACCESS_KEY": &c.ProfileSink.S3.AccessKey,
		"SEVAGAN_S3_SECRET_KEY": &c.ProfileSink.S3.SecretKey,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("SEVAGAN_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SEVAGAN_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("SEVAGAN_ADMIN_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEVAGAN_ADMIN_ENABLED %q: %w", v, err)
		}
		c.Admin.Enabled = enabled
	}
	if v, ok := os.LookupEnv("SEVAGAN_CORS_ORIGINS"); ok {
		c.CORS.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Auth.TokenMode {
	case TokenModeDev:
		if c.Environment == EnvProduction {
			return fmt.Errorf("auth.token_mode %q is not allowed in production", TokenModeDev)
		}
	case TokenModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required when auth.token_mode is %q", TokenModeJWT)
		}
	default:
		return fmt.Errorf("unknown auth.token_mode %q", c.Auth.TokenMode)
	}
	if c.OTP.TTL <= 0 {
		return fmt.Errorf("otp.ttl must be positive")
	}
	if c.Admin.Enabled && c.Environment == EnvProduction {
		return fmt.Errorf("admin.enabled is not allowed in production")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// DSN returns the PostgreSQL connection string
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
