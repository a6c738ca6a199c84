package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"streamhub/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        string
	AppVersion     string
	DatabaseURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	AdminSecretKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	SettingsCacheTTL time.Duration
	DisplayLocation  *time.Location
	AllowedOrigins   []string // empty means any

	// Rate limits
	APIRateLimit    int
	APIRateWindow   time.Duration
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	MatchRateLimit  int
	MatchRateWindow time.Duration
}

// Load reads .env (if present) and the environment. Missing required values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:        envString("APP_PORT", "8080"),
		AppVersion:     envString("APP_VERSION", "dev"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AdminSecretKey: os.Getenv("ADMIN_SECRET_KEY"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		JWTTTL:           time.Duration(envInt("JWT_TTL_HOURS", 168)) * time.Hour,
		SettingsCacheTTL: time.Duration(envInt("SETTINGS_CACHE_TTL_SECONDS", 60)) * time.Second,

		APIRateLimit:    envInt("API_RATE_LIMIT", 120),
		APIRateWindow:   time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:   envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:  time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		MatchRateLimit:  envInt("MATCH_RATE_LIMIT", 30),
		MatchRateWindow: time.Duration(envInt("MATCH_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, errors.New("DATABASE_URL is not set")
	case cfg.JWTSecret == "":
		return nil, errors.New("JWT_SECRET is not set")
	case cfg.AdminSecretKey == "":
		return nil, errors.New("ADMIN_SECRET_KEY is not set")
	}

	// comma separated
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	tz := envString("DISPLAY_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.New("DISPLAY_TIMEZONE: unknown location " + tz)
	}
	cfg.DisplayLocation = loc

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt falls back to def for unset, malformed or negative values.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
