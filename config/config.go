package config

import (
	"os"
	"strconv"
	"time"

	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort                string
	DatabaseURL               string
	LogLevel                  string
	LogFormat                 string
	FetchTimeoutSeconds       string
	RetailerRequestsPerSecond string
	BrowserFallback           string
	ClosetRefreshHours        string
}

// GetFetchTimeout returns the per-call timeout for outbound retailer requests
func (c *Config) GetFetchTimeout() time.Duration {
	seconds, err := strconv.Atoi(c.FetchTimeoutSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid FETCH_TIMEOUT_SECONDS value: %s, using default 10 seconds", c.FetchTimeoutSeconds)
		return 10 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetRetailerRequestsPerSecond returns the outbound request budget, 0 meaning unlimited
func (c *Config) GetRetailerRequestsPerSecond() float64 {
	if c.RetailerRequestsPerSecond == "" {
		return 0
	}

	rps, err := strconv.ParseFloat(c.RetailerRequestsPerSecond, 64)
	if err != nil || rps < 0 {
		logrus.Warnf("Invalid RETAILER_REQUESTS_PER_SECOND value: %s, disabling rate limit", c.RetailerRequestsPerSecond)
		return 0
	}

	return rps
}

// IsBrowserFallbackEnabled reports whether headless rendering may be used when a plain fetch fails
func (c *Config) IsBrowserFallbackEnabled() bool {
	enabled, err := strconv.ParseBool(c.BrowserFallback)
	if err != nil {
		return false
	}
	return enabled
}

// GetClosetRefreshInterval returns how often stored closet items are re-extracted
func (c *Config) GetClosetRefreshInterval() time.Duration {
	hours, err := strconv.Atoi(c.ClosetRefreshHours)
	if err != nil || hours <= 0 {
		logrus.Warnf("Invalid CLOSET_REFRESH_INTERVAL_HOURS value: %s, using default 24 hours", c.ClosetRefreshHours)
		return 24 * time.Hour
	}

	return time.Duration(hours) * time.Hour
}

// UnifiedConfiguration converts the environment values into the typed service configuration
func (c *Config) UnifiedConfiguration() *shared.UnifiedConfiguration {
	unified := shared.NewDefaultUnifiedConfiguration()
	unified.Service.HTTPRequestTimeout = c.GetFetchTimeout()
	unified.Service.RequestsPerSecond = c.GetRetailerRequestsPerSecond()
	unified.Service.BrowserFallback = c.IsBrowserFallbackEnabled()
	unified.Logging.Level = c.LogLevel
	unified.Logging.Format = c.LogFormat
	unified.ValidateAndApplyDefaults()
	return unified
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:                getEnv("SERVER_PORT", "8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		LogFormat:                 getEnv("LOG_FORMAT", "text"),
		FetchTimeoutSeconds:       getEnv("FETCH_TIMEOUT_SECONDS", "10"),
		RetailerRequestsPerSecond: getEnv("RETAILER_REQUESTS_PER_SECOND", "0"),
		BrowserFallback:           getEnv("BROWSER_FALLBACK", "false"),
		ClosetRefreshHours:        getEnv("CLOSET_REFRESH_INTERVAL_HOURS", "24"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
