// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Upstream backends
const (
	BackendPumpAgent = "pumpagent"
	BackendXV2       = "xv2"
)

// Profile sources
const (
	ProfileSourceFile     = "file"
	ProfileSourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Upstream    UpstreamConfig
	Pulse       PulseConfig
	Profile     ProfileConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode, c.MaxOpenConns,
	)
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// UpstreamConfig holds social platform API configuration
type UpstreamConfig struct {
	Backend         string
	XAPIKey         string
	XBaseURL        string
	XBearerToken    string
	XTrendsBaseURL  string
	WOEID           string
	ProbeHandle     string
	MinLikes        int
	MinRetweets     int
	RedditEnabled   bool
	RedditSubreddit string
	RedditTimeRange string
	RequestTimeout  time.Duration
}

// PulseConfig holds aggregation configuration
type PulseConfig struct {
	MaxTrends             int
	MaxPostsPerTrend      int
	TrackTweetsPerAccount int
	TrendsInterval        time.Duration
	TrackedInterval       time.Duration
	PollInterval          time.Duration
	Concurrency           int
	EventsTopic           string
}

// ProfileConfig holds profile storage configuration
type ProfileConfig struct {
	Source    string
	Path      string
	TrackPath string
	ID        string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "socialpulse"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Upstream: UpstreamConfig{
			Backend:         strings.ToLower(getEnv("UPSTREAM_BACKEND", BackendPumpAgent)),
			XAPIKey:         getEnv("X_API_KEY", ""),
			XBaseURL:        getEnv("X_API_BASE_URL", ""),
			XBearerToken:    getEnv("X_BEARER_TOKEN", ""),
			XTrendsBaseURL:  getEnv("X_TRENDS_BASE_URL", ""),
			WOEID:           getEnv("X_TRENDS_WOEID", "1"),
			ProbeHandle:     getEnv("X_RATELIMIT_PROBE_HANDLE", ""),
			MinLikes:        getEnvAsInt("X_SEARCH_MIN_LIKES", 0),
			MinRetweets:     getEnvAsInt("X_SEARCH_MIN_RETWEETS", 0),
			RedditEnabled:   getEnvAsBool("REDDIT_ENABLED", false),
			RedditSubreddit: getEnv("REDDIT_SUBREDDIT", "popular"),
			RedditTimeRange: getEnv("REDDIT_TIME_RANGE", "day"),
			RequestTimeout:  getEnvAsDuration("UPSTREAM_REQUEST_TIMEOUT", 10*time.Second),
		},
		Pulse: PulseConfig{
			MaxTrends:             getEnvAsInt("PULSE_MAX_TRENDS", 5),
			MaxPostsPerTrend:      getEnvAsInt("PULSE_MAX_POSTS_PER_TREND", 10),
			TrackTweetsPerAccount: getEnvAsInt("PULSE_TRACK_TWEETS_PER_ACCOUNT", 10),
			TrendsInterval:        getEnvAsDuration("PULSE_TRENDS_INTERVAL", 30*time.Minute),
			TrackedInterval:       getEnvAsDuration("PULSE_TRACKED_INTERVAL", 6*time.Hour),
			PollInterval:          getEnvAsDuration("PULSE_POLL_INTERVAL", 5*time.Minute),
			Concurrency:           getEnvAsInt("PULSE_CONCURRENCY", 4),
			EventsTopic:           getEnv("PULSE_EVENTS_TOPIC", "pulse"),
		},
		Profile: ProfileConfig{
			Source:    strings.ToLower(getEnv("PROFILE_SOURCE", ProfileSourceFile)),
			Path:      getEnv("PROFILE_PATH", ""),
			TrackPath: getEnv("TRACK_PATH", ""),
			ID:        getEnv("PROFILE_ID", "default"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	switch config.Upstream.Backend {
	case BackendPumpAgent, BackendXV2:
	default:
		return fmt.Errorf("unsupported upstream backend: %s", config.Upstream.Backend)
	}

	switch config.Profile.Source {
	case ProfileSourceFile, ProfileSourcePostgres:
	default:
		return fmt.Errorf("unsupported profile source: %s", config.Profile.Source)
	}

	if config.Pulse.MaxTrends <= 0 || config.Pulse.MaxPostsPerTrend <= 0 || config.Pulse.TrackTweetsPerAccount <= 0 {
		return fmt.Errorf("pulse limits must be positive")
	}
	if config.Pulse.Concurrency <= 0 {
		return fmt.Errorf("pulse concurrency must be positive")
	}
	if config.Pulse.TrendsInterval < 0 || config.Pulse.TrackedInterval < 0 || config.Pulse.PollInterval < 0 {
		return fmt.Errorf("pulse intervals must not be negative")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
