// Package config provides configuration management for the scanner and its
// companion services.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Scanner  ScannerConfig
	Batch    BatchConfig
	YouTube  YouTubeConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Ollama   OllamaConfig
	Email    EmailConfig
	Server   ServerConfig
	Report   ReportConfig
	Logging  LoggingConfig
}

// ScannerConfig contains every threshold the detection engine recognizes.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ScannerConfig struct {
	MinRatio            float64  // views/subscribers floor for non-sports channels
	MinRatioSports      float64  // lower floor for sports-like categories
	MinRatioMid         float64  // mid-performer fallback floor (sports only)
	MinViews            int64    // absolute view floor, independent of ratio
	VideosPerChannel    int64    // recent uploads sampled per channel
	MinVideoDuration    int      // seconds; excludes Shorts
	MinVideoAgeHours    float64  // recency window lower bound
	MaxVideoAgeHours    float64  // recency window upper bound
	SignalWindowHours   float64  // trend_jacker age ceiling
	VelocityTrendJacker float64  // trend_jacker velocity floor
	VelocityAuthority   float64  // authority_builder velocity floor
	SportsCategories    []string // categories that get the lower ratio threshold
}

// BatchConfig controls round-robin rotation over large channel lists.
type BatchConfig struct {
	Size         int
	ChannelsFile string
}

// YouTubeConfig contains platform API settings.
type YouTubeConfig struct {
	APIKey         string
	DailyQuota     int
	QuotaThreshold int // percent of the daily quota at which scans stop
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RabbitMQConfig contains the outperformer-event fanout configuration. An
// empty Host disables event publishing.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// RedisConfig locates the asynq broker for the enrichment queue. An empty URL
// disables async enrichment.
type RedisConfig struct {
	URL string
}

// OllamaConfig locates the LLM used for summaries and content ideas. An empty
// BaseURL disables all generative enrichment.
type OllamaConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// EmailConfig controls report delivery through the Resend API.
type EmailConfig struct {
	Enabled bool
	To      string
	From    string
	APIKey  string
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// ReportConfig controls console and file report rendering.
type ReportConfig struct {
	MaxResults int
	OutputDir  string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Scanner.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects threshold combinations that would make the engine's
// invariants unsatisfiable.
func (c *ScannerConfig) Validate() error {
	if c.MinVideoAgeHours < 0 || c.MaxVideoAgeHours < c.MinVideoAgeHours {
		return fmt.Errorf("invalid age window: %v-%v hours", c.MinVideoAgeHours, c.MaxVideoAgeHours)
	}
	if c.MinRatioMid > c.MinRatioSports {
		return fmt.Errorf("mid-performer floor %v exceeds sports threshold %v", c.MinRatioMid, c.MinRatioSports)
	}
	if c.VideosPerChannel <= 0 {
		return fmt.Errorf("videos per channel must be positive, got %d", c.VideosPerChannel)
	}
	return nil
}

// IsSportsCategory reports whether the category (case-insensitive) uses the
// lower sports ratio threshold and the mid-performer fallback.
func (c *ScannerConfig) IsSportsCategory(category string) bool {
	category = strings.ToLower(category)
	for _, s := range c.SportsCategories {
		if category == s {
			return true
		}
	}
	return false
}

func setDefaults() {
	// Scanner thresholds
	viper.SetDefault("scanner.minratio", 1.0)
	viper.SetDefault("scanner.minratiosports", 0.75)
	viper.SetDefault("scanner.minratiomid", 0.5)
	viper.SetDefault("scanner.minviews", 10000)
	viper.SetDefault("scanner.videosperchannel", 5)
	viper.SetDefault("scanner.minvideoduration", 180)
	viper.SetDefault("scanner.minvideoagehours", 48)
	viper.SetDefault("scanner.maxvideoagehours", 168)
	viper.SetDefault("scanner.signalwindowhours", 72)
	viper.SetDefault("scanner.velocitytrendjacker", 2.0)
	viper.SetDefault("scanner.velocityauthority", 0.5)
	viper.SetDefault("scanner.sportscategories", []string{
		"athlete", "sports", "basketball", "football", "soccer", "training",
	})

	// Batching
	viper.SetDefault("batch.size", 3000)
	viper.SetDefault("batch.channelsfile", "channels.json")

	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.dailyquota", 10000)
	viper.SetDefault("youtube.quotathreshold", 90)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "outperformers")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// RabbitMQ (empty host disables publishing)
	viper.SetDefault("rabbitmq.host", "")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "outperformers")
	viper.SetDefault("rabbitmq.queue", "outperformers.detected")
	viper.SetDefault("rabbitmq.routingkey", "outperformer.detected")

	// Redis / asynq (empty disables enrichment queue)
	viper.SetDefault("redis.url", "")

	// Ollama (empty base URL disables generative enrichment)
	viper.SetDefault("ollama.baseurl", "")
	viper.SetDefault("ollama.model", "llama3:8b")
	viper.SetDefault("ollama.apikey", "")
	viper.SetDefault("ollama.timeout", 60*time.Second)

	// Email
	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.to", "")
	viper.SetDefault("email.from", "Outperformer Scanner <scanner@resend.dev>")
	viper.SetDefault("email.apikey", "")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Report
	viper.SetDefault("report.maxresults", 25)
	viper.SetDefault("report.outputdir", "output")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
