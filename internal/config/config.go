// Package config provides application configuration management using environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway client
type Config struct {
	Discord  DiscordConfig
	State    StateConfig
	Dispatch DispatchConfig
	Logging  LoggingConfig
}

// DiscordConfig holds Discord connection configuration
type DiscordConfig struct {
	Token      string
	GatewayURL string
	APIBaseURL string
}

// StateConfig holds state-engine tuning knobs
type StateConfig struct {
	// MaxMessages bounds the message history buffer. Values below 100
	// are raised to 100.
	MaxMessages int

	// GuildReadyQuietPeriod is how long the readiness handshake waits
	// without a new large guild arriving before it starts chunking.
	GuildReadyQuietPeriod time.Duration

	// ChunkWait is the per-outstanding-chunk share of the bounded wait
	// for member chunks during the handshake.
	ChunkWait time.Duration
}

// DispatchConfig holds event fan-out configuration
type DispatchConfig struct {
	Workers int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
// It optionally loads from a .env file if it exists
func Load() (*Config, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Discord = DiscordConfig{
		Token:      getEnv("DISCORD_TOKEN", ""),
		GatewayURL: getEnv("DISCORD_GATEWAY_URL", "wss://gateway.discord.gg/?v=10&encoding=json"),
		APIBaseURL: getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),
	}

	maxMessages, _ := strconv.Atoi(getEnv("MAX_MESSAGES", "5000"))
	quietSeconds, _ := strconv.Atoi(getEnv("GUILD_READY_QUIET_SECONDS", "2"))
	chunkWaitSeconds, _ := strconv.Atoi(getEnv("CHUNK_WAIT_SECONDS", "30"))

	cfg.State = StateConfig{
		MaxMessages:           maxMessages,
		GuildReadyQuietPeriod: time.Duration(quietSeconds) * time.Second,
		ChunkWait:             time.Duration(chunkWaitSeconds) * time.Second,
	}

	workers, _ := strconv.Atoi(getEnv("DISPATCH_WORKERS", "8"))
	cfg.Dispatch = DispatchConfig{
		Workers: workers,
	}

	cfg.Logging = LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Discord.GatewayURL == "" {
		return fmt.Errorf("DISCORD_GATEWAY_URL is required")
	}

	if c.State.GuildReadyQuietPeriod <= 0 {
		return fmt.Errorf("GUILD_READY_QUIET_SECONDS must be positive")
	}
	if c.State.ChunkWait <= 0 {
		return fmt.Errorf("CHUNK_WAIT_SECONDS must be positive")
	}

	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("DISPATCH_WORKERS must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
