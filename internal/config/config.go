// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	Agent           AgentConfig
	RateLimit       RateLimitConfig
	ConversationLog ConversationLogConfig
}

// AgentConfig controls the AI orchestrator.
type AgentConfig struct {
	GoogleAPIKey  string
	Model         string
	HistoryWindow int
	MaxToolRounds int
	ModelTimeout  time.Duration
	ToolTimeout   time.Duration
}

// RateLimitConfig throttles inbound chat messages per session.
type RateLimitConfig struct {
	MessagesPerWindow int
	WindowDuration    time.Duration
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/lushmoments.db"),
		Agent: AgentConfig{
			GoogleAPIKey:  getEnv("GOOGLE_API_KEY", ""),
			Model:         getEnv("GOOGLE_GEMINI_MODEL", "gemini-2.5-flash-lite"),
			HistoryWindow: getEnvInt("AGENT_HISTORY_WINDOW", 20),
			MaxToolRounds: getEnvInt("AGENT_MAX_TOOL_ROUNDS", 8),
			ModelTimeout:  getEnvDuration("AGENT_MODEL_TIMEOUT", 30*time.Second),
			ToolTimeout:   getEnvDuration("AGENT_TOOL_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			MessagesPerWindow: getEnvInt("CHAT_RATE_LIMIT_MESSAGES", 30),
			WindowDuration:    getEnvDuration("CHAT_RATE_LIMIT_WINDOW", time.Minute),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CONVERSATION_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
			QueueSize:     queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Agent.HistoryWindow <= 0 {
		return fmt.Errorf("AGENT_HISTORY_WINDOW must be > 0")
	}
	if c.Agent.MaxToolRounds <= 0 {
		return fmt.Errorf("AGENT_MAX_TOOL_ROUNDS must be > 0")
	}
	if c.RateLimit.MessagesPerWindow <= 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT_MESSAGES must be > 0")
	}
	if c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.GlobalPath == "" {
		return fmt.Errorf("CONVERSATION_LOG_GLOBAL_PATH cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// AIEnabled reports whether a model backend is configured.
func (c *Config) AIEnabled() bool {
	return c.Agent.GoogleAPIKey != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
