// Package config holds runtime settings. Everything can be set via
// environment variables or programmatically; HAVEN_* variables win over
// provider-specific ones.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/haven-ai/haven/pkg/oracle"
)

// Config holds global settings for the crisis support engine.
type Config struct {
	// === Oracle Configuration ===
	// The oracle backs the structured crisis assessment and response
	// personalization. Provider "none" runs keyword-only.
	OracleProvider oracle.Provider // "ollama", "openrouter", "groq", "openai", "custom", "none"
	OracleAPIKey   string          // API key for cloud providers
	OracleModel    string          // Model identifier
	OracleBaseURL  string          // Custom base URL for self-hosted endpoints
	OracleTimeout  time.Duration   // Per-call timeout (default: 30s)

	// === Feature Flags ===
	EnableOracle          bool // Oracle assessment and personalization
	EnableSemantics       bool // Embedding similarity detection (requires Ollama)
	EnableLocalModel      bool // On-device ONNX classification
	EnablePersonalization bool // Oracle rewrite of reply templates

	OllamaURL string // Ollama base URL for embeddings (default: http://localhost:11434)

	// SemanticThreshold is the minimum embedding similarity for a
	// paraphrase match (default: 0.65).
	SemanticThreshold float64

	// ExtraBlockedPhrases extends the validator's disallow list at
	// startup, in addition to any overrides file.
	ExtraBlockedPhrases []string

	// RandomSeed pins template selection when non-zero. Leave zero in
	// production.
	RandomSeed int64

	// === Session Ledger ===
	// Empty RedisAddr selects the in-memory ledger.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionMaxAge time.Duration

	// === Server ===
	ListenAddr string

	// OverridesPath points to an optional YAML file with extra lexicon
	// keywords and blocked phrases.
	OverridesPath string
}

// NewDefaultConfig creates a Config with sensible defaults, overridable via
// environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		OracleProvider: detectOracleProvider(),
		OracleAPIKey:   GetEnv("HAVEN_ORACLE_API_KEY", GetEnv("GROQ_API_KEY", os.Getenv("OPENROUTER_API_KEY"))),
		OracleModel:    GetEnv("HAVEN_ORACLE_MODEL", ""),
		OracleBaseURL:  GetEnv("HAVEN_ORACLE_BASE_URL", ""),
		OracleTimeout:  time.Duration(GetEnvInt("HAVEN_ORACLE_TIMEOUT_MS", 30000)) * time.Millisecond,

		EnableOracle:          GetEnvBool("HAVEN_ENABLE_ORACLE", true),
		EnableSemantics:       GetEnvBool("HAVEN_ENABLE_SEMANTICS", false),
		EnableLocalModel:      GetEnvBool("HAVEN_ENABLE_LOCAL_MODEL", false),
		EnablePersonalization: GetEnvBool("HAVEN_ENABLE_PERSONALIZATION", true),

		OllamaURL: GetEnv("HAVEN_OLLAMA_URL", "http://localhost:11434"),

		SemanticThreshold:   GetEnvFloat("HAVEN_SEMANTIC_THRESHOLD", 0.65),
		ExtraBlockedPhrases: GetEnvSlice("HAVEN_BLOCKED_PHRASES", nil),

		RandomSeed: int64(GetEnvInt("HAVEN_RANDOM_SEED", 0)),

		RedisAddr:     GetEnv("HAVEN_REDIS_ADDR", ""),
		RedisPassword: GetEnv("HAVEN_REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("HAVEN_REDIS_DB", 0),
		SessionMaxAge: time.Duration(GetEnvInt("HAVEN_SESSION_MAX_AGE_HOURS", 24)) * time.Hour,

		ListenAddr: GetEnv("HAVEN_LISTEN_ADDR", ":8787"),

		OverridesPath: GetEnv("HAVEN_OVERRIDES_PATH", ""),
	}
}

// NewLocalConfig creates a Config for fully local operation: Ollama for the
// oracle, no cloud calls. Use for development, air-gapped deployments, or
// privacy-first installs.
func NewLocalConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.OracleProvider = oracle.ProviderOllama
	cfg.OracleBaseURL = "http://localhost:11434/v1"
	cfg.OracleModel = "gemma2:2b"
	cfg.OracleAPIKey = ""
	cfg.EnableSemantics = true
	return cfg
}

// NewOfflineConfig creates a Config that never touches the network. The
// pipeline runs keyword-only with template replies.
func NewOfflineConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.OracleProvider = oracle.ProviderNone
	cfg.EnableOracle = false
	cfg.EnableSemantics = false
	cfg.EnablePersonalization = false
	cfg.RedisAddr = ""
	return cfg
}

func detectOracleProvider() oracle.Provider {
	if p := os.Getenv("HAVEN_ORACLE_PROVIDER"); p != "" {
		return oracle.Provider(p)
	}
	if os.Getenv("GROQ_API_KEY") != "" {
		return oracle.ProviderGroq
	}
	if os.Getenv("OPENROUTER_API_KEY") != "" || os.Getenv("HAVEN_ORACLE_API_KEY") != "" {
		return oracle.ProviderOpenRouter
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return oracle.ProviderOpenAI
	}
	return oracle.ProviderOllama
}

// Validate checks provider and key consistency. In production mode missing
// cloud credentials are fatal; in development they log a warning and the
// engine degrades to keyword-only.
func (c *Config) Validate() error {
	isProduction := strings.ToLower(os.Getenv("HAVEN_ENV")) == "production" ||
		strings.ToLower(os.Getenv("HAVEN_ENV")) == "prod"

	needsKey := false
	switch c.OracleProvider {
	case oracle.ProviderOpenRouter, oracle.ProviderGroq, oracle.ProviderOpenAI:
		needsKey = true
	case oracle.ProviderNone, oracle.ProviderOllama, oracle.ProviderCustom:
	default:
		return fmt.Errorf("unknown oracle provider %q", c.OracleProvider)
	}

	if c.EnableOracle && needsKey && c.OracleAPIKey == "" {
		if isProduction {
			return fmt.Errorf("oracle provider %q requires HAVEN_ORACLE_API_KEY", c.OracleProvider)
		}
		log.Printf("[WARN] no API key for oracle provider %q, running keyword-only", c.OracleProvider)
	}

	if c.EnableSemantics && (c.SemanticThreshold <= 0 || c.SemanticThreshold > 1) {
		return fmt.Errorf("semantic threshold must be in (0, 1], got %v", c.SemanticThreshold)
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive, got %v", c.SessionMaxAge)
	}
	return nil
}

// MustValidate calls Validate and exits on failure. Call at startup.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] configuration validated successfully")
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
