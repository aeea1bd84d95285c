package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	Wikipedia Wikipedia `mapstructure:"wikipedia"`
	AI        AI        `mapstructure:"ai"`
	Cache     Cache     `mapstructure:"cache"`
	Server    Server    `mapstructure:"server"`
	Store     Store     `mapstructure:"store"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// Wikipedia holds encyclopedia API configuration
type Wikipedia struct {
	RESTBaseURL   string `mapstructure:"rest_base_url"`
	ActionBaseURL string `mapstructure:"action_base_url"`
	UserAgent     string `mapstructure:"user_agent"`
	Timeout       string `mapstructure:"timeout"`
	MaxSections   int    `mapstructure:"max_sections"`
	LinkLimit     int    `mapstructure:"link_limit"`
	CategoryLimit int    `mapstructure:"category_limit"`
}

// AI holds summarization provider configuration
type AI struct {
	// Provider selects the LLM backend: "openai", "gemini" or "heuristic".
	Provider           string       `mapstructure:"provider"`
	SummaryConcurrency int          `mapstructure:"summary_concurrency"`
	OpenAI             OpenAIConfig `mapstructure:"openai"`
	Gemini             GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Cache holds article prefetch cache configuration
type Cache struct {
	Capacity      int    `mapstructure:"capacity"`
	RefillTimeout string `mapstructure:"refill_timeout"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string     `mapstructure:"host"`
	Port            int        `mapstructure:"port"`
	ReadTimeout     string     `mapstructure:"read_timeout"`
	WriteTimeout    string     `mapstructure:"write_timeout"`
	ShutdownTimeout string     `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Store holds collections database configuration
type Store struct {
	DataDir string `mapstructure:"data_dir"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".wikiexplorer")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvPrefix("WIKIEXPLORER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)

	viper.SetDefault("wikipedia.rest_base_url", "https://en.wikipedia.org/api/rest_v1")
	viper.SetDefault("wikipedia.action_base_url", "https://en.wikipedia.org/w/api.php")
	viper.SetDefault("wikipedia.user_agent", "wikiexplorer/1.0 (https://github.com/wikiexplorer)")
	viper.SetDefault("wikipedia.timeout", "15s")
	viper.SetDefault("wikipedia.max_sections", 5)
	viper.SetDefault("wikipedia.link_limit", 50)
	viper.SetDefault("wikipedia.category_limit", 20)

	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.summary_concurrency", 5)
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.timeout", "30s")
	viper.SetDefault("ai.openai.max_tokens", 150)
	viper.SetDefault("ai.openai.temperature", 0.3)
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 256)
	viper.SetDefault("ai.gemini.temperature", 0.3)

	viper.SetDefault("cache.capacity", 2)
	viper.SetDefault("cache.refill_timeout", "90s")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("store.data_dir", "~/.wikiexplorer")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.openai.base_url", []string{
		"OPENAI_BASE_URL",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.provider", []string{
		"WIKIEXPLORER_AI_PROVIDER",
		"AI_PROVIDER",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"WIKIEXPLORER_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Store.DataDir != "" {
		config.Store.DataDir = expandPath(config.Store.DataDir)
	}
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	if config.App.Debug {
		config.Logging.Level = "debug"
	}

	durations := map[string]string{
		"wikipedia.timeout":       config.Wikipedia.Timeout,
		"ai.openai.timeout":       config.AI.OpenAI.Timeout,
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"cache.refill_timeout":    config.Cache.RefillTimeout,
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures configuration values are usable.
// Missing AI credentials are allowed: summarization then runs on local heuristics.
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "openai", "gemini", "heuristic":
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: openai, gemini, heuristic", config.AI.Provider))
	}

	if config.Cache.Capacity < 1 {
		errors = append(errors, "cache.capacity must be at least 1")
	}
	if config.Wikipedia.MaxSections < 1 {
		errors = append(errors, "wikipedia.max_sections must be at least 1")
	}
	if config.AI.SummaryConcurrency < 1 {
		errors = append(errors, "ai.summary_concurrency must be at least 1")
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server.port out of range: %d", config.Server.Port))
	}

	for key, raw := range map[string]string{
		"wikipedia.rest_base_url":   config.Wikipedia.RESTBaseURL,
		"wikipedia.action_base_url": config.Wikipedia.ActionBaseURL,
	} {
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			errors = append(errors, fmt.Sprintf("%s must be an http(s) URL, got %q", key, raw))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a validated duration string, returning fallback when empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// HasCredential reports whether the configured AI provider has a usable API key.
func (a AI) HasCredential() bool {
	switch a.Provider {
	case "openai":
		return isValidAPIKey(a.OpenAI.APIKey)
	case "gemini":
		return isValidAPIKey(a.Gemini.APIKey)
	default:
		return false
	}
}

// Convenience getters for commonly used configuration values
func GetWikipedia() Wikipedia { return Get().Wikipedia }
func GetAI() AI               { return Get().AI }
func GetCache() Cache         { return Get().Cache }
func GetServer() Server       { return Get().Server }
func GetStore() Store         { return Get().Store }
func GetLogging() Logging     { return Get().Logging }
func IsDebugMode() bool       { return Get().App.Debug }

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-openai-key", "your-gemini-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
