// Package config loads quizgen settings from an optional YAML file,
// QUIZGEN_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslquiz/quizgen/internal/llm"
	"github.com/eslquiz/quizgen/internal/logger"
	"github.com/eslquiz/quizgen/internal/quizgen"
)

// EnvPrefix is prepended to every environment variable, so the key
// "ollama.base_url" is read from QUIZGEN_OLLAMA_BASE_URL.
const EnvPrefix = "QUIZGEN"

// Models used for each modality when running against Ollama.
const (
	DefaultTextModel   = "llama3.2"
	DefaultVisionModel = "llama3.2-vision"
)

// ProviderAuto picks the first provider with an API key in the standard
// variables (GEMINI_API_KEY, OPENAI_API_KEY, ...), else Ollama.
const ProviderAuto = "auto"

// Config is the complete application configuration.
type Config struct {
	LLM    llm.Config
	Quiz   quizgen.Config
	Models quizgen.StaticModels
	Log    logger.Config
	DB     DBConfig
	Server ServerConfig
}

// DBConfig configures the audit log.
type DBConfig struct {
	// Path is the SQLite file. Empty means the per-user default location.
	Path string
	// Disabled turns the audit log off entirely.
	Disabled bool
	// Retain keeps only the newest N generation events on startup; 0 keeps all.
	Retain int
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string
	MaxImageBytes   int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"provider":     "llm.provider",
	"text-model":   "models.text",
	"vision-model": "models.vision",
	"max-repairs":  "quiz.max_repair_attempts",
	"refine":       "quiz.refine_repairs",
	"strict":       "quiz.strict_question_count",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"db":           "db.path",
	"no-db":        "db.disabled",
	"addr":         "server.addr",
}

// New returns a viper instance with defaults, environment binding and the
// given flags bound. configFile may be empty, in which case quizgen.yaml is
// looked up in the working directory and $HOME/.config/quizgen.
func New(flags *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("quizgen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizgen")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.retry_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry_initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry_max_wait", l.Retry.MaxWait)
	v.SetDefault("ollama.base_url", l.Ollama.BaseURL)
	v.SetDefault("ollama.model", l.Ollama.Model)
	v.SetDefault("anthropic.model", l.Anthropic.Model)
	v.SetDefault("openai.model", l.OpenAI.Model)
	v.SetDefault("gemini.model", l.Gemini.Model)
	v.SetDefault("openrouter.model", l.OpenRouter.Model)

	q := quizgen.DefaultConfig()
	v.SetDefault("quiz.max_repair_attempts", q.MaxRepairAttempts)
	v.SetDefault("quiz.refine_repairs", q.RefineRepairs)
	v.SetDefault("quiz.call_timeout", q.CallTimeout)
	v.SetDefault("quiz.overall_timeout", q.OverallTimeout)
	v.SetDefault("quiz.max_diagnostic_bytes", q.MaxDiagnosticBytes)
	v.SetDefault("quiz.max_tokens", q.MaxTokens)
	v.SetDefault("quiz.temperature", q.Temperature)
	v.SetDefault("quiz.strict_question_count", q.StrictQuestionCount)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("db.retain", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_image_bytes", 10<<20)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 11*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LLM: llm.Config{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			Ollama: llm.OllamaConfig{
				BaseURL: v.GetString("ollama.base_url"),
				Model:   v.GetString("ollama.model"),
			},
			Anthropic: llm.AnthropicConfig{
				APIKey:  v.GetString("anthropic.api_key"),
				Model:   v.GetString("anthropic.model"),
				BaseURL: v.GetString("anthropic.base_url"),
			},
			OpenAI: llm.OpenAIConfig{
				APIKey:  v.GetString("openai.api_key"),
				Model:   v.GetString("openai.model"),
				BaseURL: v.GetString("openai.base_url"),
			},
			Gemini: llm.GeminiConfig{
				APIKey: v.GetString("gemini.api_key"),
				Model:  v.GetString("gemini.model"),
			},
			OpenRouter: llm.OpenRouterConfig{
				APIKey:  v.GetString("openrouter.api_key"),
				Model:   v.GetString("openrouter.model"),
				BaseURL: v.GetString("openrouter.base_url"),
			},
			Retry: llm.RetryConfig{
				MaxAttempts: v.GetInt("llm.retry_attempts"),
				InitialWait: v.GetDuration("llm.retry_initial_wait"),
				MaxWait:     v.GetDuration("llm.retry_max_wait"),
				Multiplier:  llm.DefaultConfig().Retry.Multiplier,
			},
		},
		Quiz: quizgen.Config{
			MaxRepairAttempts:   v.GetInt("quiz.max_repair_attempts"),
			RefineRepairs:       v.GetBool("quiz.refine_repairs"),
			CallTimeout:         v.GetDuration("quiz.call_timeout"),
			OverallTimeout:      v.GetDuration("quiz.overall_timeout"),
			MaxDiagnosticBytes:  v.GetInt("quiz.max_diagnostic_bytes"),
			MaxTokens:           v.GetInt("quiz.max_tokens"),
			Temperature:         v.GetFloat64("quiz.temperature"),
			StrictQuestionCount: v.GetBool("quiz.strict_question_count"),
		},
		Models: quizgen.StaticModels{
			Text:   v.GetString("models.text"),
			Vision: v.GetString("models.vision"),
		},
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		DB: DBConfig{
			Path:     v.GetString("db.path"),
			Disabled: v.GetBool("db.disabled"),
			Retain:   v.GetInt("db.retain"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			MaxImageBytes:   v.GetInt64("server.max_image_bytes"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
	}

	if cfg.LLM.Provider == ProviderAuto {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Retry = cfg.LLM.Retry
			discovered.Ollama = cfg.LLM.Ollama
			cfg.LLM = discovered
		} else {
			cfg.LLM.Provider = "ollama"
		}
	}

	// The local defaults name Ollama models; other providers fall back to
	// their own configured model.
	if cfg.LLM.Provider == "ollama" {
		if cfg.Models.Text == "" {
			cfg.Models.Text = DefaultTextModel
		}
		if cfg.Models.Vision == "" {
			cfg.Models.Vision = DefaultVisionModel
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.Quiz.MaxRepairAttempts < 0 {
		return fmt.Errorf("quiz.max_repair_attempts must not be negative, got %d", c.Quiz.MaxRepairAttempts)
	}
	if c.Quiz.Temperature < 0 || c.Quiz.Temperature > 2 {
		return fmt.Errorf("quiz.temperature must be between 0 and 2, got %g", c.Quiz.Temperature)
	}
	if c.Server.MaxImageBytes <= 0 {
		return fmt.Errorf("server.max_image_bytes must be positive, got %d", c.Server.MaxImageBytes)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
