package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/secrets"
)

type AppConfig struct {
	Telegram  TelegramConfig  `mapstructure:"telegram" json:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage" json:"storage"`
	Interview InterviewConfig `mapstructure:"interview" json:"interview"`
	API       APIConfig       `mapstructure:"api" json:"api"`
	Gemini    GeminiConfig    `mapstructure:"gemini" json:"gemini"`

	Admins AdminSet `mapstructure:"-" json:"-"`
}

type TelegramConfig struct {
	Token              string        `mapstructure:"token" json:"-"`
	TokenFile          string        `mapstructure:"token-file" json:"token_file,omitempty"`
	AdminIDs           string        `mapstructure:"admin-ids" json:"admin_ids"`
	APIURL             string        `mapstructure:"api-url" json:"api_url"`
	PollTimeout        time.Duration `mapstructure:"poll-timeout" json:"poll_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate-limit-per-minute" json:"rate_limit_per_minute"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver" json:"driver"`
	SQLitePath  string `mapstructure:"sqlite-path" json:"sqlite_path"`
	DatabaseURL string `mapstructure:"database-url" json:"-"`
	ResultsDir  string `mapstructure:"results-dir" json:"results_dir"`
}

type InterviewConfig struct {
	QuestionsFile         string `mapstructure:"questions-file" json:"questions_file,omitempty"`
	QuestionsPerInterview int    `mapstructure:"questions-per-interview" json:"questions_per_interview"`
}

type APIConfig struct {
	Addr              string `mapstructure:"addr" json:"addr"`
	Token             string `mapstructure:"token" json:"-"`
	RequestsPerMinute int    `mapstructure:"requests-per-minute" json:"requests_per_minute"`
}

type GeminiConfig struct {
	APIKey     string        `mapstructure:"api-key" json:"-"`
	APIKeyFile string        `mapstructure:"api-key-file" json:"api_key_file,omitempty"`
	Model      string        `mapstructure:"model" json:"model"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Enabled reports whether a Gemini key was configured.
func (g GeminiConfig) Enabled() bool {
	return strings.TrimSpace(g.APIKey) != "" || strings.TrimSpace(g.APIKeyFile) != ""
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"telegram.token":                    "BOT_TOKEN",
	"telegram.token-file":               "BOT_TOKEN_FILE",
	"telegram.admin-ids":                "ADMIN_CHAT_ID",
	"telegram.api-url":                  "TELEGRAM_API_URL",
	"telegram.poll-timeout":             "TELEGRAM_POLL_TIMEOUT",
	"telegram.rate-limit-per-minute":    "RATE_LIMIT_PER_MINUTE",
	"storage.driver":                    "STORAGE_DRIVER",
	"storage.sqlite-path":               "SQLITE_PATH",
	"storage.database-url":              "DATABASE_URL",
	"storage.results-dir":               "RESULTS_DIR",
	"interview.questions-file":          "QUESTIONS_FILE",
	"interview.questions-per-interview": "QUESTIONS_PER_INTERVIEW",
	"api.addr":                          "API_ADDR",
	"api.token":                         "API_TOKEN",
	"api.requests-per-minute":           "API_REQUESTS_PER_MINUTE",
	"gemini.api-key":                    "GEMINI_API_KEY",
	"gemini.api-key-file":               "GEMINI_API_KEY_FILE",
	"gemini.model":                      "GEMINI_MODEL",
	"gemini.timeout":                    "GEMINI_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.api-url", "https://api.telegram.org")
	v.SetDefault("telegram.poll-timeout", "30s")
	v.SetDefault("telegram.rate-limit-per-minute", 20)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite-path", "interview.db")
	v.SetDefault("storage.results-dir", "results")
	v.SetDefault("interview.questions-per-interview", 0)
	v.SetDefault("api.requests-per-minute", 60)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "15s")
}

// LoadEnvFile reads KEY=VALUE pairs into the process environment.
// A missing file is only an error when it was asked for explicitly.
func LoadEnvFile(path string, explicit bool) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigurationError{Key: "env-file", Reason: "cannot load " + path, Err: err}
	}
	return nil
}

// Load binds the environment into v and decodes the result. v may carry
// flag bindings made by the caller.
func Load(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}

	var cfg AppConfig
	if err := decode(v.AllSettings(), &cfg); err != nil {
		return nil, &ConfigurationError{Key: "settings", Reason: "cannot decode", Err: err}
	}

	token, err := secrets.Load(secrets.Source{
		Name:  "BOT_TOKEN",
		Value: cfg.Telegram.Token,
		File:  cfg.Telegram.TokenFile,
	})
	if err != nil {
		return nil, &ConfigurationError{Key: "BOT_TOKEN", Reason: "bot token is required", Err: err}
	}
	cfg.Telegram.Token = token

	if cfg.Admins, err = ParseAdminSet(cfg.Telegram.AdminIDs); err != nil {
		return nil, err
	}

	if cfg.Gemini.Enabled() {
		key, err := secrets.Load(secrets.Source{
			Name:  "GEMINI_API_KEY",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, &ConfigurationError{Key: "GEMINI_API_KEY", Reason: "cannot resolve key", Err: err}
		}
		cfg.Gemini.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadResults reads only what the results commands need: no bot token or admins.
func LoadResults(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}
	var cfg AppConfig
	if err := decode(v.AllSettings(), &cfg); err != nil {
		return nil, &ConfigurationError{Key: "settings", Reason: "cannot decode", Err: err}
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(settings map[string]any, out *AppConfig) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(settings)
}

func (c *AppConfig) validate() error {
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if n := c.Interview.QuestionsPerInterview; n != 0 && n != questions.PerInterview {
		return &ConfigurationError{
			Key:    "QUESTIONS_PER_INTERVIEW",
			Reason: fmt.Sprintf("must be %d to match the decision thresholds, got %d", questions.PerInterview, n),
		}
	}
	if c.Telegram.RateLimitPerMinute <= 0 {
		return &ConfigurationError{Key: "RATE_LIMIT_PER_MINUTE", Reason: "must be positive"}
	}
	return nil
}

func (s *StorageConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case "sqlite", "file":
	case "postgres":
		if strings.TrimSpace(s.DatabaseURL) == "" {
			return &ConfigurationError{Key: "DATABASE_URL", Reason: "required for the postgres driver"}
		}
	default:
		return &ConfigurationError{Key: "STORAGE_DRIVER", Reason: fmt.Sprintf("unknown driver %q (want sqlite, postgres or file)", s.Driver)}
	}
	return nil
}
