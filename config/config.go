package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/t3chat/t3chat-tui/client"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the client settings read from <profileDir>/config.{toml,yaml,json},
// T3CHAT_* environment variables and command-line flags.
type Config struct {
	ServerURL    string    `mapstructure:"server_url" validate:"required,url"`
	Theme        string    `mapstructure:"theme" validate:"oneof=dark light catppuccin"`
	DefaultModel string    `mapstructure:"default_model" validate:"required"`
	Models       []string  `mapstructure:"models" validate:"min=1,dive,required"`
	LogLevel     string    `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	Tokenizer    string    `mapstructure:"tokenizer"`
	Reconnect    Reconnect `mapstructure:"reconnect"`
}

// Reconnect is the automatic reconnect policy.
type Reconnect struct {
	Initial     time.Duration `mapstructure:"initial" validate:"gt=0"`
	Max         time.Duration `mapstructure:"max" validate:"gtefield=Initial"`
	Multiplier  float64       `mapstructure:"multiplier" validate:"gte=1"`
	Jitter      float64       `mapstructure:"jitter" validate:"gte=0,lt=1"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=0"`
}

// Backoff converts the policy for the connection manager.
func (r Reconnect) Backoff() client.Backoff {
	return client.Backoff{
		Initial:     r.Initial,
		Max:         r.Max,
		Multiplier:  r.Multiplier,
		Jitter:      r.Jitter,
		MaxAttempts: r.MaxAttempts,
	}
}

const (
	configName = "config"
	envPrefix  = "T3CHAT"
)

// DefaultModels mirrors the model menu of the web client.
var DefaultModels = []string{
	"openai/gpt-4o-mini",
	"google/gemini-flash-1.5",
	"anthropic/claude-3.5-sonnet",
	"meta-llama/llama-3.1-70b-instruct",
}

// ProfileDir returns ~/.t3chat, or ~/.t3chat/profiles/<name> for a named profile.
func ProfileDir(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	if profile == "" {
		return filepath.Join(home, ".t3chat"), nil
	}
	return filepath.Join(home, ".t3chat", "profiles", profile), nil
}

// New returns a viper instance with defaults and env binding. configFile, when
// set, is used instead of searching profileDir.
func New(profileDir, configFile string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(profileDir)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8000")
	v.SetDefault("theme", "dark")
	v.SetDefault("default_model", DefaultModels[0])
	v.SetDefault("models", DefaultModels)
	v.SetDefault("log_level", "info")
	v.SetDefault("tokenizer", "cl100k_base")

	d := client.DefaultBackoff()
	v.SetDefault("reconnect.initial", d.Initial.String())
	v.SetDefault("reconnect.max", d.Max.String())
	v.SetDefault("reconnect.multiplier", d.Multiplier)
	v.SetDefault("reconnect.jitter", d.Jitter)
	v.SetDefault("reconnect.max_attempts", d.MaxAttempts)
}

// Load reads the config file (a missing file is fine) and decodes it.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	validate *validator.Validate
	once     sync.Once
)

// Validate checks cfg and wraps failures in ErrInvalid.
func Validate(cfg Config) error {
	once.Do(func() { validate = validator.New() })
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Watch reloads the config file whenever it changes and hands the result to
// onChange (which runs on fsnotify's goroutine). It reports false when no
// file is in use and there is nothing to watch.
func Watch(v *viper.Viper, onChange func(Config, error)) bool {
	if v.ConfigFileUsed() == "" {
		return false
	}
	v.OnConfigChange(func(fsnotify.Event) {
		onChange(decode(v))
	})
	v.WatchConfig()
	return true
}

// SaveTheme persists the theme, writing <profileDir>/config.toml when no
// config file exists yet.
func SaveTheme(v *viper.Viper, profileDir, theme string) error {
	v.Set("theme", theme)
	if path := v.ConfigFileUsed(); path != "" {
		if err := v.WriteConfig(); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(profileDir, configName+".toml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	v.SetConfigFile(path)
	return nil
}
