// Package config loads runtime settings shared by the builder binaries.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigName is looked up as pagebuilder.yaml in the working
	// directory when no explicit file is given.
	DefaultConfigName = "pagebuilder"
	// EnvPrefix scopes environment overrides, e.g. PAGEBUILDER_SERVER_ADDR.
	EnvPrefix = "PAGEBUILDER"
)

// Config holds runtime settings.
type Config struct {
	Builder  BuilderConfig `mapstructure:"builder"`
	Server   ServerConfig  `mapstructure:"server"`
	Storage  StorageConfig `mapstructure:"storage"`
	Exit     ExitConfig    `mapstructure:"exit_intent"`
	LogLevel string        `mapstructure:"log_level"`
	Request  RequestConfig `mapstructure:"request"`
}

type BuilderConfig struct {
	Addr string `mapstructure:"addr"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// SessionTTL bounds how long an idle visitor's detectors stay mounted.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type StorageConfig struct {
	MetadataDir   string `mapstructure:"metadata_dir"`
	ComponentsDir string `mapstructure:"components_dir"`
	DatabasePath  string `mapstructure:"database_path"`
}

type ExitConfig struct {
	SubmitDelay time.Duration `mapstructure:"submit_delay"`
	AutoClose   time.Duration `mapstructure:"auto_close"`
}

type RequestConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("builder.addr", ":8081")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("storage.metadata_dir", ".component_metadata")
	v.SetDefault("storage.components_dir", "components")
	v.SetDefault("storage.database_path", "pagebuilder.db")
	v.SetDefault("exit_intent.submit_delay", time.Second)
	v.SetDefault("exit_intent.auto_close", 2*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("request.timeout", 60*time.Second)
}

// Load reads path, or pagebuilder.yaml from the working directory when path
// is empty. A missing default file is not an error; environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path cannot be empty")
	}
	if c.Request.Timeout <= 0 {
		return fmt.Errorf("request.timeout must be positive")
	}
	if c.Exit.SubmitDelay < 0 || c.Exit.AutoClose < 0 {
		return fmt.Errorf("exit_intent delays cannot be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

// Logger builds the text logger used by every binary.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
