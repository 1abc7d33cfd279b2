// Package config loads cli-editor settings from config.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aaveggupta/cli-ai-code-editor/internal/oracle"
	"github.com/aaveggupta/cli-ai-code-editor/internal/paths"
	"github.com/aaveggupta/cli-ai-code-editor/internal/scanner"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Oracle   OracleConfig   `mapstructure:"oracle" yaml:"oracle"`
	Scanner  ScannerConfig  `mapstructure:"scanner" yaml:"scanner"`
	CLI      CLIConfig      `mapstructure:"cli" yaml:"cli"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig locates the SQLite file. An empty path means the default
// location in the data directory.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type OracleConfig struct {
	Provider        string  `mapstructure:"provider" yaml:"provider"`
	Model           string  `mapstructure:"model" yaml:"model"`
	APIKey          string  `mapstructure:"api_key" yaml:"-"`
	BaseURL         string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature     float32 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxContextFiles int     `mapstructure:"max_context_files" yaml:"max_context_files"`
}

type ScannerConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

type CLIConfig struct {
	DefaultRepo string `mapstructure:"default_repo" yaml:"default_repo"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// MetricsAddr moves /metrics to its own listener when set.
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Error reports an invalid setting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("oracle.provider", ProviderOpenAI)
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.temperature", oracle.DefaultTemperature)
	v.SetDefault("oracle.max_tokens", oracle.DefaultMaxTokens)
	v.SetDefault("oracle.max_context_files", oracle.DefaultMaxContextFiles)
	v.SetDefault("scanner.max_depth", scanner.DefaultMaxDepth)
	v.SetDefault("cli.default_repo", ".")
	v.SetDefault("server.addr", "127.0.0.1:3000")
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads file when given, otherwise config.yaml from the config
// directory. A missing default file is not an error. Environment variables
// prefixed with CLI_EDITOR_ override both.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := paths.ConfigDir()
		if err != nil {
			return nil, fmt.Errorf("getting config directory: %w", err)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("CLI_EDITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("oracle.api_key", "CLI_EDITOR_ORACLE_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key: %w", err)
	}
	if err := v.BindEnv("oracle.model", "CLI_EDITOR_ORACLE_MODEL", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("binding model: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to run the pipeline.
func (c *Config) Validate() error {
	switch c.Oracle.Provider {
	case ProviderOpenAI:
		if c.Oracle.APIKey == "" {
			return &Error{Field: "oracle.api_key", Message: "required for the openai provider (set OPENAI_API_KEY)"}
		}
	case ProviderClaude:
	default:
		return &Error{Field: "oracle.provider", Message: fmt.Sprintf("unknown provider %q", c.Oracle.Provider)}
	}
	if c.Oracle.MaxContextFiles <= 0 || c.Oracle.MaxContextFiles > oracle.DefaultMaxContextFiles {
		return &Error{Field: "oracle.max_context_files", Message: fmt.Sprintf("must be between 1 and %d", oracle.DefaultMaxContextFiles)}
	}
	if c.Oracle.MaxTokens <= 0 {
		return &Error{Field: "oracle.max_tokens", Message: "must be positive"}
	}
	if c.Scanner.MaxDepth <= 0 {
		return &Error{Field: "scanner.max_depth", Message: "must be positive"}
	}
	if c.Server.MetricsAddr != "" && c.Server.MetricsAddr == c.Server.Addr {
		return &Error{Field: "server.metrics_addr", Message: "must differ from server.addr"}
	}
	return nil
}
