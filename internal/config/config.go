package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the explicit runtime configuration, built once at startup and
// handed to each component.
type Config struct {
	Language        string   `mapstructure:"language" yaml:"language"`
	DefaultMessage  string   `mapstructure:"default_message" yaml:"default_message"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxDiffChars    int      `mapstructure:"max_diff_chars" yaml:"max_diff_chars"`
	// MaxContextChars caps status, stat and file list text separately.
	MaxContextChars int      `mapstructure:"max_context_chars" yaml:"max_context_chars"`
	Provider        string   `mapstructure:"provider" yaml:"provider"`
	Tool            string   `mapstructure:"tool" yaml:"tool"`
	ToolArgs        []string `mapstructure:"tool_args" yaml:"tool_args"`
	PromptStdin     bool     `mapstructure:"prompt_stdin" yaml:"prompt_stdin"`
	Model           string   `mapstructure:"model" yaml:"model"`
	APIKey          string   `mapstructure:"api_key" yaml:"api_key"`
	APIBase         string   `mapstructure:"api_base" yaml:"api_base"`
	PromptTemplate  string   `mapstructure:"prompt_template" yaml:"prompt_template"`
	NoVerify        bool     `mapstructure:"no_verify" yaml:"no_verify"`
	DryRun          bool     `mapstructure:"dry_run" yaml:"dry_run"`
	FailOnFallback  bool     `mapstructure:"fail_on_fallback" yaml:"fail_on_fallback"`
	LogLevel        string   `mapstructure:"log_level" yaml:"log_level"`
}

const (
	DefaultLanguage        = "Japanese"
	DefaultCommitMessage   = "chore: automatic update"
	DefaultTimeoutSeconds  = 20
	DefaultMaxDiffChars    = 5000
	DefaultMaxContextChars = 2000
	DefaultProvider        = ProviderCLI
	DefaultTool            = "gemini"
	DefaultCLIModel        = "gemini-2.5-flash"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultPromptTemplate  = "default"
	DefaultLogLevel        = "info"

	DefaultConfigName = "config"
	DefaultConfigDir  = "autocommit"
	EnvPrefix         = "AUTOCOMMIT"
)

const (
	ProviderCLI    = "cli"
	ProviderOpenAI = "openai"
)

// DefaultToolArgs are passed to the generation tool before the prompt.
var DefaultToolArgs = []string{"-p"}

// envAliases lists the environment variables read for a key, in priority order.
// The bare names are the hook-facing contract; the CLAUDE_CODE_ names are kept
// for installations configured for the older script.
var envAliases = map[string][]string{
	"language":        {EnvPrefix + "_LANGUAGE", "COMMIT_LANGUAGE", "CLAUDE_CODE_COMMIT_LANGUAGE"},
	"default_message": {EnvPrefix + "_DEFAULT_MESSAGE", "DEFAULT_COMMIT_MESSAGE", "CLAUDE_CODE_DEFAULT_COMMIT_MESSAGE"},
	"api_key":         {EnvPrefix + "_API_KEY", "OPENAI_API_KEY"},
	"api_base":        {EnvPrefix + "_API_BASE", "OPENAI_BASE_URL"},
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("language", DefaultLanguage)
	v.SetDefault("default_message", DefaultCommitMessage)
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("max_diff_chars", DefaultMaxDiffChars)
	v.SetDefault("max_context_chars", DefaultMaxContextChars)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("tool", DefaultTool)
	v.SetDefault("tool_args", DefaultToolArgs)
	v.SetDefault("prompt_stdin", false)
	v.SetDefault("model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("api_base", "")
	v.SetDefault("prompt_template", DefaultPromptTemplate)
	v.SetDefault("no_verify", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("fail_on_fallback", false)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	return v
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/autocommit/config.yaml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to find home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, DefaultConfigDir, DefaultConfigName+".yaml"), nil
}

// Load reads the optional config file into v and returns the validated Config.
// An explicit cfgFile must exist; the default location is read only when present.
// The hook never writes configuration.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	path := cfgFile
	if path == "" {
		if p, err := DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Language = strings.TrimSpace(c.Language)
	c.DefaultMessage = strings.TrimSpace(c.DefaultMessage)
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Tool = strings.TrimSpace(c.Tool)
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.DefaultMessage == "" {
		c.DefaultMessage = DefaultCommitMessage
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = DefaultMaxContextChars
	}
}

// Validate rejects configurations the hook cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DefaultMessage == "" {
		errs = append(errs, errors.New("default_message must not be empty"))
	}
	if c.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds))
	}
	if c.MaxDiffChars <= 0 {
		errs = append(errs, fmt.Errorf("max_diff_chars must be positive, got %d", c.MaxDiffChars))
	}
	switch c.Provider {
	case ProviderCLI:
		if c.Tool == "" {
			errs = append(errs, errors.New("tool must be set when provider is cli"))
		}
	case ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderCLI, ProviderOpenAI))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Timeout is the generation budget as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolvedModel returns the configured model, or the provider default when
// none is set. Custom CLI tools get no model flag unless one is configured.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderCLI:
		if c.Tool == DefaultTool {
			return DefaultCLIModel
		}
	}
	return ""
}

// MaskedAPIKey hides all but the last four characters of the API key.
func (c *Config) MaskedAPIKey() string {
	if c.APIKey == "" {
		return "<not set>"
	}
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return "****" + c.APIKey[len(c.APIKey)-4:]
}
