package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every variable Load consults so the host environment
// cannot leak into assertions.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, names := range envAliases {
		for _, name := range names {
			t.Setenv(name, "")
		}
	}
	for _, key := range []string{
		"TIMEOUT_SECONDS", "MAX_DIFF_CHARS", "MAX_CONTEXT_CHARS", "PROVIDER", "TOOL", "TOOL_ARGS",
		"PROMPT_STDIN", "MODEL", "PROMPT_TEMPLATE", "NO_VERIFY", "DRY_RUN",
		"FAIL_ON_FALLBACK", "LOG_LEVEL",
	} {
		t.Setenv(EnvPrefix+"_"+key, "")
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "Japanese", DefaultLanguage)
	assert.Equal(t, "chore: automatic update", DefaultCommitMessage)
	assert.Equal(t, 20, DefaultTimeoutSeconds)
	assert.Equal(t, 5000, DefaultMaxDiffChars)
	assert.Equal(t, "gemini", DefaultTool)
	assert.Equal(t, "AUTOCOMMIT", EnvPrefix)
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, DefaultCommitMessage, cfg.DefaultMessage)
	assert.Equal(t, 20*time.Second, cfg.Timeout())
	assert.Equal(t, DefaultMaxDiffChars, cfg.MaxDiffChars)
	assert.Equal(t, DefaultMaxContextChars, cfg.MaxContextChars)
	assert.Equal(t, ProviderCLI, cfg.Provider)
	assert.Equal(t, DefaultTool, cfg.Tool)
	assert.Equal(t, []string{"-p"}, cfg.ToolArgs)
	assert.Equal(t, DefaultCLIModel, cfg.ResolvedModel())
	assert.False(t, cfg.FailOnFallback)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantLang    string
		wantMessage string
	}{
		{
			name:        "hook variables",
			env:         map[string]string{"COMMIT_LANGUAGE": "English", "DEFAULT_COMMIT_MESSAGE": "chore: wip"},
			wantLang:    "English",
			wantMessage: "chore: wip",
		},
		{
			name: "legacy variables",
			env: map[string]string{
				"CLAUDE_CODE_COMMIT_LANGUAGE":        "French",
				"CLAUDE_CODE_DEFAULT_COMMIT_MESSAGE": "chore: legacy",
			},
			wantLang:    "French",
			wantMessage: "chore: legacy",
		},
		{
			name: "prefixed variables win",
			env: map[string]string{
				"AUTOCOMMIT_LANGUAGE": "German",
				"COMMIT_LANGUAGE":     "English",
			},
			wantLang:    "German",
			wantMessage: DefaultCommitMessage,
		},
		{
			name:        "empty variables fall back to defaults",
			env:         map[string]string{"COMMIT_LANGUAGE": "", "DEFAULT_COMMIT_MESSAGE": ""},
			wantLang:    DefaultLanguage,
			wantMessage: DefaultCommitMessage,
		},
		{
			name:        "whitespace message falls back to default",
			env:         map[string]string{"DEFAULT_COMMIT_MESSAGE": "   "},
			wantLang:    DefaultLanguage,
			wantMessage: DefaultCommitMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(New(), "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantLang, cfg.Language)
			assert.Equal(t, tt.wantMessage, cfg.DefaultMessage)
		})
	}
}

func TestLoad_PrefixedNumericEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTOCOMMIT_TIMEOUT_SECONDS", "5")
	t.Setenv("AUTOCOMMIT_MAX_DIFF_CHARS", "100")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 100, cfg.MaxDiffChars)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateEnv(t)

	configFile := filepath.Join(t.TempDir(), "autocommit.yaml")
	content := `language: "English"
default_message: "chore: from file"
timeout_seconds: 7
tool: "llm"
tool_args: ["prompt", "--no-stream"]
prompt_stdin: true
fail_on_fallback: true`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	cfg, err := Load(New(), configFile)
	require.NoError(t, err)

	assert.Equal(t, "English", cfg.Language)
	assert.Equal(t, "chore: from file", cfg.DefaultMessage)
	assert.Equal(t, 7, cfg.TimeoutSeconds)
	assert.Equal(t, "llm", cfg.Tool)
	assert.Equal(t, []string{"prompt", "--no-stream"}, cfg.ToolArgs)
	assert.True(t, cfg.PromptStdin)
	assert.True(t, cfg.FailOnFallback)
	assert.Empty(t, cfg.ResolvedModel(), "custom tools get no default model")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("COMMIT_LANGUAGE", "Spanish")

	configFile := filepath.Join(t.TempDir(), "autocommit.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`language: "English"`), 0o600))

	cfg, err := Load(New(), configFile)
	require.NoError(t, err)
	assert.Equal(t, "Spanish", cfg.Language)
}

func TestLoad_DefaultPath(t *testing.T) {
	isolateEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`max_diff_chars: 1234`), 0o600))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.MaxDiffChars)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read configuration file")
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	isolateEnv(t)

	configFile := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("language: [invalid yaml structure"), 0o600))

	_, err := Load(New(), configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read configuration file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Language:       DefaultLanguage,
			DefaultMessage: DefaultCommitMessage,
			TimeoutSeconds: 20,
			MaxDiffChars:   5000,
			Provider:       ProviderCLI,
			Tool:           DefaultTool,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "openai without tool", mutate: func(c *Config) { c.Provider = ProviderOpenAI; c.Tool = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.TimeoutSeconds = 0 }, wantErr: "timeout_seconds"},
		{name: "negative diff budget", mutate: func(c *Config) { c.MaxDiffChars = -1 }, wantErr: "max_diff_chars"},
		{name: "empty default message", mutate: func(c *Config) { c.DefaultMessage = "" }, wantErr: "default_message"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "carrier-pigeon" }, wantErr: "unknown provider"},
		{name: "cli without tool", mutate: func(c *Config) { c.Tool = "" }, wantErr: "tool must be set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolvedModel(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "explicit model", cfg: Config{Model: "gemini-2.5-pro", Provider: ProviderCLI, Tool: DefaultTool}, want: "gemini-2.5-pro"},
		{name: "gemini default", cfg: Config{Provider: ProviderCLI, Tool: DefaultTool}, want: DefaultCLIModel},
		{name: "custom tool", cfg: Config{Provider: ProviderCLI, Tool: "ollama"}, want: ""},
		{name: "openai default", cfg: Config{Provider: ProviderOpenAI}, want: DefaultOpenAIModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolvedModel())
		})
	}
}

func TestMaskedAPIKey(t *testing.T) {
	assert.Equal(t, "<not set>", (&Config{}).MaskedAPIKey())
	assert.Equal(t, "****", (&Config{APIKey: "abc"}).MaskedAPIKey())
	assert.Equal(t, "****7890", (&Config{APIKey: "sk-1234567890"}).MaskedAPIKey())
}
