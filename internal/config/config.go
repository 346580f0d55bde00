package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Shortcuts ShortcutsConfig `koanf:"shortcuts"`
	Shutdown  ShutdownConfig  `koanf:"shutdown"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host           string   `koanf:"host"`
	Port           int      `koanf:"port"`
	AuthToken      string   `koanf:"auth_token"`
	JSONResponse   bool     `koanf:"json_response"`
	Stateless      bool     `koanf:"stateless"`
	AllowedHosts   []string `koanf:"allowed_hosts"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	TLSCertFile    string   `koanf:"tls_cert_file"`
	TLSKeyFile     string   `koanf:"tls_key_file"`
}

type ShortcutsConfig struct {
	// RunnerPath is the shortcuts CLI binary, resolved via PATH when relative.
	RunnerPath string `koanf:"runner_path"`
	// DefaultTimeout applies when a request carries no timeoutSeconds.
	// Zero keeps the run unbounded.
	DefaultTimeout time.Duration `koanf:"default_timeout"`
	// MaxTimeout caps every run, bounded or not. Zero disables the ceiling.
	MaxTimeout     time.Duration `koanf:"max_timeout"`
	MaxOutputBytes int           `koanf:"max_output_bytes"`
	// KillGrace is the window between SIGTERM and SIGKILL when stopping a run.
	KillGrace time.Duration `koanf:"kill_grace"`
}

type ShutdownConfig struct {
	GracePeriod time.Duration `koanf:"grace_period"`
}

type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Shortcuts: ShortcutsConfig{
			RunnerPath:     "shortcuts",
			MaxOutputBytes: 256 * 1024,
			KillGrace:      2 * time.Second,
		},
		Shutdown: ShutdownConfig{
			GracePeriod: 10 * time.Second,
		},
		Tracing: TracingConfig{
			SamplingRate: 0.1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from YAML file + environment variables.
// Loading order: defaults → YAML file → env vars (later overrides earlier).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	cfg := Defaults()

	// Load YAML file (optional — may not exist)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			// Only fail if the file was explicitly specified and can't be read
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	} else {
		// Try default path, ignore if not found
		_ = k.Load(file.Provider("shortcutd.yaml"), yaml.Parser())
	}

	// Load environment variables.
	// SHORTCUTD_SERVER__AUTH_TOKEN → server.auth_token
	// Double underscore (__) separates nesting levels.
	// Single underscore within a level is preserved (e.g., auth_token).
	err := k.Load(env.Provider("SHORTCUTD_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SHORTCUTD_")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Shortcuts.RunnerPath == "" {
		return fmt.Errorf("config: shortcuts.runner_path must not be empty")
	}
	if cfg.Shortcuts.MaxOutputBytes <= 0 {
		return fmt.Errorf("config: shortcuts.max_output_bytes must be positive")
	}
	if cfg.Shortcuts.KillGrace <= 0 {
		return fmt.Errorf("config: shortcuts.kill_grace must be positive")
	}
	if cfg.Shortcuts.MaxTimeout > 0 && cfg.Shortcuts.DefaultTimeout > cfg.Shortcuts.MaxTimeout {
		return fmt.Errorf("config: shortcuts.default_timeout exceeds shortcuts.max_timeout")
	}
	if cfg.Shutdown.GracePeriod <= 0 {
		return fmt.Errorf("config: shutdown.grace_period must be positive")
	}
	if (cfg.Server.TLSCertFile == "") != (cfg.Server.TLSKeyFile == "") {
		return fmt.Errorf("config: server.tls_cert_file and server.tls_key_file must be provided together")
	}
	return nil
}
