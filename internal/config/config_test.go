package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shortcutd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port %d", cfg.Server.Port)
	}
	if cfg.Shortcuts.RunnerPath != "shortcuts" {
		t.Errorf("runner path %q", cfg.Shortcuts.RunnerPath)
	}
	if cfg.Shortcuts.MaxOutputBytes != 256*1024 {
		t.Errorf("max output bytes %d", cfg.Shortcuts.MaxOutputBytes)
	}
	if cfg.Shortcuts.DefaultTimeout != 0 {
		t.Errorf("default timeout %v, want unbounded", cfg.Shortcuts.DefaultTimeout)
	}
	if cfg.Shortcuts.KillGrace != 2*time.Second {
		t.Errorf("kill grace %v", cfg.Shortcuts.KillGrace)
	}
	if cfg.Shutdown.GracePeriod != 10*time.Second {
		t.Errorf("grace period %v", cfg.Shutdown.GracePeriod)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
  stateless: true
  allowed_hosts:
    - localhost:9090
shortcuts:
  runner_path: /usr/bin/shortcuts
  default_timeout: 30s
  max_timeout: 5m
  max_output_bytes: 1024
shutdown:
  grace_period: 5s
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if !cfg.Server.Stateless {
		t.Error("stateless not set")
	}
	if len(cfg.Server.AllowedHosts) != 1 || cfg.Server.AllowedHosts[0] != "localhost:9090" {
		t.Errorf("allowed hosts %v", cfg.Server.AllowedHosts)
	}
	if cfg.Shortcuts.RunnerPath != "/usr/bin/shortcuts" {
		t.Errorf("runner path %q", cfg.Shortcuts.RunnerPath)
	}
	if cfg.Shortcuts.DefaultTimeout != 30*time.Second {
		t.Errorf("default timeout %v", cfg.Shortcuts.DefaultTimeout)
	}
	if cfg.Shortcuts.MaxTimeout != 5*time.Minute {
		t.Errorf("max timeout %v", cfg.Shortcuts.MaxTimeout)
	}
	if cfg.Shortcuts.MaxOutputBytes != 1024 {
		t.Errorf("max output bytes %d", cfg.Shortcuts.MaxOutputBytes)
	}
	if cfg.Shutdown.GracePeriod != 5*time.Second {
		t.Errorf("grace period %v", cfg.Shutdown.GracePeriod)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)
	t.Setenv("SHORTCUTD_SERVER__PORT", "7070")
	t.Setenv("SHORTCUTD_SERVER__AUTH_TOKEN", "secret")
	t.Setenv("SHORTCUTD_SHORTCUTS__KILL_GRACE", "500ms")
	t.Setenv("SHORTCUTD_LOGGING__LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port %d, env should override file", cfg.Server.Port)
	}
	if cfg.Server.AuthToken != "secret" {
		t.Errorf("auth token %q", cfg.Server.AuthToken)
	}
	if cfg.Shortcuts.KillGrace != 500*time.Millisecond {
		t.Errorf("kill grace %v", cfg.Shortcuts.KillGrace)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level %q", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"empty runner path",
			"shortcuts:\n  runner_path: \"\"\n",
			"runner_path",
		},
		{
			"non-positive output cap",
			"shortcuts:\n  max_output_bytes: 0\n",
			"max_output_bytes",
		},
		{
			"non-positive kill grace",
			"shortcuts:\n  kill_grace: -1s\n",
			"kill_grace",
		},
		{
			"default timeout above max",
			"shortcuts:\n  default_timeout: 10m\n  max_timeout: 1m\n",
			"default_timeout",
		},
		{
			"non-positive grace period",
			"shutdown:\n  grace_period: 0s\n",
			"grace_period",
		},
		{
			"cert without key",
			"server:\n  tls_cert_file: /tmp/cert.pem\n",
			"tls_key_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %s", err.Error(), tt.want)
			}
		})
	}
}
