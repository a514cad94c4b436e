package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		source     string
		wantFormat string
		wantLevel  slog.Level
		wantSource bool
		wantErr    bool
	}{
		{name: "defaults", wantFormat: "json", wantLevel: slog.LevelInfo},
		{name: "text debug", format: "text", level: "debug", wantFormat: "text", wantLevel: slog.LevelDebug},
		{name: "warning alias", level: "WARNING", wantFormat: "json", wantLevel: slog.LevelWarn},
		{name: "source", source: "1", wantFormat: "json", wantLevel: slog.LevelInfo, wantSource: true},
		{name: "bad format", format: "yaml", wantErr: true},
		{name: "bad level", level: "trace", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvFormat, tc.format)
			t.Setenv(EnvLevel, tc.level)
			t.Setenv(EnvSource, tc.source)

			cfg, err := LoadConfigFromEnv()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfigFromEnv() error = %v", err)
			}
			if cfg.Format != tc.wantFormat || cfg.Level != tc.wantLevel || cfg.AddSource != tc.wantSource {
				t.Fatalf("cfg = %+v", cfg)
			}
		})
	}
}

func decodeLine(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected JSON log line")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return payload
}

func TestNewLogger_JSONIncludesStaticAttrs(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(DefaultConfig(), &out, "nova-console serve")
	Component(logger, "catalog").Info("hello")

	payload := decodeLine(t, &out)
	if got := payload["app"]; got != "nova-console" {
		t.Fatalf("app = %v, want %q", got, "nova-console")
	}
	if got := payload["command"]; got != "nova-console serve" {
		t.Fatalf("command = %v, want %q", got, "nova-console serve")
	}
	if got := payload["component"]; got != "catalog" {
		t.Fatalf("component = %v, want %q", got, "catalog")
	}
}

func TestBootstrapFromEnv_LevelOverride(t *testing.T) {
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvLevel, "error")
	t.Setenv(EnvSource, "")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	logger, err := BootstrapFromEnv(BootstrapOptions{Command: "nova-console", Writer: &out, Level: "debug"})
	if err != nil {
		t.Fatalf("BootstrapFromEnv() error = %v", err)
	}
	logger.Debug("visible")
	if !strings.Contains(out.String(), "visible") {
		t.Fatalf("debug record missing: %q", out.String())
	}

	if _, err := BootstrapFromEnv(BootstrapOptions{Level: "loud"}); err == nil {
		t.Fatal("expected error for bad level override")
	}
}
