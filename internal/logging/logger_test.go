package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/i474232898/weather-export/internal/config"
)

func TestNewRespectsLevel(t *testing.T) {
	for _, env := range []string{config.EnvDev, config.EnvProd} {
		logger := New(&config.AppConfig{AppEnv: env, LogLevel: slog.LevelWarn}, "1.2.3", "weather-export")
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Fatalf("%s: info enabled at warn level", env)
		}
		if !logger.Enabled(context.Background(), slog.LevelError) {
			t.Fatalf("%s: error disabled at warn level", env)
		}
	}
}

func TestProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.AppConfig{AppEnv: config.EnvProd, LogLevel: slog.LevelInfo}
	newLogger(&buf, cfg, "dev", "weather-export").Info("listening", "port", "8080")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("prod output is not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]string{"msg": "listening", "port": "8080", "app": "weather-export", "env": "prod", "version": "dev"}
	for k, v := range want {
		if rec[k] != v {
			t.Fatalf("%s: expected %q, got %v", k, v, rec[k])
		}
	}
}

func TestDevWritesText(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.AppConfig{AppEnv: config.EnvDev, LogLevel: slog.LevelInfo}
	newLogger(&buf, cfg, "1.2.3", "weather-export").Info("listening", "port", "8080")

	out := buf.String()
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("dev output should be text, got %q", out)
	}
	if !strings.Contains(out, "listening") || !strings.Contains(out, "port=8080") || !strings.Contains(out, "env=dev") {
		t.Fatalf("unexpected dev output %q", out)
	}
}
