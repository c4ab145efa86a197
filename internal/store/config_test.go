package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8000 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if len(cfg.Universe) != 5 || cfg.Universe[0].Code != "069500" {
		t.Errorf("universe = %+v", cfg.Universe)
	}
	if cfg.Indicators.HistoryDays != 150 || cfg.Indicators.SymbolDelayMs != 500 {
		t.Errorf("indicator defaults = %+v", cfg.Indicators)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.MaxTokens != 2000 || cfg.LLM.TimeoutSeconds != 60 {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
	if cfg.Broker.Provider != "MOCK" || cfg.Broker.Mode != "DRY_RUN" {
		t.Errorf("broker defaults = %+v", cfg.Broker)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
server:
  port: 9000
  mode: debug
universe:
  - code: "005930"
    name: 삼성전자
llm:
  provider: NONE
broker:
  provider: KIWOOM
  mode: LIVE
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Mode != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Universe) != 1 || cfg.Universe[0].Name != "삼성전자" {
		t.Errorf("universe = %+v", cfg.Universe)
	}
	if cfg.Broker.Provider != "KIWOOM" || cfg.Broker.Mode != "LIVE" {
		t.Errorf("broker = %+v", cfg.Broker)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8123")
	t.Setenv("FRONTEND_ORIGIN", "https://dash.example.com")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("port = %d, want 8123", cfg.Server.Port)
	}
	if cfg.Server.FrontendOrigin != "https://dash.example.com" {
		t.Errorf("frontend origin = %q", cfg.Server.FrontendOrigin)
	}
}

func TestValidateRejectsUnknownProviders(t *testing.T) {
	t.Setenv("PORT", "")
	tests := []struct {
		name string
		body string
		want string
	}{
		{"llm", "llm:\n  provider: GEMINI\n", "llm.provider"},
		{"broker", "broker:\n  provider: IBKR\n", "broker.provider"},
		{"mode", "broker:\n  mode: PAPER\n", "broker.mode"},
		{"server", "server:\n  mode: verbose\n", "server.mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "config validation failed") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
