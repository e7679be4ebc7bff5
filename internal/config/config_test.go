package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "API_KEY", "GEMINI_API_KEY", "BEDROCK_MODEL_ID",
		"CHAT_TEMPERATURE", "CHAT_MAX_OUTPUT_TOKENS", "CHAT_ACTION_LOCK", "PROSPECT_DEFAULT_LOCATION",
		"CORS_ALLOWED_ORIGINS", "REDIS_ADDR", "SEED_LEADS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.HasAPIKey() {
		t.Fatalf("expected no api key by default")
	}
	if cfg.ChatModel != "gemini-3-flash-preview" || cfg.SearchModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected model defaults: %s / %s", cfg.ChatModel, cfg.SearchModel)
	}
	if cfg.ChatTemperature != 0.4 {
		t.Fatalf("expected temperature 0.4, got %v", cfg.ChatTemperature)
	}
	if cfg.ChatMaxTokens != 1000 {
		t.Fatalf("expected 1000 max tokens, got %d", cfg.ChatMaxTokens)
	}
	if cfg.ChatActionLock != 300*time.Millisecond {
		t.Fatalf("expected 300ms action lock, got %s", cfg.ChatActionLock)
	}
	if cfg.DefaultLocation != "São Paulo" {
		t.Fatalf("expected São Paulo default location, got %s", cfg.DefaultLocation)
	}
	if cfg.AnchorLatitude != -23.5505 || cfg.AnchorLongitude != -46.6333 {
		t.Fatalf("unexpected anchor %v,%v", cfg.AnchorLatitude, cfg.AnchorLongitude)
	}
	if !cfg.SeedLeads {
		t.Fatalf("expected seed leads enabled by default")
	}
	if cfg.CORSAllowedOrigin != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigin)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", " secret ")
	t.Setenv("CHAT_TEMPERATURE", "0.9")
	t.Setenv("CHAT_ACTION_LOCK", "1s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, ,https://crm.lamitex.com.br")
	t.Setenv("SEED_LEADS", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.APIKey != "secret" || !cfg.HasAPIKey() {
		t.Fatalf("expected trimmed api key from GEMINI_API_KEY, got %q", cfg.APIKey)
	}
	if cfg.ChatTemperature != 0.9 {
		t.Fatalf("expected temperature override, got %v", cfg.ChatTemperature)
	}
	if cfg.ChatActionLock != time.Second {
		t.Fatalf("expected 1s lock, got %s", cfg.ChatActionLock)
	}
	if len(cfg.CORSAllowedOrigin) != 2 || cfg.CORSAllowedOrigin[1] != "https://crm.lamitex.com.br" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigin)
	}
	if cfg.SeedLeads {
		t.Fatalf("expected seed leads disabled")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis override, got %s", cfg.RedisAddr)
	}
}

func TestAPIKeyPrefersAPIKeyVariable(t *testing.T) {
	t.Setenv("API_KEY", "primary")
	t.Setenv("GEMINI_API_KEY", "secondary")
	if got := Load().APIKey; got != "primary" {
		t.Fatalf("expected API_KEY to win, got %s", got)
	}
}
