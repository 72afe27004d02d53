package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pauljones0/listing-watch-bot/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
telegram:
  api_token: "file-token"
  chat_id: "-100123"
topics:
  - topic: tel-aviv-2br
    url: https://www.yad2.co.il/realestate/rent?city=5000&rooms=2-2
  - topic: haifa
    url: https://www.yad2.co.il/realestate/rent?city=4000
    disabled: true
`

func TestLoad(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := Load(writeFile(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	want := &Config{
		Telegram: Telegram{APIToken: "file-token", ChatID: "-100123"},
		Topics: []models.Topic{
			{Name: "tel-aviv-2br", URL: "https://www.yad2.co.il/realestate/rent?city=5000&rooms=2-2"},
			{Name: "haifa", URL: "https://www.yad2.co.il/realestate/rent?city=4000", Disabled: true},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverridesTelegram(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "@flats")

	cfg, err := Load(writeFile(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Telegram.APIToken != "env-token" || cfg.Telegram.ChatID != "@flats" {
		t.Errorf("expected env overrides, got %+v", cfg.Telegram)
	}
}

func TestLoad_SecretsOnlyFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	yml := "topics:\n  - topic: a\n    url: https://example.com/a\n"
	if _, err := Load(writeFile(t, "config.yaml", yml)); err != nil {
		t.Errorf("Load() returned unexpected error: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "Missing Token",
			yaml:    "telegram:\n  chat_id: \"1\"\ntopics:\n  - topic: a\n    url: https://example.com\n",
			wantErr: "APIToken",
		},
		{
			name:    "No Topics",
			yaml:    "telegram:\n  api_token: t\n  chat_id: \"1\"\n",
			wantErr: "Topics",
		},
		{
			name:    "Duplicate Topic Names",
			yaml:    "telegram:\n  api_token: t\n  chat_id: \"1\"\ntopics:\n  - topic: a\n    url: https://example.com/1\n  - topic: a\n    url: https://example.com/2\n",
			wantErr: "unique",
		},
		{
			name:    "Relative URL",
			yaml:    "telegram:\n  api_token: t\n  chat_id: \"1\"\ntopics:\n  - topic: a\n    url: /realestate/rent\n",
			wantErr: "URL",
		},
		{
			name:    "Malformed YAML",
			yaml:    "topics: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			if err == nil {
				t.Fatalf("Load() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_HebrewTopicsOfEqualLength(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "t")
	t.Setenv("TELEGRAM_CHAT_ID", "1")

	yml := "topics:\n  - topic: חיפה\n    url: https://example.com/haifa\n  - topic: רמלה\n    url: https://example.com/ramla\n"
	cfg, err := Load(writeFile(t, "config.yaml", yml))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(cfg.Topics) != 2 {
		t.Errorf("expected 2 topics, got %d", len(cfg.Topics))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestParseOptions_Defaults(t *testing.T) {
	for _, key := range []string{"CONFIG_PATH", "STATE_DIR", "MARKER_PATH", "CONCURRENCY", "FETCH_MAX_RETRIES",
		"FETCH_TIMEOUT", "FETCH_MODE", "STATE_BACKEND", "GOOGLE_CLOUD_PROJECT", "FIRESTORE_CREDENTIALS_FILE",
		"SELECTORS_CONFIG_PATH", "LOG_LEVEL", "REDIS_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	opts, err := ParseOptions(nil)
	if err != nil {
		t.Fatalf("ParseOptions() returned unexpected error: %v", err)
	}
	want := &Options{
		ConfigPath:   "config.yaml",
		StateDir:     "data",
		MarkerPath:   "data/.new-data",
		Concurrency:  3,
		MaxRetries:   3,
		FetchTimeout: 10 * time.Second,
		FetchMode:    "http",
		StateBackend: "file",
		RedisURL:     "redis://localhost:6379/0",
		LogLevel:     "info",
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("ParseOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOptions_EnvAndFlags(t *testing.T) {
	t.Setenv("CONCURRENCY", "5")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("STATE_BACKEND", "firestore")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "listing-watch")

	opts, err := ParseOptions([]string{"--concurrency", "2", "--fetch-mode", "browser"})
	if err != nil {
		t.Fatalf("ParseOptions() returned unexpected error: %v", err)
	}
	if opts.Concurrency != 2 {
		t.Errorf("flag should win over env, got concurrency %d", opts.Concurrency)
	}
	if opts.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %s, want 30s", opts.FetchTimeout)
	}
	if opts.FetchMode != "browser" || opts.StateBackend != "firestore" || opts.ProjectID != "listing-watch" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseOptions_Invalid(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	tests := []struct {
		name string
		args []string
	}{
		{"Unknown Choice", []string{"--fetch-mode", "carrier-pigeon"}},
		{"Zero Concurrency", []string{"--concurrency", "0"}},
		{"Firestore Without Project", []string{"--state-backend", "firestore"}},
		{"Unknown Flag", []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOptions(tt.args); err == nil {
				t.Errorf("ParseOptions(%v) expected error", tt.args)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "TELEGRAM_API_TOKEN=from-dotenv\nTELEGRAM_CHAT_ID=from-dotenv\n")
	t.Setenv("TELEGRAM_API_TOKEN", "")
	os.Unsetenv("TELEGRAM_API_TOKEN")
	t.Setenv("TELEGRAM_CHAT_ID", "already-set")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() returned unexpected error: %v", err)
	}
	if got := os.Getenv("TELEGRAM_API_TOKEN"); got != "from-dotenv" {
		t.Errorf("TELEGRAM_API_TOKEN = %q, want from-dotenv", got)
	}
	if got := os.Getenv("TELEGRAM_CHAT_ID"); got != "already-set" {
		t.Errorf("existing variable was overridden: %q", got)
	}
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv() returned unexpected error for missing file: %v", err)
	}
}
