package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty artist",
			mutate: func(cfg *Config) {
				cfg.Artist = ""
			},
			wantErr: "Artist",
		},
		{
			name: "zero limit",
			mutate: func(cfg *Config) {
				cfg.Limit = 0
			},
			wantErr: "Limit",
		},
		{
			name: "limit above api maximum",
			mutate: func(cfg *Config) {
				cfg.Limit = 201
			},
			wantErr: "Limit",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "unknown output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "OutputFormat",
		},
		{
			name: "csv without file",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "csv"
				cfg.OutputFile = ""
			},
			wantErr: "output file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestSearchURL(t *testing.T) {
	cfg := DefaultConfig()
	want := "https://itunes.apple.com/search?term=Pixies&attribute=artistTerm&entity=song&limit=200"
	if got := cfg.SearchURL(); got != want {
		t.Fatalf("SearchURL() = %q, want %q", got, want)
	}

	cfg.Artist = "Sonic Youth"
	cfg.Limit = 5
	want = "https://itunes.apple.com/search?term=Sonic+Youth&attribute=artistTerm&entity=song&limit=5"
	if got := cfg.SearchURL(); got != want {
		t.Fatalf("SearchURL() = %q, want %q", got, want)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := "artist: Breeders\nlimit: 25\ntimeout: 3s\noutput_format: json\noutput_file: out/tracks.jsonl\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Artist != "Breeders" || cfg.Limit != 25 || cfg.Timeout != 3*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Fatalf("defaults should survive, base url = %q", cfg.BaseURL)
	}
	if len(cfg.Headers) == 0 {
		t.Fatalf("default headers should survive")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ITUNES_ARTIST", "Frank Black")
	t.Setenv("ITUNES_LIMIT", "10")
	t.Setenv("ITUNES_TIMEOUT", "2s")
	t.Setenv("ITUNES_FORMAT", "CSV")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Artist != "Frank Black" || cfg.Limit != 10 || cfg.Timeout != 2*time.Second || cfg.OutputFormat != "csv" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv("ITUNES_LIMIT", "many")

	if err := ApplyEnv(DefaultConfig()); err == nil || !strings.Contains(err.Error(), "ITUNES_LIMIT") {
		t.Fatalf("expected ITUNES_LIMIT error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ITUNES_TEST_DOTENV=Kim Deal\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("ITUNES_TEST_DOTENV") })

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got, _ := EnvString("ITUNES_TEST_DOTENV"); got != "Kim Deal" {
		t.Fatalf("ITUNES_TEST_DOTENV = %q", got)
	}
}
