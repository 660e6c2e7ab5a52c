package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aluiziolira/itunes-catalog/models"
)

func TestPlaytimeCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"playtime", "125000", "90000", "239600"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{"125000", "239600", "30"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPlaytimeCommandRejectsText(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"playtime", "three minutes"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	t.Setenv("ITUNES_ARTIST", "Breeders")
	t.Setenv("ITUNES_LIMIT", "20")

	cmd := newRootCmd()
	opts := &options{}
	if err := cmd.Flags().Parse([]string{"--limit", "5", "--output", "out/tracks.jsonl"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	opts.limit, _ = cmd.Flags().GetInt("limit")
	opts.output, _ = cmd.Flags().GetString("output")

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Artist != "Breeders" {
		t.Fatalf("artist = %q, want env value", cfg.Artist)
	}
	if cfg.Limit != 5 {
		t.Fatalf("limit = %d, want flag value 5", cfg.Limit)
	}
	if cfg.OutputFormat != "json" || cfg.OutputFile != "out/tracks.jsonl" {
		t.Fatalf("output = %s/%s", cfg.OutputFormat, cfg.OutputFile)
	}
}

func TestRenderMissingSorted(t *testing.T) {
	report := models.MissingReport{
		{Column: "collectionName", Percent: 66.7},
		{Column: "trackName", Percent: 0},
	}
	got := renderMissing(report)
	if strings.Index(got, "collectionName") > strings.Index(got, "trackName") {
		t.Fatalf("report order not kept:\n%s", got)
	}
	if !strings.Contains(got, "66.7") {
		t.Fatalf("percent missing:\n%s", got)
	}
}

func TestFormatPlaytime(t *testing.T) {
	tests := []struct {
		minutes, seconds float64
		want             string
	}{
		{minutes: 2, seconds: 5, want: "2:05"},
		{minutes: 4, seconds: 0, want: "4:00"},
		{minutes: 12, seconds: 30, want: "12:30"},
	}
	for _, tt := range tests {
		if got := formatPlaytime(tt.minutes, tt.seconds); got != tt.want {
			t.Errorf("formatPlaytime(%v, %v) = %q, want %q", tt.minutes, tt.seconds, got, tt.want)
		}
	}
}
