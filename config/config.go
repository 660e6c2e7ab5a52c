package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds catalog client configuration.
type Config struct {
	Artist       string            `yaml:"artist" validate:"required"`
	Limit        int               `yaml:"limit" validate:"gte=1,lte=200"`
	BaseURL      string            `yaml:"base_url" validate:"required,url"`
	Entity       string            `yaml:"entity" validate:"required"`
	Attribute    string            `yaml:"attribute" validate:"required"`
	Headers      map[string]string `yaml:"headers"`
	Timeout      time.Duration     `yaml:"timeout" validate:"gte=0"`
	CacheSize    int               `yaml:"cache_size" validate:"gte=0"`
	OutputFile   string            `yaml:"output_file"`
	OutputFormat string            `yaml:"output_format" validate:"oneof=none csv json dual"` // none, csv, json, or dual
	MetricsAddr  string            `yaml:"metrics_addr"`
	Verbose      bool              `yaml:"verbose"`
	LogFormat    string            `yaml:"log_format" validate:"oneof=text json logfmt"`
}

// DefaultHeaders is the browser-like header set sent with every search.
// Accept-Encoding is left to the transport so responses are decoded for us.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"authority":                 "https://www.apple.com/itunes/",
		"cache-control":             "max-age=0",
		"dnt":                       "1",
		"upgrade-insecure-requests": "1",
		"user-agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/77.0.3865.90",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-user":            "?1",
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3",
		"sec-fetch-site":            "none",
		"accept-language":           "en-US,en;q=0.9,es-MX;q=0.8,es;q=0.7",
	}
}

// DefaultConfig returns the settings of the original Pixies query.
func DefaultConfig() *Config {
	return &Config{
		Artist:       "Pixies",
		Limit:        200,
		BaseURL:      "https://itunes.apple.com/search",
		Entity:       "song",
		Attribute:    "artistTerm",
		Headers:      DefaultHeaders(),
		Timeout:      10 * time.Second,
		CacheSize:    0,
		OutputFile:   "output/tracks.csv",
		OutputFormat: "none",
		MetricsAddr:  "",
		Verbose:      false,
		LogFormat:    "text",
	}
}

var validate = validator.New()

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.OutputFormat != "none" && c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty when format is %s", c.OutputFormat)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// SearchURL composes the search endpoint for the configured artist.
func (c *Config) SearchURL() string {
	return c.BaseURL +
		"?term=" + url.QueryEscape(c.Artist) +
		"&attribute=" + url.QueryEscape(c.Attribute) +
		"&entity=" + url.QueryEscape(c.Entity) +
		"&limit=" + strconv.Itoa(c.Limit)
}
