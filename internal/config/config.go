package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
	"skin-assessment-service/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_SESSION_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Quiz struct {
		BankID string `yaml:"bank_id" env:"QUIZ_BANK_ID"`
		TTL    string `yaml:"ttl" env:"QUIZ_BANK_TTL"`
		Pacing string `yaml:"pacing" env:"QUIZ_PACING"`
	} `yaml:"quiz"`
	Webhook struct {
		URL            string `yaml:"url" env:"WEBHOOK_URL"`
		Timeout        string `yaml:"timeout" env:"WEBHOOK_TIMEOUT"`
		TagSuitable    string `yaml:"tag_suitable" env:"WEBHOOK_TAG_SUITABLE"`
		TagNotSuitable string `yaml:"tag_not_suitable" env:"WEBHOOK_TAG_NOT_SUITABLE"`
	} `yaml:"webhook"`
	Booking struct {
		SuitableURL    string `yaml:"suitable_url" env:"BOOKING_URL_SUITABLE"`
		AlternativeURL string `yaml:"alternative_url" env:"BOOKING_URL_ALTERNATIVE"`
	} `yaml:"booking"`
	Pixel struct {
		Enabled     bool   `yaml:"enabled" env:"META_PIXEL_ENABLED"`
		TestMode    bool   `yaml:"test_mode" env:"META_PIXEL_TEST_MODE"`
		PixelID     string `yaml:"pixel_id" env:"META_PIXEL_ID"`
		Endpoint    string `yaml:"endpoint" env:"META_PIXEL_ENDPOINT"`
		AccessToken string `yaml:"access_token" env:"META_PIXEL_ACCESS_TOKEN"`
	} `yaml:"pixel"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies environment overrides.
// An empty path skips the file and uses the environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LeadTags returns the configured webhook tags, defaulting each one left blank.
func (c Config) LeadTags() domain.LeadTags {
	tags := domain.DefaultLeadTags()
	if c.Webhook.TagSuitable != "" {
		tags.Suitable = c.Webhook.TagSuitable
	}
	if c.Webhook.TagNotSuitable != "" {
		tags.NotSuitable = c.Webhook.TagNotSuitable
	}
	return tags
}
