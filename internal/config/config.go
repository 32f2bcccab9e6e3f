package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/brandpulse/internal/models"
)

type Config struct {
	SinkURL     string `validate:"omitempty,url"`
	SinkSecret  string
	Port        string        `validate:"required,numeric"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	LogLevel    slog.Level

	// Sheet tabs published as CSV. HistoricalSheets is keyed by year.
	LiveSheetURL     string         `validate:"omitempty,url"`
	HistoricalSheets map[int]string `validate:"dive,url"`
	TargetsSheetURL  string         `validate:"omitempty,url"`
	EventsSheetURL   string         `validate:"omitempty,url"`

	FillMissingDays bool
	// RefreshInterval of 0 disables the background refresh.
	RefreshInterval  time.Duration `validate:"gte=0"`
	MERTargetDefault float64       `validate:"gte=0,lte=1"`
	GoogleShare      float64       `validate:"gte=0,lte=1"`
}

// HasSources reports whether at least one metric tab is configured.
func (c Config) HasSources() bool {
	return c.LiveSheetURL != "" || len(c.HistoricalSheets) > 0
}

// Attribution splits web revenue between the platforms, Meta taking the remainder.
func (c Config) Attribution() models.Attribution {
	return models.Attribution{
		models.PlatformGoogle: c.GoogleShare,
		models.PlatformMeta:   1 - c.GoogleShare,
	}
}

// Years returns the configured historical years in ascending order.
func (c Config) Years() []int {
	out := make([]int, 0, len(c.HistoricalSheets))
	for y := range c.HistoricalSheets {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

type fileConfig struct {
	Port            string        `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	FillMissingDays *bool         `yaml:"fill_missing_days"`
	Sink            struct {
		URL    string `yaml:"url"`
		Secret string `yaml:"secret"`
	} `yaml:"sink"`
	Sheets struct {
		Live       string         `yaml:"live"`
		Historical map[int]string `yaml:"historical"`
		Targets    string         `yaml:"targets"`
		Events     string         `yaml:"events"`
	} `yaml:"sheets"`
	MERTargetDefault float64 `yaml:"mer_target_default"`
	Attribution      struct {
		Google *float64 `yaml:"google"`
	} `yaml:"attribution"`
}

func defaults() Config {
	return Config{
		Port:             "8080",
		HTTPTimeout:      15 * time.Second,
		LogLevel:         slog.LevelInfo,
		HistoricalSheets: map[int]string{},
		FillMissingDays:  true,
		RefreshInterval:  15 * time.Minute,
		MERTargetDefault: 0.25,
		GoogleShare:      0.6,
	}
}

// Load resolves defaults, then the optional YAML file at path, then .env, then the
// environment, and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("parse config yaml: %w", err)
			}
			cfg = applyFile(cfg, fc)
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	cfg = applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyFile(cfg Config, fc fileConfig) Config {
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLevel(fc.LogLevel)
	}
	if fc.HTTPTimeout > 0 {
		cfg.HTTPTimeout = fc.HTTPTimeout
	}
	if fc.RefreshInterval != 0 {
		cfg.RefreshInterval = fc.RefreshInterval
	}
	if fc.FillMissingDays != nil {
		cfg.FillMissingDays = *fc.FillMissingDays
	}
	if fc.Sink.URL != "" {
		cfg.SinkURL = fc.Sink.URL
	}
	if fc.Sink.Secret != "" {
		cfg.SinkSecret = fc.Sink.Secret
	}
	if fc.Sheets.Live != "" {
		cfg.LiveSheetURL = fc.Sheets.Live
	}
	for y, u := range fc.Sheets.Historical {
		cfg.HistoricalSheets[y] = u
	}
	if fc.Sheets.Targets != "" {
		cfg.TargetsSheetURL = fc.Sheets.Targets
	}
	if fc.Sheets.Events != "" {
		cfg.EventsSheetURL = fc.Sheets.Events
	}
	if fc.MERTargetDefault > 0 {
		cfg.MERTargetDefault = fc.MERTargetDefault
	}
	if fc.Attribution.Google != nil {
		cfg.GoogleShare = *fc.Attribution.Google
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v)
	}
	cfg.SinkURL = envOr("SINK_URL", cfg.SinkURL)
	cfg.SinkSecret = envOr("SINK_SECRET", cfg.SinkSecret)
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.LiveSheetURL = envOr("LIVE_SHEET_URL", cfg.LiveSheetURL)
	cfg.TargetsSheetURL = envOr("TARGETS_SHEET_URL", cfg.TargetsSheetURL)
	cfg.EventsSheetURL = envOr("EVENTS_SHEET_URL", cfg.EventsSheetURL)
	if v := os.Getenv("HISTORICAL_SHEETS"); v != "" {
		for y, u := range parseSheets(v) {
			cfg.HistoricalSheets[y] = u
		}
	}
	if v := os.Getenv("FILL_MISSING_DAYS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FillMissingDays = b
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RefreshInterval = d
		}
	}
	if v := os.Getenv("MER_TARGET_DEFAULT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MERTargetDefault = f
		}
	}
	if v := os.Getenv("ATTRIBUTION_GOOGLE_SHARE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GoogleShare = f
		}
	}
	return cfg
}

// parseSheets reads "2024=https://...,2025=https://...". Malformed pairs are skipped.
func parseSheets(s string) map[int]string {
	out := map[int]string{}
	for _, pair := range strings.Split(s, ",") {
		year, u, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			continue
		}
		out[y] = strings.TrimSpace(u)
	}
	return out
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
