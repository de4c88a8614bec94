// Package config resolves dayloop's runtime settings: defaults, then an
// optional YAML file, then DAYLOOP_* environment variables. Command-line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "dayloop"
	configFileName = "config.yaml"
)

type Goals struct {
	Protein     int `yaml:"protein"`
	Hydration   int `yaml:"hydration"`
	Mindfulness int `yaml:"mindfulness"`
}

type Config struct {
	DatabasePath       string        `yaml:"database_path"`
	LogFile            string        `yaml:"log_file"`
	LogLevel           string        `yaml:"log_level"`
	Timezone           string        `yaml:"timezone"`
	StaleCheckInterval time.Duration `yaml:"stale_check_interval"`
	SchedulerBuffer    int           `yaml:"scheduler_buffer"`
	KeyPrefix          string        `yaml:"key_prefix"`
	Goals              Goals         `yaml:"goals"`
	NonNegotiables     []string      `yaml:"non_negotiables"`
}

func Default() Config {
	dir := DataDir()
	return Config{
		DatabasePath:       filepath.Join(dir, "dayloop.db"),
		LogFile:            filepath.Join(dir, "dayloop.log"),
		LogLevel:           "info",
		StaleCheckInterval: time.Minute,
		SchedulerBuffer:    16,
		KeyPrefix:          appName,
		Goals: Goals{
			Protein:     120,
			Hydration:   8,
			Mindfulness: 10,
		},
		NonNegotiables: []string{"Read 10 pages", "No sugar", "Sleep by 23:00"},
	}
}

// DataDir is where the database and log live by default.
func DataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(dir, appName)
}

func DefaultPath() string {
	return filepath.Join(DataDir(), configFileName)
}

// Load reads path over the defaults. A missing file is not an error; a
// malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("DAYLOOP_DB"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := getEnvString("DAYLOOP_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("DAYLOOP_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("DAYLOOP_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("DAYLOOP_KEY_PREFIX"); ok {
		cfg.KeyPrefix = v
	}
	if v, ok := getEnvDuration("DAYLOOP_STALE_CHECK_INTERVAL"); ok && v > 0 {
		cfg.StaleCheckInterval = v
	}
	if v, ok := getEnvInt("DAYLOOP_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvInt("DAYLOOP_PROTEIN_GOAL"); ok && v > 0 {
		cfg.Goals.Protein = v
	}
	if v, ok := getEnvInt("DAYLOOP_HYDRATION_GOAL"); ok && v > 0 {
		cfg.Goals.Hydration = v
	}
	if v, ok := getEnvInt("DAYLOOP_MINDFULNESS_GOAL"); ok && v > 0 {
		cfg.Goals.Mindfulness = v
	}
	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("config: database_path is required")
	}
	if c.StaleCheckInterval <= 0 {
		return errors.New("config: stale_check_interval must be positive")
	}
	if strings.TrimSpace(c.KeyPrefix) == "" {
		return errors.New("config: key_prefix is required")
	}
	if c.Goals.Protein < 0 || c.Goals.Hydration < 0 || c.Goals.Mindfulness < 0 {
		return errors.New("config: goals must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; empty means the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Key namespaces a persisted-state key, e.g. Key("daily") = "dayloop:daily".
func (c Config) Key(purpose string) string {
	return c.KeyPrefix + ":" + purpose
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
