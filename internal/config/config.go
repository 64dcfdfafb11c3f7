// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode"` // polling
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // keyed polling workers
	Timeout  int    `yaml:"timeout"` // long-poll timeout, seconds
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

// RedisConfig is optional; an empty URL keeps sessions in process memory.
type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type ConversationConfig struct {
	// IdleTimeout returns an abandoned conversation to Idle. Zero never expires.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
	LockWait    time.Duration `yaml:"lock_wait"`
	RateLimit   int           `yaml:"rate_limit"` // updates per chat per minute, 0 disables
}

type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Conversation ConversationConfig `yaml:"conversation"`
	HTTP         HTTPConfig         `yaml:"http"`
	Locale       string             `yaml:"locale"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig parses -config and -dev from the command line and loads the file.
// A .env next to the binary is read first so its values act as env overrides.
func LoadConfig() (*Config, error) {
	path, dev := parseFlags()
	return Load(path, dev)
}

// LoadAPIConfig is LoadConfig for the stand-alone API, which needs no bot token.
func LoadAPIConfig() (*Config, error) {
	path, dev := parseFlags()
	return load(path, dev, false)
}

func parseFlags() (string, bool) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	_ = godotenv.Load()
	return configPath, dev
}

// Load reads the YAML file at path, applies env overrides and defaults,
// and validates the result. A missing file is fine when env supplies the
// required values.
func Load(path string, dev bool) (*Config, error) {
	return load(path, dev, true)
}

func load(path string, dev, requireBot bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation
	if requireBot && cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Conversation.IdleTimeout < 0 {
		return nil, errors.New("conversation.idle_timeout must not be negative")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("BOT_TOKEN"); ok && v != "" {
		cfg.Bot.Token = v
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok && v != "" {
		cfg.Database.URL = v
	}
	if v, ok := os.LookupEnv("REDIS_URL"); ok && v != "" {
		cfg.Redis.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Timeout <= 0 {
		cfg.Bot.Timeout = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.CacheTTL = normalizeTTL(cfg.Redis.CacheTTL, 5*time.Minute)
	cfg.Conversation.LockTTL = normalizeTTL(cfg.Conversation.LockTTL, 30*time.Second)
	cfg.Conversation.LockWait = normalizeTTL(cfg.Conversation.LockWait, 5*time.Second)
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
