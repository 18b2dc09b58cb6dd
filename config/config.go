package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	obs "github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	"gopkg.in/yaml.v3"
)

// Config holds all backend configuration settings.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Riot          RiotConfig          `yaml:"riot"`
	LLM           LLMConfig           `yaml:"llm"`
	Lobby         LobbyConfig         `yaml:"lobby"`
	Stats         StatsConfig         `yaml:"stats"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the health/metrics listener configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// RiotConfig holds Riot API client configuration.
type RiotConfig struct {
	APIKey         string        `yaml:"api_key"`
	Platform       string        `yaml:"platform"` // e.g. na1, euw1
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	RateBurst      int           `yaml:"rate_burst"`
}

// LLMConfig holds the completion API client configuration.
type LLMConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	SystemPrompt   string        `yaml:"system_prompt"`
	HistoryWindow  int           `yaml:"history_window"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LobbyConfig holds custom lobby configuration.
type LobbyConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	RatingTimeout time.Duration `yaml:"rating_timeout"`
}

// StatsConfig holds stats module configuration.
type StatsConfig struct {
	LogRetention time.Duration `yaml:"log_retention"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	Environment     string  `yaml:"environment"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent. Environment variables
// override file values either way.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN not configured (set postgres.dsn or DATABASE_URL)")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS URL not configured (set nats.url or NATS_URL)")
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("RIOT_API_KEY"); v != "" {
		cfg.Riot.APIKey = v
	}
	if v := os.Getenv("RIOT_PLATFORM"); v != "" {
		cfg.Riot.Platform = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_SYSTEM_PROMPT"); v != "" {
		cfg.LLM.SystemPrompt = v
	}
	if v := os.Getenv("LOBBY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Lobby.TTL = d
		}
	}
	if v := os.Getenv("STATS_LOG_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stats.LogRetention = d
		}
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observability.TraceSampleRate = f
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Riot.Platform == "" {
		cfg.Riot.Platform = "na1"
	}
	if cfg.Riot.RequestTimeout == 0 {
		cfg.Riot.RequestTimeout = 10 * time.Second
	}
	if cfg.Riot.RatePerSecond == 0 {
		cfg.Riot.RatePerSecond = 20
	}
	if cfg.Riot.RateBurst == 0 {
		cfg.Riot.RateBurst = 20
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.HistoryWindow == 0 {
		cfg.LLM.HistoryWindow = 30
	}
	if cfg.LLM.RequestTimeout == 0 {
		cfg.LLM.RequestTimeout = 60 * time.Second
	}
	if cfg.Lobby.TTL == 0 {
		cfg.Lobby.TTL = 6 * time.Hour
	}
	if cfg.Lobby.RatingTimeout == 0 {
		cfg.Lobby.RatingTimeout = 5 * time.Second
	}
	if cfg.Stats.LogRetention == 0 {
		cfg.Stats.LogRetention = 7 * 24 * time.Hour
	}
	if cfg.Observability.TraceSampleRate == 0 {
		cfg.Observability.TraceSampleRate = 0.1
	}
}

func ToObsConfig(appCfg *Config) obs.Config {
	return obs.Config{
		ServiceName:     "rift-bot",
		Environment:     appCfg.Observability.Environment,
		Version:         "1.0.0", // Could inject via `ldflags`
		OTLPEndpoint:    appCfg.Observability.OTLPEndpoint,
		OTLPInsecure:    appCfg.Observability.OTLPInsecure,
		TraceSampleRate: appCfg.Observability.TraceSampleRate,
	}
}
