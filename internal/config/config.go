package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"procure/internal/models"
	"procure/internal/validation"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Logger   LoggerConfig   `yaml:"logger"`
	Matching MatchingConfig `yaml:"matching"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

type ServerConfig struct {
	AppEnv      string   `yaml:"app_env"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DBConfig struct {
	Path string `yaml:"path"`
	Seed bool   `yaml:"seed"`
}

type LoggerConfig struct {
	Level             string `yaml:"level"`
	Encoding          string `yaml:"encoding"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
}

type MatchingConfig struct {
	// DefaultTolerance applies to purchase orders stored without one.
	DefaultTolerance float64 `yaml:"default_tolerance"`
	Workers          int     `yaml:"workers"`
}

type ScoringConfig struct {
	Weights             models.Weights `yaml:"weights"`
	DefaultQualityScore float64        `yaml:"default_quality_score"`
	TieBreak            string         `yaml:"tie_break"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{AppEnv: "development", Port: 9000, CORSOrigins: []string{"*"}},
		DB:     DBConfig{Path: "procure.db", Seed: true},
		Logger: LoggerConfig{
			Level:             "info",
			Encoding:          "console",
			DisableStacktrace: true,
		},
		Matching: MatchingConfig{DefaultTolerance: 0, Workers: 4},
		Scoring: ScoringConfig{
			Weights:             models.Weights{Price: 60, LeadTime: 20, Quality: 20},
			DefaultQualityScore: 70,
			TieBreak:            "lowest_price",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then PROCURE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.AppEnv = getEnv("PROCURE_APP_ENV", c.Server.AppEnv)
	c.Server.Port = getEnvInt("PROCURE_PORT", c.Server.Port)
	c.Server.CORSOrigins = getEnvSlice("PROCURE_CORS_ORIGINS", c.Server.CORSOrigins)

	c.DB.Path = getEnv("PROCURE_DB_PATH", c.DB.Path)
	c.DB.Seed = getEnvBool("PROCURE_DB_SEED", c.DB.Seed)

	c.Logger.Level = getEnv("PROCURE_LOGGER_LEVEL", c.Logger.Level)
	c.Logger.Encoding = getEnv("PROCURE_LOGGER_ENCODING", c.Logger.Encoding)
	c.Logger.DisableCaller = getEnvBool("PROCURE_LOGGER_DISABLE_CALLER", c.Logger.DisableCaller)
	c.Logger.DisableStacktrace = getEnvBool("PROCURE_LOGGER_DISABLE_STACKTRACE", c.Logger.DisableStacktrace)

	c.Matching.DefaultTolerance = getEnvFloat("PROCURE_MATCH_DEFAULT_TOLERANCE", c.Matching.DefaultTolerance)
	c.Matching.Workers = getEnvInt("PROCURE_MATCH_WORKERS", c.Matching.Workers)

	c.Scoring.Weights.Price = getEnvFloat("PROCURE_WEIGHT_PRICE", c.Scoring.Weights.Price)
	c.Scoring.Weights.LeadTime = getEnvFloat("PROCURE_WEIGHT_LEAD_TIME", c.Scoring.Weights.LeadTime)
	c.Scoring.Weights.Quality = getEnvFloat("PROCURE_WEIGHT_QUALITY", c.Scoring.Weights.Quality)
	c.Scoring.DefaultQualityScore = getEnvFloat("PROCURE_DEFAULT_QUALITY_SCORE", c.Scoring.DefaultQualityScore)
	c.Scoring.TieBreak = getEnv("PROCURE_TIE_BREAK", c.Scoring.TieBreak)
}

// Validate rejects values the engines cannot work with. All problems are
// reported together.
func (c *Config) Validate() error {
	ve := &validation.ValidationErrors{}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		ve.Add("server.port", fmt.Sprintf("invalid port %d", c.Server.Port))
	}
	validation.RequireField(ve, "db.path", c.DB.Path)
	validation.ValidateTolerance(ve, "matching.default_tolerance", c.Matching.DefaultTolerance)
	if c.Matching.Workers < 1 {
		ve.Add("matching.workers", fmt.Sprintf("must be at least 1, got %d", c.Matching.Workers))
	}
	validation.ValidateWeights(ve, c.Scoring.Weights)
	validation.ValidatePercentage(ve, "scoring.default_quality_score", c.Scoring.DefaultQualityScore)
	validation.ValidateEnum(ve, "scoring.tie_break", c.Scoring.TieBreak, validation.ValidTieBreakPolicy)
	return ve.Err()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
