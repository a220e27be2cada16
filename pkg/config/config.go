package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Oracle   OracleConfig
	Planner  PlannerConfig
	Insights InsightsConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OracleConfig configures the LLM estimation/generation service.
type OracleConfig struct {
	Enabled       bool
	BaseURL       string
	APIKey        string
	Model         string
	Timeout       time.Duration
	RetryAttempts uint
}

// PlannerConfig tunes the exam-prep schedule calculator.
type PlannerConfig struct {
	PreviewTTL        time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// InsightsConfig governs cache behaviour for the aggregated study context.
type InsightsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportsConfig toggles plan export formats.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Oracle = OracleConfig{
		Enabled:       v.GetBool("ORACLE_ENABLED"),
		BaseURL:       v.GetString("ORACLE_BASE_URL"),
		APIKey:        v.GetString("ORACLE_API_KEY"),
		Model:         v.GetString("ORACLE_MODEL"),
		Timeout:       parseDuration(v.GetString("ORACLE_TIMEOUT"), 20*time.Second),
		RetryAttempts: uint(v.GetInt("ORACLE_RETRY_ATTEMPTS")),
	}

	cfg.Planner = PlannerConfig{
		PreviewTTL:        parseDuration(v.GetString("PLANNER_PREVIEW_TTL"), 30*time.Minute),
		WorkerConcurrency: v.GetInt("PLANNER_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("PLANNER_WORKER_RETRIES"),
	}

	cfg.Insights = InsightsConfig{
		Enabled:  v.GetBool("ENABLE_INSIGHTS_CACHE"),
		CacheTTL: parseDuration(v.GetString("INSIGHTS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "study_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ORACLE_ENABLED", false)
	v.SetDefault("ORACLE_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("ORACLE_API_KEY", "")
	v.SetDefault("ORACLE_MODEL", "gpt-4o-mini")
	v.SetDefault("ORACLE_TIMEOUT", "20s")
	v.SetDefault("ORACLE_RETRY_ATTEMPTS", 2)

	v.SetDefault("PLANNER_PREVIEW_TTL", "30m")
	v.SetDefault("PLANNER_WORKER_CONCURRENCY", 1)
	v.SetDefault("PLANNER_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_INSIGHTS_CACHE", false)
	v.SetDefault("INSIGHTS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
