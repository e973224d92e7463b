package config

import (
	"errors"
	"io/fs"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Gemini    GeminiConfig
	Routing   RoutingConfig
	Voice     VoiceConfig
	Assistant AssistantConfig
	Cache     CacheConfig
	Jobs      JobsConfig
}

// DatabaseConfig describes the Postgres connection. URL, when set, wins over
// the individual fields.
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig describes the cache connection. URL takes the redis:// form.
type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig controls zap output. File enables a rotating log file next to stdout.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RateLimitRule is a token bucket budget per client IP.
type RateLimitRule struct {
	Max    int
	Window time.Duration
}

// RateLimitConfig holds the budgets for each route group.
type RateLimitConfig struct {
	Enabled bool
	API     RateLimitRule
	AI      RateLimitRule
	Auth    RateLimitRule
}

// GeminiConfig configures the generative-text fallback.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// RoutingConfig configures the walking route provider.
type RoutingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// VoiceConfig controls synthesis and the on-disk audio cache.
type VoiceConfig struct {
	Enabled    bool
	Dir        string
	BaseURL    string
	CacheTTL   time.Duration
	MaxFiles   int
	TTSBaseURL string
	TTSTimeout time.Duration
}

// AssistantConfig tunes the query router.
type AssistantConfig struct {
	MaterialsLimit int
	AnswerTTL      time.Duration
	CampusInfoFile string
}

// CacheConfig toggles the Redis-backed response cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// JobsConfig sizes the background worker pool.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
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
		URL:      v.GetString("REDIS_URL"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("ENABLE_RATE_LIMIT"),
		API: RateLimitRule{
			Max:    v.GetInt("RATE_LIMIT_API_MAX"),
			Window: parseDuration(v.GetString("RATE_LIMIT_API_WINDOW"), 15*time.Minute),
		},
		AI: RateLimitRule{
			Max:    v.GetInt("RATE_LIMIT_AI_MAX"),
			Window: parseDuration(v.GetString("RATE_LIMIT_AI_WINDOW"), time.Minute),
		},
		Auth: RateLimitRule{
			Max:    v.GetInt("RATE_LIMIT_AUTH_MAX"),
			Window: parseDuration(v.GetString("RATE_LIMIT_AUTH_WINDOW"), 15*time.Minute),
		},
	}

	cfg.Gemini = GeminiConfig{
		APIKey:  v.GetString("GEMINI_API_KEY"),
		Model:   v.GetString("GEMINI_MODEL"),
		BaseURL: v.GetString("GEMINI_BASE_URL"),
		Timeout: parseDuration(v.GetString("GEMINI_TIMEOUT"), 15*time.Second),
	}

	cfg.Routing = RoutingConfig{
		BaseURL: v.GetString("OSRM_BASE_URL"),
		Timeout: parseDuration(v.GetString("OSRM_TIMEOUT"), 5*time.Second),
	}

	cfg.Voice = VoiceConfig{
		Enabled:    v.GetBool("ENABLE_VOICE"),
		Dir:        v.GetString("VOICE_DIR"),
		BaseURL:    v.GetString("VOICE_BASE_URL"),
		CacheTTL:   parseDuration(v.GetString("VOICE_CACHE_TTL"), 30*time.Minute),
		MaxFiles:   v.GetInt("VOICE_MAX_FILES"),
		TTSBaseURL: v.GetString("TTS_BASE_URL"),
		TTSTimeout: parseDuration(v.GetString("TTS_TIMEOUT"), 10*time.Second),
	}

	cfg.Assistant = AssistantConfig{
		MaterialsLimit: v.GetInt("ASSISTANT_MATERIALS_LIMIT"),
		AnswerTTL:      parseDuration(v.GetString("ASSISTANT_ANSWER_TTL"), 6*time.Hour),
		CampusInfoFile: v.GetString("CAMPUS_INFO_FILE"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_connect")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "campus-connect")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)

	v.SetDefault("ENABLE_RATE_LIMIT", true)
	v.SetDefault("RATE_LIMIT_API_MAX", 100)
	v.SetDefault("RATE_LIMIT_API_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_AI_MAX", 10)
	v.SetDefault("RATE_LIMIT_AI_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_AUTH_MAX", 5)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW", "15m")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("GEMINI_TIMEOUT", "15s")

	v.SetDefault("OSRM_BASE_URL", "http://router.project-osrm.org")
	v.SetDefault("OSRM_TIMEOUT", "5s")

	v.SetDefault("ENABLE_VOICE", true)
	v.SetDefault("VOICE_DIR", "./voices")
	v.SetDefault("VOICE_BASE_URL", "/voices")
	v.SetDefault("VOICE_CACHE_TTL", "30m")
	v.SetDefault("VOICE_MAX_FILES", 20)
	v.SetDefault("TTS_BASE_URL", "https://translate.google.com")
	v.SetDefault("TTS_TIMEOUT", "10s")

	v.SetDefault("ASSISTANT_MATERIALS_LIMIT", 5)
	v.SetDefault("ASSISTANT_ANSWER_TTL", "6h")
	v.SetDefault("CAMPUS_INFO_FILE", "")

	v.SetDefault("ENABLE_CACHE", true)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER", 64)
	v.SetDefault("JOBS_MAX_RETRIES", 2)
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
