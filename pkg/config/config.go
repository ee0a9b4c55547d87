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

	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	CORS          CORSConfig
	Log           LogConfig
	Documents     DocumentsConfig
	Pipeline      PipelineConfig
	Runner        RunnerConfig
	Notifications NotificationsConfig
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

// AuthConfig describes how identities arriving from the external
// authorizer are resolved into platform roles.
type AuthConfig struct {
	TokenSecret  string
	TeacherGroup string
	StudentGroup string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DocumentsConfig controls document storage and upload capabilities.
type DocumentsConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	AllowedExtensions []string
}

// PipelineConfig tunes the document ingestion pipeline.
type PipelineConfig struct {
	EventQueue        string
	IdleCheckSet      string
	MaxRetries        int
	WarmupDelay       time.Duration
	IdleCheckDelay    time.Duration
	SchedulerInterval time.Duration
}

// RunnerConfig locates the quiz-generation runner.
type RunnerConfig struct {
	BaseURL       string
	LaunchTimeout time.Duration
	MaxQuestions  int
	MaxChars      int
}

// NotificationsConfig governs the fire-and-forget publish channel.
type NotificationsConfig struct {
	Enabled       bool
	ChannelPrefix string
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

	cfg.Auth = AuthConfig{
		TokenSecret:  v.GetString("AUTH_TOKEN_SECRET"),
		TeacherGroup: v.GetString("AUTH_TEACHER_GROUP"),
		StudentGroup: v.GetString("AUTH_STUDENT_GROUP"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Documents = DocumentsConfig{
		StorageDir:        v.GetString("DOCUMENTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("DOCUMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("DOCUMENTS_SIGNED_URL_TTL"), time.Hour),
		AllowedExtensions: splitAndTrim(v.GetString("DOCUMENTS_ALLOWED_EXTENSIONS")),
	}

	cfg.Pipeline = PipelineConfig{
		EventQueue:        v.GetString("PIPELINE_EVENT_QUEUE"),
		IdleCheckSet:      v.GetString("PIPELINE_IDLE_CHECK_SET"),
		MaxRetries:        v.GetInt("PIPELINE_MAX_RETRIES"),
		WarmupDelay:       parseDuration(v.GetString("PIPELINE_WARMUP_DELAY"), 90*time.Second),
		IdleCheckDelay:    parseDuration(v.GetString("PIPELINE_IDLE_CHECK_DELAY"), 15*time.Minute),
		SchedulerInterval: parseDuration(v.GetString("PIPELINE_SCHEDULER_INTERVAL"), 15*time.Second),
	}

	cfg.Runner = RunnerConfig{
		BaseURL:       v.GetString("RUNNER_BASE_URL"),
		LaunchTimeout: parseDuration(v.GetString("RUNNER_LAUNCH_TIMEOUT"), 10*time.Second),
		MaxQuestions:  v.GetInt("RUNNER_MAX_QUESTIONS"),
		MaxChars:      v.GetInt("RUNNER_MAX_CHARS"),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:       v.GetBool("ENABLE_NOTIFICATIONS"),
		ChannelPrefix: v.GetString("NOTIFICATIONS_CHANNEL_PREFIX"),
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
	v.SetDefault("DB_NAME", "elearning")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_TOKEN_SECRET", "dev_secret")
	v.SetDefault("AUTH_TEACHER_GROUP", "Docenti")
	v.SetDefault("AUTH_STUDENT_GROUP", "Studenti")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOCUMENTS_STORAGE_DIR", "./documents")
	v.SetDefault("DOCUMENTS_SIGNED_URL_SECRET", "dev_documents_secret")
	v.SetDefault("DOCUMENTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("DOCUMENTS_ALLOWED_EXTENSIONS", ".pdf")

	v.SetDefault("PIPELINE_EVENT_QUEUE", "pipeline:events")
	v.SetDefault("PIPELINE_IDLE_CHECK_SET", "pipeline:idle_checks")
	v.SetDefault("PIPELINE_MAX_RETRIES", 3)
	v.SetDefault("PIPELINE_WARMUP_DELAY", "90s")
	v.SetDefault("PIPELINE_IDLE_CHECK_DELAY", "15m")
	v.SetDefault("PIPELINE_SCHEDULER_INTERVAL", "15s")

	v.SetDefault("RUNNER_BASE_URL", "http://localhost:8090")
	v.SetDefault("RUNNER_LAUNCH_TIMEOUT", "10s")
	v.SetDefault("RUNNER_MAX_QUESTIONS", 5)
	v.SetDefault("RUNNER_MAX_CHARS", 10000)

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATIONS_CHANNEL_PREFIX", "notifications:teacher:")
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
