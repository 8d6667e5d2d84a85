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
	Cache     CacheConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Content   ContentConfig
	Chatbot   ChatbotConfig
	Dashboard DashboardClientConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles caching of the student "my-*" collections.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ContentConfig governs teacher uploads and their background processing.
type ContentConfig struct {
	StorageDir        string
	MaxFileSizeBytes  int64
	AllowedExtensions []string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	Workers           int
	WorkerRetries     int
}

// ChatbotConfig tunes the course-content chatbot.
type ChatbotConfig struct {
	HistoryLimit int
	SnippetChars int
}

// DashboardClientConfig is read by the terminal dashboard.
type DashboardClientConfig struct {
	APIHost  string
	LogLevel string
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 2*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 15*time.Minute),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxContentSize := v.GetInt64("CONTENT_MAX_FILE_SIZE")
	if maxContentSize <= 0 {
		maxContentSize = 20 * 1024 * 1024
	}
	cfg.Content = ContentConfig{
		StorageDir:        v.GetString("CONTENT_STORAGE_DIR"),
		MaxFileSizeBytes:  maxContentSize,
		AllowedExtensions: splitAndTrim(v.GetString("CONTENT_ALLOWED_EXTENSIONS")),
		SignedURLSecret:   v.GetString("CONTENT_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("CONTENT_SIGNED_URL_TTL"), 30*time.Minute),
		Workers:           v.GetInt("CONTENT_WORKERS"),
		WorkerRetries:     v.GetInt("CONTENT_WORKER_RETRIES"),
	}

	cfg.Chatbot = ChatbotConfig{
		HistoryLimit: v.GetInt("CHATBOT_HISTORY_LIMIT"),
		SnippetChars: v.GetInt("CHATBOT_SNIPPET_CHARS"),
	}

	cfg.Dashboard = DashboardClientConfig{
		APIHost:  strings.TrimRight(v.GetString("DASHBOARD_API_HOST"), "/"),
		LogLevel: v.GetString("DASHBOARD_LOG_LEVEL"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "student_dashboard_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "2m")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "15m")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "academic-dashboard")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CONTENT_STORAGE_DIR", "./media_files")
	v.SetDefault("CONTENT_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("CONTENT_ALLOWED_EXTENSIONS", "pdf,docx,txt")
	v.SetDefault("CONTENT_SIGNED_URL_SECRET", "dev_content_secret")
	v.SetDefault("CONTENT_SIGNED_URL_TTL", "30m")
	v.SetDefault("CONTENT_WORKERS", 2)
	v.SetDefault("CONTENT_WORKER_RETRIES", 3)

	v.SetDefault("CHATBOT_HISTORY_LIMIT", 20)
	v.SetDefault("CHATBOT_SNIPPET_CHARS", 400)

	v.SetDefault("DASHBOARD_API_HOST", "http://127.0.0.1:8000")
}

// viper reports a plain *fs.PathError when SetConfigFile points at a missing file.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
