package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig controls where uploaded files live and what is accepted.
// Driver selects the storage backend: "disk" (default) or "minio".
// DownloadURLTTL is the lifetime of presigned download links; zero streams
// every download through the API.
type UploadConfig struct {
	Dir               string
	MaxSize           int64
	Driver            string
	AllowedExtensions []string
	DownloadURLTTL    time.Duration
}

// RedisConfig is shared by the tagging queue and the event broadcaster.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LLMConfig selects and configures the model used by the tagging workflow.
type LLMConfig struct {
	Provider      string
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	VertexProject string
	VertexRegion  string
}

// AuthConfig holds JWT verification settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// WorkerConfig controls the tagging worker.
// When Embedded is true the API process also consumes the tagging queue.
type WorkerConfig struct {
	Concurrency int
	Queue       string
	Embedded    bool
	// MetricsAddr is where the standalone worker serves /metrics; empty disables it.
	MetricsAddr string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Auth     AuthConfig
	Worker   WorkerConfig
	Log      LogConfig
}

const (
	defaultMaxUploadSize     = 50 << 20
	defaultAllowedExtensions = ".txt,.pdf,.md,.html,.htm"
	defaultOpenRouterURL     = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "meta-llama/llama-3.1-8b-instruct:free"
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			Dir:               getEnv("UPLOAD_DIR", "uploads"),
			MaxSize:           getEnvInt64("MAX_UPLOAD_SIZE", defaultMaxUploadSize),
			Driver:            strings.ToLower(getEnv("STORAGE_DRIVER", "disk")),
			AllowedExtensions: getEnvList("ALLOWED_EXTENSIONS", defaultAllowedExtensions),
			DownloadURLTTL:    getEnvTTL("DOWNLOAD_URL_TTL", 15*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", "openrouter")),
			APIKey:        getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:       getEnv("LLM_BASE_URL", defaultOpenRouterURL),
			Model:         getEnv("LLM_MODEL", defaultOpenRouterModel),
			Timeout:       getEnvDuration("LLM_TIMEOUT", 60*time.Second),
			VertexProject: getEnv("VERTEX_PROJECT_ID", ""),
			VertexRegion:  getEnv("VERTEX_REGION", "us-central1"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("JWT_TTL", time.Hour),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 4),
			Queue:       getEnv("WORKER_QUEUE", "tagging"),
			Embedded:    getEnvBool("WORKER_EMBEDDED", false),
			MetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("TZ", "UTC"),
		},
	}
}

// Location resolves the configured log time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Log.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil && i > 0 {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

// getEnvTTL is getEnvDuration that also accepts zero, which switches the feature off.
func getEnvTTL(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d >= 0 {
			return d
		}
	}
	return def
}

// getEnvList splits a comma-separated value, trimming and lower-casing entries.
func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	return out
}
