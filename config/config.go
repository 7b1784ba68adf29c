package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the discrete DB_* settings as a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
	DBPath  string
}

type LinkValidationConfig struct {
	Enabled     bool
	Timeout     time.Duration
	MaxLinks    int
	MaxParallel int
	TotalBudget time.Duration
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
}

// Enabled reports whether every credential needed for the export archive is set.
func (s S3Config) Enabled() bool {
	return s.AccessKeyID != "" && s.SecretAccessKey != "" && s.Region != "" && s.Bucket != ""
}

type AppConfig struct {
	Port           string
	Environment    string
	LogLevel       string
	JWTSecret      string
	FrontendURL    string
	AllowedOrigins []string
	DatabaseURL    string
	Database       DatabaseConfig
	Gemini         GeminiConfig
	Cache          CacheConfig
	Links          LinkValidationConfig
	S3             S3Config
	ExportDir      string
	PublicBaseURL  string
}

func GetDatabaseConfig() DatabaseConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func GetAppConfig() AppConfig {
	frontend := getEnv("FRONTEND_URL", "http://localhost:3000")
	origins := splitList(getEnv("ALLOWED_ORIGINS", ""))
	if len(origins) == 0 {
		origins = []string{frontend, "http://localhost:3000", "http://127.0.0.1:3000"}
	}

	port := getEnv("PORT", "8081")

	return AppConfig{
		Port:           port,
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key"),
		FrontendURL:    frontend,
		AllowedOrigins: origins,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Database:       GetDatabaseConfig(),
		Gemini: GeminiConfig{
			APIKey:      getEnv("GOOGLE_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature: float32(getEnvFloat("GEMINI_TEMPERATURE", 0.2)),
		},
		Cache: CacheConfig{
			MaxSize: getEnvInt("CACHE_MAX_SIZE", 1000),
			TTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
			DBPath:  getEnvOptional("CACHE_DB_PATH", "resume_cache.db"),
		},
		Links: LinkValidationConfig{
			Enabled:     getEnvBool("LINK_VALIDATION", true),
			Timeout:     time.Duration(getEnvInt("LINK_TIMEOUT_SECONDS", 5)) * time.Second,
			MaxLinks:    getEnvInt("MAX_LINKS_PER_RESUME", 5),
			MaxParallel: 3,
			TotalBudget: 12 * time.Second,
		},
		S3: S3Config{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Region:          os.Getenv("AWS_REGION"),
			Bucket:          os.Getenv("AWS_S3_BUCKET"),
		},
		ExportDir:     getEnv("EXPORT_DIR", os.TempDir()),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOptional keeps an explicitly empty value, so it can switch a feature off.
func getEnvOptional(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
