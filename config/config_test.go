package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetAppConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GEMINI_MODEL", "CACHE_MAX_SIZE", "ALLOWED_ORIGINS", "LINK_VALIDATION", "AWS_S3_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg := GetAppConfig()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 1000, cfg.Cache.MaxSize)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Links.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Links.Timeout)
	assert.Equal(t, 5, cfg.Links.MaxLinks)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
	assert.False(t, cfg.S3.Enabled())
}

func TestGetAppConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LINK_VALIDATION", "false")
	t.Setenv("CACHE_MAX_SIZE", "-3")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("CACHE_DB_PATH", "")

	cfg := GetAppConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Links.Enabled)
	assert.Equal(t, 1000, cfg.Cache.MaxSize)
	assert.Empty(t, cfg.Cache.DBPath, "an empty CACHE_DB_PATH disables persistence")
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:9000", cfg.PublicBaseURL)
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "jobs", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=jobs sslmode=disable", d.DSN())
}
