package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"resumeanalyzer/config"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// ResolveDSN prefers DATABASE_URL and falls back to the DB_* settings.
// It returns "" when no database is configured.
func ResolveDSN(databaseURL string, cfg config.DatabaseConfig) string {
	if databaseURL != "" {
		return databaseURL
	}
	if cfg.DBName == "" {
		return ""
	}
	return cfg.DSN()
}

func Connect(dsn string) (*sql.DB, error) {
	// Open database connection
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	return db, nil
}
