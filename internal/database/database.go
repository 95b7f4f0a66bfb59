package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"foodgram/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Pool limits for the relational store
const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// DSN builds the lib/pq connection string for cfg.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

// Connect opens the PostgreSQL pool and pings it within ten seconds.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(pingCtx, "postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres %s/%s: %w", cfg.DBHost, cfg.DBName, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	log.Printf("Connected to PostgreSQL database %q", cfg.DBName)
	return db, nil
}
