package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
)

// Database holds your SQL connection pool.
type Database struct {
	*sql.DB
}

// New creates, configures, and verifies a MySQL connection pool.
// It returns an error if opening or pinging the database fails.
func New(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*Database, error) {
	ctx := context.Background()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)
	logger.Infof(ctx, "connecting to database (maxOpen=%d, maxIdle=%d, connMaxLifetime=%s)...", maxOpen, maxIdle, connMaxLifetime)

	if err := db.Ping(); err != nil {
		if cErr := db.Close(); cErr != nil {
			return nil, cErr
		}
		return nil, err
	}

	logger.Info(ctx, "database connection pool established")
	return &Database{db}, nil
}
