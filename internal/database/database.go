package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"qa-gate/internal/config"
)

const (
	connectTimeout = 10 * time.Second
	probeTimeout   = 5 * time.Second
)

// Database owns the PostgreSQL pool shared by the repositories
type Database struct {
	DB *sql.DB
}

// DSN renders cfg as a lib/pq keyword/value connection string
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// New opens the pool, applies the pool limits and waits for the server to answer
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Database, error) {
	pool, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.PingContext(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach postgres at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	slog.Debug("Postgres pool ready",
		"host", cfg.Host,
		"database", cfg.Name,
		"max_open", cfg.MaxOpenConns,
		"max_idle", cfg.MaxIdleConns,
	)
	return &Database{DB: pool}, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

// HealthCheck pings the server and returns the newest applied migration version,
// empty when none has been applied yet
func (d *Database) HealthCheck(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var version string
	err := d.DB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), '') FROM schema_migrations`,
	).Scan(&version)
	if err != nil {
		return "", fmt.Errorf("probe schema_migrations: %w", err)
	}
	return version, nil
}
