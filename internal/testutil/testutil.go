package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/lib/pq"

	"qa-gate/internal/database"
	"qa-gate/internal/models"
)

const postgresImage = "postgres:18"

// Postgres is a throwaway PostgreSQL server with the gate schema applied
type Postgres struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	DSN       string
}

// StartPostgres runs a container, applies migrations/ and tears everything down
// when the test ends. Integration tests call it after checking testing.Short.
func StartPostgres(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("qagate_test"),
		postgres.WithUsername("qagate_test"),
		postgres.WithPassword("qagate_test"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start %s: %v", postgresImage, err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.NewMigrationExecutor(db).RunMigrations(ctx, os.DirFS(migrationsDir(t))); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return &Postgres{Container: ctr, DB: db, DSN: dsn}
}

// SeedRecord inserts a material, supplier or product in the given approval status
func (p *Postgres) SeedRecord(t *testing.T, table models.EntityTable, id string, status models.ApprovalStatus) {
	t.Helper()
	if !table.Valid() {
		t.Fatalf("seed: unknown table %q", table)
	}
	_, err := p.DB.Exec(`INSERT INTO `+string(table)+` (id, name, approval_status) VALUES ($1, $2, $3)`,
		id, "Seeded "+id, status)
	if err != nil {
		t.Fatalf("seed %s/%s: %v", table, id, err)
	}
}

// migrationsDir walks up from the package under test to the repository's migrations/
func migrationsDir(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("working directory: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("migrations directory not found above %s", dir)
		}
		dir = parent
	}
}
