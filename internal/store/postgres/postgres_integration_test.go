package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/husainf4l/rolekits/internal/store"
	"github.com/husainf4l/rolekits/internal/store/storetest"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        user_id TEXT PRIMARY KEY,
        username TEXT NOT NULL UNIQUE,
        display_name TEXT,
        creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
    );`,
	`CREATE TABLE IF NOT EXISTS cvs (
        cv_id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users(user_id),
        full_name TEXT, email TEXT, phone TEXT, address TEXT,
        linkedin TEXT, github TEXT, website TEXT, summary TEXT,
        experience TEXT, education TEXT, skills TEXT, languages TEXT,
        certifications TEXT, projects TEXT, "references" TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );`,
	`CREATE INDEX IF NOT EXISTS idx_cvs_user ON cvs(user_id);`,
}

func makeStoreFromDSN(t *testing.T, dsn string) store.Store {
	t.Helper()
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return NewWithDB(db)
}

// TestPostgresStoreCompliance runs against an externally provided
// database (compose, CI service container).
func TestPostgresStoreCompliance(t *testing.T) {
	dsn := os.Getenv("ROLEKITS_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ROLEKITS_POSTGRES_DSN not set; skipping postgres store compliance test")
	}
	storetest.Run(t, func(t *testing.T) store.Store { return makeStoreFromDSN(t, dsn) })
}

// TestPostgresStoreComplianceContainer spins up a throwaway Postgres
// via testcontainers. Requires a local Docker daemon.
func TestPostgresStoreComplianceContainer(t *testing.T) {
	if os.Getenv("ROLEKITS_CONTAINER_TESTS") == "" {
		t.Skip("ROLEKITS_CONTAINER_TESTS not set; skipping container-backed postgres test")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "rolekits",
			"POSTGRES_PASSWORD": "rolekits",
			"POSTGRES_DB":       "rolekits",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://rolekits:rolekits@%s:%s/rolekits?sslmode=disable", host, port.Port())

	storetest.Run(t, func(t *testing.T) store.Store { return makeStoreFromDSN(t, dsn) })
}
