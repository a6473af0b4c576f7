package testhelper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/recordkeeper-audit/migrations"
)

const templateDB = "testdb"

var (
	once    sync.Once
	baseDSN string // points at the migrated template database
	initErr error

	// CREATE DATABASE ... TEMPLATE fails when two clones run at once.
	cloneMu sync.Mutex
)

// SetupTestDB starts a shared PostgreSQL container (once for the entire test run),
// applies goose migrations to a template database, clones a fresh database for
// the calling test and returns a pgxpool.Pool connected to it.
// The pool is closed via t.Cleanup; the container lives until the process exits.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return SetupTestDBWithTracer(t, nil)
}

// SetupTestDBWithTracer is SetupTestDB with a query tracer installed on the pool.
func SetupTestDBWithTracer(t *testing.T, tracer pgx.QueryTracer) *pgxpool.Pool {
	t.Helper()
	return OpenPool(t, cloneDatabase(t), tracer)
}

// OpenPool connects a new pool to dsn, optionally with a query tracer.
// Several pools may share one database returned by CloneDSN.
func OpenPool(t *testing.T, dsn string, tracer pgx.QueryTracer) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("testhelper: parse dsn: %v", err)
	}
	if tracer != nil {
		cfg.ConnConfig.Tracer = tracer
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("testhelper: failed to create pgxpool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

// CloneDSN returns the DSN of a freshly cloned, migrated database.
func CloneDSN(t *testing.T) string {
	t.Helper()
	return cloneDatabase(t)
}

func cloneDatabase(t *testing.T) string {
	t.Helper()

	once.Do(func() {
		baseDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := "t_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	cloneMu.Lock()
	defer cloneMu.Unlock()

	conn, err := pgx.Connect(ctx, strings.Replace(baseDSN, "/"+templateDB+"?", "/postgres?", 1))
	if err != nil {
		t.Fatalf("testhelper: connect to maintenance db: %v", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s TEMPLATE %s", name, templateDB)); err != nil {
		t.Fatalf("testhelper: clone database: %v", err)
	}

	return strings.Replace(baseDSN, "/"+templateDB+"?", "/"+name+"?", 1)
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       templateDB,
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
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/%s?sslmode=disable", host, port.Port(), templateDB)

	// migrations.Up closes its connection, leaving the template free to clone.
	if _, err := migrations.Up(ctx, dsn); err != nil {
		return "", err
	}

	return dsn, nil
}
