package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kotlens/kotlens/internal/config"
	"github.com/kotlens/kotlens/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testDBName     = "kotlens"
	testDBUser     = "test_kotlens"
	testDBPassword = "test_kotlens"
	snapshotName   = "postgres-test-snapshot"
)

func preparePostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	return postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPassword),
		postgres.BasicWaitStrategies(),
	)
}

// TestDB is a migrated Postgres container shared by the tests of one package.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	cfg       config.Database
}

// TestWithDB starts Postgres, applies all migrations and snapshots the clean
// schema so Reset can bring it back between tests.
func TestWithDB() (*TestDB, func()) {
	ctx := context.Background()

	container, err := preparePostgresContainer(ctx)
	if err != nil {
		log.Errorf("Failed to start postgres container: %v", err)
		os.Exit(1)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Enabled: true,
		Host:    host,
		Port:    port.Int(),
		User:    testDBUser,
		Pass:    testDBPassword,
		Name:    testDBName,
		Schema:  "kotlens",
	}
	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	if err := container.Snapshot(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
		log.Fatalf("Failed to snapshot postgres container: %v", err)
	}

	testDB := &TestDB{Container: container, cfg: cfg}
	testDB.Pool = testDB.open(ctx)

	return testDB, func() {
		testDB.Pool.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			log.Warnf("Failed to terminate postgres container: %v", err)
		}
	}
}

// Reset restores the migrated snapshot and reconnects the pool.
func (db *TestDB) Reset() {
	ctx := context.Background()
	db.Pool.Close()
	if err := db.Container.Restore(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
		log.Fatalf("Failed to restore postgres snapshot: %v", err)
	}
	db.Pool = db.open(ctx)
}

func (db *TestDB) open(ctx context.Context) *pgxpool.Pool {
	pool, err := database.Open(ctx, db.cfg)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	return pool
}

// findProjectRoot walks up until it finds go.mod or .git.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
