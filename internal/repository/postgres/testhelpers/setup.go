package testhelpers

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/parking-occupancy/internal/config"
)

const (
	connectAttempts = 4
	firstBackoff    = 250 * time.Millisecond
)

// TestDB is the integration database shared by a repository suite.
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

// Config reads the integration database settings from TEST_DB_*.
func Config() config.DatabaseConfig {
	port, err := strconv.Atoi(env("TEST_DB_PORT", "5433"))
	if err != nil {
		port = 5433
	}
	return config.DatabaseConfig{
		Host:     env("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     env("TEST_DB_USER", "postgres"),
		Password: env("TEST_DB_PASSWORD", "postgres"),
		DBName:   env("TEST_DB_NAME", "parking_test"),
		SSLMode:  env("TEST_DB_SSLMODE", "disable"),
	}
}

// SetupTestDB connects to the integration database and skips the test when
// it stays unreachable through a short backoff.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	cfg := Config()
	dsn := (&config.Config{Database: cfg}).GetDatabaseDSN()

	var (
		db      *sqlx.DB
		err     error
		backoff = firstBackoff
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		cancel()
		if err == nil {
			break
		}
		if attempt < connectAttempts {
			t.Logf("postgres %s:%d not ready (attempt %d/%d), retrying in %v", cfg.Host, cfg.Port, attempt, connectAttempts, backoff)
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	return &TestDB{
		DB:     db,
		Logger: zaptest.NewLogger(t, zaptest.Level(zapcore.WarnLevel)),
	}
}

func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		_ = tdb.DB.Close()
	}
}

// Cleanup empties every table, children first.
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	_, err := tdb.DB.ExecContext(ctx,
		`TRUNCATE TABLE parking_events, sector_spots, spots, images, sectors, parking_lots CASCADE`)
	return err
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
