// Package testhelpers connects repository tests to a scratch sqlite database
// and, when FORECASTER_TEST_POSTGRES_* is set, to a postgres database
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"

	"github.com/thrasher-corp/sqlboiler/queries"

	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/database/drivers"
	"github.com/thrasher-corp/forecaster/database/drivers/postgres"
	sqlite "github.com/thrasher-corp/forecaster/database/drivers/sqlite3"
	"github.com/thrasher-corp/forecaster/database/migration"
)

const testSQLiteDatabase = "forecaster-test.db"

var (
	// MigrationDir is the migration folder used by test connections
	MigrationDir = migrationDir()

	// migrateMu serialises migrations of the shared postgres database
	migrateMu sync.Mutex
)

func migrationDir() string {
	_, fileName, _, ok := runtime.Caller(0)
	if !ok {
		return database.MigrationDir
	}
	return filepath.Join(filepath.Dir(fileName), "..", "migrations")
}

// GetConnectionDetails returns the postgres test database settings read from
// the environment
func GetConnectionDetails() *database.Config {
	port, _ := strconv.ParseUint(os.Getenv("FORECASTER_TEST_POSTGRES_PORT"), 10, 16)
	return &database.Config{
		Enabled: true,
		Driver:  database.DBPostgreSQL,
		ConnectionDetails: drivers.ConnectionDetails{
			Host:     os.Getenv("FORECASTER_TEST_POSTGRES_HOST"),
			Port:     uint16(port),
			Username: os.Getenv("FORECASTER_TEST_POSTGRES_USER"),
			Password: os.Getenv("FORECASTER_TEST_POSTGRES_PASSWORD"),
			Database: os.Getenv("FORECASTER_TEST_POSTGRES_DATABASE"),
			SSLMode:  os.Getenv("FORECASTER_TEST_POSTGRES_SSLMODE"),
		},
	}
}

// CheckValidConfig reports whether enough connection details are present to
// attempt a connection
func CheckValidConfig(cfg *drivers.ConnectionDetails) bool {
	return cfg != nil && cfg.Database != ""
}

// ConnectToDatabase connects a fresh instance using cfg, storing sqlite files
// under dataPath, and migrates it to the latest schema
func ConnectToDatabase(cfg *database.Config, dataPath string) (*database.Instance, error) {
	i := &database.Instance{DataPath: dataPath}
	if err := i.SetConfig(cfg); err != nil {
		return nil, err
	}
	var err error
	switch i.Dialect() {
	case database.DBSQLite3:
		_, err = sqlite.Connect(i)
	case database.DBPostgreSQL:
		_, err = postgres.Connect(i)
	default:
		err = fmt.Errorf("%w: %v", database.ErrInvalidDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	migrateMu.Lock()
	err = migration.Up(i, MigrationDir)
	migrateMu.Unlock()
	if err != nil {
		_ = i.CloseConnection()
		return nil, err
	}
	return i, nil
}

// Instances returns a connected instance per available driver keyed by
// dialect. Postgres is included only when configured in the environment and
// has the supplied tables emptied first
func Instances(t *testing.T, tables ...string) map[string]*database.Instance {
	t.Helper()
	ctx := context.Background()
	cfgs := []*database.Config{{
		Enabled:           true,
		Driver:            database.DBSQLite3,
		ConnectionDetails: drivers.ConnectionDetails{Database: testSQLiteDatabase},
	}}
	if pg := GetConnectionDetails(); CheckValidConfig(&pg.ConnectionDetails) {
		cfgs = append(cfgs, pg)
	}
	resp := make(map[string]*database.Instance, len(cfgs))
	for _, cfg := range cfgs {
		i, err := ConnectToDatabase(cfg, t.TempDir())
		if err != nil {
			t.Fatalf("connecting to %v: %v", cfg.Driver, err)
		}
		if i.Dialect() == database.DBPostgreSQL {
			if err = truncate(ctx, i, tables); err != nil {
				t.Fatalf("truncating %v: %v", cfg.Driver, err)
			}
		}
		driver := cfg.Driver
		t.Cleanup(func() {
			if err := i.CloseConnection(); err != nil {
				t.Errorf("closing %v: %v", driver, err)
			}
		})
		resp[i.Dialect()] = i
	}
	return resp
}

func truncate(ctx context.Context, i *database.Instance, tables []string) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	for _, table := range tables {
		if _, err = queries.Raw("DELETE FROM "+table).ExecContext(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
