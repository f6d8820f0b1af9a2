package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"

	"github.com/thrasher-corp/forecaster/database/drivers"
)

// Instance holds all database information for a database instance
type Instance struct {
	SQL       *sql.DB
	DataPath  string
	config    *Config
	connected bool
	m         sync.RWMutex
}

// Config holds all database configurable options including enable/disabled & DSN settings
type Config struct {
	Enabled                   bool   `json:"enabled" mapstructure:"enabled"`
	Verbose                   bool   `json:"verbose" mapstructure:"verbose"`
	Driver                    string `json:"driver" mapstructure:"driver"`
	MigrationDir              string `json:"migrationDir" mapstructure:"migrationDir"`
	drivers.ConnectionDetails `mapstructure:",squash"`
}

const (
	// DBSQLite const string for sqlite across code base
	DBSQLite = "sqlite"
	// DBSQLite3 const string for sqlite3 across code base
	DBSQLite3 = "sqlite3"
	// DBPostgreSQL const string for PostgreSQL across code base
	DBPostgreSQL = "postgres"
	// DBInvalidDriver const string for invalid driver
	DBInvalidDriver = "invalid driver"
	// DefaultSQLiteDatabase is the default sqlite database name
	DefaultSQLiteDatabase = "forecaster.db"
)

// Table names
const (
	ForecastBarTable   = "forecast_bar"
	EvaluationRunTable = "evaluation_run"
)

var (
	// DB Global Database Connection
	DB = &Instance{}
	// MigrationDir is the default folder of the goose migrations
	MigrationDir = filepath.Join("database", "migrations")
	// SupportedDrivers lists the driver names accepted in Config.Driver
	SupportedDrivers = []string{DBSQLite, DBSQLite3, DBPostgreSQL}

	// ErrNoDatabaseProvided is returned when no database file or name is configured
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrDatabaseSupportDisabled is returned when database support is disabled
	ErrDatabaseSupportDisabled = errors.New("database support is disabled")
	// ErrDatabaseNotConnected is returned when a query is attempted without a connection
	ErrDatabaseNotConnected = errors.New("database is not connected")
	// ErrInvalidDriver is returned for a driver outside SupportedDrivers
	ErrInvalidDriver = errors.New("invalid database driver")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("database config is nil")
	errNilSQL      = errors.New("database SQL connection is nil")
)
