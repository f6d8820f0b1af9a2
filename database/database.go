package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/thrasher-corp/sqlboiler/boil"
)

// SetConfig safely sets the database instance's config with some basic
// locks and checks. Verbose configs route sqlboiler query logging to the
// database sub logger
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return errNilInstance
	}
	if cfg == nil {
		return errNilConfig
	}
	i.m.Lock()
	i.config = cfg
	if i.config.Verbose {
		boil.DebugMode = true
		boil.DebugWriter = Logger{}
	} else {
		boil.DebugMode = false
	}
	i.m.Unlock()
	return nil
}

// SetSQLiteConnection safely sets the database instance's connection to use
// SQLite
func (i *Instance) SetSQLiteConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(1)
	return nil
}

// SetPostgresConnection safely sets the database instance's connection to
// use Postgres
func (i *Instance) SetPostgresConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	if err := con.Ping(); err != nil {
		return err
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(2)
	i.SQL.SetMaxIdleConns(1)
	i.SQL.SetConnMaxLifetime(time.Hour)
	return nil
}

// SetConnected safely sets the database instance's connected status
func (i *Instance) SetConnected(v bool) {
	i.m.Lock()
	i.connected = v
	i.m.Unlock()
}

// CloseConnection safely disconnects the database instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return errNilSQL
	}
	i.connected = false
	return i.SQL.Close()
}

// IsConnected safely checks the SQL connection status
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// GetConfig safely returns a copy of the config
func (i *Instance) GetConfig() *Config {
	if i == nil {
		return nil
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return nil
	}
	cpy := *i.config
	return &cpy
}

// Ping pings the database
func (i *Instance) Ping() error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.Ping()
}

// GetSQL returns the connection when connected
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if !i.connected || i.SQL == nil {
		return nil, ErrDatabaseNotConnected
	}
	return i.SQL, nil
}

// Dialect returns the normalised driver name of the configured driver
func (i *Instance) Dialect() string {
	cfg := i.GetConfig()
	if cfg == nil {
		return DBInvalidDriver
	}
	return GetSQLDialect(cfg.Driver)
}

// GetSQLDialect normalises a configured driver name
func GetSQLDialect(driver string) string {
	switch strings.ToLower(driver) {
	case "postgresql", "postgres", "psql":
		return DBPostgreSQL
	case DBSQLite, DBSQLite3:
		return DBSQLite3
	}
	return DBInvalidDriver
}
