package sqlite

import (
	"database/sql"
	"path/filepath"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/thrasher-corp/forecaster/database"
)

// Connect opens a connection to the sqlite database file configured on i,
// relative to its DataPath
func Connect(i *database.Instance) (*database.Instance, error) {
	if i == nil {
		return nil, database.ErrNoDatabaseProvided
	}
	cfg := i.GetConfig()
	if cfg == nil || cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}

	databaseFullLocation := filepath.Join(i.DataPath, cfg.Database)
	dbConn, err := sql.Open(database.DBSQLite3, databaseFullLocation)
	if err != nil {
		return nil, err
	}
	if err = i.SetSQLiteConnection(dbConn); err != nil {
		return nil, err
	}
	if err = i.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	i.SetConnected(true)
	return i, nil
}
