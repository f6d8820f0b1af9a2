// Package migration applies the goose migrations of the forecaster schema
package migration

import (
	"errors"
	"fmt"

	"github.com/thrasher-corp/goose"

	"github.com/thrasher-corp/forecaster/common/file"
	"github.com/thrasher-corp/forecaster/database"
)

// Goose commands run by the forecaster
const (
	CommandUp     = "up"
	CommandStatus = "status"
	CommandReset  = "reset"
)

var errMigrationDirNotFound = errors.New("migration folder not found")

func init() {
	goose.SetLogger(Logger{})
}

// Run runs a goose command against the connected instance using the
// migrations for its dialect under dir. An empty dir uses
// database.MigrationDir
func Run(i *database.Instance, command, dir string) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	dialect := i.Dialect()
	if dialect == database.DBInvalidDriver {
		return database.ErrInvalidDriver
	}
	if dir == "" {
		dir = database.MigrationDir
	}
	if !file.Exists(dir) {
		return fmt.Errorf("%w: %v", errMigrationDirNotFound, dir)
	}
	if err = goose.Run(command, db, dialect, dir, ""); err != nil {
		return fmt.Errorf("goose %v: %w", command, err)
	}
	return nil
}

// Up applies every pending migration
func Up(i *database.Instance, dir string) error {
	return Run(i, CommandUp, dir)
}
