package migration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/sqlboiler/queries"

	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/database/drivers"
	sqlite "github.com/thrasher-corp/forecaster/database/drivers/sqlite3"
)

var testMigrationDir = filepath.Join("..", "migrations")

func connect(t *testing.T) *database.Instance {
	t.Helper()
	i := &database.Instance{DataPath: t.TempDir()}
	require.NoError(t, i.SetConfig(&database.Config{
		Driver:            database.DBSQLite3,
		ConnectionDetails: drivers.ConnectionDetails{Database: "migration.db"},
	}))
	_, err := sqlite.Connect(i)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, i.CloseConnection()) })
	return i
}

func TestUp(t *testing.T) {
	t.Parallel()
	i := connect(t)
	require.NoError(t, Up(i, testMigrationDir))
	require.NoError(t, Up(i, testMigrationDir), "up must be idempotent")
	require.NoError(t, Run(i, CommandStatus, testMigrationDir))

	db, err := i.GetSQL()
	require.NoError(t, err)
	for _, table := range []string{database.ForecastBarTable, database.EvaluationRunTable} {
		var resp struct {
			Count int `boil:"count"`
		}
		err = queries.Raw("SELECT COUNT(*) AS count FROM "+table).Bind(context.Background(), db, &resp)
		require.NoErrorf(t, err, "table %v", table)
		assert.Zero(t, resp.Count)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, Up(&database.Instance{}, testMigrationDir), database.ErrDatabaseNotConnected)

	i := connect(t)
	assert.ErrorIs(t, Up(i, filepath.Join(t.TempDir(), "missing")), errMigrationDirNotFound)
	assert.Error(t, Run(i, "sideways", testMigrationDir))
}
