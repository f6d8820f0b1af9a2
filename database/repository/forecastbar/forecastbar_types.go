package forecastbar

import (
	"errors"

	"github.com/volatiletech/null"

	"github.com/thrasher-corp/forecaster/database/repository"
)

// ErrNoBars is returned when a load matches no stored bars
var ErrNoBars = errors.New("no forecast bars found")

var errInvalidRange = errors.New("end must not be before start")

const upsertQuery = `INSERT INTO forecast_bar (timestamp, field, instrument, value) VALUES (?, ?, ?, ?)
	ON CONFLICT (timestamp, field, instrument) DO UPDATE SET value = excluded.value`

const selectQuery = `SELECT timestamp, field, instrument, value FROM forecast_bar
	WHERE timestamp >= ? AND timestamp <= ?`

const orderClause = " ORDER BY timestamp, field, instrument"

// bar is a stored forecast_bar row
type bar struct {
	Timestamp  repository.Time `boil:"timestamp"`
	Field      string          `boil:"field"`
	Instrument string          `boil:"instrument"`
	Value      null.Float64    `boil:"value"`
}
