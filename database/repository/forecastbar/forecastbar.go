package forecastbar

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/thrasher-corp/sqlboiler/queries"
	"github.com/volatiletech/null"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/database/repository"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/table"
)

// Insert upserts every cell of mf in one transaction and returns the number
// of rows written. Missing cells are stored as NULL so a re-import clears
// previously stored values
func Insert(ctx context.Context, i *database.Instance, mf *table.MultiFrame) (int, error) {
	if mf == nil {
		return 0, common.ErrNilArguments
	}
	db, err := i.GetSQL()
	if err != nil {
		return 0, err
	}
	records := mf.AllRecords()
	if len(records) == 0 {
		return 0, nil
	}
	dialect := i.Dialect()
	query := repository.Rebind(dialect, upsertQuery)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for x := range records {
		_, err = queries.Raw(query,
			repository.TimeValue(dialect, records[x].Time),
			records[x].Field,
			records[x].Instrument,
			value(records[x].Value)).ExecContext(ctx, tx)
		if err != nil {
			return 0, rollback(tx.Rollback, fmt.Errorf("inserting %v %v at %v: %w",
				records[x].Field, records[x].Instrument, records[x].Time, err))
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	log.Debugf(log.DatabaseMgr, "stored %d forecast bar values", len(records))
	return len(records), nil
}

// Load reads the bars between start and end inclusive into a MultiFrame
// localised to loc. Fields restricts the loaded fields when supplied. NULL
// values load as missing cells
func Load(ctx context.Context, i *database.Instance, start, end time.Time, loc *time.Location, fields ...string) (*table.MultiFrame, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v %v", errInvalidRange, start, end)
	}
	db, err := i.GetSQL()
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	dialect := i.Dialect()
	query := selectQuery
	args := []any{repository.TimeValue(dialect, start), repository.TimeValue(dialect, end)}
	if len(fields) > 0 {
		query += " AND field IN (?" + strings.Repeat(", ?", len(fields)-1) + ")"
		for x := range fields {
			args = append(args, fields[x])
		}
	}
	query = repository.Rebind(dialect, query+orderClause)

	var rows []bar
	if err = queries.Raw(query, args...).Bind(ctx, db, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w between %v and %v", ErrNoBars, start, end)
	}
	records := make([]table.Record, len(rows))
	for x := range rows {
		records[x] = table.Record{
			Time:       rows[x].Timestamp.In(loc),
			Field:      rows[x].Field,
			Instrument: rows[x].Instrument,
			Value:      math.NaN(),
		}
		if rows[x].Value.Valid {
			records[x].Value = rows[x].Value.Float64
		}
	}
	return table.FromRecords(records)
}

func value(v float64) null.Float64 {
	if math.IsNaN(v) {
		return null.Float64{}
	}
	return null.Float64From(v)
}

func rollback(fn func() error, err error) error {
	if rbErr := fn(); rbErr != nil {
		return fmt.Errorf("%w, rollback failed: %v", err, rbErr)
	}
	return err
}
