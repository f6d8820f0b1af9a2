package evaluationrun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/thrasher-corp/sqlboiler/queries"

	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/database/repository"
	"github.com/thrasher-corp/forecaster/log"
)

// Insert stores r, assigning a new v4 id and creation time when unset
func Insert(ctx context.Context, i *database.Instance, r *Run) error {
	if r == nil {
		return errNilRun
	}
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	if r.ID.IsNil() {
		if r.ID, err = uuid.NewV4(); err != nil {
			return err
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	dialect := i.Dialect()
	query := repository.Rebind(dialect, `INSERT INTO evaluation_run (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = queries.Raw(query,
		r.ID,
		r.Name,
		r.Style,
		r.Quantization,
		r.LiquidateAtEndOfDay,
		repository.TimeValue(dialect, r.Start),
		repository.TimeValue(dialect, r.End),
		r.Bars,
		r.Instruments,
		r.TotalPnL,
		r.SharpeRatio,
		r.MaxDrawdown,
		r.LogFile,
		repository.TimeValue(dialect, r.CreatedAt)).ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("inserting run %v: %w", r.ID, err)
	}
	log.Debugf(log.DatabaseMgr, "stored evaluation run %v", r.ID)
	return nil
}

// GetByID returns the run with the supplied id
func GetByID(ctx context.Context, i *database.Instance, id uuid.UUID) (*Run, error) {
	db, err := i.GetSQL()
	if err != nil {
		return nil, err
	}
	query := repository.Rebind(i.Dialect(), `SELECT `+columns+` FROM evaluation_run WHERE id = ?`)
	var row runRow
	err = queries.Raw(query, id).Bind(ctx, db, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	r := row.run()
	return &r, nil
}

// List returns up to limit runs, most recent first. A non positive limit
// returns every run
func List(ctx context.Context, i *database.Instance, limit int) ([]Run, error) {
	db, err := i.GetSQL()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + columns + ` FROM evaluation_run ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []runRow
	if err = queries.Raw(repository.Rebind(i.Dialect(), query), args...).Bind(ctx, db, &rows); err != nil {
		return nil, err
	}
	resp := make([]Run, len(rows))
	for x := range rows {
		resp[x] = rows[x].run()
	}
	return resp, nil
}

func (r *runRow) run() Run {
	return Run{
		ID:                  r.ID,
		Name:                r.Name,
		Style:               r.Style,
		Quantization:        r.Quantization,
		LiquidateAtEndOfDay: r.LiquidateAtEndOfDay,
		Start:               r.StartTime.Time,
		End:                 r.EndTime.Time,
		Bars:                r.Bars,
		Instruments:         r.Instruments,
		TotalPnL:            r.TotalPnL,
		SharpeRatio:         r.SharpeRatio,
		MaxDrawdown:         r.MaxDrawdown,
		LogFile:             r.LogFile,
		CreatedAt:           r.CreatedAt.Time,
	}
}
