package evaluationrun

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/volatiletech/null"

	"github.com/thrasher-corp/forecaster/database/repository"
)

// ErrRunNotFound is returned when no run matches the requested id
var ErrRunNotFound = errors.New("evaluation run not found")

var errNilRun = errors.New("run is nil")

// Run is the persisted summary of a single evaluation
type Run struct {
	ID                  uuid.UUID
	Name                string
	Style               string
	Quantization        string
	LiquidateAtEndOfDay bool
	Start               time.Time
	End                 time.Time
	Bars                int
	Instruments         int
	TotalPnL            float64
	// SharpeRatio is invalid when bar pnl has no dispersion
	SharpeRatio null.Float64
	MaxDrawdown float64
	// LogFile is the portfolio log file name when the run was logged
	LogFile   null.String
	CreatedAt time.Time
}

const columns = `id, name, style, quantization, liquidate_at_end_of_day, start_time, end_time,
	bars, instruments, total_pnl, sharpe_ratio, max_drawdown, log_file, created_at`

// runRow is a stored evaluation_run row
type runRow struct {
	ID                  uuid.UUID       `boil:"id"`
	Name                string          `boil:"name"`
	Style               string          `boil:"style"`
	Quantization        string          `boil:"quantization"`
	LiquidateAtEndOfDay bool            `boil:"liquidate_at_end_of_day"`
	StartTime           repository.Time `boil:"start_time"`
	EndTime             repository.Time `boil:"end_time"`
	Bars                int             `boil:"bars"`
	Instruments         int             `boil:"instruments"`
	TotalPnL            float64         `boil:"total_pnl"`
	SharpeRatio         null.Float64    `boil:"sharpe_ratio"`
	MaxDrawdown         float64         `boil:"max_drawdown"`
	LogFile             null.String     `boil:"log_file"`
	CreatedAt           repository.Time `boil:"created_at"`
}
