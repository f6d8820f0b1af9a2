package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/urfave/cli/v2"
	"github.com/volatiletech/null"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/file"
	"github.com/thrasher-corp/forecaster/database/migration"
	"github.com/thrasher-corp/forecaster/database/repository/evaluationrun"
	"github.com/thrasher-corp/forecaster/database/repository/forecastbar"
	"github.com/thrasher-corp/forecaster/evaluator"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/report"
	"github.com/thrasher-corp/forecaster/table"
)

var errNoOutputPath = errors.New("no output path provided")

var evaluateCommand = &cli.Command{
	Name:  "evaluate",
	Usage: "simulates the configured forecast and prints its performance",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "log",
			Usage: "writes every annotated field to the configured log directory",
		},
		&cli.BoolFlag{
			Name:  "store",
			Usage: "stores the run summary in the database",
		},
		&cli.BoolFlag{
			Name:  "print",
			Usage: "prints the annotated table and per bar statistics",
		},
		&cli.IntFlag{
			Name:  "rows",
			Usage: "the number of bars printed with --print, zero prints every bar",
			Value: 20,
		},
	}, sourceFlags...),
	Action: evaluate,
}

var readCommand = &cli.Command{
	Name:  "read",
	Usage: "reads a logged portfolio and prints its performance",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "the logged file name, the latest is read when empty",
		},
		&cli.IntFlag{
			Name:  "rows",
			Usage: "the number of bars printed, zero prints every bar",
			Value: 20,
		},
	},
	Action: readPortfolio,
}

var countsCommand = &cli.Command{
	Name:   "counts",
	Usage:  "prints the number of valid input values per field and time of day",
	Flags:  sourceFlags,
	Action: counts,
}

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "writes the input, or a logged portfolio, as an arrow IPC file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "the arrow file to write",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "logged",
			Usage: "exports a logged portfolio instead of the input",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "the logged file name used with --logged, the latest when empty",
		},
	}, sourceFlags...),
	Action: export,
}

var importCommand = &cli.Command{
	Name:   "import",
	Usage:  "stores the csv input directory in the database",
	Action: importInput,
}

var runsCommand = &cli.Command{
	Name:      "runs",
	Usage:     "inspects stored evaluation runs",
	ArgsUsage: "<command> <args>",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "lists the most recent runs",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "limit",
					Usage: "the maximum number of runs listed, zero lists every run",
					Value: 10,
				},
			},
			Action: listRuns,
		},
		{
			Name:      "get",
			Usage:     "prints a single run",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Usage:    "the run id",
					Required: true,
				},
			},
			Action: getRun,
		},
	},
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "applies pending database migrations and prints the migration status",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "command",
			Usage: "the goose command to run: status|up|reset",
			Value: migration.CommandStatus,
		},
	},
	Action: migrate,
}

func evaluate(c *cli.Context) error {
	e, df, err := loadInput(c)
	if err != nil {
		return err
	}
	annotated, stats, err := e.AnnotateForecasts(df, cfg.Portfolio)
	if err != nil {
		return err
	}
	summary, err := report.Summarise(stats, len(annotated.Instruments()))
	if err != nil {
		return err
	}
	if c.Bool("print") {
		fmt.Println(table.RenderMulti(annotated, table.RenderOptions{Precision: 4, MaxRows: c.Int("rows")}))
		fmt.Println(table.Render(stats, table.RenderOptions{Title: evaluator.StatisticsField, Precision: 2, MaxRows: c.Int("rows")}))
	}
	fmt.Println(summary.String())
	summary.PrintResults()

	var logFile string
	if c.Bool("log") {
		if logFile, err = evaluator.LogAnnotated(annotated, stats, cfg.Data.LogDir); err != nil {
			return err
		}
	}
	if cfg.Data.ReportDir != "" {
		name := summary.End.Format(common.LogFileTimeFormat) + ".json"
		if err = summary.WriteJSON(filepath.Join(cfg.Data.ReportDir, name)); err != nil {
			return err
		}
	}
	if !c.Bool("store") {
		return nil
	}
	db, err := connectDatabase()
	if err != nil {
		return err
	}
	run := newRun(cfg.Nickname, cfg.Portfolio, summary, logFile)
	if err = evaluationrun.Insert(c.Context, db, run); err != nil {
		return err
	}
	log.Infof(log.ReportMgr, "stored run %v", run.ID)
	return nil
}

func readPortfolio(c *cli.Context) error {
	opts, err := cfg.ReadOptions(c.String("file"))
	if err != nil {
		return err
	}
	annotated, stats, err := evaluator.ReadPortfolio(cfg.Data.LogDir, opts)
	if err != nil {
		return err
	}
	fmt.Println(table.RenderMulti(annotated, table.RenderOptions{Precision: 4, MaxRows: c.Int("rows")}))
	summary, err := report.Summarise(stats, len(annotated.Instruments()))
	if err != nil {
		return err
	}
	fmt.Println(summary.String())
	return nil
}

func counts(c *cli.Context) error {
	e, df, err := loadInput(c)
	if err != nil {
		return err
	}
	resp, err := e.ComputeCounts(df)
	if err != nil {
		return err
	}
	fmt.Println(resp.String())
	return nil
}

func export(c *cli.Context) error {
	output := c.String("output")
	if output == "" {
		return errNoOutputPath
	}
	df, err := exportFrame(c)
	if err != nil {
		return err
	}
	w, err := file.Writer(output)
	if err != nil {
		return err
	}
	if err = table.WriteArrow(w, df); err != nil {
		_ = w.Close()
		return err
	}
	log.Infof(log.DataMgr, "exported %d fields of %d bars to %v", len(df.Fields()), df.Len(), output)
	return w.Close()
}

func exportFrame(c *cli.Context) (*table.MultiFrame, error) {
	if !c.Bool("logged") {
		_, df, err := loadInput(c)
		return df, err
	}
	opts, err := cfg.ReadOptions(c.String("file"))
	if err != nil {
		return nil, err
	}
	df, _, err := evaluator.ReadPortfolio(cfg.Data.LogDir, opts)
	return df, err
}

func importInput(c *cli.Context) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	df, err := readInputDir(cfg.Data.InputDir, inputFields(cfg), loc)
	if err != nil {
		return err
	}
	db, err := connectDatabase()
	if err != nil {
		return err
	}
	n, err := forecastbar.Insert(c.Context, db, df)
	if err != nil {
		return err
	}
	log.Infof(log.DataMgr, "imported %d values from %v", n, cfg.Data.InputDir)
	return nil
}

func migrate(c *cli.Context) error {
	db, err := connectDatabase()
	if err != nil {
		return err
	}
	return migration.Run(db, c.String("command"), cfg.Database.MigrationDir)
}

func listRuns(c *cli.Context) error {
	db, err := connectDatabase()
	if err != nil {
		return err
	}
	runs, err := evaluationrun.List(c.Context, db, c.Int("limit"))
	if err != nil {
		return err
	}
	return jsonOutput(runs)
}

func getRun(c *cli.Context) error {
	id, err := uuid.FromString(c.String("id"))
	if err != nil {
		return err
	}
	db, err := connectDatabase()
	if err != nil {
		return err
	}
	run, err := evaluationrun.GetByID(c.Context, db, id)
	if err != nil {
		return err
	}
	return jsonOutput(run)
}

// newRun converts a summary into its stored form
func newRun(nickname string, opts evaluator.PortfolioOptions, s *report.Summary, logFile string) *evaluationrun.Run {
	r := &evaluationrun.Run{
		Name:                nickname,
		Style:               string(opts.Style),
		Quantization:        string(opts.Quantization),
		LiquidateAtEndOfDay: opts.LiquidateAtEndOfDay,
		Start:               s.Start,
		End:                 s.End,
		Bars:                s.Bars,
		Instruments:         s.Instruments,
		TotalPnL:            s.TotalPnL.InexactFloat64(),
		MaxDrawdown:         s.MaxDrawdown.InexactFloat64(),
	}
	if s.HasSharpeRatio {
		r.SharpeRatio = null.Float64From(s.SharpeRatio.InexactFloat64())
	}
	if logFile != "" {
		r.LogFile = null.StringFrom(logFile)
	}
	return r
}

func jsonOutput(in any) error {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(j))
	return nil
}
