package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/thrasher-corp/forecaster/config"
	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/signaler"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	verbose    bool
	cfg        *config.Config
)

func main() {
	app := newApp()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Capture cancel for interrupt
		<-signaler.WaitForInterrupt()
		cancel()
		fmt.Println("forecaster interrupted")
		os.Exit(1)
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "forecaster"
	app.Version = version
	app.EnableBashCompletion = true
	app.Usage = "evaluates forecasts by simulating and accounting the portfolio they trade"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a json, yaml or toml config, defaults are used when empty",
			EnvVars:     []string{"FORECASTER_CONFIG"},
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "logs debug output and every SQL query",
			Destination: &verbose,
		},
	}
	app.Before = setup
	app.After = teardown
	app.Commands = []*cli.Command{
		evaluateCommand,
		readCommand,
		countsCommand,
		exportCommand,
		importCommand,
		runsCommand,
		migrateCommand,
	}
	return app
}

func setup(_ *cli.Context) error {
	var err error
	if configPath != "" {
		cfg, err = config.ReadConfigFromFile(configPath)
	} else {
		cfg, err = config.LoadConfig(nil, "")
	}
	if err != nil {
		return err
	}
	if verbose {
		cfg.Database.Verbose = true
		cfg.Logging.Level = "INFO|DEBUG|WARN|ERROR"
	}
	if err = log.SetupGlobalLogger(&cfg.Logging); err != nil {
		return err
	}
	return cfg.Validate()
}

func teardown(_ *cli.Context) error {
	var errs []error
	if database.DB.IsConnected() {
		errs = append(errs, database.DB.CloseConnection())
	}
	errs = append(errs, log.CloseLogFile())
	return errors.Join(errs...)
}
