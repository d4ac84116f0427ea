package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/uuid"
	"github.com/quantbench/backtester/backtester/apiserver"
	"github.com/quantbench/backtester/backtester/config"
	"github.com/quantbench/backtester/backtester/config/versions"
	"github.com/quantbench/backtester/backtester/strategies"
	"github.com/quantbench/backtester/common/file"
	"github.com/quantbench/backtester/database"
	"github.com/quantbench/backtester/database/repository/backtestrun"
	"github.com/quantbench/backtester/log"
	"github.com/quantbench/backtester/signaler"
	"github.com/urfave/cli/v2"
)

var (
	settingsPath string
	appSettings  *Settings

	errNoConfig = errors.New("at least one --config is required")
)

func jsonOutput(in any) {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return
	}
	fmt.Println(string(j))
}

// setup loads settings and configures logging before any command runs
func setup(_ *cli.Context) error {
	s, err := loadSettings(settingsPath)
	if err != nil {
		return err
	}
	if err = log.SetupGlobalLogger(&s.Logging); err != nil {
		return err
	}
	appSettings = s
	return nil
}

func closeDatabase(db *database.Instance) {
	if db == nil {
		return
	}
	if err := db.CloseConnection(); err != nil {
		log.Errorf(log.DatabaseMgr, "closing database: %v", err)
	}
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "runs a backtest for every pair of each strategy config",
	ArgsUsage: "--config <path> [--config <path>]",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    "the strategy config to run",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "maximum pairs run at once, 0 uses the settings value",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "logs every position transition at info level",
		},
		&cli.BoolFlag{
			Name:  "printconfig",
			Usage: "prints each config before running",
		},
		&cli.StringFlag{
			Name:  "outputdir",
			Usage: "writes an HTML report per pair into this directory",
		},
	},
	Action: func(c *cli.Context) error {
		paths := c.StringSlice("config")
		if len(paths) == 0 {
			return errNoConfig
		}
		opts := runOptions{
			parallel:  appSettings.Parallel,
			verbose:   c.Bool("verbose"),
			outputDir: c.String("outputdir"),
		}
		if c.IsSet("parallel") {
			opts.parallel = c.Int("parallel")
		}
		db, err := connectDatabase(c.Context, appSettings)
		if err != nil {
			return err
		}
		defer closeDatabase(db)
		for i := range paths {
			cfg, err := config.ReadConfigFromFile(c.Context, paths[i])
			if err != nil {
				return fmt.Errorf("%s: %w", paths[i], err)
			}
			if c.Bool("printconfig") {
				cfg.PrintSetting()
			}
			if _, err = executeConfig(c.Context, cfg, db, opts); err != nil {
				return fmt.Errorf("%s: %w", paths[i], err)
			}
		}
		return nil
	},
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serves backtests over REST and websocket until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "overrides the settings listen address",
		},
	},
	Action: func(c *cli.Context) error {
		cfg := appSettings.Server
		if c.IsSet("listen") {
			cfg.ListenAddress = c.String("listen")
		}
		db, err := connectDatabase(c.Context, appSettings)
		if err != nil {
			return err
		}
		defer closeDatabase(db)
		srv := apiserver.New(cfg, db)
		if err = srv.Start(c.Context); err != nil {
			return err
		}
		<-c.Context.Done()
		log.Infoln(log.RESTSys, "REST server shutting down")
		return nil
	},
}

var upgradeConfigCommand = &cli.Command{
	Name:      "upgradeconfig",
	Usage:     "upgrades or downgrades a strategy config between versions",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "where to write the result, defaults to overwriting the input",
		},
		&cli.UintFlag{
			Name:  "version",
			Usage: "target version, defaults to the latest",
			Value: versions.UseLatestVersion,
		},
	},
	Action: func(c *cli.Context) error {
		in := c.Args().First()
		if in == "" {
			return cli.ShowSubcommandHelp(c)
		}
		target := c.Uint("version")
		if target > versions.UseLatestVersion {
			return fmt.Errorf("version %d out of range", target)
		}
		j, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		if j, err = versions.Manager.Deploy(c.Context, j, uint16(target)); err != nil {
			return err
		}
		out := c.String("out")
		if out == "" {
			out = in
		}
		if err = file.Write(out, j); err != nil {
			return err
		}
		log.Infof(log.ConfigMgr, "config written to %s", out)
		return nil
	},
}

var showCommand = &cli.Command{
	Name:  "show",
	Usage: "shows strategies and stored runs",
	Subcommands: []*cli.Command{
		{
			Name:  "strategies",
			Usage: "lists the available signal generators",
			Action: func(*cli.Context) error {
				strats := strategies.GetStrategies()
				resp := make([]apiserver.StrategyDetails, 0, len(strats)+1)
				resp = append(resp, apiserver.StrategyDetails{Name: strategies.Precomputed, Description: "signals supplied with the bars"})
				for i := range strats {
					resp = append(resp, apiserver.StrategyDetails{Name: strats[i].Name(), Description: strats[i].Description()})
				}
				jsonOutput(resp)
				return nil
			},
		},
		{
			Name:  "runs",
			Usage: "lists stored runs newest first",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to list, 0 lists all"},
			},
			Action: func(c *cli.Context) error {
				db, err := requireDatabase(c.Context)
				if err != nil {
					return err
				}
				defer closeDatabase(db)
				runs, err := backtestrun.List(c.Context, db, c.Int("limit"))
				if err != nil {
					return err
				}
				jsonOutput(runs)
				return nil
			},
		},
		{
			Name:      "run",
			Usage:     "shows a stored run with its trades",
			ArgsUsage: "<id>",
			Action: func(c *cli.Context) error {
				id, err := uuid.FromString(c.Args().First())
				if err != nil {
					return err
				}
				db, err := requireDatabase(c.Context)
				if err != nil {
					return err
				}
				defer closeDatabase(db)
				run, err := backtestrun.GetByID(c.Context, db, id)
				if err != nil {
					return err
				}
				jsonOutput(run)
				fmt.Println(run.Report)
				return nil
			},
		},
	},
}

func requireDatabase(ctx context.Context) (*database.Instance, error) {
	db, err := connectDatabase(ctx, appSettings)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New("database is disabled in settings")
	}
	return db, nil
}

func main() {
	app := cli.NewApp()
	app.Name = "backtester"
	app.Usage = "replays signal annotated price bars through a single position long only simulation"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "settings",
			Usage:       "path to an application settings file, values can be overridden with BACKTESTER_ environment variables",
			Destination: &settingsPath,
		},
	}
	app.Before = setup
	app.Commands = []*cli.Command{
		runCommand,
		serveCommand,
		upgradeConfigCommand,
		showCommand,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signaler.WaitForInterrupt()
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
	cancel()
}
