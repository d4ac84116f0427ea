package main

import (
	"context"
	"fmt"

	"github.com/quantbench/backtester/backtester/config"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/quantbench/backtester/backtester/report"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
	"github.com/quantbench/backtester/database/repository/backtestrun"
	"github.com/quantbench/backtester/log"
)

// runOptions are the command line choices applied to every config
type runOptions struct {
	parallel  int
	verbose   bool
	outputDir string
}

// executeConfig runs every pair in cfg against one engine, stores the results
// when the config asks for it and writes HTML reports when an output directory
// is set
func executeConfig(ctx context.Context, cfg *config.Config, db *database.Instance, opts runOptions) ([]*engine.RunSummary, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w config", common.ErrNilPointer)
	}
	if cfg.PersistResults && db == nil {
		log.Warnln(log.BackTester, "persist-results is set but the database is disabled, results will not be stored")
	}
	bt, err := engine.New(cfg.EngineSettings(), engine.WithVerbose(opts.verbose))
	if err != nil {
		return nil, err
	}
	rm := engine.SetupRunManager(opts.parallel)
	strategy := cfg.StrategyName()
	pairBars := make(map[string][]data.Bar, len(cfg.DataSettings.Pairs))
	for i := range cfg.DataSettings.Pairs {
		bars, err := cfg.LoadBars(&cfg.DataSettings.Pairs[i])
		if err != nil {
			return nil, err
		}
		pairBars[cfg.DataSettings.Pairs[i].Pair] = bars
		if _, err = rm.AddRun(bt, cfg.DataSettings.Pairs[i].Pair, strategy, bars); err != nil {
			return nil, err
		}
	}
	if _, err = rm.StartAllRuns(ctx); err != nil {
		return nil, err
	}
	summaries, err := rm.List()
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].Result == nil {
			continue
		}
		log.Infof(log.BackTester, "------------------%s %s------------------", summaries[i].MetaData.Pair, strategy)
		summaries[i].Result.Report.PrintResults()
		if opts.outputDir != "" {
			d := &report.Data{
				Nickname: cfg.Nickname,
				Pair:     summaries[i].MetaData.Pair,
				Strategy: strategy,
				Settings: bt.Settings(),
				Result:   summaries[i].Result,
				Bars:     pairBars[summaries[i].MetaData.Pair],
			}
			if _, err = d.GenerateReport(opts.outputDir); err != nil {
				return nil, err
			}
		}
		if !cfg.PersistResults || db == nil {
			continue
		}
		run, err := backtestrun.FromResult(summaries[i].MetaData.Pair, strategy, cfg.Nickname, cfg.EngineSettings(), summaries[i].Result)
		if err != nil {
			return nil, err
		}
		run.ID = summaries[i].MetaData.ID
		if err = backtestrun.Insert(ctx, db, run); err != nil {
			return nil, err
		}
		log.Infof(log.BackTester, "stored run %v", run.ID)
	}
	return summaries, nil
}
