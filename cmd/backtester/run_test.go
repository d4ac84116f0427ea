package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantbench/backtester/backtester/config"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
	sqlite "github.com/quantbench/backtester/database/drivers/sqlite3"
	"github.com/quantbench/backtester/database/repository/backtestrun"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCSV = `timestamp,open,high,low,close,volume,signal,stoploss
2021-01-01 00:00:00,99,101,98,100,10,buy,90
2021-01-01 01:00:00,99,100,85,95,12,hold,
`

func scenarioConfig(t *testing.T, pairs ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Nickname:         "scenario",
		StrategySettings: config.StrategySettings{Name: "precomputed"},
		BacktestSettings: config.BacktestSettings{
			InitialCapital:        decimal.NewFromInt(10000),
			StakeFraction:         decimal.RequireFromString("0.9"),
			FeeRate:               decimal.RequireFromString("0.0026"),
			MinimumTradableAmount: decimal.NewFromInt(10),
		},
	}
	for i := range pairs {
		path := filepath.Join(dir, pairs[i]+".csv")
		require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0o600))
		cfg.DataSettings.Pairs = append(cfg.DataSettings.Pairs, config.PairSettings{Pair: pairs[i], CSVPath: path})
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestExecuteConfig(t *testing.T) {
	t.Parallel()
	_, err := executeConfig(context.Background(), nil, nil, runOptions{})
	assert.ErrorIs(t, err, common.ErrNilPointer)

	cfg := scenarioConfig(t, "btc-usd", "eth-usd", "ltc-usd")
	out := t.TempDir()
	summaries, err := executeConfig(context.Background(), cfg, nil, runOptions{parallel: 2, verbose: true, outputDir: out})
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	for i := range summaries {
		require.NotNil(t, summaries[i].Result)
		assert.Equal(t, "9081.334756", summaries[i].Result.State.Capital.String())
		assert.Equal(t, "precomputed", summaries[i].MetaData.Strategy)
	}
	reports, err := filepath.Glob(filepath.Join(out, "*.html"))
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestExecuteConfigPersists(t *testing.T) {
	t.Parallel()
	db := &database.Instance{DataPath: t.TempDir()}
	require.NoError(t, db.SetConfig(&database.Config{
		Enabled:           true,
		Driver:            database.DBSQLite3,
		ConnectionDetails: database.ConnectionDetails{Database: "cmd.db"},
	}))
	require.NoError(t, sqlite.Connect(db))
	defer func() { assert.NoError(t, db.CloseConnection()) }()
	require.NoError(t, db.CreateSchema(context.Background()))

	cfg := scenarioConfig(t, "btc-usd")
	cfg.PersistResults = true
	summaries, err := executeConfig(context.Background(), cfg, db, runOptions{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	run, err := backtestrun.GetByID(context.Background(), db, summaries[0].MetaData.ID)
	require.NoError(t, err)
	assert.Equal(t, "scenario", run.Nickname.String)
	assert.Len(t, run.Trades, 1)
}

func TestExecuteConfigMissingData(t *testing.T) {
	t.Parallel()
	cfg := scenarioConfig(t, "btc-usd")
	cfg.DataSettings.Pairs[0].CSVPath = filepath.Join(t.TempDir(), "missing.csv")
	_, err := executeConfig(context.Background(), cfg, nil, runOptions{})
	assert.Error(t, err)
}

func TestConnectDatabaseDisabled(t *testing.T) {
	t.Parallel()
	db, err := connectDatabase(context.Background(), &Settings{})
	require.NoError(t, err)
	assert.Nil(t, db)
}
