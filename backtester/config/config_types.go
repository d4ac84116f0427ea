package config

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errNoPairs              = errors.New("no pairs configured")
	errEmptyPair            = errors.New("pair name cannot be empty")
	errDuplicatePair        = errors.New("duplicate pair")
	errNoDataSource         = errors.New("pair has no csv-path")
	errUnusedCustomSettings = errors.New("custom settings are not used by precomputed signals")
	errConfigNotFound       = errors.New("config file not found")
)

// Config defines what is in an individual strategy config
type Config struct {
	Version          int              `json:"version"`
	Nickname         string           `json:"nickname"`
	Goal             string           `json:"goal"`
	StrategySettings StrategySettings `json:"strategy-settings"`
	BacktestSettings BacktestSettings `json:"backtest-settings"`
	DataSettings     DataSettings     `json:"data-settings"`
	PersistResults   bool             `json:"persist-results"`
}

// StrategySettings selects the signal generator. An empty name or
// "precomputed" uses the signals stored alongside the data.
type StrategySettings struct {
	Name           string         `json:"name"`
	CustomSettings map[string]any `json:"custom-settings,omitempty"`
}

// BacktestSettings maps onto the engine settings
type BacktestSettings struct {
	InitialCapital        decimal.Decimal `json:"initial-capital"`
	StakeFraction         decimal.Decimal `json:"stake-fraction"`
	FeeRate               decimal.Decimal `json:"fee-rate"`
	MinimumTradableAmount decimal.Decimal `json:"minimum-tradable-amount"`
}

// DataSettings lists every pair to run
type DataSettings struct {
	Pairs []PairSettings `json:"pairs"`
}

// PairSettings points a pair at its bar data
type PairSettings struct {
	Pair    string `json:"pair"`
	CSVPath string `json:"csv-path"`
}
