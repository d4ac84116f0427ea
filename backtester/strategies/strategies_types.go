package strategies

import (
	"github.com/quantbench/backtester/backtester/data"
)

// Precomputed is the strategy name for series whose signals were supplied
// with the data, no generator runs for it
const Precomputed = "precomputed"

// SignalGenerator derives one signal and optional stoploss per candle
type SignalGenerator interface {
	Name() string
	Description() string
	Compute([]data.Candle) ([]data.Bar, error)
	SetCustomSettings(map[string]any) error
	SetDefaults()
}
