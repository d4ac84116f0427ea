package rsi

import (
	"fmt"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// Name is the strategy name
	Name               = "rsi"
	rsiPeriodKey       = "rsi-period"
	rsiLowKey          = "rsi-low"
	rsiHighKey         = "rsi-high"
	stoplossPercentKey = "stoploss-percent"
	minimumPeriod      = 2
	description        = `The relative strength index is a technical indicator used in the analysis of financial markets. It is intended to chart the current and historical strength or weakness of a stock or market based on the closing prices of a recent trading period`
)

// Strategy generates signals from RSI thresholds
type Strategy struct {
	rsiPeriod       int
	rsiLow          decimal.Decimal
	rsiHigh         decimal.Decimal
	stoplossPercent decimal.Decimal
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
// be it definition of terms or to highlight its purpose
func (s *Strategy) Description() string {
	return description
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiHigh = decimal.NewFromInt(70)
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiPeriod = 14
	s.stoplossPercent = decimal.Zero
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	var err error
	for k, v := range customSettings {
		switch k {
		case rsiHighKey:
			s.rsiHigh, err = base.Percent(k, v)
		case rsiLowKey:
			s.rsiLow, err = base.Percent(k, v)
		case rsiPeriodKey:
			s.rsiPeriod, err = base.IntAtLeast(k, v, minimumPeriod)
		case stoplossPercentKey:
			s.stoplossPercent, err = base.Percent(k, v)
		default:
			err = fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
		if err != nil {
			return err
		}
	}
	if !s.rsiLow.LessThan(s.rsiHigh) {
		return fmt.Errorf("%w %s %v must be below %s %v", base.ErrInvalidCustomSettings, rsiLowKey, s.rsiLow, rsiHighKey, s.rsiHigh)
	}
	return nil
}

// Compute returns a Buy when RSI is at or below the low threshold and a Sell
// when at or above the high threshold
func (s *Strategy) Compute(candles []data.Candle) ([]data.Bar, error) {
	if s.rsiPeriod < minimumPeriod {
		return nil, fmt.Errorf("%w %s %d below %d", base.ErrInvalidCustomSettings, rsiPeriodKey, s.rsiPeriod, minimumPeriod)
	}
	if len(candles) <= s.rsiPeriod {
		return nil, fmt.Errorf("%w %d candles, %s %d needs at least %d", base.ErrNotEnoughData, len(candles), rsiPeriodKey, s.rsiPeriod, s.rsiPeriod+1)
	}
	bars := data.ToBars(candles)
	values := indicators.RSI(base.ClosePrices(candles), s.rsiPeriod)
	for i := s.rsiPeriod; i < len(bars); i++ {
		v := decimal.NewFromFloat(values[i])
		switch {
		case v.GreaterThanOrEqual(s.rsiHigh):
			bars[i].Signal = data.Sell
		case v.LessThanOrEqual(s.rsiLow):
			bars[i].Signal = data.Buy
			bars[i].StoplossPrice = base.Stoploss(bars[i].Close, s.stoplossPercent)
		}
	}
	return bars, nil
}
