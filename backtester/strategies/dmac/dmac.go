package dmac

import (
	"fmt"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// Name is the strategy name
	Name               = "dmac"
	fastPeriodKey      = "fast-period"
	slowPeriodKey      = "slow-period"
	stoplossPercentKey = "stoploss-percent"
	description        = `The dual moving average crossover buys when the fast simple moving average crosses above the slow one and sells when it crosses back below`
)

// Strategy generates crossover signals
type Strategy struct {
	fastPeriod      int
	slowPeriod      int
	stoplossPercent decimal.Decimal
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.fastPeriod = 10
	s.slowPeriod = 50
	s.stoplossPercent = decimal.Zero
}

// SetCustomSettings applies fast-period, slow-period and stoploss-percent
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	var err error
	for k, v := range customSettings {
		switch k {
		case fastPeriodKey:
			s.fastPeriod, err = base.IntAtLeast(k, v, 1)
		case slowPeriodKey:
			s.slowPeriod, err = base.IntAtLeast(k, v, 1)
		case stoplossPercentKey:
			s.stoplossPercent, err = base.Percent(k, v)
		default:
			err = fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
		if err != nil {
			return err
		}
	}
	if s.fastPeriod >= s.slowPeriod {
		return fmt.Errorf("%w %s %d must be below %s %d", base.ErrInvalidCustomSettings, fastPeriodKey, s.fastPeriod, slowPeriodKey, s.slowPeriod)
	}
	return nil
}

// Compute returns a Buy on the bar where fast crosses above slow and a Sell
// where it crosses below. Bars before the slow average exists are Hold.
func (s *Strategy) Compute(candles []data.Candle) ([]data.Bar, error) {
	if s.fastPeriod <= 0 || s.fastPeriod >= s.slowPeriod {
		return nil, fmt.Errorf("%w fast %d slow %d", base.ErrInvalidCustomSettings, s.fastPeriod, s.slowPeriod)
	}
	if len(candles) <= s.slowPeriod {
		return nil, fmt.Errorf("%w %d candles, %s %d needs at least %d", base.ErrNotEnoughData, len(candles), slowPeriodKey, s.slowPeriod, s.slowPeriod+1)
	}
	bars := data.ToBars(candles)
	closes := base.ClosePrices(candles)
	fast := indicators.SMA(closes, s.fastPeriod)
	slow := indicators.SMA(closes, s.slowPeriod)

	for i := s.slowPeriod; i < len(bars); i++ {
		wasAbove := fast[i-1] > slow[i-1]
		isAbove := fast[i] > slow[i]
		switch {
		case isAbove && !wasAbove:
			bars[i].Signal = data.Buy
			bars[i].StoplossPrice = base.Stoploss(bars[i].Close, s.stoplossPercent)
		case !isAbove && wasAbove:
			bars[i].Signal = data.Sell
		}
	}
	return bars, nil
}
