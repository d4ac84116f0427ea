package base

import (
	"errors"
	"fmt"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/shopspring/decimal"
)

var (
	// ErrStrategyNotFound used when the strategy named in config does not exist
	ErrStrategyNotFound = errors.New("not found. Please ensure the strategy-settings field 'name' is spelled properly in your config")
	// ErrInvalidCustomSettings used when bad custom settings are found in config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
	// ErrNotEnoughData used when a series is too short to produce any signal
	ErrNotEnoughData = errors.New("not enough data for signal generation")
)

var hundred = decimal.NewFromInt(100)

// ClosePrices returns candle closes as float64 for indicator calculations
func ClosePrices(candles []data.Candle) []float64 {
	resp := make([]float64, len(candles))
	for i := range candles {
		resp[i] = candles[i].Close.InexactFloat64()
	}
	return resp
}

// Stoploss returns the price percent below price, zero percent disables it
func Stoploss(price, percent decimal.Decimal) decimal.Decimal {
	if !percent.IsPositive() {
		return decimal.Zero
	}
	return price.Mul(hundred.Sub(percent)).Div(hundred)
}

// IntAtLeast reads a whole number custom setting no lower than minimum
func IntAtLeast(key string, v any, minimum int) (int, error) {
	f, ok := v.(float64)
	if !ok || f < float64(minimum) || f != float64(int(f)) {
		return 0, fmt.Errorf("%w provided %s value could not be parsed, must be a whole number of at least %d: %v", ErrInvalidCustomSettings, key, minimum, v)
	}
	return int(f), nil
}

// Percent reads a custom setting within [0,100)
func Percent(key string, v any) (decimal.Decimal, error) {
	f, ok := v.(float64)
	if !ok || f < 0 || f >= 100 {
		return decimal.Zero, fmt.Errorf("%w provided %s value could not be parsed: %v", ErrInvalidCustomSettings, key, v)
	}
	return decimal.NewFromFloat(f), nil
}
