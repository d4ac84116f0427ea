package rsi

import (
	"testing"
	"time"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := new(Strategy)
	s.SetDefaults()
	assert.Equal(t, 14, s.rsiPeriod)
	assert.Equal(t, "30", s.rsiLow.String())
	assert.Equal(t, "70", s.rsiHigh.String())

	err := s.SetCustomSettings(map[string]any{rsiLowKey: float64(20), rsiHighKey: float64(80), rsiPeriodKey: float64(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, s.rsiPeriod)

	err = s.SetCustomSettings(map[string]any{rsiLowKey: float64(90)})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)

	err = s.SetCustomSettings(map[string]any{rsiPeriodKey: float64(1)})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings, "rsi needs at least two periods")

	err = s.SetCustomSettings(map[string]any{"lol": true})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)

	err = s.SetCustomSettings(map[string]any{rsiPeriodKey: float64(-1)})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)
}

// zigzag alternates up and down moves from start
func zigzag(start int64, n int, up, down int64) []int64 {
	resp := make([]int64, n)
	v := start
	for i := range resp {
		if i%2 == 0 {
			v += up
		} else {
			v -= down
		}
		resp[i] = v
	}
	return resp
}

func TestCompute(t *testing.T) {
	t.Parallel()
	s := new(Strategy)
	s.SetDefaults()
	s.stoplossPercent = decimal.NewFromInt(5)

	closes := zigzag(1000, 40, 1, 3)
	closes = append(closes, zigzag(closes[len(closes)-1], 80, 3, 1)...)
	candles := make([]data.Candle, len(closes))
	for i := range closes {
		c := decimal.NewFromInt(closes[i])
		candles[i] = data.Candle{Timestamp: time.Unix(int64(i+1)*3600, 0), Open: c, High: c, Low: c, Close: c}
	}
	bars, err := s.Compute(candles)
	require.NoError(t, err)
	require.Len(t, bars, len(candles))

	for i := 0; i < s.rsiPeriod; i++ {
		assert.Equal(t, data.Hold, bars[i].Signal, "warm-up bar %d", i)
	}
	for i := 30; i < 40; i++ {
		assert.Equal(t, data.Buy, bars[i].Signal, "falling bar %d", i)
		assert.True(t, bars[i].StoplossPrice.LessThan(bars[i].Close))
	}
	for i := len(bars) - 10; i < len(bars); i++ {
		assert.Equal(t, data.Sell, bars[i].Signal, "rising bar %d", i)
		assert.True(t, bars[i].StoplossPrice.IsZero())
	}
}

func TestComputeShortSeries(t *testing.T) {
	t.Parallel()
	s := new(Strategy)
	s.SetDefaults()
	candles := make([]data.Candle, s.rsiPeriod)
	for i := range candles {
		candles[i] = data.Candle{Timestamp: time.Unix(int64(i+1), 0), Close: decimal.NewFromInt(int64(i + 1))}
	}
	_, err := s.Compute(candles)
	assert.ErrorIs(t, err, base.ErrNotEnoughData)

	s.rsiPeriod = 1
	_, err = s.Compute(candles)
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)
}
