package dmac

import (
	"testing"
	"time"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candles(closes ...int64) []data.Candle {
	resp := make([]data.Candle, len(closes))
	for i := range closes {
		c := decimal.NewFromInt(closes[i])
		resp[i] = data.Candle{
			Timestamp: time.Unix(int64(i+1)*60, 0),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
		}
	}
	return resp
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := new(Strategy)
	s.SetDefaults()
	assert.Equal(t, 10, s.fastPeriod)
	assert.Equal(t, 50, s.slowPeriod)

	err := s.SetCustomSettings(map[string]any{fastPeriodKey: float64(3), slowPeriodKey: float64(7), stoplossPercentKey: float64(2)})
	require.NoError(t, err)
	assert.Equal(t, 3, s.fastPeriod)
	assert.Equal(t, 7, s.slowPeriod)
	assert.Equal(t, "2", s.stoplossPercent.String())

	err = s.SetCustomSettings(map[string]any{fastPeriodKey: float64(8)})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)

	err = s.SetCustomSettings(map[string]any{"bogus": 1})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)

	err = s.SetCustomSettings(map[string]any{fastPeriodKey: float64(0)})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)

	err = s.SetCustomSettings(map[string]any{slowPeriodKey: "7"})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)
}

func TestCompute(t *testing.T) {
	t.Parallel()
	s := &Strategy{fastPeriod: 2, slowPeriod: 4, stoplossPercent: decimal.NewFromInt(10)}
	closes := make([]int64, 0, 30)
	for i := 0; i < 10; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 100+int64(i)*10)
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 200-int64(i)*10)
	}
	bars, err := s.Compute(candles(closes...))
	require.NoError(t, err)
	require.Len(t, bars, len(closes))

	buys, sells := -1, -1
	for i := range bars {
		if i < s.slowPeriod {
			assert.Equal(t, data.Hold, bars[i].Signal, "warm-up bar %d", i)
		}
		switch bars[i].Signal {
		case data.Buy:
			require.Equal(t, -1, buys, "single buy expected")
			buys = i
			assert.Equal(t, bars[i].Close.Mul(decimal.RequireFromString("0.9")).String(), bars[i].StoplossPrice.String())
		case data.Sell:
			require.Equal(t, -1, sells, "single sell expected")
			sells = i
		}
	}
	assert.GreaterOrEqual(t, buys, 10)
	assert.Less(t, buys, 15)
	assert.GreaterOrEqual(t, sells, 20)
	assert.Less(t, sells, 25)
}

func TestComputeShortSeries(t *testing.T) {
	t.Parallel()
	s := &Strategy{fastPeriod: 2, slowPeriod: 4}
	_, err := s.Compute(candles(1, 2, 3, 4))
	assert.ErrorIs(t, err, base.ErrNotEnoughData)

	bars, err := s.Compute(candles(1, 2, 3, 4, 5))
	require.NoError(t, err)
	require.Len(t, bars, 5)

	_, err = new(Strategy).Compute(candles(1))
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)
}
