package data

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(i int, sig Signal) Bar {
	return Bar{
		Timestamp: start.Add(time.Duration(i) * time.Hour),
		Open:      decimal.NewFromInt(100),
		High:      decimal.NewFromInt(110),
		Low:       decimal.NewFromInt(90),
		Close:     decimal.NewFromInt(105),
		Volume:    decimal.NewFromInt(1),
		Signal:    sig,
	}
}

func TestSignalFlags(t *testing.T) {
	t.Parallel()
	assert.True(t, Buy.IsBuy())
	assert.False(t, Buy.IsSell())
	assert.True(t, Ambiguous.IsBuy())
	assert.True(t, Ambiguous.IsSell())
	assert.True(t, Ambiguous.IsAmbiguous())
	assert.False(t, Sell.IsAmbiguous())
	assert.Equal(t, Ambiguous, SignalFromFlags(true, true))
	assert.Equal(t, Hold, SignalFromFlags(false, false))
	assert.Equal(t, Sell, SignalFromFlags(false, true))
}

func TestSignalValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Ambiguous.Validate())
	assert.ErrorIs(t, Signal(4).Validate(), ErrInvalidSignal)
	assert.Equal(t, "SIGNAL(4)", Signal(4).String())
}

func TestParseSignal(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Signal{
		"":         Hold,
		"0":        Hold,
		"hold":     Hold,
		"1":        Buy,
		" buy ":    Buy,
		"-1":       Sell,
		"SELL":     Sell,
		"buy|sell": Ambiguous,
	} {
		got, err := ParseSignal(in)
		require.NoErrorf(t, err, "input %q", in)
		assert.Equalf(t, want, got, "input %q", in)
	}
	_, err := ParseSignal("2")
	assert.ErrorIs(t, err, errUnrecognisedSignal)
}

func TestBarJSONSignal(t *testing.T) {
	t.Parallel()
	b := bar(0, Ambiguous)
	j, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(j), `"signal":"BUY|SELL"`)

	var out Bar
	require.NoError(t, json.Unmarshal(j, &out))
	assert.Equal(t, Ambiguous, out.Signal)
	assert.True(t, out.Close.Equal(b.Close))
}

func TestValidateBars(t *testing.T) {
	t.Parallel()
	bars := []Bar{bar(0, Buy), bar(1, Hold), bar(2, Sell)}
	require.NoError(t, ValidateBars(bars))
	require.NoError(t, ValidateBars(nil))

	dup := []Bar{bar(0, Buy), bar(0, Sell)}
	assert.ErrorIs(t, ValidateBars(dup), ErrNonMonotonicTime)

	backwards := []Bar{bar(2, Buy), bar(1, Sell)}
	assert.ErrorIs(t, ValidateBars(backwards), ErrNonMonotonicTime)

	neg := bar(0, Hold)
	neg.Volume = decimal.NewFromInt(-1)
	assert.ErrorIs(t, ValidateBars([]Bar{neg}), ErrNegativeValue)

	negSL := bar(0, Buy)
	negSL.StoplossPrice = decimal.NewFromInt(-5)
	assert.ErrorIs(t, ValidateBars([]Bar{negSL}), ErrNegativeValue)

	assert.ErrorIs(t, ValidateBars([]Bar{{}}), ErrZeroTimestamp)
	assert.ErrorIs(t, ValidateBars([]Bar{bar(0, Signal(8))}), ErrInvalidSignal)
}

func TestToCandles(t *testing.T) {
	t.Parallel()
	b := bar(0, Buy)
	b.StoplossPrice = decimal.NewFromInt(3)
	c := ToCandles([]Bar{b})
	require.Len(t, c, 1)
	assert.Equal(t, b.Timestamp, c[0].Timestamp)
	assert.True(t, b.Close.Equal(c[0].Close))
	back := ToBars(c)
	assert.Equal(t, Hold, back[0].Signal)
	assert.True(t, back[0].StoplossPrice.IsZero())
}

func TestSeriesStream(t *testing.T) {
	t.Parallel()
	src := []Bar{bar(0, Buy), bar(1, Hold), bar(2, Sell)}
	s := NewSeries(src)
	src[0].Signal = Sell
	assert.Len(t, s.List(), 3)

	b, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, Buy, b.Signal, "series must own a copy of the bars")
	assert.Len(t, s.List(), 2)

	s.Next()
	s.Next()
	assert.Empty(t, s.List())
	_, ok = s.Next()
	assert.False(t, ok)
}
