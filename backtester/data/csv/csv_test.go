package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSignalColumn(t *testing.T) {
	t.Parallel()
	in := `timestamp,open,high,low,close,volume,signal,stoploss
1609459200,100,110,95,100,12.5,1,90
1609462800,100,101,85,96,3,0,
1609466400,96,99,94,98,4,-1,
1609470000,98,99,94,98,4,buy|sell,
`
	bars, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 4)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, data.Buy, bars[0].Signal)
	assert.True(t, bars[0].StoplossPrice.Equal(decimal.NewFromInt(90)))
	assert.True(t, bars[0].Volume.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, data.Hold, bars[1].Signal)
	assert.True(t, bars[1].StoplossPrice.IsZero())
	assert.Equal(t, data.Sell, bars[2].Signal)
	assert.Equal(t, data.Ambiguous, bars[3].Signal)
	assert.NoError(t, data.ValidateBars(bars))
}

func TestReadFlagColumns(t *testing.T) {
	t.Parallel()
	in := `date,low,close,buy,sell
2021-01-01 00:00:00,1,2,true,false
2021-01-02 00:00:00,1,2,0,1
2021-01-03 00:00:00,1,2,1,1
`
	bars, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, data.Buy, bars[0].Signal)
	assert.Equal(t, data.Sell, bars[1].Signal)
	assert.Equal(t, data.Ambiguous, bars[2].Signal)
}

func TestReadCandlesOnly(t *testing.T) {
	t.Parallel()
	in := "time,open,high,low,close,volume\n1609459200000,1,2,0.5,1.5,10\n"
	bars, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, data.Hold, bars[0].Signal)
	assert.Equal(t, int64(1609459200), bars[0].Timestamp.Unix())
}

func TestReadErrors(t *testing.T) {
	t.Parallel()
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, data.ErrNoData)

	_, err = Read(strings.NewReader("timestamp,close,low\n"))
	assert.ErrorIs(t, err, data.ErrNoData)

	_, err = Read(strings.NewReader("open,high\n1,2\n"))
	assert.ErrorIs(t, err, errMissingColumn)

	_, err = Read(strings.NewReader("timestamp,low,close,signal,buy\n"))
	assert.ErrorIs(t, err, errConflictingSignal)

	_, err = Read(strings.NewReader("timestamp,low,close\nyesterday,1,1\n"))
	assert.ErrorIs(t, err, errInvalidTimestamp)

	_, err = Read(strings.NewReader("timestamp,low,close\n1609459200,1,abc\n"))
	assert.ErrorIs(t, err, errInvalidNumber)
}

func TestLoadData(t *testing.T) {
	t.Parallel()
	_, err := LoadData(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,low,close,signal\n2021-01-01T00:00:00Z,1,2,BUY\n"), 0o600))
	bars, err := LoadData(path)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, data.Buy, bars[0].Signal)
}
