package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/log"
	"github.com/shopspring/decimal"
)

var (
	errMissingColumn     = errors.New("missing required column")
	errInvalidTimestamp  = errors.New("invalid timestamp")
	errInvalidNumber     = errors.New("invalid number")
	errConflictingSignal = errors.New("signal column cannot be combined with buy/sell columns")
)

type columns struct {
	timestamp, open, high, low, close, volume int
	signal, buy, sell, stoploss               int
}

// LoadData reads a bar series from a csv file on disk
func LoadData(path string) (bars []data.Bar, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Errorln(log.BackTester, closeErr)
		}
	}()
	bars, err = Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf(log.BackTester, "loaded %d bars from %s", len(bars), path)
	return bars, nil
}

// Read parses bars from csv. The first row is a header naming the columns.
// Files with no signal columns load as Hold bars.
func Read(r io.Reader) ([]data.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, data.ErrNoData
		}
		return nil, err
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var bars []data.Bar
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		b, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, data.ErrNoData
	}
	return bars, nil
}

func parseHeader(header []string) (*columns, error) {
	c := &columns{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	for i := range header {
		switch strings.ToLower(strings.TrimSpace(header[i])) {
		case "timestamp", "time", "date":
			c.timestamp = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			c.close = i
		case "volume":
			c.volume = i
		case "signal":
			c.signal = i
		case "buy":
			c.buy = i
		case "sell":
			c.sell = i
		case "stoploss", "stoploss_price", "stoploss-price":
			c.stoploss = i
		}
	}
	var err error
	for name, idx := range map[string]int{"timestamp": c.timestamp, "close": c.close, "low": c.low} {
		if idx < 0 {
			err = common.AppendError(err, fmt.Errorf("%w %s", errMissingColumn, name))
		}
	}
	if c.signal >= 0 && (c.buy >= 0 || c.sell >= 0) {
		err = common.AppendError(err, errConflictingSignal)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func parseRow(row []string, c *columns) (data.Bar, error) {
	var b data.Bar
	var err error
	b.Timestamp, err = parseTimestamp(row[c.timestamp])
	if err != nil {
		return b, err
	}
	for _, f := range []struct {
		idx int
		dst *decimal.Decimal
	}{
		{c.open, &b.Open},
		{c.high, &b.High},
		{c.low, &b.Low},
		{c.close, &b.Close},
		{c.volume, &b.Volume},
		{c.stoploss, &b.StoplossPrice},
	} {
		if f.idx < 0 || strings.TrimSpace(row[f.idx]) == "" {
			continue
		}
		*f.dst, err = decimal.NewFromString(strings.TrimSpace(row[f.idx]))
		if err != nil {
			return b, fmt.Errorf("%w %q: %v", errInvalidNumber, row[f.idx], err)
		}
	}
	switch {
	case c.signal >= 0:
		b.Signal, err = data.ParseSignal(row[c.signal])
		if err != nil {
			return b, err
		}
	case c.buy >= 0 || c.sell >= 0:
		var buy, sell bool
		if c.buy >= 0 {
			buy = isTruthy(row[c.buy])
		}
		if c.sell >= 0 {
			sell = isTruthy(row[c.sell])
		}
		b.Signal = data.SignalFromFlags(buy, sell)
	}
	return b, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

// parseTimestamp accepts unix seconds, unix milliseconds, RFC3339 and
// the simple date time layout
func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, common.SimpleTimeFormat, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", errInvalidTimestamp, v)
}
