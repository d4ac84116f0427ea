package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Signal is the per bar trading intent. Buy and Sell are independent flags so
// a bar carrying both can be recognised as contradictory.
type Signal uint8

// Signal values
const (
	Hold Signal = 0
	Buy  Signal = 1
	Sell Signal = 2
	// Ambiguous is a bar signalling both directions at once
	Ambiguous = Buy | Sell
)

// Validation errors shared by data loaders and the engine
var (
	ErrInvalidSignal      = errors.New("invalid signal")
	ErrNegativeValue      = errors.New("negative value")
	ErrNonMonotonicTime   = errors.New("timestamps must be strictly increasing")
	ErrZeroTimestamp      = errors.New("zero timestamp")
	ErrNoData             = errors.New("no data loaded")
	errUnrecognisedSignal = errors.New("unrecognised signal")
)

// Candle is a plain OHLCV record, the input a signal generator works from
type Candle struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// Bar is one immutable candle with its attached signal and stoploss level. A
// zero StoplossPrice means no stoploss is active.
type Bar struct {
	Timestamp     time.Time       `json:"timestamp"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Close         decimal.Decimal `json:"close"`
	Volume        decimal.Decimal `json:"volume"`
	Signal        Signal          `json:"signal"`
	StoplossPrice decimal.Decimal `json:"stoploss-price"`
}

// Series is an ordered set of bars which can be streamed one at a time
type Series struct {
	bars   []Bar
	offset int
}
