package data

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// String implements fmt.Stringer
func (s Signal) String() string {
	switch s {
	case Hold:
		return "HOLD"
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Ambiguous:
		return "BUY|SELL"
	}
	return fmt.Sprintf("SIGNAL(%d)", uint8(s))
}

// IsBuy reports whether the buy flag is set
func (s Signal) IsBuy() bool { return s&Buy != 0 }

// IsSell reports whether the sell flag is set
func (s Signal) IsSell() bool { return s&Sell != 0 }

// IsAmbiguous reports whether both buy and sell flags are set
func (s Signal) IsAmbiguous() bool { return s&Ambiguous == Ambiguous }

// Validate ensures no bits outside buy and sell are set
func (s Signal) Validate() error {
	if s&^Ambiguous != 0 {
		return fmt.Errorf("%w %d", ErrInvalidSignal, uint8(s))
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (s Signal) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Signal) UnmarshalText(text []byte) error {
	sig, err := ParseSignal(string(text))
	if err != nil {
		return err
	}
	*s = sig
	return nil
}

// ParseSignal converts the textual and signed numeric encodings of a signal
// into a Signal
func ParseSignal(v string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "0", "HOLD", "NONE":
		return Hold, nil
	case "1", "+1", "BUY", "LONG":
		return Buy, nil
	case "-1", "SELL", "SHORT", "EXIT":
		return Sell, nil
	case "BUY|SELL", "SELL|BUY", "BOTH":
		return Ambiguous, nil
	}
	return Hold, fmt.Errorf("%w %q", errUnrecognisedSignal, v)
}

// SignalFromFlags combines separate buy and sell flags into one Signal
func SignalFromFlags(buy, sell bool) Signal {
	var s Signal
	if buy {
		s |= Buy
	}
	if sell {
		s |= Sell
	}
	return s
}

// Validate checks a bar for negative prices, a zero timestamp or an unknown signal
func (b *Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	fields := []struct {
		name string
		v    decimal.Decimal
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"volume", b.Volume},
		{"stoploss", b.StoplossPrice},
	}
	for i := range fields {
		if fields[i].v.IsNegative() {
			return fmt.Errorf("%w %s %s at %v", ErrNegativeValue, fields[i].name, fields[i].v, b.Timestamp)
		}
	}
	return b.Signal.Validate()
}

// ValidateBars checks every bar and that timestamps are strictly increasing
func ValidateBars(bars []Bar) error {
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
		if i > 0 && !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bar %d: %w %v then %v", i, ErrNonMonotonicTime, bars[i-1].Timestamp, bars[i].Timestamp)
		}
	}
	return nil
}

// ToBars converts candles into Hold bars
func ToBars(candles []Candle) []Bar {
	bars := make([]Bar, len(candles))
	for i := range candles {
		bars[i] = Bar{
			Timestamp: candles[i].Timestamp,
			Open:      candles[i].Open,
			High:      candles[i].High,
			Low:       candles[i].Low,
			Close:     candles[i].Close,
			Volume:    candles[i].Volume,
		}
	}
	return bars
}

// ToCandles strips signals and stoplosses from bars
func ToCandles(bars []Bar) []Candle {
	candles := make([]Candle, len(bars))
	for i := range bars {
		candles[i] = bars[i].Candle()
	}
	return candles
}

// Candle returns the price fields of the bar
func (b *Bar) Candle() Candle {
	return Candle{
		Timestamp: b.Timestamp,
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
	}
}

// NewSeries returns a streamable series over a copy of bars
func NewSeries(bars []Bar) *Series {
	s := &Series{bars: make([]Bar, len(bars))}
	copy(s.bars, bars)
	return s
}

// Next returns the next bar and moves the offset forward
func (s *Series) Next() (Bar, bool) {
	if s.offset >= len(s.bars) {
		return Bar{}, false
	}
	b := s.bars[s.offset]
	s.offset++
	return b, true
}

// List returns the bars not yet streamed
func (s *Series) List() []Bar {
	return s.bars[s.offset:]
}
