package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExitReason describes what closed a position
type ExitReason uint8

// Exit reasons
const (
	SignalExit ExitReason = iota
	StoplossExit
)

var errTradeOutOfOrder = errors.New("trade overlaps or precedes the previous trade")

// ErrInvalidTrade is returned when a trade exits before it entered
var ErrInvalidTrade = errors.New("trade exit precedes entry")

// Trade is an immutable record of a closed position
type Trade struct {
	EntryTime   time.Time       `json:"entry-time"`
	ExitTime    time.Time       `json:"exit-time"`
	ExitReason  ExitReason      `json:"exit-reason"`
	EntryPrice  decimal.Decimal `json:"entry-price"`
	ExitPrice   decimal.Decimal `json:"exit-price"`
	CoinAmount  decimal.Decimal `json:"coin-amount"`
	StakeAmount decimal.Decimal `json:"stake-amount"`
	EntryFee    decimal.Decimal `json:"entry-fee"`
	ExitFee     decimal.Decimal `json:"exit-fee"`
	NetProceeds decimal.Decimal `json:"net-proceeds"`
	PnLAbsolute decimal.Decimal `json:"pnl-absolute"`
	PnLPercent  decimal.Decimal `json:"pnl-percent"`
}

// Ledger is an append only sequence of trades ordered by time
type Ledger struct {
	trades []Trade
}

// String implements fmt.Stringer
func (e ExitReason) String() string {
	switch e {
	case SignalExit:
		return "signal"
	case StoplossExit:
		return "stoploss"
	}
	return fmt.Sprintf("ExitReason(%d)", uint8(e))
}

// MarshalText implements encoding.TextMarshaler
func (e ExitReason) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *ExitReason) UnmarshalText(text []byte) error {
	switch string(text) {
	case "signal":
		*e = SignalExit
	case "stoploss":
		*e = StoplossExit
	default:
		return fmt.Errorf("unknown exit reason %q", text)
	}
	return nil
}

// IsWin reports whether the trade made money
func (t *Trade) IsWin() bool {
	return t.PnLAbsolute.IsPositive()
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{}
}

// Append records a closed trade. Trades must not overlap the previous one.
func (l *Ledger) Append(t Trade) error {
	if t.ExitTime.Before(t.EntryTime) {
		return fmt.Errorf("%w %v before %v", ErrInvalidTrade, t.ExitTime, t.EntryTime)
	}
	if n := len(l.trades); n > 0 && !t.EntryTime.After(l.trades[n-1].ExitTime) {
		return fmt.Errorf("%w: entry %v, previous exit %v", errTradeOutOfOrder, t.EntryTime, l.trades[n-1].ExitTime)
	}
	l.trades = append(l.trades, t)
	return nil
}

// Trades returns a copy of every recorded trade in insertion order
func (l *Ledger) Trades() []Trade {
	resp := make([]Trade, len(l.trades))
	copy(resp, l.trades)
	return resp
}

// Len returns the number of trades
func (l *Ledger) Len() int {
	return len(l.trades)
}

// Last returns the most recent trade
func (l *Ledger) Last() (Trade, bool) {
	if len(l.trades) == 0 {
		return Trade{}, false
	}
	return l.trades[len(l.trades)-1], true
}

// Each calls fn for every trade in order until fn returns false
func (l *Ledger) Each(fn func(i int, t *Trade) bool) {
	for i := range l.trades {
		t := l.trades[i]
		if !fn(i, &t) {
			return
		}
	}
}
