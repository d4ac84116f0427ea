package position

import (
	"fmt"
	"time"

	"github.com/quantbench/backtester/backtester/fee"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/common"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ValidateStakeFraction ensures f is within (0,1]
func ValidateStakeFraction(f decimal.Decimal) error {
	if !f.IsPositive() || f.GreaterThan(one) {
		return fmt.Errorf("%w, received %s", ErrInvalidStakeFraction, f)
	}
	return nil
}

// NewTracker returns a flat tracker
func NewTracker(fees *fee.Model, stakeFraction decimal.Decimal) (*Tracker, error) {
	if fees == nil {
		return nil, fmt.Errorf("%w fee model", common.ErrNilPointer)
	}
	if err := ValidateStakeFraction(stakeFraction); err != nil {
		return nil, err
	}
	return &Tracker{fees: fees, stakeFraction: stakeFraction}, nil
}

// IsOpen reports whether a position is held
func (t *Tracker) IsOpen() bool {
	return t.open != nil
}

// Position returns a copy of the open position
func (t *Tracker) Position() (Position, bool) {
	if t.open == nil {
		return Position{}, false
	}
	return *t.open, true
}

// Enter opens a position staking a fraction of capital at price. The caller
// debits the returned StakeAmount from its capital.
func (t *Tracker) Enter(ts time.Time, capital, price, stoploss decimal.Decimal) (*Position, error) {
	if t.open != nil {
		return nil, fmt.Errorf("%w since %v", ErrPositionOpen, t.open.EntryTime)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w, received %s", ErrInvalidPrice, price)
	}
	notional := capital.Mul(t.stakeFraction)
	entryFee := t.fees.Fee(notional)
	stake := notional.Sub(entryFee)
	if !stake.IsPositive() {
		return nil, fmt.Errorf("%w from capital %s", ErrNothingToStake, capital)
	}
	t.open = &Position{
		EntryTime:     ts,
		EntryPrice:    price,
		EntryFee:      entryFee,
		StakeAmount:   stake,
		CoinAmount:    stake.Div(price),
		StoplossPrice: stoploss,
	}
	p := *t.open
	return &p, nil
}

// Exit closes the open position at price and returns the realised trade.
// The caller credits the trade NetProceeds to its capital.
func (t *Tracker) Exit(ts time.Time, price decimal.Decimal, reason ledger.ExitReason) (ledger.Trade, error) {
	if t.open == nil {
		return ledger.Trade{}, ErrNoPosition
	}
	if !price.IsPositive() {
		return ledger.Trade{}, fmt.Errorf("%w, received %s", ErrInvalidPrice, price)
	}
	p := t.open
	gross := p.CoinAmount.Mul(price)
	exitFee := t.fees.Fee(gross)
	net := gross.Sub(exitFee)
	trade := ledger.Trade{
		EntryTime:   p.EntryTime,
		ExitTime:    ts,
		ExitReason:  reason,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   price,
		CoinAmount:  p.CoinAmount,
		StakeAmount: p.StakeAmount,
		EntryFee:    p.EntryFee,
		ExitFee:     exitFee,
		NetProceeds: net,
		PnLAbsolute: net.Sub(p.StakeAmount),
		PnLPercent:  net.Div(p.StakeAmount).Sub(one).Mul(hundred),
	}
	t.open = nil
	return trade, nil
}

// Release drops the open position without trading and returns its stake
func (t *Tracker) Release() (decimal.Decimal, bool) {
	if t.open == nil {
		return decimal.Zero, false
	}
	stake := t.open.StakeAmount
	t.open = nil
	return stake, true
}
