package stoploss

import (
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/backtester/position"
	"github.com/shopspring/decimal"
)

// Breached reports whether bar traded below the stoploss fixed at entry. A nil
// position or a zero stoploss is never breached.
func Breached(bar *data.Bar, pos *position.Position) bool {
	if bar == nil || pos == nil || !pos.StoplossPrice.IsPositive() {
		return false
	}
	return bar.Low.LessThan(pos.StoplossPrice)
}

// ExitPrice returns the price and reason a long position closes at for bar.
// A breached stoploss fills at the stoploss price, otherwise the bar closes it.
func ExitPrice(bar *data.Bar, pos *position.Position) (decimal.Decimal, ledger.ExitReason) {
	if Breached(bar, pos) {
		return pos.StoplossPrice, ledger.StoplossExit
	}
	return bar.Close, ledger.SignalExit
}
