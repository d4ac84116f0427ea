package statistics

import (
	"fmt"
	"strings"

	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/log"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculate derives the report from closed trades and run totals
func Calculate(trades []ledger.Trade, totals *Totals) *Report {
	r := &Report{
		TotalTrades:           int64(len(trades)),
		InitialCapital:        totals.InitialCapital,
		FinalCapital:          totals.FinalCapital,
		CumulativePnLAbsolute: totals.CumulativePnLAbsolute,
		CumulativePnLPercent:  totals.CumulativePnLPercent,
		RejectedSignals:       totals.RejectedSignals,
		StoplossHits:          totals.StoplossHits,
		Entries:               totals.Entries,
		PositionLeftOpen:      totals.PositionLeftOpen,
	}
	for i := range trades {
		t := trades[i]
		r.TotalFees = r.TotalFees.Add(t.EntryFee).Add(t.ExitFee)
		if t.IsWin() {
			r.Wins++
			r.TotalGained = r.TotalGained.Add(t.PnLAbsolute)
			if r.BestTrade == nil || t.PnLAbsolute.GreaterThan(r.BestTrade.PnLAbsolute) {
				r.BestTrade = &t
			}
			continue
		}
		r.TotalLost = r.TotalLost.Add(t.PnLAbsolute)
		// a breakeven trade is a loss but never the worst performer
		if t.PnLAbsolute.IsNegative() && (r.WorstTrade == nil || t.PnLAbsolute.LessThan(r.WorstTrade.PnLAbsolute)) {
			r.WorstTrade = &t
		}
	}
	r.Losses = r.TotalTrades - r.Wins
	if r.TotalTrades > 0 {
		r.WinRatio = decimal.NewFromInt(r.Wins).Div(decimal.NewFromInt(r.TotalTrades)).Mul(hundred)
	}
	r.TotalProfitAbsolute = r.FinalCapital.Sub(r.InitialCapital)
	if !r.InitialCapital.IsZero() {
		r.TotalProfitPercent = r.FinalCapital.Div(r.InitialCapital).Sub(decimal.NewFromInt(1)).Mul(hundred)
	}
	return r
}

func performer(t *ledger.Trade) string {
	if t == nil {
		return "$0.00 - None"
	}
	return fmt.Sprintf("$%s - %s", t.PnLAbsolute.StringFixed(2), t.ExitTime.Format(common.SimpleTimeFormat))
}

// String renders the fixed text report
func (r *Report) String() string {
	if r.TotalTrades == 0 {
		return NoTradesMade
	}
	return strings.Join(r.lines(), "\n")
}

func (r *Report) lines() []string {
	return []string{
		fmt.Sprintf("Wins/Loss/Total: %d/%d/%d", r.Wins, r.Losses, r.TotalTrades),
		fmt.Sprintf("W/L Ratio: %s%%", r.WinRatio.StringFixed(2)),
		fmt.Sprintf("Total Gained: $%s", r.TotalGained.StringFixed(2)),
		fmt.Sprintf("Total Lost: $%s", r.TotalLost.StringFixed(2)),
		"Best Performer: " + performer(r.BestTrade),
		"Worst Performer: " + performer(r.WorstTrade),
		fmt.Sprintf("Total Balance: $%s", r.FinalCapital.StringFixed(2)),
		fmt.Sprintf("Total Profit Absolute: $%s", r.TotalProfitAbsolute.StringFixed(2)),
		fmt.Sprintf("Total Profit Percent: %s%%", r.TotalProfitPercent.StringFixed(2)),
		fmt.Sprintf("Cumulative Profit: $%s", r.CumulativePnLAbsolute.StringFixed(2)),
		fmt.Sprintf("Cumulative Profit %%: %s%%", r.CumulativePnLPercent.StringFixed(2)),
		fmt.Sprintf("Rejected Signals: %d", r.RejectedSignals),
		fmt.Sprintf("Stoploss Hit: %d", r.StoplossHits),
	}
}

// PrintResults writes the report to the backtester logger line by line
func (r *Report) PrintResults() {
	if r.TotalTrades == 0 {
		log.Info(log.BackTester, NoTradesMade)
		return
	}
	log.Info(log.BackTester, "------------------Results------------------")
	for _, l := range r.lines() {
		log.Info(log.BackTester, l)
	}
	log.Debugf(log.BackTester, "Total Fees: $%s Entries: %d Position Left Open: %v",
		r.TotalFees.StringFixed(2), r.Entries, r.PositionLeftOpen)
}
