package statistics

import (
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/shopspring/decimal"
)

// NoTradesMade is the whole report when a run closed no trades
const NoTradesMade = "No Trades Made"

// Totals are the run level figures the ledger cannot provide
type Totals struct {
	InitialCapital        decimal.Decimal
	FinalCapital          decimal.Decimal
	CumulativePnLAbsolute decimal.Decimal
	CumulativePnLPercent  decimal.Decimal
	RejectedSignals       int64
	StoplossHits          int64
	Entries               int64
	PositionLeftOpen      bool
}

// Report holds the summary statistics of one run
type Report struct {
	Wins                  int64           `json:"wins"`
	Losses                int64           `json:"losses"`
	TotalTrades           int64           `json:"total-trades"`
	WinRatio              decimal.Decimal `json:"win-ratio"`
	TotalGained           decimal.Decimal `json:"total-gained"`
	TotalLost             decimal.Decimal `json:"total-lost"`
	BestTrade             *ledger.Trade   `json:"best-trade,omitempty"`
	WorstTrade            *ledger.Trade   `json:"worst-trade,omitempty"`
	InitialCapital        decimal.Decimal `json:"initial-capital"`
	FinalCapital          decimal.Decimal `json:"final-capital"`
	TotalProfitAbsolute   decimal.Decimal `json:"total-profit-absolute"`
	TotalProfitPercent    decimal.Decimal `json:"total-profit-percent"`
	CumulativePnLAbsolute decimal.Decimal `json:"cumulative-pnl-absolute"`
	CumulativePnLPercent  decimal.Decimal `json:"cumulative-pnl-percent"`
	RejectedSignals       int64           `json:"rejected-signals"`
	StoplossHits          int64           `json:"stoploss-hits"`

	TotalFees        decimal.Decimal `json:"total-fees"`
	Entries          int64           `json:"entries"`
	PositionLeftOpen bool            `json:"position-left-open"`
}
