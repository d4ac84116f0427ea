package backtestrun

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

var (
	// ErrRunNotFound returns when no run matches the requested id
	ErrRunNotFound = errors.New("backtest run not found")

	errNilRun     = errors.New("run is nil")
	errMissingRun = errors.New("pair and strategy cannot be empty")
)

// Run is a stored backtest run and, when loaded by id, its trades
type Run struct {
	ID                    uuid.UUID       `json:"id"`
	Pair                  string          `json:"pair"`
	Strategy              string          `json:"strategy"`
	Nickname              null.String     `json:"nickname"`
	InitialCapital        decimal.Decimal `json:"initial-capital"`
	StakeFraction         decimal.Decimal `json:"stake-fraction"`
	FeeRate               decimal.Decimal `json:"fee-rate"`
	MinimumTradableAmount decimal.Decimal `json:"minimum-tradable-amount"`
	FinalCapital          decimal.Decimal `json:"final-capital"`
	TotalTrades           int64           `json:"total-trades"`
	Wins                  int64           `json:"wins"`
	Losses                int64           `json:"losses"`
	RejectedSignals       int64           `json:"rejected-signals"`
	StoplossHits          int64           `json:"stoploss-hits"`
	Report                string          `json:"report"`
	CreatedAt             time.Time       `json:"created-at"`
	Trades                []ledger.Trade  `json:"trades,omitempty"`
}
