package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/fee"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/backtester/statistics"
	"github.com/shopspring/decimal"
)

// ErrValidation wraps every failure that stops a run before it starts
var ErrValidation = errors.New("validation error")

var (
	errInvalidInitialCapital = errors.New("initial capital must be greater than zero")
	errNegativeMinimum       = errors.New("minimum tradable amount cannot be negative")
	errNoPriceForSignal      = errors.New("signal bar requires a close price above zero")
)

// DefaultMinimumTradableAmount is the capital floor below which a flat run stops
var DefaultMinimumTradableAmount = decimal.NewFromInt(10)

// Settings are the immutable parameters of a run
type Settings struct {
	InitialCapital        decimal.Decimal `json:"initial-capital"`
	StakeFraction         decimal.Decimal `json:"stake-fraction"`
	FeeRate               decimal.Decimal `json:"fee-rate"`
	MinimumTradableAmount decimal.Decimal `json:"minimum-tradable-amount"`
}

// TradeObserver is called synchronously each time a position closes
type TradeObserver func(ledger.Trade)

// Option customises a BackTest
type Option func(*BackTest)

// BackTest replays bar series through the single position state machine.
// It holds no run state so one BackTest can serve many runs.
type BackTest struct {
	settings Settings
	fees     *fee.Model
	onTrade  TradeObserver
	verbose  bool
}

// RunState is scoped to one invocation of Run
type RunState struct {
	Capital               decimal.Decimal `json:"capital"`
	RejectedSignals       int64           `json:"rejected-signals"`
	StoplossHits          int64           `json:"stoploss-hits"`
	Entries               int64           `json:"entries"`
	CumulativePnLAbsolute decimal.Decimal `json:"cumulative-pnl-absolute"`
	CumulativePnLPercent  decimal.Decimal `json:"cumulative-pnl-percent"`
	BarsProcessed         int             `json:"bars-processed"`
	TerminatedEarly       bool            `json:"terminated-early"`
	PositionLeftOpen      bool            `json:"position-left-open"`
}

// Result is everything a run produces
type Result struct {
	Trades []ledger.Trade     `json:"trades"`
	Report *statistics.Report `json:"report"`
	State  RunState           `json:"state"`
}

// RunMetaData describes a run tracked by the RunManager
type RunMetaData struct {
	ID          uuid.UUID `json:"id"`
	Pair        string    `json:"pair"`
	Strategy    string    `json:"strategy"`
	DateLoaded  time.Time `json:"date-loaded"`
	DateStarted time.Time `json:"date-started"`
	DateEnded   time.Time `json:"date-ended"`
}

// PairRun is one instrument's bar series queued against a BackTest
type PairRun struct {
	MetaData RunMetaData
	bt       *BackTest
	bars     []data.Bar
	result   *Result
	err      error
	running  bool
	hasRan   bool
}

// RunSummary is a point in time view of a PairRun
type RunSummary struct {
	MetaData RunMetaData `json:"metadata"`
	Running  bool        `json:"running"`
	HasRan   bool        `json:"has-ran"`
	Result   *Result     `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// RunManager executes independent pair runs, optionally in parallel
type RunManager struct {
	m     sync.Mutex
	limit int
	runs  []*PairRun
}
