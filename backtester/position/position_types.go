package position

import (
	"errors"
	"time"

	"github.com/quantbench/backtester/backtester/fee"
	"github.com/shopspring/decimal"
)

var (
	// ErrPositionOpen is returned when entering while already long
	ErrPositionOpen = errors.New("position already open")
	// ErrNoPosition is returned when exiting while flat
	ErrNoPosition = errors.New("no open position")
	// ErrInvalidPrice is returned for a zero or negative entry or exit price
	ErrInvalidPrice = errors.New("price must be greater than zero")
	// ErrInvalidStakeFraction is returned when the stake fraction is outside (0,1]
	ErrInvalidStakeFraction = errors.New("stake fraction must be within (0,1]")
	// ErrNothingToStake is returned when the stake after fees is not positive
	ErrNothingToStake = errors.New("nothing to stake")
)

// Position is the single open long position
type Position struct {
	EntryTime     time.Time
	EntryPrice    decimal.Decimal
	EntryFee      decimal.Decimal
	StakeAmount   decimal.Decimal
	CoinAmount    decimal.Decimal
	StoplossPrice decimal.Decimal
}

// Tracker owns the flat or long state of one run
type Tracker struct {
	fees          *fee.Model
	stakeFraction decimal.Decimal
	open          *Position
}
