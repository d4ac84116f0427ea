// Package fee charges a flat percentage fee on trade notionals
package fee

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultRate is the fee rate applied when none is configured, 0.26%
var DefaultRate = decimal.RequireFromString("0.0026")

// ErrInvalidRate is returned when a rate falls outside [0,1)
var ErrInvalidRate = errors.New("fee rate must be within [0,1)")

// Model charges a fixed rate on every notional
type Model struct {
	rate decimal.Decimal
}

// Calculate returns notional multiplied by rate
func Calculate(notional, rate decimal.Decimal) decimal.Decimal {
	return notional.Mul(rate)
}

// ValidateRate ensures rate is within [0,1)
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w, received %s", ErrInvalidRate, rate)
	}
	return nil
}

// NewModel returns a fee model for rate
func NewModel(rate decimal.Decimal) (*Model, error) {
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	return &Model{rate: rate}, nil
}

// Fee returns the fee charged on notional
func (m *Model) Fee(notional decimal.Decimal) decimal.Decimal {
	return Calculate(notional, m.rate)
}

// Rate returns the configured rate
func (m *Model) Rate() decimal.Decimal {
	return m.rate
}
