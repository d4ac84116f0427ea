package strategies

import (
	"fmt"
	"strings"

	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/quantbench/backtester/backtester/strategies/dmac"
	"github.com/quantbench/backtester/backtester/strategies/rsi"
)

// LoadStrategyByName returns a fresh generator with defaults applied
func LoadStrategyByName(name string) (SignalGenerator, error) {
	strats := GetStrategies()
	for i := range strats {
		if !strings.EqualFold(name, strats[i].Name()) {
			continue
		}
		strats[i].SetDefaults()
		return strats[i], nil
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// IsPrecomputed reports whether name selects data supplied signals
func IsPrecomputed(name string) bool {
	return name == "" || strings.EqualFold(name, Precomputed)
}

// GetStrategies returns new instances of every signal generator
func GetStrategies() []SignalGenerator {
	return []SignalGenerator{
		new(dmac.Strategy),
		new(rsi.Strategy),
	}
}
