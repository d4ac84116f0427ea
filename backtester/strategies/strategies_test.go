package strategies

import (
	"testing"

	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/quantbench/backtester/backtester/strategies/dmac"
	"github.com/quantbench/backtester/backtester/strategies/rsi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStrategyByName(t *testing.T) {
	t.Parallel()
	_, err := LoadStrategyByName("moon")
	assert.ErrorIs(t, err, base.ErrStrategyNotFound)

	s, err := LoadStrategyByName("DMAC")
	require.NoError(t, err)
	assert.Equal(t, dmac.Name, s.Name())

	s, err = LoadStrategyByName(rsi.Name)
	require.NoError(t, err)
	assert.Equal(t, rsi.Name, s.Name())
	assert.NotEmpty(t, s.Description())
}

func TestGetStrategies(t *testing.T) {
	t.Parallel()
	a := GetStrategies()
	b := GetStrategies()
	require.Len(t, a, 2)
	for i := range a {
		assert.NotSame(t, a[i], b[i], "each call returns new instances")
	}
}

func TestIsPrecomputed(t *testing.T) {
	t.Parallel()
	assert.True(t, IsPrecomputed(""))
	assert.True(t, IsPrecomputed("Precomputed"))
	assert.False(t, IsPrecomputed(dmac.Name))
}
