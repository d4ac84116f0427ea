package v1

import (
	"context"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeConfig(t *testing.T) {
	t.Parallel()
	out, err := new(Version).UpgradeConfig(context.Background(), []byte(`{"backtest-settings":{"initial-capital":"1"}}`))
	require.NoError(t, err)
	v, err := jsonparser.GetString(out, "backtest-settings", "minimum-tradable-amount")
	require.NoError(t, err)
	assert.Equal(t, "10", v)

	out, err = new(Version).UpgradeConfig(context.Background(), []byte(`{"backtest-settings":{"minimum-tradable-amount":"0"}}`))
	require.NoError(t, err)
	v, err = jsonparser.GetString(out, "backtest-settings", "minimum-tradable-amount")
	require.NoError(t, err)
	assert.Equal(t, "0", v)
}

func TestDowngradeConfig(t *testing.T) {
	t.Parallel()
	out, err := new(Version).DowngradeConfig(context.Background(), []byte(`{"backtest-settings":{"initial-capital":"1","minimum-tradable-amount":"10"}}`))
	require.NoError(t, err)
	_, _, _, err = jsonparser.Get(out, "backtest-settings", "minimum-tradable-amount")
	assert.ErrorIs(t, err, jsonparser.KeyPathNotFoundError)
	v, err := jsonparser.GetString(out, "backtest-settings", "initial-capital")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}
