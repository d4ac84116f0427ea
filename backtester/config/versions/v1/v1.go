package v1

import (
	"context"
	"errors"

	"github.com/buger/jsonparser"
)

// DefaultMinimumTradableAmount is written for configs predating the setting
const DefaultMinimumTradableAmount = `"10"`

// Version introduces backtest-settings.minimum-tradable-amount
type Version struct{}

// UpgradeConfig sets the minimum tradable amount when absent
func (*Version) UpgradeConfig(_ context.Context, j []byte) ([]byte, error) {
	_, _, _, err := jsonparser.Get(j, "backtest-settings", "minimum-tradable-amount")
	switch {
	case err == nil:
		return j, nil
	case !errors.Is(err, jsonparser.KeyPathNotFoundError):
		return j, err
	}
	return jsonparser.Set(j, []byte(DefaultMinimumTradableAmount), "backtest-settings", "minimum-tradable-amount")
}

// DowngradeConfig removes the minimum tradable amount
func (*Version) DowngradeConfig(_ context.Context, j []byte) ([]byte, error) {
	return jsonparser.Delete(j, "backtest-settings", "minimum-tradable-amount"), nil
}
