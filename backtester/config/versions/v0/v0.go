package v0

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// Version lifts the legacy flat run arguments into the sectioned layout
type Version struct{}

type move struct {
	legacy string
	path   []string
}

// moves are applied in order so the output is stable
var moves = []move{
	{legacy: "strategy_name", path: []string{"strategy-settings", "name"}},
	{legacy: "capital", path: []string{"backtest-settings", "initial-capital"}},
	{legacy: "stake_amount", path: []string{"backtest-settings", "stake-fraction"}},
	{legacy: "trade_fee", path: []string{"backtest-settings", "fee-rate"}},
}

// raw returns the JSON encoding of a value returned by jsonparser.Get
func raw(v []byte, t jsonparser.ValueType) []byte {
	if t != jsonparser.String {
		return v
	}
	out := make([]byte, 0, len(v)+2)
	out = append(out, '"')
	out = append(out, v...)
	return append(out, '"')
}

// UpgradeConfig moves capital, stake_amount, trade_fee, strategy_name and pair
// into their sections
func (*Version) UpgradeConfig(_ context.Context, j []byte) ([]byte, error) {
	for i := range moves {
		v, t, _, err := jsonparser.Get(j, moves[i].legacy)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return j, fmt.Errorf("%s: %w", moves[i].legacy, err)
		}
		if j, err = jsonparser.Set(j, raw(v, t), moves[i].path...); err != nil {
			return j, fmt.Errorf("%s: %w", moves[i].legacy, err)
		}
		j = jsonparser.Delete(j, moves[i].legacy)
	}

	pair, err := jsonparser.GetString(j, "pair")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return j, nil
	case err != nil:
		return j, fmt.Errorf("pair: %w", err)
	}
	if j, err = jsonparser.Set(j, []byte(`[{"pair":`+strconv.Quote(pair)+`}]`), "data-settings", "pairs"); err != nil {
		return j, fmt.Errorf("pair: %w", err)
	}
	return jsonparser.Delete(j, "pair"), nil
}

// DowngradeConfig restores the flat legacy keys
func (*Version) DowngradeConfig(_ context.Context, j []byte) ([]byte, error) {
	for i := range moves {
		v, t, _, err := jsonparser.Get(j, moves[i].path...)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return j, fmt.Errorf("%s: %w", moves[i].legacy, err)
		}
		if j, err = jsonparser.Set(j, raw(v, t), moves[i].legacy); err != nil {
			return j, fmt.Errorf("%s: %w", moves[i].legacy, err)
		}
	}
	j = jsonparser.Delete(j, "backtest-settings")
	j = jsonparser.Delete(j, "strategy-settings")

	pair, err := jsonparser.GetString(j, "data-settings", "pairs", "[0]", "pair")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return j, nil
	case err != nil:
		return j, fmt.Errorf("pair: %w", err)
	}
	if j, err = jsonparser.Set(j, []byte(strconv.Quote(pair)), "pair"); err != nil {
		return j, fmt.Errorf("pair: %w", err)
	}
	return jsonparser.Delete(j, "data-settings"), nil
}
