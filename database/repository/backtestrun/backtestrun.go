package backtestrun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
	"github.com/quantbench/backtester/database/repository"
	"github.com/quantbench/backtester/log"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

const runColumns = `id, pair, strategy, nickname, initial_capital, stake_fraction, fee_rate,
	minimum_tradable_amount, final_capital, total_trades, wins, losses, rejected_signals,
	stoploss_hits, report, created_at`

// FromResult builds a storable run from an engine result
func FromResult(pair, strategy, nickname string, s *engine.Settings, res *engine.Result) (*Run, error) {
	if s == nil || res == nil || res.Report == nil {
		return nil, fmt.Errorf("%w settings or result", common.ErrNilPointer)
	}
	return &Run{
		Pair:                  pair,
		Strategy:              strategy,
		Nickname:              null.NewString(nickname, nickname != ""),
		InitialCapital:        s.InitialCapital,
		StakeFraction:         s.StakeFraction,
		FeeRate:               s.FeeRate,
		MinimumTradableAmount: s.MinimumTradableAmount,
		FinalCapital:          res.State.Capital,
		TotalTrades:           res.Report.TotalTrades,
		Wins:                  res.Report.Wins,
		Losses:                res.Report.Losses,
		RejectedSignals:       res.State.RejectedSignals,
		StoplossHits:          res.State.StoplossHits,
		Report:                res.Report.String(),
		Trades:                res.Trades,
	}, nil
}

// Insert stores the run and its trades in a single transaction, assigning an
// ID and creation time when unset
func Insert(ctx context.Context, db *database.Instance, r *Run) (err error) {
	if r == nil {
		return errNilRun
	}
	if r.Pair == "" || r.Strategy == "" {
		return errMissingRun
	}
	conn, err := db.GetSQL()
	if err != nil {
		return err
	}
	if r.ID.IsNil() {
		if r.ID, err = uuid.NewV4(); err != nil {
			return err
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	dialect := db.Dialect()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginTx %w", err)
	}
	defer func() {
		if err != nil {
			if errRB := tx.Rollback(); errRB != nil {
				log.Errorf(log.DatabaseMgr, "Insert tx.Rollback %v", errRB)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, repository.Rebind(dialect,
		`INSERT INTO backtest_run (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID.String(),
		r.Pair,
		r.Strategy,
		r.Nickname,
		r.InitialCapital.String(),
		r.StakeFraction.String(),
		r.FeeRate.String(),
		r.MinimumTradableAmount.String(),
		r.FinalCapital.String(),
		r.TotalTrades,
		r.Wins,
		r.Losses,
		r.RejectedSignals,
		r.StoplossHits,
		r.Report,
		r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert run %v: %w", r.ID, err)
	}

	tradeQuery := repository.Rebind(dialect, `INSERT INTO backtest_trade (id, backtest_run_id, sequence, entry_time,
		exit_time, exit_reason, entry_price, exit_price, coin_amount, stake_amount, entry_fee, exit_fee,
		net_proceeds, pnl_absolute, pnl_percent) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i := range r.Trades {
		var id uuid.UUID
		if id, err = uuid.NewV4(); err != nil {
			return err
		}
		t := &r.Trades[i]
		_, err = tx.ExecContext(ctx, tradeQuery,
			id.String(),
			r.ID.String(),
			i,
			t.EntryTime.UnixNano(),
			t.ExitTime.UnixNano(),
			t.ExitReason.String(),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.CoinAmount.String(),
			t.StakeAmount.String(),
			t.EntryFee.String(),
			t.ExitFee.String(),
			t.NetProceeds.String(),
			t.PnLAbsolute.String(),
			t.PnLPercent.String(),
		)
		if err != nil {
			return fmt.Errorf("insert trade %d of run %v: %w", i, r.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	log.Debugf(log.DatabaseMgr, "stored run %v with %d trades", r.ID, len(r.Trades))
	return nil
}

// GetByID returns a run with its trades in ledger order
func GetByID(ctx context.Context, db *database.Instance, id uuid.UUID) (*Run, error) {
	conn, err := db.GetSQL()
	if err != nil {
		return nil, err
	}
	dialect := db.Dialect()
	row := conn.QueryRowContext(ctx, repository.Rebind(dialect,
		`SELECT `+runColumns+` FROM backtest_run WHERE id = ?`), id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%v %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, repository.Rebind(dialect,
		`SELECT entry_time, exit_time, exit_reason, entry_price, exit_price, coin_amount, stake_amount,
		entry_fee, exit_fee, net_proceeds, pnl_absolute, pnl_percent
		FROM backtest_trade WHERE backtest_run_id = ? ORDER BY sequence`), id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t ledger.Trade
		if t, err = scanTrade(rows); err != nil {
			return nil, err
		}
		r.Trades = append(r.Trades, t)
	}
	return r, rows.Err()
}

// List returns up to limit runs without trades, newest first. A limit below
// one returns every run.
func List(ctx context.Context, db *database.Instance, limit int) ([]Run, error) {
	conn, err := db.GetSQL()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + runColumns + ` FROM backtest_run ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := conn.QueryContext(ctx, repository.Rebind(db.Dialect(), query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r         Run
		id        string
		vals      [5]string
		createdAt int64
	)
	err := s.Scan(&id, &r.Pair, &r.Strategy, &r.Nickname, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4],
		&r.TotalTrades, &r.Wins, &r.Losses, &r.RejectedSignals, &r.StoplossHits, &r.Report, &createdAt)
	if err != nil {
		return nil, err
	}
	if r.ID, err = uuid.FromString(id); err != nil {
		return nil, err
	}
	dst := []*decimal.Decimal{&r.InitialCapital, &r.StakeFraction, &r.FeeRate, &r.MinimumTradableAmount, &r.FinalCapital}
	if err = parseDecimals(vals[:], dst); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

func parseDecimals(vals []string, dst []*decimal.Decimal) error {
	for i := range dst {
		d, err := decimal.NewFromString(vals[i])
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrGettingField, err)
		}
		*dst[i] = d
	}
	return nil
}

func scanTrade(s scanner) (ledger.Trade, error) {
	var (
		t                   ledger.Trade
		entryTime, exitTime int64
		reason              string
		vals                [9]string
	)
	err := s.Scan(&entryTime, &exitTime, &reason, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6], &vals[7], &vals[8])
	if err != nil {
		return t, err
	}
	if err = t.ExitReason.UnmarshalText([]byte(reason)); err != nil {
		return t, err
	}
	dst := []*decimal.Decimal{&t.EntryPrice, &t.ExitPrice, &t.CoinAmount, &t.StakeAmount, &t.EntryFee, &t.ExitFee, &t.NetProceeds, &t.PnLAbsolute, &t.PnLPercent}
	if err = parseDecimals(vals[:], dst); err != nil {
		return t, err
	}
	t.EntryTime = time.Unix(0, entryTime).UTC()
	t.ExitTime = time.Unix(0, exitTime).UTC()
	return t, nil
}
