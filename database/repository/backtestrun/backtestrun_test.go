package backtestrun

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
	sqlite "github.com/quantbench/backtester/database/drivers/sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstance(t *testing.T) *database.Instance {
	t.Helper()
	db := &database.Instance{DataPath: t.TempDir()}
	require.NoError(t, db.SetConfig(&database.Config{
		Enabled:           true,
		Driver:            database.DBSQLite3,
		ConnectionDetails: database.ConnectionDetails{Database: "backtester.db"},
	}))
	require.NoError(t, sqlite.Connect(db))
	t.Cleanup(func() { assert.NoError(t, db.CloseConnection()) })
	require.NoError(t, db.CreateSchema(context.Background()))
	return db
}

func scenarioRun(t *testing.T) *Run {
	t.Helper()
	settings := &engine.Settings{
		InitialCapital:        decimal.NewFromInt(10000),
		StakeFraction:         decimal.RequireFromString("0.9"),
		FeeRate:               decimal.RequireFromString("0.0026"),
		MinimumTradableAmount: decimal.NewFromInt(10),
	}
	bt, err := engine.New(settings)
	require.NoError(t, err)
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := bt.Run([]data.Bar{
		{Timestamp: start, Open: decimal.NewFromInt(99), High: decimal.NewFromInt(101), Low: decimal.NewFromInt(98), Close: decimal.NewFromInt(100), Signal: data.Buy, StoplossPrice: decimal.NewFromInt(90)},
		{Timestamp: start.Add(time.Hour), Open: decimal.NewFromInt(99), High: decimal.NewFromInt(100), Low: decimal.NewFromInt(85), Close: decimal.NewFromInt(95)},
	})
	require.NoError(t, err)
	r, err := FromResult("btc-usd", "precomputed", "scenario", settings, res)
	require.NoError(t, err)
	return r
}

func TestFromResult(t *testing.T) {
	t.Parallel()
	_, err := FromResult("a", "b", "", nil, nil)
	assert.ErrorIs(t, err, common.ErrNilPointer)

	r := scenarioRun(t)
	assert.True(t, r.Nickname.Valid)
	assert.Equal(t, int64(1), r.TotalTrades)
	assert.Equal(t, int64(1), r.StoplossHits)
	assert.Equal(t, "9081.334756", r.FinalCapital.String())
	assert.Contains(t, r.Report, "Total Balance: $9081.33")
}

func TestInsertAndGet(t *testing.T) {
	t.Parallel()
	db := newInstance(t)
	ctx := context.Background()

	assert.ErrorIs(t, Insert(ctx, db, nil), errNilRun)
	assert.ErrorIs(t, Insert(ctx, db, &Run{}), errMissingRun)

	r := scenarioRun(t)
	require.NoError(t, Insert(ctx, db, r))
	assert.False(t, r.ID.IsNil())
	assert.False(t, r.CreatedAt.IsZero())

	got, err := GetByID(ctx, db, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "scenario", got.Nickname.String)
	assert.True(t, got.FinalCapital.Equal(r.FinalCapital))
	assert.True(t, got.CreatedAt.Equal(r.CreatedAt))
	assert.Equal(t, r.Report, got.Report)
	require.Len(t, got.Trades, 1)
	tr := got.Trades[0]
	assert.Equal(t, ledger.StoplossExit, tr.ExitReason)
	assert.True(t, tr.EntryTime.Equal(r.Trades[0].EntryTime))
	assert.Equal(t, "21.005244", tr.ExitFee.String())
	assert.Equal(t, "-918.665244", tr.PnLAbsolute.String())

	_, err = GetByID(ctx, db, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.Error(t, Insert(ctx, db, r), "duplicate primary key")
}

func TestList(t *testing.T) {
	t.Parallel()
	db := newInstance(t)
	ctx := context.Background()

	runs, err := List(ctx, db, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := scenarioRun(t)
		r.Nickname.Valid = false
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, Insert(ctx, db, r))
	}
	runs, err = List(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
	assert.True(t, runs[1].CreatedAt.After(runs[2].CreatedAt))
	assert.False(t, runs[0].Nickname.Valid)
	assert.Empty(t, runs[0].Trades)

	runs, err = List(ctx, db, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestNotConnected(t *testing.T) {
	t.Parallel()
	db := &database.Instance{}
	_, err := List(context.Background(), db, 0)
	assert.ErrorIs(t, err, database.ErrDatabaseNotConnected)
	_, err = GetByID(context.Background(), db, uuid.Nil)
	assert.ErrorIs(t, err, database.ErrDatabaseNotConnected)
	assert.ErrorIs(t, Insert(context.Background(), db, &Run{Pair: "a", Strategy: "b"}), database.ErrDatabaseNotConnected)
}
