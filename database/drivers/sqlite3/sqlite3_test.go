package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quantbench/backtester/common/file"
	"github.com/quantbench/backtester/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Parallel()
	db := &database.Instance{DataPath: filepath.Join(t.TempDir(), "nested")}
	require.NoError(t, db.SetConfig(&database.Config{Driver: database.DBSQLite3}))
	assert.ErrorIs(t, Connect(db), database.ErrNoDatabaseProvided)

	require.NoError(t, db.SetConfig(&database.Config{
		Driver:            database.DBSQLite3,
		ConnectionDetails: database.ConnectionDetails{Database: "test.db"},
	}))
	require.NoError(t, Connect(db))
	defer func() { assert.NoError(t, db.CloseConnection()) }()
	assert.True(t, db.IsConnected())
	require.NoError(t, db.Ping())
	require.NoError(t, db.CreateSchema(context.Background()))
	require.NoError(t, db.CreateSchema(context.Background()), "schema creation is idempotent")
	assert.True(t, file.Exists(filepath.Join(db.DataPath, "test.db")))
}
