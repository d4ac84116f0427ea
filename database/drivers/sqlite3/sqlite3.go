package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
)

// Connect opens a connection to the sqlite database file under the
// instance's data path
func Connect(db *database.Instance) error {
	if db == nil {
		return fmt.Errorf("%w database instance", common.ErrNilPointer)
	}
	cfg := db.GetConfig()
	if cfg == nil || cfg.Database == "" {
		return database.ErrNoDatabaseProvided
	}
	location := cfg.Database
	if cfg.Database != ":memory:" && db.DataPath != "" {
		if err := common.CreateDir(db.DataPath); err != nil {
			return err
		}
		location = filepath.Join(db.DataPath, cfg.Database)
	}
	dbConn, err := sql.Open(database.DBSQLite3, location+"?_foreign_keys=on")
	if err != nil {
		return err
	}
	if err = db.SetSQLiteConnection(dbConn); err != nil {
		return err
	}
	db.SetConnected(true)
	return nil
}
