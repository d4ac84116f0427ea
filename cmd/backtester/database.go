package main

import (
	"context"
	"fmt"

	"github.com/quantbench/backtester/database"
	"github.com/quantbench/backtester/database/drivers/postgres"
	sqlite "github.com/quantbench/backtester/database/drivers/sqlite3"
	"github.com/quantbench/backtester/log"
)

// connectDatabase connects the shared instance when enabled and creates any
// missing tables. A disabled database returns nil without error.
func connectDatabase(ctx context.Context, s *Settings) (*database.Instance, error) {
	if !s.Database.Enabled {
		return nil, nil
	}
	db := database.DB
	db.DataPath = s.DataDir
	cfg := s.Database
	if err := db.SetConfig(&cfg); err != nil {
		return nil, err
	}
	var err error
	switch db.Dialect() {
	case database.DBSQLite3:
		err = sqlite.Connect(db)
	case database.DBPostgreSQL:
		err = postgres.Connect(db)
	default:
		err = fmt.Errorf("%w: %s", database.ErrUnsupportedDriver, s.Database.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err = db.CreateSchema(ctx); err != nil {
		if errClose := db.CloseConnection(); errClose != nil {
			log.Errorf(log.DatabaseMgr, "closing database: %v", errClose)
		}
		return nil, err
	}
	log.Infof(log.DatabaseMgr, "database connected using %s", db.Dialect())
	return db, nil
}
