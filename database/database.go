package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quantbench/backtester/log"
)

// SetConfig safely sets the database instance's config with some basic
// locks and checks
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return errNilInstance
	}
	if cfg == nil {
		return errNilConfig
	}
	i.m.Lock()
	i.config = cfg
	i.m.Unlock()
	return nil
}

// SetSQLiteConnection safely sets the database instance's connection to use
// SQLite
func (i *Instance) SetSQLiteConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(1)
	return nil
}

// SetPostgresConnection safely sets the database instance's connection to
// use Postgres
func (i *Instance) SetPostgresConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	if err := con.Ping(); err != nil {
		return err
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(2)
	i.SQL.SetMaxIdleConns(1)
	i.SQL.SetConnMaxLifetime(time.Hour)
	return nil
}

// SetConnected safely sets the database instance's connected status
func (i *Instance) SetConnected(v bool) {
	i.m.Lock()
	i.connected = v
	i.m.Unlock()
}

// CloseConnection safely disconnects the database instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.connected = false
	if i.SQL == nil {
		return nil
	}
	return i.SQL.Close()
}

// IsConnected safely checks the SQL connection status
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// GetConfig safely returns a copy of the config
func (i *Instance) GetConfig() *Config {
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return nil
	}
	cpy := *i.config
	return &cpy
}

// Ping pings the database
func (i *Instance) Ping() error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.Ping()
}

// GetSQL returns the connection when connected
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if !i.connected {
		return nil, ErrDatabaseNotConnected
	}
	if i.SQL == nil {
		return nil, errNilSQL
	}
	return i.SQL, nil
}

// Dialect returns the normalised driver name of the configured database
func (i *Instance) Dialect() string {
	if i == nil {
		return DBInvalidDriver
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return DBInvalidDriver
	}
	switch strings.ToLower(i.config.Driver) {
	case DBSQLite, DBSQLite3:
		return DBSQLite3
	case DBPostgreSQL, "postgresql":
		return DBPostgreSQL
	default:
		return DBInvalidDriver
	}
}

// CreateSchema creates any missing tables for the configured dialect
func (i *Instance) CreateSchema(ctx context.Context) error {
	dialect := i.Dialect()
	stmts, ok := schema[dialect]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, dialect)
	}
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	for x := range stmts {
		if _, err = db.ExecContext(ctx, stmts[x]); err != nil {
			return fmt.Errorf("creating %s schema: %w", dialect, err)
		}
	}
	log.Debugf(log.DatabaseMgr, "%s schema ready", dialect)
	return nil
}
