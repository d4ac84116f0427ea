package postgres

import (
	"database/sql"
	"fmt"

	// import postgres driver
	_ "github.com/lib/pq"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
)

// DSN builds a lib/pq connection string from the config
func DSN(cfg *database.Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		sslMode)
}

// Connect establishes a connection pool to the database
func Connect(db *database.Instance) error {
	if db == nil {
		return fmt.Errorf("%w database instance", common.ErrNilPointer)
	}
	cfg := db.GetConfig()
	if cfg == nil || cfg.Database == "" {
		return database.ErrNoDatabaseProvided
	}
	dbConn, err := sql.Open(database.DBPostgreSQL, DSN(cfg))
	if err != nil {
		return err
	}
	if err = db.SetPostgresConnection(dbConn); err != nil {
		return err
	}
	db.SetConnected(true)
	return nil
}
