package database

import (
	"database/sql"
	"errors"
	"sync"
)

// Supported database drivers
const (
	DBSQLite        = "sqlite"
	DBSQLite3       = "sqlite3"
	DBPostgreSQL    = "postgres"
	DBInvalidDriver = "invalid driver"
)

var (
	// DB is the shared database instance used by the application
	DB = &Instance{}

	// ErrNoDatabaseProvided is returned when no database name is configured
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrDatabaseNotConnected is returned when an operation needs a live
	// connection
	ErrDatabaseNotConnected = errors.New("database is not connected")
	// ErrUnsupportedDriver is returned for drivers other than sqlite3 and
	// postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("received nil config")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Instance holds the database connection and its config
type Instance struct {
	SQL       *sql.DB
	DataPath  string
	config    *Config
	connected bool
	m         sync.RWMutex
}

// Config holds the database configuration
type Config struct {
	Enabled bool   `json:"enabled"`
	Verbose bool   `json:"verbose"`
	Driver  string `json:"driver"`
	ConnectionDetails
}

// ConnectionDetails holds the connection details for a database
type ConnectionDetails struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}
