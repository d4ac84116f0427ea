package apiserver

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/quantbench/backtester/backtester/config"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/quantbench/backtester/database"
	"golang.org/x/time/rate"
)

// Websocket event names
const (
	EventTrade  = "trade"
	EventResult = "result"
	EventError  = "error"
)

// DefaultListenAddress is used when no listen address is configured
const DefaultListenAddress = "localhost:9053"

var (
	errPersistenceDisabled  = errors.New("run persistence is disabled")
	errInvalidRunID         = errors.New("invalid run id")
	errEmptyPair            = errors.New("pair cannot be empty")
	errServerAlreadyRunning = errors.New("server already running")
	errServerNotRunning     = errors.New("server not running")
)

// Config holds the REST server settings
type Config struct {
	ListenAddress     string  `json:"listen-address"`
	RequestsPerSecond float64 `json:"requests-per-second"`
	Burst             int     `json:"burst"`
}

// Route is a sub type that holds the request routes
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// Server serves backtests over REST and websocket. A nil database disables
// persistence.
type Server struct {
	cfg      Config
	db       *database.Instance
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	router   *mux.Router

	m   sync.Mutex
	srv *http.Server
}

// BacktestRequest runs bars through the engine, generating signals first
// when a strategy is named
type BacktestRequest struct {
	Pair             string                  `json:"pair"`
	Nickname         string                  `json:"nickname,omitempty"`
	StrategySettings config.StrategySettings `json:"strategy-settings"`
	BacktestSettings config.BacktestSettings `json:"backtest-settings"`
	Bars             []data.Bar              `json:"bars"`
	Persist          bool                    `json:"persist"`
}

// BacktestResponse is the outcome of a BacktestRequest
type BacktestResponse struct {
	ID       *uuid.UUID     `json:"id,omitempty"`
	Pair     string         `json:"pair"`
	Strategy string         `json:"strategy"`
	Result   *engine.Result `json:"result"`
	Report   string         `json:"report"`
}

// StrategyDetails describes an available signal generator
type StrategyDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WebsocketEvent is every message sent on the backtest stream
type WebsocketEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
