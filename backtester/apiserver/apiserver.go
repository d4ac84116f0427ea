package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/quantbench/backtester/backtester/config"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/backtester/strategies"
	"github.com/quantbench/backtester/backtester/strategies/base"
	"github.com/quantbench/backtester/database"
	"github.com/quantbench/backtester/database/repository/backtestrun"
	"github.com/quantbench/backtester/log"
	"golang.org/x/time/rate"
)

// New returns a server with its routes registered
func New(cfg Config, db *database.Instance) *Server {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	s := &Server{
		cfg:     cfg,
		db:      db,
		limiter: rate.NewLimiter(limit, burst),
		upgrader: websocket.Upgrader{
			WriteBufferSize: 1024,
			ReadBufferSize:  1024,
		},
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the router with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// RESTLogger logs the requests internally
func RESTLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Debugf(log.RESTSys,
			"%s\t%s\t%s\t%s",
			r.Method,
			r.RequestURI,
			name,
			time.Since(start),
		)
	})
}

// limit rejects requests beyond the configured rate
func (s *Server) limit(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New(http.StatusText(http.StatusTooManyRequests)))
			return
		}
		inner.ServeHTTP(w, r)
	})
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	routes := []Route{
		{"", http.MethodGet, "/", getIndex},
		{"Strategies", http.MethodGet, "/strategies", getStrategies},
		{"RunBacktest", http.MethodPost, "/backtest", s.postBacktest},
		{"ListBacktests", http.MethodGet, "/backtest", s.listBacktests},
		{"GetBacktest", http.MethodGet, "/backtest/{id}", s.getBacktest},
		{"StreamBacktest", http.MethodGet, "/ws/backtest", s.streamBacktest},
	}
	for i := range routes {
		var handler http.Handler = routes[i].HandlerFunc
		handler = RESTLogger(handler, routes[i].Name)
		handler = s.limit(handler)
		router.
			Methods(routes[i].Method).
			Path(routes[i].Pattern).
			Name(routes[i].Name).
			Handler(handler)
	}
	return router
}

// Start listens in the background until ctx is done or Stop is called
func (s *Server) Start(ctx context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.srv != nil {
		return errServerAlreadyRunning
	}
	s.srv = &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.srv
	log.Infof(log.RESTSys, "HTTP REST server support enabled. Listen URL: http://%s", s.cfg.ListenAddress)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(log.RESTSys, "REST server stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil && !errors.Is(err, errServerNotRunning) {
			log.Errorf(log.RESTSys, "REST server shutdown: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.m.Lock()
	srv := s.srv
	s.srv = nil
	s.m.Unlock()
	if srv == nil {
		return errServerNotRunning
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// RESTfulJSONResponse outputs a JSON response of the response interface
func RESTfulJSONResponse(w http.ResponseWriter, status int, response any) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}

// RESTfulError prints the REST method and error
func RESTfulError(method string, err error) {
	log.Errorf(log.RESTSys, "RESTful %s: server failed to send JSON response. Error %s", method, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if errJSON := RESTfulJSONResponse(w, status, errorResponse{Error: err.Error()}); errJSON != nil {
		RESTfulError(strconv.Itoa(status), errJSON)
	}
}

// statusFor maps run failures onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrValidation),
		errors.Is(err, base.ErrStrategyNotFound),
		errors.Is(err, base.ErrInvalidCustomSettings),
		errors.Is(err, errEmptyPair),
		errors.Is(err, errInvalidRunID):
		return http.StatusBadRequest
	case errors.Is(err, backtestrun.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, errPersistenceDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func getIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "<html>Backtester RESTful interface. POST /backtest to run, GET /ws/backtest to stream trades.</html>")
}

func getStrategies(w http.ResponseWriter, r *http.Request) {
	strats := strategies.GetStrategies()
	resp := make([]StrategyDetails, 0, len(strats)+1)
	resp = append(resp, StrategyDetails{Name: strategies.Precomputed, Description: "signals supplied with the bars"})
	for i := range strats {
		resp = append(resp, StrategyDetails{Name: strats[i].Name(), Description: strats[i].Description()})
	}
	if err := RESTfulJSONResponse(w, http.StatusOK, resp); err != nil {
		RESTfulError(r.Method, err)
	}
}

// runBacktest generates signals when required, runs the engine and stores
// the result when asked
func (s *Server) runBacktest(ctx context.Context, req *BacktestRequest, onTrade engine.TradeObserver) (*BacktestResponse, error) {
	if req.Pair == "" {
		return nil, errEmptyPair
	}
	if req.Persist && s.db == nil {
		return nil, errPersistenceDisabled
	}
	cfg := &config.Config{
		StrategySettings: req.StrategySettings,
		BacktestSettings: req.BacktestSettings,
	}
	gen, err := cfg.SignalGenerator()
	if err != nil {
		return nil, err
	}
	bars := req.Bars
	if gen != nil {
		if bars, err = gen.Compute(data.ToCandles(bars)); err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrValidation, err)
		}
	}
	var opts []engine.Option
	if onTrade != nil {
		opts = append(opts, engine.WithTradeObserver(onTrade))
	}
	settings := cfg.EngineSettings()
	bt, err := engine.New(settings, opts...)
	if err != nil {
		return nil, err
	}
	res, err := bt.Run(bars)
	if err != nil {
		return nil, err
	}
	resp := &BacktestResponse{
		Pair:     req.Pair,
		Strategy: cfg.StrategyName(),
		Result:   res,
		Report:   res.Report.String(),
	}
	if !req.Persist {
		return resp, nil
	}
	run, err := backtestrun.FromResult(req.Pair, resp.Strategy, req.Nickname, settings, res)
	if err != nil {
		return nil, err
	}
	if err = backtestrun.Insert(ctx, s.db, run); err != nil {
		return nil, err
	}
	resp.ID = &run.ID
	return resp, nil
}

func (s *Server) postBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.runBacktest(r.Context(), &req, nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err = RESTfulJSONResponse(w, http.StatusOK, resp); err != nil {
		RESTfulError(r.Method, err)
	}
}

func (s *Server) listBacktests(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, statusFor(errPersistenceDisabled), errPersistenceDisabled)
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		if limit, err = strconv.Atoi(l); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	runs, err := backtestrun.List(r.Context(), s.db, limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if runs == nil {
		runs = []backtestrun.Run{}
	}
	if err = RESTfulJSONResponse(w, http.StatusOK, runs); err != nil {
		RESTfulError(r.Method, err)
	}
}

func (s *Server) getBacktest(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, statusFor(errPersistenceDisabled), errPersistenceDisabled)
		return
	}
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		err = fmt.Errorf("%w: %w", errInvalidRunID, err)
		writeError(w, statusFor(err), err)
		return
	}
	run, err := backtestrun.GetByID(r.Context(), s.db, id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err = RESTfulJSONResponse(w, http.StatusOK, run); err != nil {
		RESTfulError(r.Method, err)
	}
}

// streamBacktest reads one BacktestRequest then sends a trade event per
// closed trade followed by the result event
func (s *Server) streamBacktest(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf(log.RESTSys, "websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req BacktestRequest
	if err = conn.ReadJSON(&req); err != nil {
		s.sendEvent(conn, &WebsocketEvent{Event: EventError, Error: err.Error()})
		return
	}
	var writeErr error
	resp, err := s.runBacktest(r.Context(), &req, func(t ledger.Trade) {
		if writeErr != nil {
			return
		}
		writeErr = conn.WriteJSON(&WebsocketEvent{Event: EventTrade, Data: t})
	})
	switch {
	case err != nil:
		s.sendEvent(conn, &WebsocketEvent{Event: EventError, Error: err.Error()})
	case writeErr != nil:
		log.Errorf(log.RESTSys, "websocket trade stream: %v", writeErr)
	default:
		s.sendEvent(conn, &WebsocketEvent{Event: EventResult, Data: resp})
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) sendEvent(conn *websocket.Conn, evt *WebsocketEvent) {
	if err := conn.WriteJSON(evt); err != nil {
		log.Errorf(log.RESTSys, "websocket %s event: %v", evt.Event, err)
	}
}
