package engine

import (
	"errors"
	"fmt"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/fee"
	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/backtester/position"
	"github.com/quantbench/backtester/backtester/statistics"
	"github.com/quantbench/backtester/backtester/stoploss"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/log"
)

// WithTradeObserver registers fn to receive every closed trade
func WithTradeObserver(fn TradeObserver) Option {
	return func(bt *BackTest) {
		bt.onTrade = fn
	}
}

// WithVerbose logs every state transition at info instead of debug
func WithVerbose(verbose bool) Option {
	return func(bt *BackTest) {
		bt.verbose = verbose
	}
}

// Validate checks every setting and reports all failures together
func (s *Settings) Validate() error {
	var err error
	if !s.InitialCapital.IsPositive() {
		err = common.AppendError(err, fmt.Errorf("%w, received %s", errInvalidInitialCapital, s.InitialCapital))
	}
	err = common.AppendError(err, position.ValidateStakeFraction(s.StakeFraction))
	err = common.AppendError(err, fee.ValidateRate(s.FeeRate))
	if s.MinimumTradableAmount.IsNegative() {
		err = common.AppendError(err, fmt.Errorf("%w, received %s", errNegativeMinimum, s.MinimumTradableAmount))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// New validates settings and returns a BackTest ready to run
func New(s *Settings, opts ...Option) (*BackTest, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: %w settings", ErrValidation, common.ErrNilPointer)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	fees, err := fee.NewModel(s.FeeRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	bt := &BackTest{
		settings: *s,
		fees:     fees,
	}
	for i := range opts {
		opts[i](bt)
	}
	return bt, nil
}

// Settings returns a copy of the run settings
func (bt *BackTest) Settings() Settings {
	return bt.settings
}

// validateBars refuses series that could fail part way through a run
func validateBars(bars []data.Bar) error {
	if err := data.ValidateBars(bars); err != nil {
		return err
	}
	for i := range bars {
		s := bars[i].Signal
		if s.IsAmbiguous() || s == data.Hold {
			continue
		}
		if !bars[i].Close.IsPositive() {
			return fmt.Errorf("bar %d: %w at %v", i, errNoPriceForSignal, bars[i].Timestamp)
		}
	}
	return nil
}

func (bt *BackTest) logTransition(format string, v ...interface{}) {
	if bt.verbose {
		log.Infof(log.BackTester, format, v...)
		return
	}
	log.Debugf(log.BackTester, format, v...)
}

// Run walks bars in order through the position state machine and returns the
// closed trades with their statistics. Malformed input is rejected before any
// state is created.
func (bt *BackTest) Run(bars []data.Bar) (*Result, error) {
	if bt == nil {
		return nil, fmt.Errorf("%w BackTest", common.ErrNilPointer)
	}
	if err := validateBars(bars); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	tracker, err := position.NewTracker(bt.fees, bt.settings.StakeFraction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	trades := ledger.New()
	state := &RunState{Capital: bt.settings.InitialCapital}

	series := data.NewSeries(bars)
	for b, ok := series.Next(); ok; b, ok = series.Next() {
		if err := bt.processBar(&b, tracker, trades, state); err != nil {
			return nil, err
		}
		state.BarsProcessed++
		if !tracker.IsOpen() && state.Capital.LessThan(bt.settings.MinimumTradableAmount) {
			state.TerminatedEarly = true
			log.Warnf(log.BackTester, "capital %s below minimum tradable amount %s at %v, stopping with %d bars unprocessed",
				state.Capital.StringFixed(2), bt.settings.MinimumTradableAmount, b.Timestamp, len(series.List()))
			break
		}
	}

	if stake, ok := tracker.Release(); ok {
		state.Capital = state.Capital.Add(stake)
		state.PositionLeftOpen = true
		bt.logTransition("position still open at end of data, returning stake %s to capital", stake.StringFixed(2))
	}

	result := &Result{
		Trades: trades.Trades(),
		State:  *state,
	}
	result.Report = statistics.Calculate(result.Trades, &statistics.Totals{
		InitialCapital:        bt.settings.InitialCapital,
		FinalCapital:          state.Capital,
		CumulativePnLAbsolute: state.CumulativePnLAbsolute,
		CumulativePnLPercent:  state.CumulativePnLPercent,
		RejectedSignals:       state.RejectedSignals,
		StoplossHits:          state.StoplossHits,
		Entries:               state.Entries,
		PositionLeftOpen:      state.PositionLeftOpen,
	})
	log.Infof(log.BackTester, "run complete: %d bars, %d trades, final capital %s",
		state.BarsProcessed, len(result.Trades), state.Capital.StringFixed(2))
	return result, nil
}

// processBar applies at most one transition: the ambiguity rule first, then a
// stoploss breach or sell exit while long, then a buy entry while flat
func (bt *BackTest) processBar(b *data.Bar, tracker *position.Tracker, trades *ledger.Ledger, state *RunState) error {
	if b.Signal.IsAmbiguous() {
		state.RejectedSignals++
		bt.logTransition("%v rejected ambiguous signal %s", b.Timestamp, b.Signal)
		return nil
	}

	if pos, open := tracker.Position(); open {
		breached := stoploss.Breached(b, &pos)
		if !breached && !b.Signal.IsSell() {
			return nil
		}
		price, reason := stoploss.ExitPrice(b, &pos)
		trade, err := tracker.Exit(b.Timestamp, price, reason)
		if err != nil {
			return err
		}
		if err = trades.Append(trade); err != nil {
			return err
		}
		if breached {
			state.StoplossHits++
		}
		state.Capital = state.Capital.Add(trade.NetProceeds)
		state.CumulativePnLAbsolute = state.CumulativePnLAbsolute.Add(trade.PnLAbsolute)
		state.CumulativePnLPercent = state.CumulativePnLPercent.Add(trade.PnLPercent)
		bt.logTransition("%v exit %s at %s, pnl %s (%s%%), capital %s",
			b.Timestamp, reason, price, trade.PnLAbsolute.StringFixed(2), trade.PnLPercent.StringFixed(2), state.Capital.StringFixed(2))
		if bt.onTrade != nil {
			bt.onTrade(trade)
		}
		return nil
	}

	if !b.Signal.IsBuy() {
		return nil
	}
	pos, err := tracker.Enter(b.Timestamp, state.Capital, b.Close, b.StoplossPrice)
	if err != nil {
		if errors.Is(err, position.ErrNothingToStake) {
			bt.logTransition("%v buy skipped: %v", b.Timestamp, err)
			return nil
		}
		return err
	}
	state.Capital = state.Capital.Sub(pos.StakeAmount)
	state.Entries++
	bt.logTransition("%v entry at %s, stake %s, coins %s, stoploss %s, capital %s",
		b.Timestamp, b.Close, pos.StakeAmount.StringFixed(2), pos.CoinAmount, pos.StoplossPrice, state.Capital.StringFixed(2))
	return nil
}
