package report

import (
	"fmt"

	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/common"
	"github.com/shopspring/decimal"
)

// createCapitalChart plots free capital after every closed trade, starting
// from the initial capital at the first entry
func createCapitalChart(initial decimal.Decimal, trades []ledger.Trade) (*Chart, error) {
	if trades == nil {
		return nil, fmt.Errorf("%w missing trades", common.ErrNilPointer)
	}
	response := &Chart{AxisType: "linear"}
	if len(trades) == 0 {
		return response, nil
	}
	plots := make([]LinePlot, 0, len(trades)+1)
	plots = append(plots, LinePlot{
		Value:     initial.InexactFloat64(),
		UnixMilli: trades[0].EntryTime.UnixMilli(),
	})
	capital := initial
	for i := range trades {
		capital = capital.Sub(trades[i].StakeAmount).Add(trades[i].NetProceeds)
		plots = append(plots, LinePlot{
			Value:     capital.InexactFloat64(),
			UnixMilli: trades[i].ExitTime.UnixMilli(),
		})
	}
	response.Data = append(response.Data, ChartLine{
		Name:      "Capital",
		LinePlots: plots,
	})
	return response, nil
}

// createPNLChart plots each trade's pnl alongside the running total
func createPNLChart(trades []ledger.Trade) (*Chart, error) {
	if trades == nil {
		return nil, fmt.Errorf("%w missing trades", common.ErrNilPointer)
	}
	response := &Chart{AxisType: "linear"}
	if len(trades) == 0 {
		return response, nil
	}
	perTrade := make([]LinePlot, len(trades))
	cumulative := make([]LinePlot, len(trades))
	total := decimal.Zero
	for i := range trades {
		total = total.Add(trades[i].PnLAbsolute)
		ts := trades[i].ExitTime.UnixMilli()
		perTrade[i] = LinePlot{Value: trades[i].PnLAbsolute.InexactFloat64(), UnixMilli: ts}
		cumulative[i] = LinePlot{Value: total.InexactFloat64(), UnixMilli: ts}
	}
	response.Data = append(response.Data,
		ChartLine{Name: "Trade PnL", LinePlots: perTrade},
		ChartLine{Name: "Cumulative PnL", LinePlots: cumulative},
	)
	return response, nil
}
