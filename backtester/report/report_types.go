package report

import (
	"errors"
	"time"

	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/shopspring/decimal"
)

// maxChartLimit caps candles drawn per chart, larger series are still
// reported but flagged
const maxChartLimit = 1100

var (
	errNoResult     = errors.New("no result to report")
	errNoOutputDir  = errors.New("output directory not set")
	errNoReportName = errors.New("report name not set")
)

// Data holds everything needed to render one run's report
type Data struct {
	Nickname  string
	Pair      string
	Strategy  string
	Generated time.Time
	Settings  engine.Settings
	Result    *engine.Result
	Bars      []data.Bar

	Candles       []DetailedCandle
	IsOverLimit   bool
	CapitalChart  *Chart
	PnLChart      *Chart
	ReportText    string
	OutputPath    string
	TemplateTitle string
}

// DetailedCandle contains extra details to enable rich reporting results
type DetailedCandle struct {
	UnixMilli    int64
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	VolumeColour string
	MadeTrade    bool
	Direction    string
	Price        decimal.Decimal
	Colour       string
	Position     string
	Shape        string
	Text         string
}

// Chart holds chart lines for one chart
type Chart struct {
	AxisType string
	Data     []ChartLine
}

// ChartLine holds the plots for one line
type ChartLine struct {
	Name      string
	LinePlots []LinePlot
}

// LinePlot is a single point on a line
type LinePlot struct {
	Value     float64
	UnixMilli int64
}
