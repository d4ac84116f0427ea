package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantbench/backtester/backtester/ledger"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/log"
)

//go:embed tpl.gohtml
var tplFile string

var tmpl = template.Must(template.New("report").Parse(tplFile))

// GenerateReport renders the run into an HTML file inside dir and returns
// its path
func (d *Data) GenerateReport(dir string) (string, error) {
	if d == nil || d.Result == nil || d.Result.Report == nil {
		return "", errNoResult
	}
	if dir == "" {
		return "", errNoOutputDir
	}
	if d.Pair == "" || d.Strategy == "" {
		return "", errNoReportName
	}
	if d.Generated.IsZero() {
		d.Generated = time.Now()
	}
	d.enhanceCandles()
	trades := d.Result.Trades
	if trades == nil {
		trades = []ledger.Trade{}
	}
	var err error
	if d.CapitalChart, err = createCapitalChart(d.Settings.InitialCapital, trades); err != nil {
		return "", err
	}
	if d.PnLChart, err = createPNLChart(trades); err != nil {
		return "", err
	}
	d.ReportText = d.Result.Report.String()
	d.TemplateTitle = d.Strategy + " " + d.Pair
	if d.Nickname != "" {
		d.TemplateTitle = d.Nickname + " " + d.TemplateTitle
	}

	if err = common.CreateDir(dir); err != nil {
		return "", err
	}
	d.OutputPath = filepath.Join(dir, fileName(d))
	f, err := os.Create(d.OutputPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Errorf(log.BackTester, "closing report %s: %v", d.OutputPath, errClose)
		}
	}()
	if err = tmpl.Execute(f, d); err != nil {
		return "", err
	}
	log.Infof(log.BackTester, "report written to %s", d.OutputPath)
	return d.OutputPath, nil
}

func fileName(d *Data) string {
	name := d.Strategy + "-" + d.Pair
	if d.Nickname != "" {
		name = d.Nickname + "-" + name
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return fmt.Sprintf("%s-%s.html", name, d.Generated.Format("2006-01-02-15-04-05"))
}

// enhanceCandles will enhance candle data with trade information allowing
// report charts to have annotations to highlight entries and exits
func (d *Data) enhanceCandles() {
	d.Candles = make([]DetailedCandle, 0, len(d.Bars))
	d.IsOverLimit = len(d.Bars) > maxChartLimit
	entries := make(map[int64]*ledger.Trade, len(d.Result.Trades))
	exits := make(map[int64]*ledger.Trade, len(d.Result.Trades))
	for i := range d.Result.Trades {
		entries[d.Result.Trades[i].EntryTime.UnixNano()] = &d.Result.Trades[i]
		exits[d.Result.Trades[i].ExitTime.UnixNano()] = &d.Result.Trades[i]
	}
	for i := range d.Bars {
		b := &d.Bars[i]
		c := DetailedCandle{
			UnixMilli:    b.Timestamp.UnixMilli(),
			Open:         b.Open.InexactFloat64(),
			High:         b.High.InexactFloat64(),
			Low:          b.Low.InexactFloat64(),
			Close:        b.Close.InexactFloat64(),
			Volume:       b.Volume.InexactFloat64(),
			VolumeColour: "rgba(47, 194, 27, 0.8)",
		}
		if i != 0 && b.Close.LessThan(d.Bars[i-1].Close) {
			c.VolumeColour = "rgba(252, 3, 3, 0.8)"
		}
		ts := b.Timestamp.UnixNano()
		if t, ok := exits[ts]; ok {
			c.MadeTrade = true
			c.Direction = "EXIT " + t.ExitReason.String()
			c.Price = t.ExitPrice
			c.Colour = "red"
			c.Position = "aboveBar"
			c.Shape = "arrowDown"
		} else if t, ok := entries[ts]; ok {
			c.MadeTrade = true
			c.Direction = "ENTRY"
			c.Price = t.EntryPrice
			c.Colour = "green"
			c.Position = "belowBar"
			c.Shape = "arrowUp"
		}
		if c.MadeTrade {
			c.Text = fmt.Sprintf("%s %s", c.Direction, c.Price)
		}
		d.Candles = append(d.Candles, c)
	}
}
