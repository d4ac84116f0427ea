package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/quantbench/backtester/backtester/config/versions"
	"github.com/quantbench/backtester/backtester/data"
	"github.com/quantbench/backtester/backtester/data/csv"
	"github.com/quantbench/backtester/backtester/engine"
	"github.com/quantbench/backtester/backtester/fee"
	"github.com/quantbench/backtester/backtester/strategies"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/common/file"
	"github.com/quantbench/backtester/log"
)

// ReadConfigFromFile reads, upgrades to the latest version and validates a
// config
func ReadConfigFromFile(ctx context.Context, path string) (*Config, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("%w: %s", errConfigNotFound, path)
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fileData, err = versions.Manager.Deploy(ctx, fileData, versions.UseLatestVersion)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(fileData)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig unmarshalls byte data into a config struct
func LoadConfig(data []byte) (resp *Config, err error) {
	resp = &Config{BacktestSettings: DefaultBacktestSettings()}
	if err = json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w config", common.ErrNilPointer)
	}
	return resp, nil
}

// Validate checks all config settings and returns every failure
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w config", common.ErrNilPointer)
	}
	err := c.validateStrategySettings()
	err = common.AppendError(err, c.EngineSettings().Validate())
	return common.AppendError(err, c.validatePairs())
}

func (c *Config) validateStrategySettings() error {
	_, err := c.SignalGenerator()
	return err
}

func (c *Config) validatePairs() error {
	if len(c.DataSettings.Pairs) == 0 {
		return errNoPairs
	}
	var err error
	seen := make(map[string]struct{}, len(c.DataSettings.Pairs))
	for i := range c.DataSettings.Pairs {
		p := &c.DataSettings.Pairs[i]
		if p.Pair == "" {
			err = common.AppendError(err, fmt.Errorf("pair %d: %w", i, errEmptyPair))
			continue
		}
		key := strings.ToLower(p.Pair)
		if _, ok := seen[key]; ok {
			err = common.AppendError(err, fmt.Errorf("%w %s", errDuplicatePair, p.Pair))
		}
		seen[key] = struct{}{}
		if p.CSVPath == "" {
			err = common.AppendError(err, fmt.Errorf("%s: %w", p.Pair, errNoDataSource))
		}
	}
	return err
}

// DefaultBacktestSettings returns the settings used for keys a config or
// request leaves out
func DefaultBacktestSettings() BacktestSettings {
	return BacktestSettings{
		FeeRate:               fee.DefaultRate,
		MinimumTradableAmount: engine.DefaultMinimumTradableAmount,
	}
}

// UnmarshalJSON decodes over DefaultBacktestSettings so an absent fee rate
// or minimum tradable amount keeps its default
func (b *BacktestSettings) UnmarshalJSON(d []byte) error {
	type alias BacktestSettings
	a := alias(DefaultBacktestSettings())
	if err := json.Unmarshal(d, &a); err != nil {
		return err
	}
	*b = BacktestSettings(a)
	return nil
}

// EngineSettings converts backtest settings for the engine
func (c *Config) EngineSettings() *engine.Settings {
	return &engine.Settings{
		InitialCapital:        c.BacktestSettings.InitialCapital,
		StakeFraction:         c.BacktestSettings.StakeFraction,
		FeeRate:               c.BacktestSettings.FeeRate,
		MinimumTradableAmount: c.BacktestSettings.MinimumTradableAmount,
	}
}

// SignalGenerator returns the configured generator with custom settings
// applied, or nil when signals come with the data
func (c *Config) SignalGenerator() (strategies.SignalGenerator, error) {
	if strategies.IsPrecomputed(c.StrategySettings.Name) {
		if len(c.StrategySettings.CustomSettings) > 0 {
			return nil, errUnusedCustomSettings
		}
		return nil, nil
	}
	gen, err := strategies.LoadStrategyByName(c.StrategySettings.Name)
	if err != nil {
		return nil, err
	}
	if len(c.StrategySettings.CustomSettings) > 0 {
		if err = gen.SetCustomSettings(c.StrategySettings.CustomSettings); err != nil {
			return nil, err
		}
	}
	return gen, nil
}

// StrategyName returns the display name of the configured strategy
func (c *Config) StrategyName() string {
	if strategies.IsPrecomputed(c.StrategySettings.Name) {
		return strategies.Precomputed
	}
	return strings.ToLower(c.StrategySettings.Name)
}

// LoadBars reads a pair's CSV and, when a generator is configured, replaces
// any stored signals with generated ones
func (c *Config) LoadBars(p *PairSettings) ([]data.Bar, error) {
	if p == nil {
		return nil, fmt.Errorf("%w pair settings", common.ErrNilPointer)
	}
	bars, err := csv.LoadData(p.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Pair, err)
	}
	gen, err := c.SignalGenerator()
	if err != nil || gen == nil {
		return bars, err
	}
	bars, err = gen.Compute(data.ToCandles(bars))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", p.Pair, gen.Name(), err)
	}
	return bars, nil
}

// SaveConfig writes the config as indented JSON at the latest version
func (c *Config) SaveConfig(path string) error {
	latest, err := versions.Manager.Latest()
	if err != nil {
		return err
	}
	c.Version = latest
	payload, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return err
	}
	return file.Write(path, payload)
}

// PrintSetting prints relevant settings to the console for easy reading
func (c *Config) PrintSetting() {
	log.Info(log.BackTester, "-------------------------------------------------------------")
	log.Info(log.BackTester, "------------------Backtester Settings------------------------")
	log.Info(log.BackTester, "-------------------------------------------------------------")
	if c.Nickname != "" {
		log.Infof(log.BackTester, "Nickname: %s", c.Nickname)
	}
	if c.Goal != "" {
		log.Infof(log.BackTester, "Goal: %s", c.Goal)
	}
	log.Infof(log.BackTester, "Strategy: %s", c.StrategyName())
	for k, v := range c.StrategySettings.CustomSettings {
		log.Infof(log.BackTester, "%s: %v", k, v)
	}
	log.Infof(log.BackTester, "Initial capital: %s", c.BacktestSettings.InitialCapital)
	log.Infof(log.BackTester, "Stake fraction: %s", c.BacktestSettings.StakeFraction)
	log.Infof(log.BackTester, "Fee rate: %s", c.BacktestSettings.FeeRate)
	log.Infof(log.BackTester, "Minimum tradable amount: %s", c.BacktestSettings.MinimumTradableAmount)
	log.Infof(log.BackTester, "Persist results: %s", common.IsEnabled(c.PersistResults))
	for i := range c.DataSettings.Pairs {
		log.Infof(log.BackTester, "Pair: %s data: %s", c.DataSettings.Pairs[i].Pair, c.DataSettings.Pairs[i].CSVPath)
	}
	log.Info(log.BackTester, "-------------------------------------------------------------")
}
