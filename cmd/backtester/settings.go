package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quantbench/backtester/backtester/apiserver"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/database"
	"github.com/quantbench/backtester/log"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, log.level is read from
// BACKTESTER_LOG_LEVEL
const envPrefix = "BACKTESTER"

// Settings are the application wide settings shared by every command
type Settings struct {
	DataDir  string
	Parallel int
	Logging  log.Config
	Database database.Config
	Server   apiserver.Config
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("datadir", common.DefaultDataDir())
	v.SetDefault("run.parallel", 0)
	v.SetDefault("log.enabled", true)
	v.SetDefault("log.level", "INFO|WARN|ERROR")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.showsystemname", false)
	v.SetDefault("server.listenaddress", apiserver.DefaultListenAddress)
	v.SetDefault("server.requestspersecond", 10.0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.verbose", false)
	v.SetDefault("database.driver", database.DBSQLite3)
	v.SetDefault("database.database", "backtester.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return v, nil
}

// loadSettings reads the optional settings file then applies environment
// overrides
func loadSettings(path string) (*Settings, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	logCfg := log.GenDefaultSettings()
	enabled := v.GetBool("log.enabled")
	showName := v.GetBool("log.showsystemname")
	logCfg.Enabled = &enabled
	logCfg.AdvancedSettings.ShowLogSystemName = &showName
	logCfg.Level = v.GetString("log.level")
	logCfg.Output = v.GetString("log.output")

	port := v.GetUint("database.port")
	if port > 65535 {
		return nil, fmt.Errorf("database.port %d out of range", port)
	}
	s := &Settings{
		DataDir:  v.GetString("datadir"),
		Parallel: v.GetInt("run.parallel"),
		Logging:  logCfg,
		Database: database.Config{
			Enabled: v.GetBool("database.enabled"),
			Verbose: v.GetBool("database.verbose"),
			Driver:  v.GetString("database.driver"),
			ConnectionDetails: database.ConnectionDetails{
				Host:     v.GetString("database.host"),
				Port:     uint16(port),
				Username: v.GetString("database.username"),
				Password: v.GetString("database.password"),
				Database: v.GetString("database.database"),
				SSLMode:  v.GetString("database.sslmode"),
			},
		},
		Server: apiserver.Config{
			ListenAddress:     v.GetString("server.listenaddress"),
			RequestsPerSecond: v.GetFloat64("server.requestspersecond"),
			Burst:             v.GetInt("server.burst"),
		},
	}
	if s.DataDir == "" {
		s.DataDir = "."
	}
	s.DataDir = filepath.Clean(s.DataDir)
	return s, nil
}
