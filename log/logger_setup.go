package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errSubLoggerNotFound     = errors.New("sub logger not found")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(outputWriters[x]) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	t := true
	f := false
	return Config{
		Enabled: &t,
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: &f,
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c *Config) Logger {
	showName := c.AdvancedSettings.ShowLogSystemName != nil && *c.AdvancedSettings.ShowLogSystemName
	return Logger{
		ShowLogSystemName: showName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
	}
}

func configureSubLogger(subLogger, levels string, output io.Writer) error {
	logPtr, found := subLoggers[subLogger]
	if !found {
		return fmt.Errorf("%w: %v", errSubLoggerNotFound, subLogger)
	}
	logPtr.output = output
	logPtr.Levels = splitLevel(levels)
	return nil
}

// SetupSubLoggers configure all sub loggers with provided configuration values
func SetupSubLoggers(s []SubLoggerConfig) error {
	mu.Lock()
	defer mu.Unlock()
	for x := range s {
		output, err := getWriters(&s[x])
		if err != nil {
			return err
		}
		err = configureSubLogger(strings.ToUpper(s[x].Name), s[x].Level, output)
		if err != nil {
			return err
		}
	}
	return nil
}

// SetupGlobalLogger applies the config to the logger and every registered sub logger
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errSubloggerConfigIsNil
	}
	defaults := GenDefaultSettings()
	if c.Enabled == nil {
		c.Enabled = defaults.Enabled
	}
	if c.Output == "" {
		c.Output = defaults.Output
	}
	if c.AdvancedSettings.Spacer == "" {
		c.AdvancedSettings.Spacer = defaults.AdvancedSettings.Spacer
	}
	if c.AdvancedSettings.TimeStampFormat == "" {
		c.AdvancedSettings.TimeStampFormat = defaults.AdvancedSettings.TimeStampFormat
	}
	if c.AdvancedSettings.Headers == (headers{}) {
		c.AdvancedSettings.Headers = defaults.AdvancedSettings.Headers
	}

	mu.Lock()
	globalLogConfig = c
	level := c.Level
	if !*c.Enabled {
		level = ""
	}
	output, err := getWriters(&c.SubLoggerConfig)
	if err != nil {
		mu.Unlock()
		return err
	}
	for x := range subLoggers {
		subLoggers[x].Levels = splitLevel(level)
		subLoggers[x].output = output
	}
	logger = newLogger(c)
	mu.Unlock()

	if !*c.Enabled {
		return nil
	}
	return SetupSubLoggers(c.SubLoggers)
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(strings.TrimSpace(enabledLevels[x])) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
	}
	temp.Levels = splitLevel("INFO|WARN|ERROR")
	subLoggers[temp.name] = &temp
	return &temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")
	BackTester = registerNewSubLogger("BACKTESTER")
	ConfigMgr = registerNewSubLogger("CONFIG")
	DatabaseMgr = registerNewSubLogger("DATABASE")
	RESTSys = registerNewSubLogger("REST")

	logger = newLogger(func() *Config { c := GenDefaultSettings(); return &c }())
}
