package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
)

var (
	logger = Logger{}
	// globalLogConfig holds global configuration options for logger
	globalLogConfig = &Config{}

	// read/write mutex for logger
	mu = &sync.RWMutex{}
)

// Config holds configuration settings loaded from the application settings
type Config struct {
	Enabled          *bool `json:"enabled" mapstructure:"enabled"`
	SubLoggerConfig  `mapstructure:",squash"`
	AdvancedSettings advancedSettings  `json:"advancedSettings" mapstructure:"advancedsettings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty" mapstructure:"subloggers"`
}

type advancedSettings struct {
	ShowLogSystemName *bool   `json:"showLogSystemName" mapstructure:"showlogsystemname"`
	Spacer            string  `json:"spacer" mapstructure:"spacer"`
	TimeStampFormat   string  `json:"timeStampFormat" mapstructure:"timestampformat"`
	Headers           headers `json:"headers" mapstructure:"headers"`
}

type headers struct {
	Info  string `json:"info" mapstructure:"info"`
	Warn  string `json:"warn" mapstructure:"warn"`
	Debug string `json:"debug" mapstructure:"debug"`
	Error string `json:"error" mapstructure:"error"`
}

// SubLoggerConfig holds sub logger configuration settings
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty" mapstructure:"name"`
	Level  string `json:"level" mapstructure:"level"`
	Output string `json:"output" mapstructure:"output"`
}

// Logger each instance of logger settings
type Logger struct {
	ShowLogSystemName                                bool
	TimestampFormat                                  string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
	Spacer                                           string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

type multiWriter struct {
	writers []io.Writer
	mu      sync.RWMutex
}
