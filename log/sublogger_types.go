package log

import "io"

// Global vars related to the logger package
var (
	subLoggers = map[string]*SubLogger{}

	Global      *SubLogger
	BackTester  *SubLogger
	ConfigMgr   *SubLogger
	DatabaseMgr *SubLogger
	RESTSys     *SubLogger
)

// SubLogger is a named logging channel with its own enabled levels and output
type SubLogger struct {
	name string
	Levels
	output io.Writer
}

// logFields is used to store data in a non-global and thread-safe manner
// so logs cannot be modified mid-log causing a data-race issue
type logFields struct {
	info   bool
	warn   bool
	debug  bool
	error  bool
	name   string
	output io.Writer
	logger Logger
}
