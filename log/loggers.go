package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string and writes it to the sub logger output
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.InfoHeader, data)
	}
}

// Infoln takes a pointer subLogger struct and interface and writes it to the sub logger output
func Infoln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.InfoHeader, fmt.Sprint(v...))
	}
}

// Infof takes a pointer subLogger struct, string and interface, formats and writes them
func Infof(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.InfoHeader, fmt.Sprintf(data, v...))
	}
}

// Debug takes a pointer subLogger struct and string and writes it to the sub logger output
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.DebugHeader, data)
	}
}

// Debugln takes a pointer subLogger struct and interface and writes it to the sub logger output
func Debugln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.DebugHeader, fmt.Sprint(v...))
	}
}

// Debugf takes a pointer subLogger struct, string and interface, formats and writes them
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.DebugHeader, fmt.Sprintf(data, v...))
	}
}

// Warn takes a pointer subLogger struct and string and writes it to the sub logger output
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.WarnHeader, data)
	}
}

// Warnln takes a pointer subLogger struct and interface and writes it to the sub logger output
func Warnln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.WarnHeader, fmt.Sprint(v...))
	}
}

// Warnf takes a pointer subLogger struct, string and interface, formats and writes them
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.WarnHeader, fmt.Sprintf(data, v...))
	}
}

// Error takes a pointer subLogger struct and string and writes it to the sub logger output
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.ErrorHeader, data)
	}
}

// Errorln takes a pointer subLogger struct and interface and writes it to the sub logger output
func Errorln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.ErrorHeader, fmt.Sprint(v...))
	}
}

// Errorf takes a pointer subLogger struct, string and interface, formats and writes them
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if fields := sl.getFields(); fields != nil {
		fields.stage(fields.logger.ErrorHeader, fmt.Sprintf(data, v...))
	}
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

func (sl *SubLogger) getFields() *logFields {
	if sl == nil || globalLogConfig == nil || (globalLogConfig.Enabled != nil && !*globalLogConfig.Enabled) {
		return nil
	}
	return &logFields{
		info:   sl.Info,
		warn:   sl.Warn,
		debug:  sl.Debug,
		error:  sl.Error,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

// enabled checks if the log level is enabled
func (l *logFields) enabled(header string) bool {
	switch header {
	case l.logger.InfoHeader:
		return l.info
	case l.logger.WarnHeader:
		return l.warn
	case l.logger.ErrorHeader:
		return l.error
	case l.logger.DebugHeader:
		return l.debug
	}
	return false
}

// stage formats a log line and writes it unless a custom hook consumes it
func (l *logFields) stage(header, data string) {
	if l == nil || l.output == nil || !l.enabled(header) {
		return
	}
	if customLogHook != nil && customLogHook(header, l.name, data) {
		return
	}
	var sb strings.Builder
	sb.WriteString(header)
	if l.logger.ShowLogSystemName {
		sb.WriteString(l.logger.Spacer)
		sb.WriteString(l.name)
	}
	sb.WriteString(l.logger.Spacer)
	if l.logger.TimestampFormat != "" {
		sb.WriteString(time.Now().Format(l.logger.TimestampFormat))
		sb.WriteString(l.logger.Spacer)
	}
	sb.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		sb.WriteByte('\n')
	}
	_, err := l.output.Write([]byte(sb.String()))
	displayError(err)
}
