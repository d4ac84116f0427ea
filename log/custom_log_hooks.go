package log

// CustomLogHook receives every enabled log line before it is written. Returning
// true drops the line from the sub logger output.
type CustomLogHook func(header, subLoggerName string, a ...any) (bypassLibraryLogSystem bool)

var customLogHook CustomLogHook

// SetCustomLogHook installs h as the process wide log hook, nil removes it
func SetCustomLogHook(h CustomLogHook) {
	mu.Lock()
	customLogHook = h
	mu.Unlock()
}
