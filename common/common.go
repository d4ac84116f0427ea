package common

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Vars for common.go operations
var (
	ErrNilPointer       = errors.New("nil pointer")
	ErrCannotCalculate  = errors.New("cannot calculate")
	ErrStartAfterEnd    = errors.New("start date after end date")
	ErrStartEqualsEnd   = errors.New("start date equals end date")
	ErrGettingField     = errors.New("error getting field")
	ErrSettingField     = errors.New("error setting field")
	errInvalidDirectory = errors.New("invalid directory")
)

// SimpleTimeFormat is the timestamp layout used in reports and log lines
const SimpleTimeFormat = "2006-01-02 15:04:05"

// IsEnabled takes in a boolean param and returns a string if it is enabled
// or disabled
func IsEnabled(isEnabled bool) string {
	if isEnabled {
		return "Enabled"
	}
	return "Disabled"
}

// YesOrNo returns a boolean variable to check if input is "y" or "yes"
func YesOrNo(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	return false
}

// StartEndTimeCheck provides some basic checks which occur frequently
func StartEndTimeCheck(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start or end time unset", ErrCannotCalculate)
	}
	if start.After(end) {
		return ErrStartAfterEnd
	}
	if start.Equal(end) {
		return ErrStartEqualsEnd
	}
	return nil
}

// GetDefaultDataDir returns the default data directory
func GetDefaultDataDir(env string) string {
	if env == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "Backtester")
	}
	usr, err := user.Current()
	if err == nil {
		return filepath.Join(usr.HomeDir, ".backtester")
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, ".backtester")
}

// DefaultDataDir is GetDefaultDataDir for the running platform
func DefaultDataDir() string {
	return GetDefaultDataDir(runtime.GOOS)
}

// CreateDir creates a directory based on the supplied parameter
func CreateDir(dir string) error {
	if dir == "" {
		return errInvalidDirectory
	}
	_, err := os.Stat(dir)
	if !os.IsNotExist(err) {
		return nil
	}
	return os.MkdirAll(dir, 0o770)
}

// AppendError appends an error to a list of existing errors. Nil errors are
// skipped and an existing joined error is extended in place.
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	var m *multiError
	if errors.As(original, &m) {
		m.errs = append(m.errs, incoming)
		return m
	}
	return &multiError{errs: []error{original, incoming}}
}

type multiError struct {
	errs []error
}

// Error displays all errors comma separated
func (e *multiError) Error() string {
	allErrors := make([]string, len(e.errs))
	for x := range e.errs {
		allErrors[x] = e.errs[x].Error()
	}
	return strings.Join(allErrors, ", ")
}

// Unwrap returns the joined errors for errors.Is and errors.As
func (e *multiError) Unwrap() []error {
	return e.errs
}
