package file

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultPermissionOctal is the default file and folder permission octal used
// throughout the backtester
const DefaultPermissionOctal os.FileMode = 0o770

var errEmptyPath = errors.New("empty file path")

// Write writes selected data to a file or returns an error if it fails. This
// func also ensures that all files are set to this apps default permissions.
func Write(path string, data []byte) error {
	if path == "" {
		return errEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultPermissionOctal); err != nil {
		return err
	}
	return os.WriteFile(path, data, DefaultPermissionOctal)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		return false
	}
	return true
}
