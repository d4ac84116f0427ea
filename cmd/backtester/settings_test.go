package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quantbench/backtester/backtester/apiserver"
	"github.com/quantbench/backtester/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := loadSettings("")
	require.NoError(t, err)
	assert.NotEmpty(t, s.DataDir)
	assert.Equal(t, 0, s.Parallel)
	assert.Equal(t, "INFO|WARN|ERROR", s.Logging.Level)
	require.NotNil(t, s.Logging.Enabled)
	assert.True(t, *s.Logging.Enabled)
	assert.False(t, s.Database.Enabled)
	assert.Equal(t, database.DBSQLite3, s.Database.Driver)
	assert.Equal(t, uint16(5432), s.Database.Port)
	assert.Equal(t, apiserver.DefaultListenAddress, s.Server.ListenAddress)
	assert.Equal(t, 20, s.Server.Burst)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"datadir": "/tmp/bt",
		"run": {"parallel": 4},
		"log": {"level": "DEBUG|INFO", "output": "stdout"},
		"database": {"enabled": true, "driver": "postgres", "port": 6543},
		"server": {"listenaddress": "0.0.0.0:8080"}
	}`), 0o600))

	t.Setenv("BACKTESTER_SERVER_BURST", "3")
	t.Setenv("BACKTESTER_LOG_LEVEL", "ERROR")

	s, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/tmp/bt"), s.DataDir)
	assert.Equal(t, 4, s.Parallel)
	assert.Equal(t, "ERROR", s.Logging.Level, "environment overrides the file")
	assert.Equal(t, "stdout", s.Logging.Output)
	assert.True(t, s.Database.Enabled)
	assert.Equal(t, "postgres", s.Database.Driver)
	assert.Equal(t, uint16(6543), s.Database.Port)
	assert.Equal(t, "0.0.0.0:8080", s.Server.ListenAddress)
	assert.Equal(t, 3, s.Server.Burst)
}

func TestLoadSettingsErrors(t *testing.T) {
	_, err := loadSettings(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database": {"port": 70000}}`), 0o600))
	_, err = loadSettings(path)
	assert.Error(t, err)
}
