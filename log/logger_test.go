package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWriteFail = errors.New("write fail")

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errWriteFail }

func newTestSubLogger(t *testing.T, name, levels string) (*SubLogger, *bytes.Buffer) {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()
	sl := registerNewSubLogger(name)
	buf := &bytes.Buffer{}
	require.NoError(t, configureSubLogger(sl.name, levels, buf))
	return sl, buf
}

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Levels{Info: true, Warn: true, Error: true}, splitLevel("INFO|WARN|ERROR"))
	assert.Equal(t, Levels{Debug: true}, splitLevel("debug"))
	assert.Equal(t, Levels{}, splitLevel(""))
}

func TestGetWriters(t *testing.T) {
	t.Parallel()
	_, err := getWriters(nil)
	assert.ErrorIs(t, err, errSubloggerConfigIsNil)

	_, err = getWriters(&SubLoggerConfig{Output: "stdout|file"})
	assert.ErrorIs(t, err, errUnhandledOutputWriter)

	_, err = getWriters(&SubLoggerConfig{Output: "stdout|console"})
	assert.ErrorIs(t, err, errWriterAlreadyLoaded)

	w, err := getWriters(&SubLoggerConfig{Output: "stdout|stderr"})
	require.NoError(t, err)
	assert.Len(t, w.(*multiWriter).writers, 2)
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	mw, err := MultiWriter(a, b)
	require.NoError(t, err)

	n, err := mw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())

	require.NoError(t, mw.Remove(b))
	assert.ErrorIs(t, mw.Remove(b), errWriterNotFound)

	require.NoError(t, mw.Add(failWriter{}))
	_, err = mw.Write([]byte("x"))
	assert.ErrorIs(t, err, errWriteFail)
}

func TestConfigureSubLogger(t *testing.T) {
	t.Parallel()
	mu.Lock()
	err := configureSubLogger("NOPE", "INFO", &bytes.Buffer{})
	mu.Unlock()
	assert.ErrorIs(t, err, errSubLoggerNotFound)
}

func TestLevelsFilterOutput(t *testing.T) {
	t.Parallel()
	sl, buf := newTestSubLogger(t, "levelfilter", "INFO|ERROR")

	Infof(sl, "stake %s", "100")
	Debugln(sl, "hidden")
	Warn(sl, "hidden too")
	Errorln(sl, "boom", 1)

	out := buf.String()
	assert.Contains(t, out, "stake 100")
	assert.Contains(t, out, "boom1")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestNilSubLoggerIsNoop(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Info(nil, "nothing")
		Errorf(nil, "nothing %d", 1)
	})
}

func TestCustomLogHook(t *testing.T) {
	sl, buf := newTestSubLogger(t, "hooked", "INFO")
	var got string
	SetCustomLogHook(func(header, name string, a ...any) bool {
		if name != "HOOKED" {
			return false
		}
		got = a[0].(string)
		return true
	})
	t.Cleanup(func() { SetCustomLogHook(nil) })

	Info(sl, "captured")
	assert.Equal(t, "captured", got)
	assert.Empty(t, buf.String())
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	f := false
	cfg := GenDefaultSettings()
	cfg.Enabled = &f
	require.NoError(t, SetupGlobalLogger(&cfg))
	t.Cleanup(func() {
		defaults := GenDefaultSettings()
		assert.NoError(t, SetupGlobalLogger(&defaults))
	})
	var called bool
	SetCustomLogHook(func(string, string, ...any) bool {
		called = true
		return true
	})
	t.Cleanup(func() { SetCustomLogHook(nil) })

	assert.NotPanics(t, func() {
		Infof(BackTester, "stake %s", "100")
		Debugln(BackTester, "entry")
		Warn(BackTester, "capital low")
		Errorf(BackTester, "run %d failed", 1)
	})
	assert.False(t, called)
}
