package xlog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

type memWriteSyncer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (m *memWriteSyncer) Write(p []byte) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.buf.Write(p)
}

func (m *memWriteSyncer) Sync() error { return nil }

func (m *memWriteSyncer) String() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.buf.String()
}

func (m *memWriteSyncer) Lines() []string {
	text := strings.TrimSpace(m.String())
	if len(text) == 0 {
		return nil
	}
	return strings.Split(text, "\n")
}

type testBanner struct{}

func (testBanner) JSON() string      { return `{"app":"xtree"}` }
func (testBanner) PlainText() string { return "xtree" }

func TestXLogger_Levels(t *testing.T) {
	out := &memWriteSyncer{}
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelWarn),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriteSyncer(out),
	)
	require.Equal(t, "warn", logger.Level())

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn", zap.Int("n", 1))
	logger.Error(nil, "error without cause")
	logger.Error(errors.New("boom"), "error with cause")
	require.NoError(t, logger.Sync())

	lines := out.Lines()
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"lvl":"WARN"`)
	require.Contains(t, lines[0], `"n":1`)
	require.Contains(t, lines[1], "error without cause")
	require.Contains(t, lines[2], `"error":"boom"`)
	require.Contains(t, lines[2], `"callAt":"xlog/xlog_test.go`)

	logger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Debug("debug again")
	require.Len(t, out.Lines(), 4)
}

func TestXLogger_ErrorStack(t *testing.T) {
	out := &memWriteSyncer{}
	logger := NewXLogger(WithXLoggerLevel(LogLevelDebug), WithXLoggerWriteSyncer(out))

	sentinel := errors.New("sentinel")
	logger.ErrorStack(infra.WrapErrorStackWithMessage(sentinel, "wrapped"), "stack")
	logger.ErrorStack(errors.New("plain"), "no stack")
	logger.ErrorStack(nil, "nothing")
	require.NoError(t, logger.Sync())

	lines := out.Lines()
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"errorStack":[`)
	require.Contains(t, lines[0], "TestXLogger_ErrorStack")
	require.Contains(t, lines[1], `"error":"plain"`)
	require.NotContains(t, lines[2], `"error"`)
}

func TestXLogger_ContextFields(t *testing.T) {
	out := &memWriteSyncer{}
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerWriteSyncer(out),
		WithXLoggerContextFieldExtract("subject"),
		WithXLoggerContextFieldExtract("case", "benchCase"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
	)
	ctx := context.WithValue(context.Background(), ContextKey("subject"), "red-black")
	ctx = context.WithValue(ctx, ContextKey("secret"), "hidden")
	logger.InfoContext(ctx, "with ctx")
	logger.ErrorContext(ctx, errors.New("bad"), "with ctx error")
	require.NoError(t, logger.Sync())

	lines := out.Lines()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"subject":"red-black"`)
	require.Contains(t, lines[0], `"benchCase":"nil"`)
	require.NotContains(t, lines[0], "hidden")
	require.Contains(t, lines[1], `"error":"bad"`)
}

func TestXLogger_PlainTextAndBanner(t *testing.T) {
	out := &memWriteSyncer{}
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelInfo),
		WithXLoggerEncoder(PlainText),
		WithXLoggerWriteSyncer(out),
	)
	logger.Banner(testBanner{})
	logger.Banner(testBanner{})
	logger.Logf(zapcore.InfoLevel, "%d nodes", 3)
	require.NoError(t, logger.Sync())

	lines := out.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, "xtree", lines[0])
	require.Contains(t, lines[1], "3 nodes")
}

func TestXLoggerOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriteSyncer(nil))
	})

	setOutWriterByType(testMemAsOut, &memWriteSyncer{})
	require.NotPanics(t, func() {
		NewXLogger(WithXLoggerWriter(testMemAsOut), nil)
	})

	require.Equal(t, LogLevelInfo, ParseLogLevel(" info "))
	require.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	require.Equal(t, LogLevelError, ParseLogLevel("error"))
	require.Equal(t, LogLevelDebug, ParseLogLevel(""))
	require.Equal(t, LogLevelDebug, ParseLogLevel("verbose"))
}
