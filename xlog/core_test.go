package xlog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCommonCore(t *testing.T) {
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	var cc XLogCore = newConsoleCore(
		&lvlEnabler,
		JSON,
		nil,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.Nil(t, cc)

	out := &memWriteSyncer{}
	cc = newConsoleCore(
		&lvlEnabler,
		JSON,
		out,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())
	require.NotNil(t, cc.(*commonCore).core)

	// The core follows the atomic level.
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		lvlEnabler.SetLevel(lvl)
		for _, probe := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
			require.Equal(t, probe >= lvl, cc.Enabled(probe), "level %s probe %s", lvl, probe)
		}
	}
	require.Nil(t, cc.Check(zapcore.Entry{Level: zapcore.DebugLevel}, nil))

	lvlEnabler.SetLevel(zapcore.DebugLevel)

	core := cc.With([]zap.Field{zap.String("key", "value")})
	require.NotNil(t, core)

	ce := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "direct"}, nil)
	require.NotNil(t, ce)
	err := cc.Write(ce.Entry, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	require.NoError(t, cc.Sync())
	require.Contains(t, out.String(), `"msg":"direct"`)
	require.Contains(t, out.String(), `"key":"value"`)

	cc, err = WrapCore(cc, componentCoreEncoderCfg)
	require.NoError(t, err)
	require.NotNil(t, cc)
	err = cc.Write(zapcore.Entry{Level: zapcore.DebugLevel, LoggerName: "commonCore"}, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	require.NoError(t, cc.Sync())
	require.Contains(t, out.String(), `"component":"commonCore"`)

	_, err = WrapCore(nil, componentCoreEncoderCfg)
	require.Error(t, err)
	_, err = WrapCore(cc, nil)
	require.Error(t, err)
}
