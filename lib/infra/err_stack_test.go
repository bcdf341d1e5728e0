package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{
			initPC,
			"%s",
			"err_stack_test.go",
		},
		{
			initPC,
			"%n",
			"init",
		},
		{
			initPC,
			"%d",
			"14",
		},
		{
			initPC,
			"%v",
			"err_stack_test.go:14",
		},
		{
			Frame(0),
			"%s",
			"unknownFile",
		},
		{
			Frame(0),
			"%n",
			"unknownFunc",
		},
		{
			Frame(0),
			"%d",
			"0",
		},
	}

	for _, tc := range testcases {
		frameRes := fmt.Sprintf(tc.format, tc.Frame)
		require.Equal(t, tc.want, frameRes)
	}

	full := fmt.Sprintf("%+v", initPC)
	require.True(t, strings.HasPrefix(full, "github.com/benz9527/xtree/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(full, "err_stack_test.go:14"))
}

func TestFrameMarshalText(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xtree/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(text), "err_stack_test.go:14"))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

var errSentinel = errors.New("sentinel")

func TestErrorStack(t *testing.T) {
	err := NewErrorStack("[tree] broken")
	require.EqualError(t, err, "[tree] broken")
	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestErrorStack", fmt.Sprintf("%n", es.Frames()[0]))

	require.NoError(t, WrapErrorStack(nil))
	require.NoError(t, WrapErrorStackWithMessage(nil, "ignored"))

	err = WrapErrorStackWithMessage(errSentinel, "validate")
	require.EqualError(t, err, "validate: sentinel")
	require.ErrorIs(t, err, errSentinel)

	other := errors.New("other")
	err = AppendErrorStack(nil, errSentinel, other)
	require.ErrorIs(t, err, errSentinel)
	require.ErrorIs(t, err, other)
	require.True(t, errors.As(err, &es))
	require.Len(t, es.Unwrap(), 2)

	err = AppendErrorStack(err, errors.New("third"))
	require.True(t, errors.As(err, &es))
	require.Len(t, es.Unwrap(), 3)

	require.NoError(t, AppendErrorStack(nil))
	require.NoError(t, AppendErrorStack(nil, nil, nil))
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := AppendErrorStack(nil, errSentinel, errors.New("other"))
	var es ErrorStack
	require.True(t, errors.As(err, &es))

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, err.Error(), enc.Fields["error"])
	require.Equal(t, []any{"sentinel", "other"}, enc.Fields["errors"])
	require.NotEmpty(t, enc.Fields["errorStack"])
}
