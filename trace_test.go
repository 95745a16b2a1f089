package plumb

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTrace(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	instrumented := MustNew(addFunc(nil)).
		PlumbWrapper(Trace(testLogger(&buf), "add")).
		Setup()

	ret, err := instrumented(nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(3, ret)

	out := buf.String()
	assert.Contains(out, `msg="call start" name=add args="[1 2]"`)
	assert.Contains(out, `msg="call complete" name=add result=3`)
}

func TestTrace_Error(t *testing.T) {
	assert := assert.New(t)

	errBoom := errors.New("boom")
	var buf bytes.Buffer
	instrumented := MustNew(func(any, ...any) (any, error) { return nil, errBoom }).
		PlumbWrapper(Trace(testLogger(&buf), "fail")).
		Setup()

	_, err := instrumented(nil)
	assert.Same(errBoom, err)
	assert.Contains(buf.String(), `level=ERROR msg="call failed" name=fail error=boom`)
}

func TestTrace_NilLogger(t *testing.T) {
	instrumented := MustNew(addFunc(nil)).PlumbWrapper(Trace(nil, "add")).Setup()

	ret, err := instrumented(nil, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, ret)
}

func TestTrace_NoTarget(t *testing.T) {
	_, err := Trace(nil, "add")(nil, 1, 2)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestTraceBeforeAfter(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	logger := testLogger(&buf)
	instrumented := MustNew(addFunc(nil)).
		PlumbBefore(TraceBefore(logger, "add"), false).
		PlumbAfter(TraceAfter(logger, "add"), false).
		Setup()

	ret, err := instrumented(nil, 2, 5)
	require.NoError(t, err)
	assert.Equal(7, ret)

	out := buf.String()
	assert.Contains(out, `msg="call start" name=add args="[2 5]"`)
	assert.Contains(out, `msg="call complete" name=add args="[2 5]" result=7`)
}
