package plumb

import (
	"fmt"
	"time"
)

// Logger is the logging interface used by the trace hooks. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Trace returns a wrapper that logs every call under name: its arguments,
// then either its result or its error, and how long it took.
//
//	plumb.MustNew(lookup).PlumbWrapper(plumb.Trace(slog.Default(), "lookup"))
func Trace(logger Logger, name string) Func {
	return func(_ any, args ...any) (any, error) {
		fn := WrappedFunc(args)
		if fn == nil {
			return nil, fmt.Errorf("%w: %s: wrapper called without a target", ErrInvalidArguments, name)
		}
		args = WrapperArguments(args)

		if logger != nil {
			logger.Debug("call start",
				"name", name,
				"args", args,
			)
		}

		start := time.Now()
		ret, err := fn(args...)
		if logger == nil {
			return ret, err
		}

		if err != nil {
			logger.Error("call failed",
				"name", name,
				"error", err,
				"elapsed", time.Since(start),
			)
		} else {
			logger.Debug("call complete",
				"name", name,
				"result", ret,
				"elapsed", time.Since(start),
			)
		}
		return ret, err
	}
}

// TraceBefore returns a before hook that logs the arguments of each call.
func TraceBefore(logger Logger, name string) Func {
	return func(_ any, args ...any) (any, error) {
		if logger != nil {
			logger.Debug("call start",
				"name", name,
				"args", args,
			)
		}
		return nil, nil
	}
}

// TraceAfter returns an after hook that logs the arguments and result of
// each call.
func TraceAfter(logger Logger, name string) Func {
	return func(_ any, args ...any) (any, error) {
		if logger != nil {
			logger.Debug("call complete",
				"name", name,
				"args", AfterArguments(args),
				"result", AfterReturnValue(args),
			)
		}
		return nil, nil
	}
}
