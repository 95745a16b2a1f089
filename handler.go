package plumb

import (
	"fmt"
	"slices"
)

// beforeCall runs a before hook and returns the arguments to forward.
type beforeCall func(recv any, hook Func, args []any) ([]any, error)

// afterCall runs an after hook and returns the result of the whole call.
type afterCall func(recv any, hook Func, args []any, ret any) (any, error)

func callBefore(recv any, hook Func, args []any) ([]any, error) {
	if _, err := hook(recv, args...); err != nil {
		return nil, err
	}
	return args, nil
}

func callBeforeMutating(recv any, hook Func, args []any) ([]any, error) {
	v, err := hook(recv, args...)
	if err != nil {
		return nil, err
	}

	switch newArgs := v.(type) {
	case []any:
		return newArgs, nil
	case nil:
		return []any{}, nil
	default:
		return nil, fmt.Errorf("%w: before hook returned %T, want []any", ErrInvalidArguments, v)
	}
}

func callAfter(recv any, hook Func, args []any, ret any) (any, error) {
	if _, err := hook(recv, append(slices.Clone(args), ret)...); err != nil {
		return nil, err
	}
	return ret, nil
}

func callAfterMutating(recv any, hook Func, args []any, ret any) (any, error) {
	return hook(recv, append(slices.Clone(args), ret)...)
}

// Handler collects the plumbing for one callable. Every method except Original
// and Setup returns the Handler so calls can be chained:
//
//	fn := plumb.MustNew(add).
//		PlumbBefore(check, false).
//		PlumbAfter(record, false).
//		Setup()
type Handler struct {
	original Func
	exec     Func

	before     Func
	beforeCall beforeCall

	after     Func
	afterCall afterCall

	wrapper Func
}

// New creates a Handler over target. Target can be a Func, a Bound or any Go
// function, which will be adapted with Of. An error wrapping
// ErrInvalidArgument is returned if target is not a function.
func New(target any) (*Handler, error) {
	fn, err := toFunc(target)
	if err != nil {
		return nil, err
	}

	return &Handler{
		original: fn,
		exec:     fn,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(target any) *Handler {
	h, err := New(target)
	if err != nil {
		panic(err)
	}
	return h
}

// Replace sets the function that runs in place of the original. Replace(nil)
// switches back to the original.
func (h *Handler) Replace(fn Func) *Handler {
	if fn == nil {
		fn = h.original
	}
	h.exec = fn
	return h
}

// PlumbBefore connects fn ahead of the call. It receives the same receiver and
// arguments as the call.
//
// When mutating is false the result of fn is ignored. When mutating is true
// fn must return a []any, which is passed to the execution target instead of
// the original arguments.
//
// An error from fn stops the call and is returned as is.
func (h *Handler) PlumbBefore(fn Func, mutating bool) *Handler {
	h.before = fn
	if mutating {
		h.beforeCall = callBeforeMutating
	} else {
		h.beforeCall = callBefore
	}
	return h
}

// PlumbAfter connects fn behind the call. It receives the receiver, the
// arguments that were passed to the execution target and, as an extra last
// argument, the value it returned. AfterArguments and AfterReturnValue pull
// those apart.
//
// When mutating is true the result of fn becomes the result of the call.
//
// fn is not called if the execution target fails.
func (h *Handler) PlumbAfter(fn Func, mutating bool) *Handler {
	h.after = fn
	if mutating {
		h.afterCall = callAfterMutating
	} else {
		h.afterCall = callAfter
	}
	return h
}

// PlumbWrapper surrounds the call with fn. A wrapper overrides any before and
// after hooks.
//
// fn receives the execution target, bound to the receiver, as its first
// argument followed by the original arguments. It decides whether the target
// runs, how many times and with what. WrappedFunc and WrapperArguments pull
// the arguments apart.
func (h *Handler) PlumbWrapper(fn Func) *Handler {
	h.wrapper = fn
	return h
}

// Original returns the function the Handler was created with, regardless of
// any Replace.
func (h *Handler) Original() Func {
	return h.original
}

// Setup assembles the plumbing into a single Func.
//
// The result captures the Handler's current state. Changes made to the
// Handler afterwards need another Setup.
//
// With nothing plumbed in, Setup returns the execution target itself.
func (h *Handler) Setup() Func {
	exec := h.exec

	if h.wrapper != nil {
		wrapper := h.wrapper
		return func(recv any, args ...any) (any, error) {
			wrapperArgs := make([]any, 0, len(args)+1)
			wrapperArgs = append(wrapperArgs, exec.Bind(recv))
			wrapperArgs = append(wrapperArgs, args...)
			return wrapper(recv, wrapperArgs...)
		}
	}

	before, runBefore := h.before, h.beforeCall
	after, runAfter := h.after, h.afterCall

	switch {
	case before != nil && after != nil:
		return func(recv any, args ...any) (any, error) {
			args, err := runBefore(recv, before, args)
			if err != nil {
				return nil, err
			}
			ret, err := exec(recv, args...)
			if err != nil {
				return ret, err
			}
			return runAfter(recv, after, args, ret)
		}
	case before != nil:
		return func(recv any, args ...any) (any, error) {
			args, err := runBefore(recv, before, args)
			if err != nil {
				return nil, err
			}
			return exec(recv, args...)
		}
	case after != nil:
		return func(recv any, args ...any) (any, error) {
			ret, err := exec(recv, args...)
			if err != nil {
				return ret, err
			}
			return runAfter(recv, after, args, ret)
		}
	}

	return exec
}
