package plumb

import "fmt"

// Func is the shape of every callable this package handles: a receiver, an
// argument list of any length and a single result.
type Func func(recv any, args ...any) (any, error)

// Bound is a Func with its receiver already supplied. Wrappers receive the
// execution target as a Bound.
type Bound func(args ...any) (any, error)

// Bind returns f with recv fixed as its receiver.
func (f Func) Bind(recv any) Bound {
	return func(args ...any) (any, error) {
		return f(recv, args...)
	}
}

// toFunc converts the accepted callable shapes to a Func. Anything that is not
// one of the package's own types is adapted with Of.
func toFunc(fn any) (Func, error) {
	switch f := fn.(type) {
	case nil:
		return nil, fmt.Errorf("%w: not a function, kind: invalid", ErrInvalidArgument)
	case Func:
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidArgument)
		}
		return f, nil
	case func(any, ...any) (any, error):
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidArgument)
		}
		return Func(f), nil
	case Bound:
		if f == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidArgument)
		}
		return func(_ any, args ...any) (any, error) {
			return f(args...)
		}, nil
	}
	return Of(fn)
}
