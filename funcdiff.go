package plumb

import (
	"errors"
	"fmt"
	"reflect"
)

type funcDifferences struct {
	In       []*argDifference
	Out      []*argDifference
	Variadic bool
}

// Err returns one joined error per differing argument or result, or nil if
// the signatures match.
func (d *funcDifferences) Err() error {
	errs := []error{}
	for i, arg := range d.In {
		if arg != nil {
			errs = append(errs, fmt.Errorf("argument %d: %v != %v", i, arg.A, arg.B))
		}
	}
	for i, out := range d.Out {
		if out != nil {
			errs = append(errs, fmt.Errorf("output %d: %v != %v", i, out.A, out.B))
		}
	}
	if d.Variadic {
		errs = append(errs, errors.New("variadic mismatch"))
	}

	return errors.Join(errs...)
}

type argDifference struct {
	A reflect.Type
	B reflect.Type
}

func diffFuncs(at, bt reflect.Type) *funcDifferences {
	return &funcDifferences{
		In:       diffTypes(at.NumIn(), at.In, bt.NumIn(), bt.In),
		Out:      diffTypes(at.NumOut(), at.Out, bt.NumOut(), bt.Out),
		Variadic: at.IsVariadic() != bt.IsVariadic(),
	}
}

// diffTypes compares two positional type lists. A position missing from one
// side is reported against a nil type.
func diffTypes(an int, a func(int) reflect.Type, bn int, b func(int) reflect.Type) []*argDifference {
	diffs := make([]*argDifference, max(an, bn))
	for i := range diffs {
		var at, bt reflect.Type
		if i < an {
			at = a(i)
		}
		if i < bn {
			bt = b(i)
		}
		if at != bt {
			diffs[i] = &argDifference{A: at, B: bt}
		}
	}
	return diffs
}

// checkSignature returns an error wrapping ErrSignatureMismatch if fn is not
// a function of type want.
func checkSignature(want reflect.Type, fn any) error {
	fnv := reflect.ValueOf(fn)
	if fnv.Kind() != reflect.Func {
		return fmt.Errorf("%w: not a function, kind: %v", ErrInvalidArgument, fnv.Kind())
	}
	if fnv.Type().AssignableTo(want) {
		return nil
	}
	if err := diffFuncs(want, fnv.Type()).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
	}
	// Same shape, different named type.
	return fmt.Errorf("%w: %v != %v", ErrSignatureMismatch, want, fnv.Type())
}
