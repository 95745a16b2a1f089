package plumb

import (
	"fmt"
	"math"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Of adapts an ordinary Go function to a Func. The receiver is ignored.
//
// Arguments are converted to the parameter types: nil becomes the zero
// value, numbers are converted between numeric kinds when the value fits
// exactly and everything else must be assignable. A trailing error result
// becomes the Func's error. A single remaining result is returned as is,
// several are returned as a []any.
//
// An error wrapping ErrInvalidArgument is returned if fn is not a function.
func Of(fn any) (Func, error) {
	return adapt(fn, false)
}

// OfMethod is like Of but passes the receiver as the first argument, which
// suits method expressions:
//
//	fn, err := plumb.OfMethod((*bytes.Buffer).WriteString)
func OfMethod(fn any) (Func, error) {
	return adapt(fn, true)
}

func adapt(fn any, withRecv bool) (Func, error) {
	fnv := reflect.ValueOf(fn)
	if fnv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: not a function, kind: %v", ErrInvalidArgument, fnv.Kind())
	}
	if fnv.IsNil() {
		return nil, fmt.Errorf("%w: nil function", ErrInvalidArgument)
	}

	typ := fnv.Type()
	if withRecv && typ.NumIn() == 0 {
		return nil, fmt.Errorf("%w: %v has no receiver argument", ErrInvalidArgument, typ)
	}

	return func(recv any, args ...any) (any, error) {
		if withRecv {
			args = append([]any{recv}, args...)
		}

		in, err := callArgs(typ, args)
		if err != nil {
			return nil, err
		}

		return splitResults(typ, fnv.Call(in))
	}, nil
}

// MakeFunc turns fn into a native function of type F. The receiver passed to
// fn is always nil.
//
// If F ends with an error result, errors from fn and results that cannot be
// converted are reported there. Otherwise they panic.
func MakeFunc[F any](fn Func) (F, error) {
	var zero F

	typ := reflect.TypeOf((*F)(nil)).Elem()
	if typ.Kind() != reflect.Func {
		return zero, fmt.Errorf("%w: not a function, kind: %v", ErrInvalidArgument, typ.Kind())
	}
	if fn == nil {
		return zero, fmt.Errorf("%w: nil function", ErrInvalidArgument)
	}

	v := makeFuncValue(typ, fn)
	return v.Interface().(F), nil
}

func callArgs(typ reflect.Type, args []any) ([]reflect.Value, error) {
	n := typ.NumIn()
	if typ.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%w: %v wants at least %d arguments, got %d", ErrInvalidArguments, typ, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%w: %v wants %d arguments, got %d", ErrInvalidArguments, typ, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var t reflect.Type
		if typ.IsVariadic() && i >= n-1 {
			t = typ.In(n - 1).Elem()
		} else {
			t = typ.In(i)
		}

		v, err := convertValue(arg, t)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrInvalidArguments, i, err)
		}
		in[i] = v
	}

	return in, nil
}

func splitResults(typ reflect.Type, out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && typ.Out(n-1) == errorType {
		if e, ok := out[n-1].Interface().(error); ok {
			err = e
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	}

	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return values, err
}

func joinResults(typ reflect.Type, ret any, err error) []reflect.Value {
	n := typ.NumOut()
	out := make([]reflect.Value, n)

	values := n
	hasErr := n > 0 && typ.Out(n-1) == errorType
	if hasErr {
		values--
	}

	fail := func(err error) []reflect.Value {
		if !hasErr {
			panic(err)
		}
		for i := 0; i < values; i++ {
			out[i] = reflect.Zero(typ.Out(i))
		}
		out[n-1] = reflect.ValueOf(&err).Elem()
		return out
	}

	if err != nil {
		return fail(err)
	}

	var rets []any
	switch values {
	case 0:
	case 1:
		rets = []any{ret}
	default:
		var ok bool
		rets, ok = ret.([]any)
		if !ok || len(rets) != values {
			return fail(fmt.Errorf("%w: %v wants %d results, got %T", ErrInvalidArguments, typ, values, ret))
		}
	}

	for i := 0; i < values; i++ {
		v, cerr := convertValue(rets[i], typ.Out(i))
		if cerr != nil {
			return fail(fmt.Errorf("%w: result %d: %v", ErrInvalidArguments, i, cerr))
		}
		out[i] = v
	}
	if hasErr {
		out[n-1] = reflect.Zero(errorType)
	}

	return out
}

func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}

	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}

	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return convertNumber(rv, t)
	}

	return reflect.Value{}, fmt.Errorf("%v is not assignable to %v", rv.Type(), t)
}

// convertNumber converts between numeric kinds, refusing anything that would
// lose the integer part, the sign or the magnitude of v.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	zero := reflect.Zero(t)
	lost := fmt.Errorf("%v %v does not fit in %v", v.Type(), v.Interface(), t)

	switch {
	case isInt(t.Kind()):
		switch {
		case isInt(v.Kind()):
			if zero.OverflowInt(v.Int()) {
				return reflect.Value{}, lost
			}
		case isUint(v.Kind()):
			if v.Uint() > math.MaxInt64 || zero.OverflowInt(int64(v.Uint())) {
				return reflect.Value{}, lost
			}
		default:
			f := v.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || zero.OverflowInt(int64(f)) {
				return reflect.Value{}, lost
			}
		}
	case isUint(t.Kind()):
		switch {
		case isInt(v.Kind()):
			if v.Int() < 0 || zero.OverflowUint(uint64(v.Int())) {
				return reflect.Value{}, lost
			}
		case isUint(v.Kind()):
			if zero.OverflowUint(v.Uint()) {
				return reflect.Value{}, lost
			}
		default:
			f := v.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || zero.OverflowUint(uint64(f)) {
				return reflect.Value{}, lost
			}
		}
	default:
		if (v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64) && zero.OverflowFloat(v.Float()) {
			return reflect.Value{}, lost
		}
	}

	return v.Convert(t), nil
}

func makeFuncValue(typ reflect.Type, fn Func) reflect.Value {
	return reflect.MakeFunc(typ, func(in []reflect.Value) []reflect.Value {
		args := make([]any, 0, len(in))
		for i, arg := range in {
			if typ.IsVariadic() && i == len(in)-1 {
				for j := 0; j < arg.Len(); j++ {
					args = append(args, arg.Index(j).Interface())
				}
				continue
			}
			args = append(args, arg.Interface())
		}

		ret, err := fn(nil, args...)
		return joinResults(typ, ret, err)
	})
}

func isNumber(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64 && k != reflect.Uintptr
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}
