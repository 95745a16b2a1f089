package plumb

// AfterReturnValue returns the last element of the arguments an after hook
// receives, which is the value returned by the execution target. It returns
// nil for an empty list.
func AfterReturnValue(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[len(args)-1]
}

// AfterArguments returns the arguments an after hook receives without the
// trailing return value.
func AfterArguments(args []any) []any {
	if len(args) <= 1 {
		return []any{}
	}
	return args[:len(args)-1:len(args)-1]
}

// WrapperArguments returns the arguments a wrapper receives without the
// leading wrapped function.
func WrapperArguments(args []any) []any {
	if len(args) <= 1 {
		return []any{}
	}
	return args[1:]
}

// WrappedFunc returns the execution target a wrapper receives as its first
// argument, or nil if there isn't one.
func WrappedFunc(args []any) Bound {
	if len(args) == 0 {
		return nil
	}
	fn, _ := args[0].(Bound)
	return fn
}
