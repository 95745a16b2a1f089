package plumb

import "errors"

var (
	// ErrInvalidArgument is returned when something that should be
	// callable is not.
	ErrInvalidArgument = errors.New("plumb: invalid argument")

	// ErrInvalidArguments is returned by an assembled call when an argument
	// list cannot be used, such as a mutating before hook that returned
	// something other than []any.
	ErrInvalidArguments = errors.New("plumb: invalid call arguments")

	// ErrSignatureMismatch is returned when a native replacement does not
	// have the signature of the function it replaces.
	ErrSignatureMismatch = errors.New("plumb: function signatures do not match")

	// ErrNoMethod is returned by Object.Call for a name with no callable.
	ErrNoMethod = errors.New("plumb: no such method")
)
