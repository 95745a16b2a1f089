// Package lua lets plumbing be written in Lua.
//
// A State compiles Lua chunks that evaluate to a function into plumb.Func
// values, which can then be used anywhere a Func can: as a replacement, a
// before or after hook, or a wrapper.
//
//	state := lua.NewState(lua.WithTimeout(time.Second))
//	defer state.Close()
//
//	double, err := state.Func(`return function(recv, a, b) return {a * 2, b * 2} end`)
//	if err != nil {
//		return err
//	}
//	add := plumb.MustNew(sum).PlumbBefore(double, true).Setup()
//
// The receiver is always the first Lua argument. Values are converted on the
// way in and out:
//   - nil, booleans, numbers and strings map to their Lua counterparts.
//     Whole Lua numbers come back as int64, others as float64.
//   - []any and map[string]any become tables. Tables with keys 1..n (and
//     empty tables) come back as []any, others as map[string]any.
//   - plumb.Bound and plumb.Func become Lua functions, so a wrapper written
//     in Lua can call its target directly. Lua functions come back as
//     plumb.Bound.
//   - Anything else travels as userdata and comes back unchanged.
//
// Errors returned by Go functions called from Lua come back out of the Func
// unchanged. Lua runtime errors are returned as *lua.ApiError from
// gopher-lua.
//
// Like the gopher-lua state it wraps, a State must only be used from one
// goroutine at a time. That includes calling the Funcs it produced.
package lua
