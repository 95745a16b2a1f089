// Plumb functions the way a plumber would: cut in before, after or around
// an existing call without tearing out the original.
//
// A Handler is built over one callable with New. Hooks are attached with
// PlumbBefore, PlumbAfter and PlumbWrapper, the call itself can be swapped
// with Replace, and Setup assembles everything into a single Func. The
// original is always available from Original.
//
// Bind does the same for a named slot in a Holder (a Methods table, an
// Object or a Go function variable via BindVar), with Install writing the
// assembled Func into the slot and Release putting the original back.
//
// Callables take an explicit receiver and a variable list of arguments:
//
//	func(recv any, args ...any) (any, error)
//
// Ordinary Go functions can be adapted with Of and OfMethod, and turned back
// into native functions with MakeFunc.
//
// Limitations:
//   - Assembly is a snapshot. Hooks added after Setup or Install have no
//     effect until the next Setup or Install.
//   - Nothing is synchronized. Callers that Install and Release from several
//     goroutines must serialize those calls themselves.
//   - Errors and panics from hooks and targets are passed through untouched.
package plumb
