package lua

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pboyd/plumb"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout is how long a single call may run unless WithTimeout says
// otherwise.
const DefaultTimeout = 5 * time.Second

// State wraps a sandboxed gopher-lua state.
type State struct {
	L *lua.LState

	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout limits how long each top level call may run. Zero disables the
// limit.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a Lua state with only the base, table, string and math
// libraries loaded. Functions that load code from files or strings are
// removed.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	s.L = L
	return s
}

// Do runs a chunk for its side effects, such as defining globals for Global.
func (s *State) Do(src string) error {
	if s.closed {
		return ErrStateClosed
	}

	fn, err := s.L.LoadString(src)
	if err != nil {
		return err
	}

	_, err = s.invoke(fn, nil)
	return err
}

// Func runs a chunk that must evaluate to a function and returns that
// function as a plumb.Func.
//
//	fn, err := state.Func(`return function(recv, name) return "hello " .. name end`)
func (s *State) Func(src string) (plumb.Func, error) {
	if s.closed {
		return nil, ErrStateClosed
	}

	chunk, err := s.L.LoadString(src)
	if err != nil {
		return nil, err
	}

	lv, err := s.call(chunk, nil)
	if err != nil {
		return nil, err
	}

	fn, ok := lv.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: chunk returned %s", ErrNotFunction, lv.Type())
	}
	return s.funcOf(fn), nil
}

// Global returns the global Lua function name as a plumb.Func.
func (s *State) Global(name string) (plumb.Func, error) {
	if s.closed {
		return nil, ErrStateClosed
	}

	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotFunction, name, s.L.GetGlobal(name).Type())
	}
	return s.funcOf(fn), nil
}

// SetGlobal makes a Go value available to Lua code under name.
func (s *State) SetGlobal(name string, v any) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.toLua(v))
}

// Close releases the Lua state. Funcs made by the state return
// ErrStateClosed afterwards.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

func (s *State) funcOf(fn *lua.LFunction) plumb.Func {
	return func(recv any, args ...any) (any, error) {
		return s.invoke(fn, append([]any{recv}, args...))
	}
}

// invoke calls fn with args and returns its first result.
func (s *State) invoke(fn *lua.LFunction, args []any) (any, error) {
	lv, err := s.call(fn, args)
	if err != nil {
		return nil, err
	}
	return s.toGo(lv), nil
}

// call is invoke without converting the result back to Go.
func (s *State) call(fn *lua.LFunction, args []any) (lua.LValue, error) {
	if s.closed {
		return nil, ErrStateClosed
	}

	// Only the outermost call sets a deadline.
	var ctx context.Context
	if s.timeout > 0 && s.L.Context() == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			cancel()
		}()
	}

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(s.toLua(arg))
	}

	if err := s.L.PCall(len(args), 1, nil); err != nil {
		return nil, s.callError(ctx, err)
	}

	return s.L.Get(-1), nil
}

// callError recovers Go errors raised from inside Lua and flags timeouts.
func (s *State) callError(ctx context.Context, err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if goErr, ok := ud.Value.(error); ok {
				return goErr
			}
		}
	}

	if ctx != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
