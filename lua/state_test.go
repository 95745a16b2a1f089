package lua

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pboyd/plumb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T, opts ...StateOption) *State {
	t.Helper()
	state := NewState(opts...)
	t.Cleanup(func() { state.Close() })
	return state
}

func add(_ any, args ...any) (any, error) {
	return args[0].(int64) + args[1].(int64), nil
}

func TestStateFunc(t *testing.T) {
	state := newTestState(t)

	fn, err := state.Func(`return function(recv, a, b) return a .. "/" .. b end`)
	require.NoError(t, err)

	ret, err := fn(nil, "x", "y")
	assert.NoError(t, err)
	assert.Equal(t, "x/y", ret)
}

func TestStateFunc_NotAFunction(t *testing.T) {
	state := newTestState(t)

	_, err := state.Func(`return 42`)
	assert.ErrorIs(t, err, ErrNotFunction)

	_, err = state.Func(`return function(`)
	assert.Error(t, err)
}

func TestStateGlobal(t *testing.T) {
	state := newTestState(t)

	require.NoError(t, state.Do(`
		function greet(recv, name)
			return "hello " .. name
		end
		answer = 42
	`))

	fn, err := state.Global("greet")
	require.NoError(t, err)

	ret, err := fn(nil, "lua")
	assert.NoError(t, err)
	assert.Equal(t, "hello lua", ret)

	_, err = state.Global("answer")
	assert.ErrorIs(t, err, ErrNotFunction)

	_, err = state.Global("missing")
	assert.ErrorIs(t, err, ErrNotFunction)
}

func TestStateSandbox(t *testing.T) {
	state := newTestState(t)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os"} {
		t.Run(name, func(t *testing.T) {
			fn, err := state.Func(fmt.Sprintf(`return function() return %s == nil end`, name))
			require.NoError(t, err)

			ret, err := fn(nil)
			assert.NoError(t, err)
			assert.Equal(t, true, ret)
		})
	}
}

func TestStateClose(t *testing.T) {
	state := NewState()

	fn, err := state.Func(`return function() return 1 end`)
	require.NoError(t, err)

	require.NoError(t, state.Close())
	assert.True(t, state.IsClosed())
	assert.NoError(t, state.Close())

	_, err = fn(nil)
	assert.ErrorIs(t, err, ErrStateClosed)

	_, err = state.Func(`return function() end`)
	assert.ErrorIs(t, err, ErrStateClosed)

	assert.ErrorIs(t, state.Do(`x = 1`), ErrStateClosed)

	_, err = state.Global("x")
	assert.ErrorIs(t, err, ErrStateClosed)
}

func TestStateTimeout(t *testing.T) {
	state := newTestState(t, WithTimeout(50*time.Millisecond))

	fn, err := state.Func(`return function() while true do end end`)
	require.NoError(t, err)

	_, err = fn(nil)
	assert.ErrorIs(t, err, ErrTimeout)

	// The state is still usable.
	fn, err = state.Func(`return function() return "ok" end`)
	require.NoError(t, err)
	ret, err := fn(nil)
	assert.NoError(t, err)
	assert.Equal(t, "ok", ret)
}

func TestFunc_Timeout(t *testing.T) {
	state := newTestState(t, WithTimeout(50*time.Millisecond))

	_, err := state.Func(`while true do end return function() end`)
	assert.ErrorIs(t, err, ErrTimeout)

	fn, err := state.Func(`return function() return "ok" end`)
	require.NoError(t, err)
	ret, err := fn(nil)
	assert.NoError(t, err)
	assert.Equal(t, "ok", ret)
}

func TestStateRuntimeError(t *testing.T) {
	state := newTestState(t)

	fn, err := state.Func(`return function() error("bad hook") end`)
	require.NoError(t, err)

	_, err = fn(nil)
	var apiErr *lua.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, err.Error(), "bad hook")
}

func TestLuaBeforeMutating(t *testing.T) {
	state := newTestState(t)

	double, err := state.Func(`return function(recv, a, b) return {a * 2, b * 2} end`)
	require.NoError(t, err)

	instrumented := plumb.MustNew(func(a, b int) int { return a + b }).
		PlumbBefore(double, true).
		Setup()

	ret, err := instrumented(nil, 2, 3)
	assert.NoError(t, err)
	assert.Equal(t, 10, ret)
}

func TestLuaAfterMutating(t *testing.T) {
	state := newTestState(t)

	paren, err := state.Func(`return function(recv, a, b, ret) return "(" .. ret .. ")" end`)
	require.NoError(t, err)

	instrumented := plumb.MustNew(func(a, b int) string { return fmt.Sprintf("A=%d B=%d", a, b) }).
		PlumbAfter(paren, true).
		Setup()

	ret, err := instrumented(nil, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, "(A=1 B=2)", ret)
}

func TestLuaWrapper(t *testing.T) {
	state := newTestState(t)

	calls := 0
	square := plumb.Func(func(_ any, args ...any) (any, error) {
		calls++
		a := args[0].(int64)
		return a * a, nil
	})

	wrapper, err := state.Func(`
		return function(recv, fn, a)
			local r
			for i = 1, a do
				r = fn(a)
			end
			return r
		end
	`)
	require.NoError(t, err)

	instrumented := plumb.MustNew(square).PlumbWrapper(wrapper).Setup()

	ret, err := instrumented(nil, int64(3))
	assert.NoError(t, err)
	assert.Equal(t, int64(9), ret)
	assert.Equal(t, 3, calls)
}

func TestLuaWrapper_GoError(t *testing.T) {
	state := newTestState(t)

	errTarget := errors.New("target failed")
	failing := plumb.Func(func(any, ...any) (any, error) { return nil, errTarget })

	wrapper, err := state.Func(`return function(recv, fn) return fn() end`)
	require.NoError(t, err)

	_, err = plumb.MustNew(failing).PlumbWrapper(wrapper).Setup()(nil)
	assert.Same(t, errTarget, err)
}

func TestLuaReplace(t *testing.T) {
	state := newTestState(t)

	sub, err := state.Func(`return function(recv, a, b) return a - b end`)
	require.NoError(t, err)

	h := plumb.MustNew(add).Replace(sub)

	ret, err := h.Setup()(nil, int64(4), int64(3))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), ret)

	ret, err = h.Original()(nil, int64(4), int64(3))
	assert.NoError(t, err)
	assert.Equal(t, int64(7), ret)
}

func TestLuaReceiver(t *testing.T) {
	state := newTestState(t)

	type animal struct{ name string }
	dog := &animal{name: "dog"}

	echo, err := state.Func(`return function(recv) return recv end`)
	require.NoError(t, err)

	ret, err := echo(dog)
	assert.NoError(t, err)
	assert.Same(t, dog, ret)
}
