package lua

import (
	"fmt"

	"github.com/pboyd/plumb"
	lua "github.com/yuin/gopher-lua"
)

// toLua converts a Go value to a Lua value.
func (s *State) toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int8:
		return lua.LNumber(val)
	case int16:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint8:
		return lua.LNumber(val)
	case uint16:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := s.L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, s.toLua(item))
		}
		return t
	case map[string]any:
		t := s.L.NewTable()
		for k, item := range val {
			t.RawSetString(k, s.toLua(item))
		}
		return t
	case plumb.Bound:
		if val == nil {
			return lua.LNil
		}
		return s.goFunction(val)
	case plumb.Func:
		if val == nil {
			return lua.LNil
		}
		return s.goFunction(func(args ...any) (any, error) {
			if len(args) == 0 {
				return val(nil)
			}
			return val(args[0], args[1:]...)
		})
	case lua.LValue:
		return val
	}

	ud := s.L.NewUserData()
	ud.Value = v
	return ud
}

// goFunction exposes fn to Lua. An error from fn is raised in Lua as userdata
// so that it survives the trip back to Go.
func (s *State) goFunction(fn plumb.Bound) *lua.LFunction {
	return s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		args := make([]any, n)
		for i := 1; i <= n; i++ {
			args[i-1] = s.toGo(L.Get(i))
		}

		ret, err := fn(args...)
		if err != nil {
			ud := L.NewUserData()
			ud.Value = err
			L.Error(ud, 1)
			return 0
		}

		L.Push(s.toLua(ret))
		return 1
	})
}

// toGo converts a Lua value to a Go value.
func (s *State) toGo(lv lua.LValue) any {
	return s.toGoWithVisited(lv, map[*lua.LTable]bool{})
}

func (s *State) toGoWithVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		// Break cycles. A table seen twice outside its own nesting is
		// converted each time.
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return s.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	case *lua.LFunction:
		return plumb.Bound(func(args ...any) (any, error) {
			return s.invoke(v, args)
		})
	}
	return nil
}

// tableToGo converts arrays (keys 1..n, or no keys at all) to []any and
// everything else to map[string]any.
func (s *State) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) {
		count++
	})

	if count == n {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = s.toGoWithVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprint(float64(kv))
		default:
			key = k.String()
		}
		m[key] = s.toGoWithVisited(v, visited)
	})
	return m
}
