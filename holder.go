package plumb

import "fmt"

// Holder is anything with named callable slots that a Binding can read and
// write.
type Holder interface {
	Get(name string) (Func, bool)
	Set(name string, fn Func)
}

// Methods is a table of named functions shared by every Object built on it.
// Installing into a Methods table changes the method for all of those
// objects, except ones that have their own function under the same name.
type Methods map[string]Func

// Get implements Holder.
func (m Methods) Get(name string) (Func, bool) {
	fn, ok := m[name]
	return fn, ok && fn != nil
}

// Set implements Holder.
func (m Methods) Set(name string, fn Func) {
	m[name] = fn
}

// Object is an instance with its own functions that shadow a shared Methods
// table. Methods are called with the Object as the receiver.
type Object struct {
	// State is the instance data methods can reach through the receiver.
	State any

	proto Methods
	own   Methods
}

// NewObject creates an Object that falls back to proto for anything it doesn't
// define itself.
func NewObject(proto Methods, state any) *Object {
	return &Object{
		State: state,
		proto: proto,
	}
}

// Proto returns the shared table the Object falls back to.
func (o *Object) Proto() Methods {
	return o.proto
}

// Get implements Holder. The Object's own functions take precedence over the
// shared table.
func (o *Object) Get(name string) (Func, bool) {
	if o == nil {
		return nil, false
	}
	if fn, ok := o.own.Get(name); ok {
		return fn, true
	}
	return o.proto.Get(name)
}

// Set implements Holder. It only ever changes this Object.
func (o *Object) Set(name string, fn Func) {
	if o.own == nil {
		o.own = Methods{}
	}
	o.own.Set(name, fn)
}

// Call invokes the named method with o as the receiver.
func (o *Object) Call(name string, args ...any) (any, error) {
	fn, ok := o.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoMethod, name)
	}
	return fn(o, args...)
}
