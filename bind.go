package plumb

import (
	"fmt"
	"reflect"
)

// restorer is implemented by holders that keep a native copy of the original
// and can put it back exactly.
type restorer interface {
	restore(name string)
}

// Binding plumbs a named slot in a Holder. The plumbing methods mirror the
// Handler's but return the Binding so Install can end the chain:
//
//	b, err := plumb.Bind(methods, "move")
//	if err != nil {
//		return err
//	}
//	b.PlumbAfter(logMove, false).Install()
//	defer b.Release()
type Binding struct {
	holder Holder
	name   string
	h      *Handler

	// Native signature of the slot, if known.
	sig reflect.Type

	installed bool
}

// Bind captures the function currently held under name and returns a Binding
// for it. An error wrapping ErrInvalidArgument is returned if holder is nil or
// has nothing callable under name.
func Bind(holder Holder, name string) (*Binding, error) {
	if holder == nil {
		return nil, fmt.Errorf("%w: nil holder", ErrInvalidArgument)
	}

	fn, ok := holder.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: nothing callable named %q", ErrInvalidArgument, name)
	}

	h, err := New(fn)
	if err != nil {
		return nil, err
	}

	return &Binding{
		holder: holder,
		name:   name,
		h:      h,
	}, nil
}

// Handler returns the Handler behind the Binding.
func (b *Binding) Handler() *Handler {
	return b.h
}

// Replace is Handler.Replace.
func (b *Binding) Replace(fn Func) *Binding {
	b.h.Replace(fn)
	return b
}

// Redefine replaces the function with a native Go function. For bindings
// created with BindVar fn must have the variable's type, otherwise an error
// wrapping ErrSignatureMismatch lists the differences.
func (b *Binding) Redefine(fn any) (*Binding, error) {
	if b.sig != nil {
		if err := checkSignature(b.sig, fn); err != nil {
			return b, err
		}
	}

	f, err := Of(fn)
	if err != nil {
		return b, err
	}

	b.h.Replace(f)
	return b, nil
}

// PlumbBefore is Handler.PlumbBefore.
func (b *Binding) PlumbBefore(fn Func, mutating bool) *Binding {
	b.h.PlumbBefore(fn, mutating)
	return b
}

// PlumbAfter is Handler.PlumbAfter.
func (b *Binding) PlumbAfter(fn Func, mutating bool) *Binding {
	b.h.PlumbAfter(fn, mutating)
	return b
}

// PlumbWrapper is Handler.PlumbWrapper.
func (b *Binding) PlumbWrapper(fn Func) *Binding {
	b.h.PlumbWrapper(fn)
	return b
}

// Original returns the function that was in the slot when it was bound.
func (b *Binding) Original() Func {
	return b.h.Original()
}

// Setup is Handler.Setup.
func (b *Binding) Setup() Func {
	return b.h.Setup()
}

// Install assembles the current plumbing and writes it into the slot. It can
// be called again to pick up later changes.
func (b *Binding) Install() *Binding {
	b.holder.Set(b.name, b.h.Setup())
	b.installed = true
	return b
}

// Release puts the original function back into the slot. Releasing more than
// once has no further effect.
func (b *Binding) Release() *Binding {
	if r, ok := b.holder.(restorer); ok {
		r.restore(b.name)
	} else {
		b.holder.Set(b.name, b.h.Original())
	}
	b.installed = false
	return b
}

// Installed reports whether the plumbing is currently installed.
func (b *Binding) Installed() bool {
	return b.installed
}

// varHolder is a Holder over a single function variable.
type varHolder[F any] struct {
	ptr    *F
	orig   F
	native Func
}

func (v *varHolder[F]) Get(string) (Func, bool) {
	return v.native, true
}

func (v *varHolder[F]) Set(_ string, fn Func) {
	f, err := MakeFunc[F](fn)
	if err != nil {
		// BindVar has already checked F.
		panic(err)
	}
	*v.ptr = f
}

func (v *varHolder[F]) restore(string) {
	*v.ptr = v.orig
}

// BindVar binds a function variable, such as a package level hook:
//
//	var now = time.Now
//
//	b, err := plumb.BindVar(&now)
//
// Install stores a native function of type F that runs the plumbing, and
// Release stores the exact value the variable held when it was bound.
func BindVar[F any](ptr *F) (*Binding, error) {
	if ptr == nil {
		return nil, fmt.Errorf("%w: nil variable", ErrInvalidArgument)
	}

	fnv := reflect.ValueOf(*ptr)
	if fnv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: not a function, kind: %v", ErrInvalidArgument, fnv.Kind())
	}

	native, err := Of(*ptr)
	if err != nil {
		return nil, err
	}

	vh := &varHolder[F]{
		ptr:    ptr,
		orig:   *ptr,
		native: native,
	}

	b, err := Bind(vh, "")
	if err != nil {
		return nil, err
	}
	b.sig = fnv.Type()
	return b, nil
}
