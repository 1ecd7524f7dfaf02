package jsre

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dop251/goja"
)

// JSObjectProxy is the host-side view of a plain JS object: property access
// reads through to the live JS object rather than snapshotting it.
type JSObjectProxy struct {
	rt  *goja.Runtime
	obj *goja.Object
}

// NewJSObjectProxy wraps obj for host-side use.
func NewJSObjectProxy(rt *goja.Runtime, obj *goja.Object) *JSObjectProxy {
	return &JSObjectProxy{rt: rt, obj: obj}
}

// Get reads a property, converting it through the JS->host classifier.
func (p *JSObjectProxy) Get(key string) (any, error) {
	return jsToHost(p.rt, p.obj.Get(key))
}

// Set writes a property, converting through the host->JS classifier.
func (p *JSObjectProxy) Set(key string, value any) error {
	v, err := hostToJS(p.rt, value)
	if err != nil {
		return err
	}
	return p.obj.Set(key, v)
}

// Delete removes a property, mirroring JS `delete obj[key]`.
func (p *JSObjectProxy) Delete(key string) error {
	return p.obj.Delete(key)
}

// Has reports whether key is present, walking the prototype chain the way
// the `in` operator does.
func (p *JSObjectProxy) Has(key string) bool {
	return p.obj.Get(key) != nil
}

// Keys returns a live view over the object's own enumerable keys.
func (p *JSObjectProxy) Keys() *jsObjectKeysView {
	return &jsObjectKeysView{rt: p.rt, obj: p.obj}
}

// Values returns a live view over the object's own enumerable values.
func (p *JSObjectProxy) Values() *jsObjectValuesView {
	return &jsObjectValuesView{rt: p.rt, obj: p.obj}
}

// Items returns a live view over the object's own enumerable [key, value]
// pairs.
func (p *JSObjectProxy) Items() *jsObjectItemsView {
	return &jsObjectItemsView{rt: p.rt, obj: p.obj}
}

func (p *JSObjectProxy) String() string {
	return p.obj.String()
}

// Unwrap returns the underlying JS object, for callers that need to pass it
// back into another Eval call.
func (p *JSObjectProxy) Unwrap() *goja.Object { return p.obj }

// jsObjectKeysView supplements the proxy family with a dict_keys-style
// cardinality-and-membership view, rather than a point-in-time key slice.
type jsObjectKeysView struct {
	rt  *goja.Runtime
	obj *goja.Object
}

func (v *jsObjectKeysView) Cardinality() int {
	return len(v.obj.Keys())
}

func (v *jsObjectKeysView) String() string {
	return "jsObjectKeysView(" + strings.Join(v.obj.Keys(), ", ") + ")"
}

func (v *jsObjectKeysView) Contains(key string) bool {
	for _, k := range v.obj.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Intersect returns the keys also present in other, matching Python
// dict_keys' set-like intersection behavior.
func (v *jsObjectKeysView) Intersect(other *jsObjectKeysView) []string {
	set := mapset.NewThreadUnsafeSet[string](v.obj.Keys()...)
	otherSet := mapset.NewThreadUnsafeSet[string](other.obj.Keys()...)
	return set.Intersect(otherSet).ToSlice()
}

func (v *jsObjectKeysView) Next() func() (string, bool) {
	keys := v.obj.Keys()
	i := 0
	return func() (string, bool) {
		if i >= len(keys) {
			return "", false
		}
		k := keys[i]
		i++
		return k, true
	}
}

type jsObjectValuesView struct {
	rt  *goja.Runtime
	obj *goja.Object
}

func (v *jsObjectValuesView) Cardinality() int { return len(v.obj.Keys()) }

func (v *jsObjectValuesView) Next() func() (any, bool, error) {
	keys := v.obj.Keys()
	i := 0
	return func() (any, bool, error) {
		if i >= len(keys) {
			return nil, false, nil
		}
		k := keys[i]
		i++
		val, err := jsToHost(v.rt, v.obj.Get(k))
		return val, true, err
	}
}

type jsObjectItemsView struct {
	rt  *goja.Runtime
	obj *goja.Object
}

func (v *jsObjectItemsView) Cardinality() int { return len(v.obj.Keys()) }

func (v *jsObjectItemsView) Next() func() (string, any, bool, error) {
	keys := v.obj.Keys()
	i := 0
	return func() (string, any, bool, error) {
		if i >= len(keys) {
			return "", nil, false, nil
		}
		k := keys[i]
		i++
		val, err := jsToHost(v.rt, v.obj.Get(k))
		return k, val, true, err
	}
}

// JSArrayProxy is the host-side view of a JS array, backed by the live
// array rather than a snapshot.
type JSArrayProxy struct {
	rt  *goja.Runtime
	obj *goja.Object
}

func NewJSArrayProxy(rt *goja.Runtime, obj *goja.Object) *JSArrayProxy {
	return &JSArrayProxy{rt: rt, obj: obj}
}

func (p *JSArrayProxy) Len() int {
	return int(p.obj.Get("length").ToInteger())
}

func (p *JSArrayProxy) Get(i int) (any, error) {
	return jsToHost(p.rt, p.obj.Get(fmt.Sprintf("%d", i)))
}

func (p *JSArrayProxy) Set(i int, value any) error {
	v, err := hostToJS(p.rt, value)
	if err != nil {
		return err
	}
	return p.obj.Set(fmt.Sprintf("%d", i), v)
}

func (p *JSArrayProxy) String() string {
	return p.obj.String()
}

func (p *JSArrayProxy) Unwrap() *goja.Object { return p.obj }

// Iter returns a forward iterator over the array's current elements.
func (p *JSArrayProxy) Iter() *jsArrayIterator {
	return &jsArrayIterator{rt: p.rt, obj: p.obj, idx: 0, step: 1}
}

// ReverseIter returns an iterator that walks the array from its last index
// to its first, re-reading length and each element lazily so concurrent
// in-place mutation (e.g. a host-triggered sort) is reflected mid-iteration.
func (p *JSArrayProxy) ReverseIter() *jsArrayIterator {
	return &jsArrayIterator{rt: p.rt, obj: p.obj, idx: p.Len() - 1, step: -1}
}

type jsArrayIterator struct {
	rt   *goja.Runtime
	obj  *goja.Object
	idx  int
	step int
}

func (it *jsArrayIterator) Next() (any, bool) {
	length := int(it.obj.Get("length").ToInteger())
	if it.idx < 0 || it.idx >= length {
		return nil, false
	}
	v, err := jsToHost(it.rt, it.obj.Get(fmt.Sprintf("%d", it.idx)))
	it.idx += it.step
	if err != nil {
		return nil, false
	}
	return v, true
}

// JSFunctionProxy is the host-side callable view of a JS function. obj holds
// the function's own object identity so a round trip back into JS (e.g.
// passing the proxy as an argument to another Eval call) hands back the
// original function rather than failing for lack of anything to unwrap.
type JSFunctionProxy struct {
	rt   *goja.Runtime
	obj  *goja.Object
	fn   goja.Callable
	this goja.Value
}

// NewJSFunctionProxy wraps a free function value: obj is the function's own
// object (the value Call invokes fn against defaults to that object's own
// `this`-less call convention).
func NewJSFunctionProxy(rt *goja.Runtime, obj *goja.Object, fn goja.Callable) *JSFunctionProxy {
	return &JSFunctionProxy{rt: rt, obj: obj, fn: fn, this: goja.Undefined()}
}

// Unwrap returns the underlying JS function object.
func (p *JSFunctionProxy) Unwrap() *goja.Object { return p.obj }

// Call invokes the function with host arguments converted through the
// host->JS classifier, and converts the result back.
func (p *JSFunctionProxy) Call(args ...any) (any, error) {
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		v, err := hostToJS(p.rt, a)
		if err != nil {
			return nil, err
		}
		jsArgs[i] = v
	}
	res, err := p.fn(p.this, jsArgs...)
	if err != nil {
		return nil, wrapJSException(err)
	}
	return jsToHost(p.rt, res)
}

// JSMethodProxy is a function proxy bound to a receiver object, matching
// the distinction between a free function value and `obj.method`.
type JSMethodProxy struct {
	*JSFunctionProxy
	receiver *goja.Object
}

func NewJSMethodProxy(rt *goja.Runtime, receiver *goja.Object, name string) (*JSMethodProxy, error) {
	methodVal := receiver.Get(name)
	fn, ok := goja.AssertFunction(methodVal)
	if !ok {
		return nil, fmt.Errorf("jsre: %q is not a function", name)
	}
	methodObj, _ := methodVal.(*goja.Object)
	return &JSMethodProxy{
		JSFunctionProxy: &JSFunctionProxy{rt: rt, obj: methodObj, fn: fn, this: receiver},
		receiver:        receiver,
	}, nil
}
