package jsre

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/dop251/goja"
)

// baseHostHandler implements the proxy traps shared by every host->JS
// handler family: the prototype is fixed and non-configurable, the target
// can never become extensible, and property definition is rejected outright
// since a host-backed proxy's shape is dictated by the Go value behind it,
// not by arbitrary JS-side mutation of its descriptors.
type baseHostHandler struct{}

func (baseHostHandler) getPrototypeOf(target *goja.Object) *goja.Object {
	return target.Prototype()
}

func (baseHostHandler) isExtensible(*goja.Object) bool { return false }

func (baseHostHandler) preventExtensions(*goja.Object) bool { return true }

func (baseHostHandler) defineProperty(*goja.Object, string, goja.PropertyDescriptor) bool {
	return false
}

// hostDictToJS wraps a host map (or struct treated as a mapping) as a JS
// object whose property access reads through to live map entries.
func hostDictToJS(rt *goja.Runtime, v any) (goja.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	target := rt.NewObject()
	h := mappingHandler{rt: rt, base: baseHostHandler{}, data: rv}
	cfg := &goja.ProxyTrapConfig{
		GetPrototypeOf:    h.getPrototypeOf,
		IsExtensible:      h.isExtensible,
		PreventExtensions: h.preventExtensions,
		DefineProperty:    h.defineProperty,
		HasProperty:       h.has,
		Get:               h.get,
		Set:               h.set,
		Delete:            h.deleteProperty,
		OwnKeys:           h.ownKeys,
	}
	obj := newHostProxy(rt, target, cfg, familyMapping, v)
	return obj, nil
}

type mappingHandler struct {
	rt   *goja.Runtime
	base baseHostHandler
	data reflect.Value
}

func (h mappingHandler) getPrototypeOf(t *goja.Object) *goja.Object    { return h.base.getPrototypeOf(t) }
func (h mappingHandler) isExtensible(t *goja.Object) bool              { return h.base.isExtensible(t) }
func (h mappingHandler) preventExtensions(t *goja.Object) bool         { return h.base.preventExtensions(t) }
func (h mappingHandler) defineProperty(t *goja.Object, k string, d goja.PropertyDescriptor) bool {
	return h.base.defineProperty(t, k, d)
}

func (h mappingHandler) has(_ *goja.Object, key string) bool {
	return h.mapValue(key).IsValid()
}

func (h mappingHandler) get(_ *goja.Object, key string, _ *goja.Object) goja.Value {
	v := h.mapValue(key)
	if !v.IsValid() {
		return goja.Undefined()
	}
	jv, err := hostToJS(h.rt, v.Interface())
	if err != nil {
		panic(h.rt.NewGoError(err))
	}
	return jv
}

func (h mappingHandler) set(_ *goja.Object, key string, value goja.Value, _ *goja.Object) bool {
	if h.data.Kind() != reflect.Map {
		return false
	}
	hv, err := jsToHost(h.rt, value)
	if err != nil {
		return false
	}
	keyVal := reflect.ValueOf(key).Convert(h.data.Type().Key())
	h.data.SetMapIndex(keyVal, reflect.ValueOf(hv))
	return true
}

func (h mappingHandler) deleteProperty(_ *goja.Object, key string) bool {
	if h.data.Kind() != reflect.Map {
		return false
	}
	keyVal := reflect.ValueOf(key).Convert(h.data.Type().Key())
	h.data.SetMapIndex(keyVal, reflect.Value{})
	return true
}

func (h mappingHandler) ownKeys(*goja.Object) *goja.Object {
	var keys []string
	if h.data.Kind() == reflect.Map {
		for _, k := range h.data.MapKeys() {
			keys = append(keys, fmt.Sprint(k.Interface()))
		}
		sort.Strings(keys)
	}
	return h.rt.NewArray(toAnySlice(keys)...)
}

func (h mappingHandler) mapValue(key string) reflect.Value {
	if h.data.Kind() != reflect.Map {
		return reflect.Value{}
	}
	keyVal := reflect.ValueOf(key)
	if !keyVal.Type().ConvertibleTo(h.data.Type().Key()) {
		return reflect.Value{}
	}
	return h.data.MapIndex(keyVal.Convert(h.data.Type().Key()))
}

func toAnySlice(keys []string) []interface{} {
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

// hostListToJS wraps a host slice as a JS Array-like proxy implementing the
// Array.prototype methods (§4.D). When v is a pointer to a slice, mutating
// methods (push/pop/splice/sort/...) write the result back through the
// pointer so the caller's own variable sees the change; when v is a plain
// []any, the same-length in-place case (sort, fill, indexed set) already
// aliases the caller's backing array and needs no extra write-back. A
// non-pointer typed slice (e.g. []int by value) is copied into a fresh
// []any, so no mutation of any kind, same-length or not, reaches the
// caller's slice.
func hostListToJS(rt *goja.Runtime, v any) (goja.Value, error) {
	data, writeBack, ok := toAnyList(v)
	if !ok {
		return nil, fmt.Errorf("jsre: %T is not list-like", v)
	}
	h := &listHandler{rt: rt, data: data, writeBack: writeBack}
	target := rt.NewObject()
	cfg := &goja.ProxyTrapConfig{
		GetPrototypeOf:    h.getPrototypeOf,
		IsExtensible:      h.isExtensible,
		PreventExtensions: h.preventExtensions,
		DefineProperty:    h.defineProperty,
		HasProperty:       h.has,
		Get:               h.get,
		Set:               h.set,
		Delete:            h.deleteProperty,
		OwnKeys:           h.ownKeys,
	}
	obj := newHostProxy(rt, target, cfg, familyList, v)
	return obj, nil
}

// toAnyList extracts a []any working copy of v's elements and, when v is a
// pointer to a slice, a writeBack func that reassigns *v afterward so
// length-changing mutations (push, splice, ...) are visible to the caller.
func toAnyList(v any) (data []any, writeBack func([]any), ok bool) {
	if s, isAny := v.([]any); isAny {
		return s, nil, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
			return nil, nil, false
		}
		elem := rv.Elem()
		data = sliceToAnyList(elem)
		elemType := elem.Type()
		writeBack = func(next []any) {
			out := reflect.MakeSlice(elemType, len(next), len(next))
			for i, item := range next {
				setSliceElement(out.Index(i), item)
			}
			elem.Set(out)
		}
		return data, writeBack, true
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, nil, false
	}
	return sliceToAnyList(rv), nil, true
}

func sliceToAnyList(rv reflect.Value) []any {
	if s, ok := rv.Interface().([]any); ok {
		return s
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// setSliceElement assigns v into dst, converting when the stored host value
// isn't already dst's exact type (e.g. an int64 produced by jsToHost landing
// in an []int-typed slot).
func setSliceElement(dst reflect.Value, v any) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return
	}
	if rv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(rv.Convert(dst.Type()))
	}
}

type listHandler struct {
	rt        *goja.Runtime
	base      baseHostHandler
	data      []any
	writeBack func([]any)
}

// sync propagates the handler's current data back to the original host
// container, for handlers constructed from a pointer-to-slice.
func (h *listHandler) sync() {
	if h.writeBack != nil {
		h.writeBack(h.data)
	}
}

func (h *listHandler) getPrototypeOf(t *goja.Object) *goja.Object { return h.base.getPrototypeOf(t) }
func (h *listHandler) isExtensible(t *goja.Object) bool           { return h.base.isExtensible(t) }
func (h *listHandler) preventExtensions(t *goja.Object) bool      { return h.base.preventExtensions(t) }
func (h *listHandler) defineProperty(t *goja.Object, k string, d goja.PropertyDescriptor) bool {
	return h.base.defineProperty(t, k, d)
}

func (h *listHandler) has(_ *goja.Object, key string) bool {
	if key == "length" {
		return true
	}
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0 && i < len(h.data)
}

func (h *listHandler) get(_ *goja.Object, key string, receiver *goja.Object) goja.Value {
	if key == "length" {
		return h.rt.ToValue(len(h.data))
	}
	if method, ok := arrayMethods[key]; ok {
		return h.rt.ToValue(func(call goja.FunctionCall) goja.Value {
			res, err := method(h, call.Arguments)
			if err != nil {
				panic(h.rt.NewGoError(err))
			}
			if res == nil {
				return call.This
			}
			return res
		})
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(h.data) {
		return goja.Undefined()
	}
	jv, cerr := hostToJS(h.rt, h.data[i])
	if cerr != nil {
		panic(h.rt.NewGoError(cerr))
	}
	return jv
}

func (h *listHandler) set(_ *goja.Object, key string, value goja.Value, _ *goja.Object) bool {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return false
	}
	hv, err := jsToHost(h.rt, value)
	if err != nil {
		return false
	}
	for i >= len(h.data) {
		h.data = append(h.data, nil)
	}
	h.data[i] = hv
	h.sync()
	return true
}

func (h *listHandler) deleteProperty(_ *goja.Object, key string) bool {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(h.data) {
		return false
	}
	h.data[i] = nil
	h.sync()
	return true
}

func (h *listHandler) ownKeys(*goja.Object) *goja.Object {
	keys := make([]interface{}, len(h.data))
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return h.rt.NewArray(keys...)
}

// hostIteratorToJS wraps a host iterator as a JS iterable object exposing
// Symbol.iterator-shaped next() semantics via a plain "next" method, since
// goja's proxy trap set has no direct hook for well-known symbols.
func hostIteratorToJS(rt *goja.Runtime, it HostIterator) (goja.Value, error) {
	obj := rt.NewObject()
	obj.Set("next", func(call goja.FunctionCall) goja.Value {
		val, ok := it.Next()
		result := rt.NewObject()
		if !ok {
			result.Set("done", true)
			result.Set("value", goja.Undefined())
			return result
		}
		jv, err := hostToJS(rt, val)
		if err != nil {
			panic(rt.NewGoError(err))
		}
		result.Set("done", false)
		result.Set("value", jv)
		return result
	})
	return obj, nil
}

// hostObjectToJS wraps an arbitrary host struct/pointer as a JS object
// exposing its struct fields through objectHandler, whose get/set/has/ownKeys
// traps follow the same shape as the mapping handler's. Methods are not
// exposed.
func hostObjectToJS(rt *goja.Runtime, v any) (goja.Value, error) {
	rv := reflect.ValueOf(v)
	target := rt.NewObject()
	h := objectHandler{rt: rt, base: baseHostHandler{}, data: rv}
	cfg := &goja.ProxyTrapConfig{
		GetPrototypeOf:    h.getPrototypeOf,
		IsExtensible:      h.isExtensible,
		PreventExtensions: h.preventExtensions,
		DefineProperty:    h.defineProperty,
		HasProperty:       h.has,
		Get:               h.get,
		Set:               h.set,
		OwnKeys:           h.ownKeys,
	}
	obj := newHostProxy(rt, target, cfg, familyObject, v)
	return obj, nil
}

type objectHandler struct {
	rt   *goja.Runtime
	base baseHostHandler
	data reflect.Value
}

func (h objectHandler) getPrototypeOf(t *goja.Object) *goja.Object { return h.base.getPrototypeOf(t) }
func (h objectHandler) isExtensible(t *goja.Object) bool           { return h.base.isExtensible(t) }
func (h objectHandler) preventExtensions(t *goja.Object) bool      { return h.base.preventExtensions(t) }
func (h objectHandler) defineProperty(t *goja.Object, k string, d goja.PropertyDescriptor) bool {
	return h.base.defineProperty(t, k, d)
}

func (h objectHandler) fieldOf(key string) reflect.Value {
	rv := h.data
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return rv.FieldByNameFunc(func(name string) bool { return name == key })
}

func (h objectHandler) has(_ *goja.Object, key string) bool {
	return h.fieldOf(key).IsValid()
}

func (h objectHandler) get(_ *goja.Object, key string, _ *goja.Object) goja.Value {
	f := h.fieldOf(key)
	if !f.IsValid() {
		return goja.Undefined()
	}
	jv, err := hostToJS(h.rt, f.Interface())
	if err != nil {
		panic(h.rt.NewGoError(err))
	}
	return jv
}

func (h objectHandler) set(_ *goja.Object, key string, value goja.Value, _ *goja.Object) bool {
	f := h.fieldOf(key)
	if !f.IsValid() || !f.CanSet() {
		return false
	}
	hv, err := jsToHost(h.rt, value)
	if err != nil {
		return false
	}
	f.Set(reflect.ValueOf(hv))
	return true
}

func (h objectHandler) ownKeys(*goja.Object) *goja.Object {
	rv := h.data
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return h.rt.NewArray()
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return h.rt.NewArray()
	}
	var keys []interface{}
	for i := 0; i < rv.NumField(); i++ {
		if rv.Type().Field(i).IsExported() {
			keys = append(keys, rv.Type().Field(i).Name)
		}
	}
	return h.rt.NewArray(keys...)
}

// hostImmutableBytesToJS returns a JS ArrayBuffer holding a copy of b.
// Nothing makes it read-only: writes through a view on it succeed on the
// copy and never reach b.
func hostImmutableBytesToJS(rt *goja.Runtime, b []byte) goja.Value {
	ab := rt.NewArrayBuffer(append([]byte(nil), b...))
	return rt.ToValue(ab)
}
