package jsre

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"
)

// callHostFunc invokes an arbitrary Go function value with host arguments
// already converted from JS, using reflection since the function's exact
// signature is only known at the call site, not at wrap time.
func callHostFunc(rt *goja.Runtime, fn any, args []any) (goja.Value, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("jsre: %T is not callable", fn)
	}
	t := rv.Type()
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < len(args); i++ {
		if !t.IsVariadic() && i >= t.NumIn() {
			break
		}
		var argType reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			argType = t.In(t.NumIn() - 1).Elem()
		} else {
			argType = t.In(i)
		}
		in = append(in, convertArg(args[i], argType))
	}
	for len(in) < t.NumIn() && !t.IsVariadic() {
		in = append(in, reflect.Zero(t.In(len(in))))
	}
	out := rv.Call(in)
	return reflectResultsToJS(rt, out)
}

func convertArg(v any, want reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(want)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(want) {
		return rv
	}
	if rv.Type().ConvertibleTo(want) {
		return rv.Convert(want)
	}
	return reflect.Zero(want)
}

func reflectResultsToJS(rt *goja.Runtime, out []reflect.Value) (goja.Value, error) {
	switch len(out) {
	case 0:
		return goja.Undefined(), nil
	case 1:
		if err, ok := out[0].Interface().(error); ok && err != nil {
			return nil, err
		}
		return hostToJS(rt, out[0].Interface())
	default:
		last := out[len(out)-1]
		if err, ok := last.Interface().(error); ok {
			if err != nil {
				return nil, err
			}
			out = out[:len(out)-1]
		}
		if len(out) == 1 {
			return hostToJS(rt, out[0].Interface())
		}
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return hostToJS(rt, vals)
	}
}
