package jsre

import (
	"fmt"

	"github.com/dop251/goja"
)

// hostToJS converts a host value into its goja representation, routing
// through the classifier first and then the matching component (primitive
// converter, proxy registry, exception bridge, or event-loop bridge).
func hostToJS(rt *goja.Runtime, v any) (goja.Value, error) {
	tag := classifyHostToJS(v)
	switch tag {
	case tagBoolean, tagNullOrUndefined, tagNumber, tagBigInt, tagString, tagDate, tagBuffer:
		return hostToJSPrimitive(rt, v, tag)
	case tagJSProxyUnwrap:
		return unwrapJSProxyValue(v)
	case tagException:
		return hostErrorToJS(rt, v.(error))
	case tagCallable:
		return hostCallableToJS(rt, v), nil
	case tagAwaitable:
		return awaitableToPromise(rt, v.(Awaitable)), nil
	case tagIterator:
		return hostIteratorToJS(rt, v.(HostIterator))
	case tagDict:
		return hostDictToJS(rt, v)
	case tagList:
		return hostListToJS(rt, v)
	case tagObject:
		return hostObjectToJS(rt, v)
	default:
		return nil, fmt.Errorf("jsre: unhandled host->JS tag %v for %T", tag, v)
	}
}

func unwrapJSProxyValue(v any) (goja.Value, error) {
	switch p := v.(type) {
	case *JSObjectProxy:
		return p.obj, nil
	case *JSArrayProxy:
		return p.obj, nil
	case *JSFunctionProxy:
		if p.obj != nil {
			return p.obj, nil
		}
		return nil, fmt.Errorf("jsre: function proxy has no underlying object")
	case *JSMethodProxy:
		return p.receiver, nil
	default:
		return nil, fmt.Errorf("jsre: %T is not a JS proxy", v)
	}
}

// jsToHost converts a JS value into its host representation.
func jsToHost(rt *goja.Runtime, v goja.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	tag := classifyJSToHost(v, rt)
	switch tag {
	case tagNullOrUndefined:
		if goja.IsNull(v) {
			return Null, nil
		}
		return nil, nil
	case tagJSPrimitive:
		return jsPrimitiveToHost(v)
	case tagBoxedPrimitive:
		obj := v.(*goja.Object)
		valueOf, ok := goja.AssertFunction(obj.Get("valueOf"))
		if !ok {
			return nil, fmt.Errorf("jsre: boxed primitive has no valueOf")
		}
		unboxed, err := valueOf(obj)
		if err != nil {
			return nil, err
		}
		return jsPrimitiveToHost(unboxed)
	case tagHostProxyUnwrap:
		obj := v.(*goja.Object)
		host, _ := unwrapHostProxy(obj)
		return host, nil
	case tagDate:
		return jsToHostDate(rt, v.(*goja.Object))
	case tagPromise:
		return promiseToAwaitable(rt, v.(*goja.Object)), nil
	case tagJSError:
		return jsErrorToHost(rt, v.(*goja.Object)), nil
	case tagJSFunction:
		fn, _ := goja.AssertFunction(v)
		return NewJSFunctionProxy(rt, v.(*goja.Object), fn), nil
	case tagJSArray:
		return NewJSArrayProxy(rt, v.(*goja.Object)), nil
	case tagJSBuffer:
		return jsToHostBuffer(v)
	case tagObject:
		return NewJSObjectProxy(rt, v.(*goja.Object)), nil
	case tagSymbolOrMagic:
		return nil, fmt.Errorf("jsre: TypeError: cannot convert a symbol or internal JS value to a host value")
	default:
		return nil, fmt.Errorf("jsre: unhandled JS->host tag %v", tag)
	}
}

func jsPrimitiveToHost(v goja.Value) (any, error) {
	ex := v.Export()
	switch ex.(type) {
	case bool, string:
		return ex, nil
	}
	if bi, err := jsToHostBigInt(v); err == nil {
		return bi, nil
	}
	if goja.IsNumber(v) {
		return jsToHostNumber(v), nil
	}
	return ex, nil
}

// hostCallableToJS wraps a Go func as a JS-callable native function,
// converting arguments and the return value through the classifier.
func hostCallableToJS(rt *goja.Runtime, v any) goja.Value {
	return rt.ToValue(func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, a := range call.Arguments {
			hv, err := jsToHost(rt, a)
			if err != nil {
				panic(rt.NewGoError(err))
			}
			args[i] = hv
		}
		result, err := callHostFunc(rt, v, args)
		if err != nil {
			panic(rt.ToValue(err.Error()))
		}
		return result
	})
}
