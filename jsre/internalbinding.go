package jsre

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// installInternalBinding exposes the JS-side internalBinding(namespace)
// function used by bootstrap code to reach host-implemented primitives that
// don't belong on the global object, mirroring the "utils"/"timers"
// namespaces (§6).
func installInternalBinding(rt *goja.Runtime, loop *EventLoop) {
	utils := rt.NewObject()
	utils.Set("defineGlobal", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		rt.GlobalObject().Set(name, call.Argument(1))
		return goja.Undefined()
	})
	utils.Set("isAnyArrayBuffer", func(call goja.FunctionCall) goja.Value {
		obj, ok := call.Argument(0).(*goja.Object)
		if !ok {
			return rt.ToValue(false)
		}
		_, ok = obj.Export().(goja.ArrayBuffer)
		return rt.ToValue(ok)
	})
	utils.Set("isPromise", func(call goja.FunctionCall) goja.Value {
		_, ok := call.Argument(0).Export().(*goja.Promise)
		return rt.ToValue(ok)
	})
	utils.Set("isRegExp", func(call goja.FunctionCall) goja.Value {
		obj, ok := call.Argument(0).(*goja.Object)
		return rt.ToValue(ok && obj.ClassName() == "RegExp")
	})
	utils.Set("isTypedArray", func(call goja.FunctionCall) goja.Value {
		obj, ok := call.Argument(0).(*goja.Object)
		if !ok {
			return rt.ToValue(false)
		}
		switch obj.ClassName() {
		case "Uint8Array", "Int8Array", "Uint16Array", "Int16Array",
			"Uint32Array", "Int32Array", "Float32Array", "Float64Array",
			"BigInt64Array", "BigUint64Array", "Uint8ClampedArray":
			return rt.ToValue(true)
		default:
			return rt.ToValue(false)
		}
	})
	utils.Set("getPromiseDetails", func(call goja.FunctionCall) goja.Value {
		p, ok := call.Argument(0).Export().(*goja.Promise)
		if !ok {
			return goja.Undefined()
		}
		var state string
		switch p.State() {
		case goja.PromiseStatePending:
			state = "pending"
		case goja.PromiseStateFulfilled:
			state = "fulfilled"
		case goja.PromiseStateRejected:
			state = "rejected"
		}
		return rt.NewArray(state, p.Result())
	})
	utils.Set("getProxyDetails", func(call goja.FunctionCall) goja.Value {
		obj, ok := call.Argument(0).(*goja.Object)
		if !ok {
			return goja.Undefined()
		}
		if !isHostProxyObject(obj) {
			return goja.Undefined()
		}
		host, _ := unwrapHostProxy(obj)
		return rt.NewArray(rt.ToValue(host), goja.Undefined())
	})

	timers := rt.NewObject()
	timers.Set("enqueueWithDelay", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(rt.NewTypeError("enqueueWithDelay requires a function"))
		}
		seconds := call.Argument(1).ToFloat()
		id := loop.EnqueueWithDelay(time.Duration(seconds*float64(time.Second)), func(r *goja.Runtime) {
			_, _ = fn(goja.Undefined())
		})
		return rt.ToValue(id)
	})
	timers.Set("cancelByTimeoutId", func(call goja.FunctionCall) goja.Value {
		loop.CancelByTimeoutID(call.Argument(0).ToInteger())
		return goja.Undefined()
	})
	timers.Set("timerHasRef", func(call goja.FunctionCall) goja.Value {
		return rt.ToValue(loop.TimerHasRef(call.Argument(0).ToInteger()))
	})
	timers.Set("timerAddRef", func(call goja.FunctionCall) goja.Value {
		loop.TimerAddRef(call.Argument(0).ToInteger())
		return goja.Undefined()
	})
	timers.Set("timerRemoveRef", func(call goja.FunctionCall) goja.Value {
		loop.TimerRemoveRef(call.Argument(0).ToInteger())
		return goja.Undefined()
	})

	// describeProxy supplements "utils" with an introspection helper in the
	// spirit of the source tree's explore module: a human-readable summary
	// of a host proxy's family and wrapped value, for REPL-style debugging.
	utils.Set("describeProxy", func(call goja.FunctionCall) goja.Value {
		obj, ok := call.Argument(0).(*goja.Object)
		if !ok {
			return rt.ToValue("not an object")
		}
		reg, ok := lookupHostProxy(obj)
		if !ok {
			return rt.ToValue("not a host proxy")
		}
		return rt.ToValue(fmt.Sprintf("%s: %v", describeProxyFamily(reg.family), reg.host))
	})

	namespaces := map[string]*goja.Object{
		"utils":  utils,
		"timers": timers,
	}
	rt.Set("internalBinding", func(call goja.FunctionCall) goja.Value {
		ns := call.Argument(0).String()
		obj, ok := namespaces[ns]
		if !ok {
			panic(rt.NewTypeError("unknown internal binding namespace %q", ns))
		}
		return obj
	})
}

func describeProxyFamily(f proxyFamily) string {
	switch f {
	case familyMapping:
		return "mapping"
	case familyList:
		return "list"
	case familyIterable:
		return "iterable"
	case familyImmutableBytes:
		return "immutable-bytes"
	case familyObject:
		return "object"
	default:
		return "unknown"
	}
}
