package jsre

import (
	"math/big"
	"reflect"
	"time"

	"github.com/dop251/goja"
)

// conversionTag names the downstream component a value must be routed
// through. Classification never converts a value itself; it only picks the
// path, matching the spec's separation between classifier and converter.
type conversionTag int

const (
	tagBoolean conversionTag = iota
	tagBigInt
	tagNumber
	tagString
	tagCallable
	tagException
	tagDate
	tagBuffer
	tagJSProxyUnwrap
	tagDict
	tagList
	tagNullOrUndefined
	tagAwaitable
	tagIterator
	tagObject

	tagJSPrimitive
	tagSymbolOrMagic
	tagHostProxyUnwrap
	tagBoxedPrimitive
	tagPromise
	tagJSError
	tagJSFunction
	tagJSArray
	tagJSBuffer
)

// safeIntegerLimit is the largest magnitude representable exactly as an
// IEEE-754 double: 2^53-1.
const safeIntegerLimit = int64(1)<<53 - 1

// BigInt marks a host integer that must always cross into JS as a bigint,
// even when small enough to fit in the safe-integer range. The reverse
// direction (JS bigint -> host) produces one of these so a later trip back
// stays lossless.
type BigInt struct {
	*big.Int
}

// Null is the sentinel host value that maps to JS null, as distinct from Go
// nil which maps to JS undefined.
var Null = &nullSentinel{}

type nullSentinel struct{}

// Awaitable is implemented by host values the event-loop bridge converts
// into a JS Promise.
type Awaitable interface {
	Await() <-chan AwaitResult
}

// AwaitResult is delivered on an Awaitable's channel exactly once.
type AwaitResult struct {
	Value any
	Err   error
}

// HostIterator is the host iterator protocol: Next returns the next value,
// or ok=false when the sequence is exhausted.
type HostIterator interface {
	Next() (value any, ok bool)
}

// classifyHostToJS applies the host->JS classification contract: by type,
// first match wins.
func classifyHostToJS(v any) conversionTag {
	if v == nil {
		return tagNullOrUndefined
	}
	switch v.(type) {
	case bool:
		return tagBoolean
	case BigInt:
		return tagBigInt
	case *BigInt:
		return tagBigInt
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return tagNumber
	case float32, float64:
		return tagNumber
	case string:
		return tagString
	case error:
		return tagException
	case time.Time:
		return tagDate
	case []byte:
		return tagBuffer
	case *JSObjectProxy, *JSArrayProxy, *JSFunctionProxy, *JSMethodProxy:
		return tagJSProxyUnwrap
	case *nullSentinel:
		return tagNullOrUndefined
	case Awaitable:
		return tagAwaitable
	case HostIterator:
		return tagIterator
	case map[string]any:
		return tagDict
	case []any:
		return tagList
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return tagCallable
	case reflect.Map:
		return tagDict
	case reflect.Slice, reflect.Array:
		return tagList
	case reflect.Ptr:
		if rv.IsNil() {
			return tagNullOrUndefined
		}
	}
	return tagObject
}

// classifyJSToHost applies the JS->host classification contract.
func classifyJSToHost(v goja.Value, rt *goja.Runtime) conversionTag {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return tagNullOrUndefined
	}
	switch {
	case goja.IsNumber(v), v.ExportType() != nil && v.ExportType().Kind() == reflect.Bool:
		return tagJSPrimitive
	}
	ex := v.Export()
	switch ex.(type) {
	case bool, int64, float64, string:
		return tagJSPrimitive
	}
	if _, ok := ex.(*big.Int); ok {
		return tagJSPrimitive
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return tagSymbolOrMagic
	}
	if isHostProxyObject(obj) {
		return tagHostProxyUnwrap
	}

	className := obj.ClassName()
	switch className {
	case "Boolean", "Number", "String", "BigInt":
		return tagBoxedPrimitive
	case "Date":
		return tagDate
	case "Promise":
		return tagPromise
	case "Error":
		return tagJSError
	case "Function", "GeneratorFunction", "AsyncFunction":
		return tagJSFunction
	case "Array":
		return tagJSArray
	case "ArrayBuffer", "Uint8Array", "Int8Array", "Uint16Array", "Int16Array",
		"Uint32Array", "Int32Array", "Float32Array", "Float64Array",
		"BigInt64Array", "BigUint64Array", "Uint8ClampedArray":
		return tagJSBuffer
	default:
		return tagObject
	}
}
