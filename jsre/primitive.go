package jsre

import (
	"fmt"
	"math/big"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/text/encoding/charmap"

	"github.com/hostvm/jsbridge/internal/bigconv"
	"github.com/hostvm/jsbridge/internal/lru"
)

// latin1DecodeCache memoizes recent byte->string widenings, playing the
// role of the external-string pointer table: a host buffer that crosses
// into JS repeatedly (e.g. a module re-evaluated against the same source
// bytes) shouldn't pay the transcoding cost every time.
var latin1DecodeCache = lru.NewCache[string, string](256)

// hostToJSPrimitive converts a value already classified as boolean, bigint,
// number, string, date or buffer into its goja representation. Callers that
// need dict/list/callable/object handling go through the proxy registry
// instead (component C/D).
func hostToJSPrimitive(rt *goja.Runtime, v any, tag conversionTag) (goja.Value, error) {
	switch tag {
	case tagBoolean:
		return rt.ToValue(v.(bool)), nil
	case tagNullOrUndefined:
		if v == nil {
			return goja.Undefined(), nil
		}
		return goja.Null(), nil
	case tagNumber:
		return hostNumberToJS(rt, v)
	case tagBigInt:
		return hostBigIntToJS(rt, v)
	case tagString:
		return hostStringToJS(rt, v.(string)), nil
	case tagDate:
		t := v.(time.Time)
		date, err := rt.New(rt.Get("Date").ToObject(rt), rt.ToValue(t.UnixMilli()))
		if err != nil {
			return nil, err
		}
		return date, nil
	case tagBuffer:
		buf := v.([]byte)
		ab := rt.NewArrayBuffer(append([]byte(nil), buf...))
		return rt.ToValue(ab), nil
	default:
		return nil, fmt.Errorf("jsre: %v is not a primitive conversion tag", tag)
	}
}

func hostNumberToJS(rt *goja.Runtime, v any) (goja.Value, error) {
	switch n := v.(type) {
	case int:
		return jsNumberFromInt64(rt, int64(n))
	case int8:
		return rt.ToValue(int64(n)), nil
	case int16:
		return rt.ToValue(int64(n)), nil
	case int32:
		return rt.ToValue(int64(n)), nil
	case int64:
		return jsNumberFromInt64(rt, n)
	case uint:
		return jsNumberFromUint64(rt, uint64(n))
	case uint8:
		return rt.ToValue(int64(n)), nil
	case uint16:
		return rt.ToValue(int64(n)), nil
	case uint32:
		return rt.ToValue(int64(n)), nil
	case uint64:
		return jsNumberFromUint64(rt, n)
	case float32:
		return rt.ToValue(float64(n)), nil
	case float64:
		return rt.ToValue(n), nil
	}
	return nil, fmt.Errorf("jsre: %T is not a host number", v)
}

// jsNumberFromInt64 converts n to a JS number, failing with an overflow
// error once its magnitude exceeds the 53-bit safe-integer range a double
// can represent exactly. A host integer beyond that range must cross as a
// BigInt instead (see hostBigIntToJS) rather than silently lose precision.
func jsNumberFromInt64(rt *goja.Runtime, n int64) (goja.Value, error) {
	if !bigconv.FitsSafeInteger(big.NewInt(n)) {
		return nil, fmt.Errorf("jsre: integer %d overflows the safe-integer range (±%d)", n, safeIntegerLimit)
	}
	return rt.ToValue(float64(n)), nil
}

func jsNumberFromUint64(rt *goja.Runtime, n uint64) (goja.Value, error) {
	if _, underflow := bigconv.SafeSub(uint64(safeIntegerLimit), n); underflow {
		return nil, fmt.Errorf("jsre: integer %d overflows the safe-integer range (±%d)", n, safeIntegerLimit)
	}
	return rt.ToValue(float64(n)), nil
}

// hostStringToJS externalizes s: strings that fall entirely within the
// Latin-1 range take the narrow-string cache path (latin1Encode/Decode),
// the same representation choice a narrow-vs-wide-string engine would make;
// anything outside that range crosses as a normal wide JS string.
func hostStringToJS(rt *goja.Runtime, s string) goja.Value {
	if b, ok := latin1Encode(s); ok {
		return rt.ToValue(latin1Decode(b))
	}
	return rt.ToValue(s)
}

// hostBigIntToJS converts a BigInt-marked host integer into a JS bigint,
// taking goja's native int64 fast path when the magnitude fits in a single
// 64-bit limb and falling back to the hex-string intermediate otherwise.
func hostBigIntToJS(rt *goja.Runtime, v any) (goja.Value, error) {
	var b *big.Int
	switch x := v.(type) {
	case BigInt:
		b = x.Int
	case *BigInt:
		b = x.Int
	default:
		return nil, fmt.Errorf("jsre: %T is not a BigInt", v)
	}
	if b == nil {
		return nil, fmt.Errorf("jsre: nil BigInt")
	}
	if bigconv.FitsInLimb(b) {
		return rt.ToValue(new(big.Int).Set(b)), nil
	}
	hex := bigconv.ToHex(b)
	negative := b.Sign() < 0
	global := rt.Get("BigInt")
	call, ok := goja.AssertFunction(global)
	if !ok {
		return nil, fmt.Errorf("jsre: BigInt global is not callable")
	}
	prefix := "0x"
	lit := prefix + hex
	if negative {
		lit = "-" + lit
	}
	out, err := call(goja.Undefined(), rt.ToValue(lit))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// jsToHostNumber converts a JS number to the narrowest host numeric type
// that holds it without loss: int64 when it's an integral safe value,
// float64 otherwise.
func jsToHostNumber(v goja.Value) any {
	f := v.ToFloat()
	if f == float64(int64(f)) && f >= -9007199254740991 && f <= 9007199254740991 {
		return int64(f)
	}
	return f
}

// jsToHostBigInt converts a JS bigint value into a host BigInt, preserving
// the opt-in marker so a later round trip back to JS stays a bigint rather
// than decaying to a plain number.
func jsToHostBigInt(v goja.Value) (BigInt, error) {
	ex := v.Export()
	b, ok := ex.(*big.Int)
	if !ok {
		return BigInt{}, fmt.Errorf("jsre: value does not export as *big.Int")
	}
	return BigInt{Int: new(big.Int).Set(b)}, nil
}

// jsToHostDate converts a JS Date object to a host time.Time in UTC,
// matching the wall-clock instant Date.prototype.getTime would report.
func jsToHostDate(rt *goja.Runtime, obj *goja.Object) (time.Time, error) {
	getTime, ok := goja.AssertFunction(obj.Get("getTime"))
	if !ok {
		return time.Time{}, fmt.Errorf("jsre: Date object has no getTime")
	}
	res, err := getTime(obj)
	if err != nil {
		return time.Time{}, err
	}
	ms := res.ToFloat()
	if ms != ms { // NaN, i.e. an Invalid Date
		return time.Time{}, fmt.Errorf("jsre: invalid Date")
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

// jsToHostBuffer copies a JS ArrayBuffer or typed array view into a host
// []byte. The copy is deliberate: a host slice aliasing goja-managed memory
// would outlive the runtime's ability to reason about it.
func jsToHostBuffer(v goja.Value) ([]byte, error) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("jsre: value is not a buffer-like object")
	}
	if ab, ok := obj.Export().(goja.ArrayBuffer); ok {
		src := ab.Bytes()
		return append([]byte(nil), src...), nil
	}
	// Typed array view: the exported value depends on element type. Fall
	// back to pulling the bytes via its underlying buffer property.
	bufferVal := obj.Get("buffer")
	if bufferVal == nil || goja.IsUndefined(bufferVal) {
		return nil, fmt.Errorf("jsre: typed array has no backing buffer")
	}
	bufObj, ok := bufferVal.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("jsre: typed array buffer is not an object")
	}
	ab, ok := bufObj.Export().(goja.ArrayBuffer)
	if !ok {
		return nil, fmt.Errorf("jsre: typed array buffer did not export as ArrayBuffer")
	}
	return append([]byte(nil), ab.Bytes()...), nil
}

// latin1Decode widens a byte string into a JS string the way the engine's
// internal narrow-string representation would, so a host byte sequence can
// cross losslessly when it is known to be Latin-1 text rather than opaque
// binary. ISO8859_1 maps every byte 0-255 to the identically-numbered
// Unicode code point, so decoding never fails.
func latin1Decode(b []byte) string {
	key := string(b)
	if cached, ok := latin1DecodeCache.Get(key); ok {
		return cached
	}
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	decoded := string(out)
	latin1DecodeCache.Add(key, decoded)
	return decoded
}

// latin1Encode narrows a JS string back to a byte string, returning false
// if any rune falls outside the Latin-1 range; hostStringToJS then hands
// the string to goja unchanged.
func latin1Encode(s string) ([]byte, bool) {
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return nil, false
	}
	return []byte(out), true
}
