package jsre

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dop251/goja"

	"github.com/hostvm/jsbridge/internal/bigconv"
)

// arrayMethod implements one Array.prototype method against a listHandler's
// backing storage. Mutating methods write h.data in place; everything else
// only reads it. A nil result makes the JS call return the list proxy
// itself, as reverse, sort, fill and copyWithin do on a JS array.
type arrayMethod func(h *listHandler, args []goja.Value) (goja.Value, error)

// arrayMethods is the Array.prototype method table a list proxy exposes
// (§4.D). Non-mutating numeric/predicate methods largely delegate to the
// host converter for each element so nested proxies keep working.
var arrayMethods map[string]arrayMethod

func init() {
	arrayMethods = map[string]arrayMethod{
		"push":          arrPush,
		"pop":           arrPop,
		"shift":         arrShift,
		"unshift":       arrUnshift,
		"reverse":       arrReverse,
		"concat":        arrConcat,
		"slice":         arrSlice,
		"splice":        arrSplice,
		"indexOf":       arrIndexOf,
		"lastIndexOf":   arrLastIndexOf,
		"includes":      arrIncludes,
		"join":          arrJoin,
		"toString":      arrJoin,
		"toLocaleString": arrJoin,
		"valueOf":       arrValueOf,
		"sort":          arrSort,
		"fill":          arrFill,
		"copyWithin":    arrCopyWithin,
		"forEach":       arrForEach,
		"map":           arrMap,
		"filter":        arrFilter,
		"reduce":        arrReduce,
		"reduceRight":   arrReduceRight,
		"some":          arrSome,
		"every":         arrEvery,
		"find":          arrFind,
		"findIndex":     arrFindIndex,
		"flat":          arrFlat,
		"flatMap":       arrFlatMap,
		"entries":       arrEntries,
		"keys":          arrKeys,
		"values":        arrValues,
	}
}

// normalizeIndex clamps a JS-supplied array index into [0, length], treating
// a negative value as counting back from the end the way Array.prototype
// methods do. JS lets a script pass an arbitrarily extreme integer (e.g.
// Number.MIN_SAFE_INTEGER), so the negative branch goes through
// bigconv.SafeSub rather than plain addition to avoid silently wrapping
// around to an in-bounds-looking index on underflow.
func normalizeIndex(i, length int) int {
	if i < 0 {
		if i == math.MinInt {
			return 0
		}
		adjusted, underflow := bigconv.SafeSub(uint64(length), uint64(-i))
		if underflow {
			return 0
		}
		i = int(adjusted)
	}
	if i > length {
		return length
	}
	return i
}

func arrPush(h *listHandler, args []goja.Value) (goja.Value, error) {
	for _, a := range args {
		v, err := jsToHost(h.rt, a)
		if err != nil {
			return nil, err
		}
		h.data = append(h.data, v)
	}
	h.sync()
	return h.rt.ToValue(len(h.data)), nil
}

func arrPop(h *listHandler, _ []goja.Value) (goja.Value, error) {
	if len(h.data) == 0 {
		return goja.Undefined(), nil
	}
	last := h.data[len(h.data)-1]
	h.data = h.data[:len(h.data)-1]
	h.sync()
	return hostToJS(h.rt, last)
}

func arrShift(h *listHandler, _ []goja.Value) (goja.Value, error) {
	if len(h.data) == 0 {
		return goja.Undefined(), nil
	}
	first := h.data[0]
	h.data = h.data[1:]
	h.sync()
	return hostToJS(h.rt, first)
}

func arrUnshift(h *listHandler, args []goja.Value) (goja.Value, error) {
	prefix := make([]any, len(args))
	for i, a := range args {
		v, err := jsToHost(h.rt, a)
		if err != nil {
			return nil, err
		}
		prefix[i] = v
	}
	h.data = append(prefix, h.data...)
	h.sync()
	return h.rt.ToValue(len(h.data)), nil
}

func arrReverse(h *listHandler, _ []goja.Value) (goja.Value, error) {
	for i, j := 0, len(h.data)-1; i < j; i, j = i+1, j-1 {
		h.data[i], h.data[j] = h.data[j], h.data[i]
	}
	h.sync()
	return nil, nil
}

func arrConcat(h *listHandler, args []goja.Value) (goja.Value, error) {
	out := append([]any(nil), h.data...)
	for _, a := range args {
		v, err := jsToHost(h.rt, a)
		if err != nil {
			return nil, err
		}
		switch list := v.(type) {
		case []any:
			out = append(out, list...)
		case *JSArrayProxy:
			for i := 0; i < list.Len(); i++ {
				item, err := list.Get(i)
				if err != nil {
					return nil, err
				}
				out = append(out, item)
			}
		default:
			out = append(out, v)
		}
	}
	return hostListToJS(h.rt, out)
}

func arrSlice(h *listHandler, args []goja.Value) (goja.Value, error) {
	start, end := 0, len(h.data)
	if len(args) > 0 {
		start = normalizeIndex(int(args[0].ToInteger()), len(h.data))
	}
	if len(args) > 1 && !goja.IsUndefined(args[1]) {
		end = normalizeIndex(int(args[1].ToInteger()), len(h.data))
	}
	if start > end {
		start = end
	}
	out := append([]any(nil), h.data[start:end]...)
	return hostListToJS(h.rt, out)
}

func arrSplice(h *listHandler, args []goja.Value) (goja.Value, error) {
	if len(args) == 0 {
		return hostListToJS(h.rt, []any{})
	}
	start := normalizeIndex(int(args[0].ToInteger()), len(h.data))
	deleteCount := len(h.data) - start
	if len(args) > 1 {
		deleteCount = int(args[1].ToInteger())
		if deleteCount < 0 {
			deleteCount = 0
		}
		// A script can pass a deleteCount far larger than the array; guard
		// the bounds sum against overflow the same way normalizeIndex does.
		end, overflow := bigconv.SafeAdd(uint64(start), uint64(deleteCount))
		if overflow || end > uint64(len(h.data)) {
			deleteCount = len(h.data) - start
		}
	}
	removed := append([]any(nil), h.data[start:start+deleteCount]...)
	var inserted []any
	for _, a := range args[min(2, len(args)):] {
		v, err := jsToHost(h.rt, a)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, v)
	}
	tail := append([]any(nil), h.data[start+deleteCount:]...)
	h.data = append(h.data[:start], append(inserted, tail...)...)
	h.sync()
	return hostListToJS(h.rt, removed)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func arrIndexOf(h *listHandler, args []goja.Value) (goja.Value, error) {
	if len(args) == 0 {
		return h.rt.ToValue(-1), nil
	}
	target, err := jsToHost(h.rt, args[0])
	if err != nil {
		return nil, err
	}
	for i, v := range h.data {
		if fmt.Sprint(v) == fmt.Sprint(target) {
			return h.rt.ToValue(i), nil
		}
	}
	return h.rt.ToValue(-1), nil
}

func arrLastIndexOf(h *listHandler, args []goja.Value) (goja.Value, error) {
	if len(args) == 0 {
		return h.rt.ToValue(-1), nil
	}
	target, err := jsToHost(h.rt, args[0])
	if err != nil {
		return nil, err
	}
	for i := len(h.data) - 1; i >= 0; i-- {
		if fmt.Sprint(h.data[i]) == fmt.Sprint(target) {
			return h.rt.ToValue(i), nil
		}
	}
	return h.rt.ToValue(-1), nil
}

func arrIncludes(h *listHandler, args []goja.Value) (goja.Value, error) {
	idx, err := arrIndexOf(h, args)
	if err != nil {
		return nil, err
	}
	return h.rt.ToValue(idx.ToInteger() >= 0), nil
}

func arrJoin(h *listHandler, args []goja.Value) (goja.Value, error) {
	sep := ","
	if len(args) > 0 && !goja.IsUndefined(args[0]) {
		sep = args[0].String()
	}
	parts := make([]string, len(h.data))
	for i, v := range h.data {
		if v == nil {
			parts[i] = ""
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return h.rt.ToValue(strings.Join(parts, sep)), nil
}

func arrValueOf(h *listHandler, _ []goja.Value) (goja.Value, error) {
	return hostListToJS(h.rt, append([]any(nil), h.data...))
}

func arrSort(h *listHandler, args []goja.Value) (goja.Value, error) {
	var cmp goja.Callable
	if len(args) > 0 {
		if c, ok := goja.AssertFunction(args[0]); ok {
			cmp = c
		}
	}
	sort.SliceStable(h.data, func(i, j int) bool {
		if cmp != nil {
			a, _ := hostToJS(h.rt, h.data[i])
			b, _ := hostToJS(h.rt, h.data[j])
			res, err := cmp(goja.Undefined(), a, b)
			if err != nil {
				return false
			}
			return res.ToFloat() < 0
		}
		return fmt.Sprint(h.data[i]) < fmt.Sprint(h.data[j])
	})
	h.sync()
	return nil, nil
}

func arrFill(h *listHandler, args []goja.Value) (goja.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	v, err := jsToHost(h.rt, args[0])
	if err != nil {
		return nil, err
	}
	start, end := 0, len(h.data)
	if len(args) > 1 {
		start = normalizeIndex(int(args[1].ToInteger()), len(h.data))
	}
	if len(args) > 2 {
		end = normalizeIndex(int(args[2].ToInteger()), len(h.data))
	}
	for i := start; i < end; i++ {
		h.data[i] = v
	}
	h.sync()
	return nil, nil
}

func arrCopyWithin(h *listHandler, args []goja.Value) (goja.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	target := normalizeIndex(int(args[0].ToInteger()), len(h.data))
	start := 0
	if len(args) > 1 {
		start = normalizeIndex(int(args[1].ToInteger()), len(h.data))
	}
	end := len(h.data)
	if len(args) > 2 {
		end = normalizeIndex(int(args[2].ToInteger()), len(h.data))
	}
	segment := append([]any(nil), h.data[start:end]...)
	for i, v := range segment {
		if target+i >= len(h.data) {
			break
		}
		h.data[target+i] = v
	}
	h.sync()
	return nil, nil
}

func callWithElement(h *listHandler, fn goja.Callable, i int) (goja.Value, error) {
	jv, err := hostToJS(h.rt, h.data[i])
	if err != nil {
		return nil, err
	}
	return fn(goja.Undefined(), jv, h.rt.ToValue(i), h.rt.ToValue(h))
}

func arrForEach(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: forEach requires a function argument")
	}
	for i := range h.data {
		if _, err := callWithElement(h, fn, i); err != nil {
			return nil, err
		}
	}
	return goja.Undefined(), nil
}

func arrMap(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: map requires a function argument")
	}
	out := make([]any, len(h.data))
	for i := range h.data {
		res, err := callWithElement(h, fn, i)
		if err != nil {
			return nil, err
		}
		hv, err := jsToHost(h.rt, res)
		if err != nil {
			return nil, err
		}
		out[i] = hv
	}
	return hostListToJS(h.rt, out)
}

func arrFilter(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: filter requires a function argument")
	}
	var out []any
	for i := range h.data {
		res, err := callWithElement(h, fn, i)
		if err != nil {
			return nil, err
		}
		if res.ToBoolean() {
			out = append(out, h.data[i])
		}
	}
	return hostListToJS(h.rt, out)
}

func arrReduce(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: reduce requires a function argument")
	}
	i := 0
	var acc goja.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(h.data) == 0 {
			return nil, fmt.Errorf("jsre: Reduce of empty array with no initial value")
		}
		v, err := hostToJS(h.rt, h.data[0])
		if err != nil {
			return nil, err
		}
		acc = v
		i = 1
	}
	for ; i < len(h.data); i++ {
		jv, err := hostToJS(h.rt, h.data[i])
		if err != nil {
			return nil, err
		}
		acc, err = fn(goja.Undefined(), acc, jv, h.rt.ToValue(i), h.rt.ToValue(h))
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func arrReduceRight(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: reduceRight requires a function argument")
	}
	i := len(h.data) - 1
	var acc goja.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(h.data) == 0 {
			return nil, fmt.Errorf("jsre: Reduce of empty array with no initial value")
		}
		v, err := hostToJS(h.rt, h.data[i])
		if err != nil {
			return nil, err
		}
		acc = v
		i--
	}
	for ; i >= 0; i-- {
		jv, err := hostToJS(h.rt, h.data[i])
		if err != nil {
			return nil, err
		}
		acc, err = fn(goja.Undefined(), acc, jv, h.rt.ToValue(i), h.rt.ToValue(h))
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func arrSome(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: some requires a function argument")
	}
	for i := range h.data {
		res, err := callWithElement(h, fn, i)
		if err != nil {
			return nil, err
		}
		if res.ToBoolean() {
			return h.rt.ToValue(true), nil
		}
	}
	return h.rt.ToValue(false), nil
}

func arrEvery(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: every requires a function argument")
	}
	for i := range h.data {
		res, err := callWithElement(h, fn, i)
		if err != nil {
			return nil, err
		}
		if !res.ToBoolean() {
			return h.rt.ToValue(false), nil
		}
	}
	return h.rt.ToValue(true), nil
}

func arrFind(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: find requires a function argument")
	}
	for i := range h.data {
		res, err := callWithElement(h, fn, i)
		if err != nil {
			return nil, err
		}
		if res.ToBoolean() {
			return hostToJS(h.rt, h.data[i])
		}
	}
	return goja.Undefined(), nil
}

func arrFindIndex(h *listHandler, args []goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(args[0])
	if !ok {
		return nil, fmt.Errorf("jsre: findIndex requires a function argument")
	}
	for i := range h.data {
		res, err := callWithElement(h, fn, i)
		if err != nil {
			return nil, err
		}
		if res.ToBoolean() {
			return h.rt.ToValue(i), nil
		}
	}
	return h.rt.ToValue(-1), nil
}

func arrFlat(h *listHandler, args []goja.Value) (goja.Value, error) {
	depth := 1
	if len(args) > 0 {
		depth = int(args[0].ToInteger())
	}
	return hostListToJS(h.rt, flattenList(h.data, depth))
}

func flattenList(data []any, depth int) []any {
	var out []any
	for _, v := range data {
		if depth > 0 {
			if nested, ok := v.([]any); ok {
				out = append(out, flattenList(nested, depth-1)...)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

func arrFlatMap(h *listHandler, args []goja.Value) (goja.Value, error) {
	mapped, err := arrMap(h, args)
	if err != nil {
		return nil, err
	}
	mappedObj := mapped.(*goja.Object)
	mappedData, _ := unwrapHostProxy(mappedObj)
	list, _ := mappedData.([]any)
	return hostListToJS(h.rt, flattenList(list, 1))
}

func arrEntries(h *listHandler, _ []goja.Value) (goja.Value, error) {
	idx := 0
	return hostIteratorToJS(h.rt, hostIteratorFunc(func() (any, bool) {
		if idx >= len(h.data) {
			return nil, false
		}
		pair := []any{idx, h.data[idx]}
		idx++
		return pair, true
	}))
}

func arrKeys(h *listHandler, _ []goja.Value) (goja.Value, error) {
	idx := 0
	return hostIteratorToJS(h.rt, hostIteratorFunc(func() (any, bool) {
		if idx >= len(h.data) {
			return nil, false
		}
		v := idx
		idx++
		return v, true
	}))
}

func arrValues(h *listHandler, _ []goja.Value) (goja.Value, error) {
	idx := 0
	return hostIteratorToJS(h.rt, hostIteratorFunc(func() (any, bool) {
		if idx >= len(h.data) {
			return nil, false
		}
		v := h.data[idx]
		idx++
		return v, true
	}))
}

// hostIteratorFunc adapts a plain closure to the HostIterator interface.
type hostIteratorFunc func() (any, bool)

func (f hostIteratorFunc) Next() (any, bool) { return f() }
