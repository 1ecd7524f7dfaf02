package jsre

import (
	"math/big"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestClassifyHostToJS(t *testing.T) {
	require.Equal(t, tagBoolean, classifyHostToJS(true))
	require.Equal(t, tagNumber, classifyHostToJS(42))
	require.Equal(t, tagString, classifyHostToJS("hi"))
	require.Equal(t, tagNullOrUndefined, classifyHostToJS(nil))
	require.Equal(t, tagNullOrUndefined, classifyHostToJS(Null))
	require.Equal(t, tagDate, classifyHostToJS(time.Now()))
	require.Equal(t, tagBuffer, classifyHostToJS([]byte("x")))
	require.Equal(t, tagBigInt, classifyHostToJS(BigInt{Int: big.NewInt(7)}))
	require.Equal(t, tagDict, classifyHostToJS(map[string]any{"a": 1}))
	require.Equal(t, tagList, classifyHostToJS([]any{1, 2}))
	require.Equal(t, tagCallable, classifyHostToJS(func() {}))
}

func TestClassifyJSToHost(t *testing.T) {
	rt := goja.New()

	require.Equal(t, tagNullOrUndefined, classifyJSToHost(goja.Undefined(), rt))
	require.Equal(t, tagNullOrUndefined, classifyJSToHost(goja.Null(), rt))
	require.Equal(t, tagJSPrimitive, classifyJSToHost(rt.ToValue(true), rt))
	require.Equal(t, tagJSPrimitive, classifyJSToHost(rt.ToValue("s"), rt))
	require.Equal(t, tagJSPrimitive, classifyJSToHost(rt.ToValue(3.5), rt))

	arr := rt.NewArray(1, 2, 3)
	require.Equal(t, tagJSArray, classifyJSToHost(arr, rt))

	fn, err := rt.RunString("(function(){})")
	require.NoError(t, err)
	require.Equal(t, tagJSFunction, classifyJSToHost(fn, rt))
}
