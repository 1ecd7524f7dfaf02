package jsre

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestHostDictProxyGetSet(t *testing.T) {
	rt := goja.New()
	obj, err := hostDictToJS(rt, map[string]any{"a": int64(1), "b": "two"})
	require.NoError(t, err)
	require.NoError(t, rt.Set("d", obj))

	v, err := rt.RunString("d.a")
	require.NoError(t, err)
	require.EqualValues(t, 1, v.ToInteger())

	_, err = rt.RunString("d.c = 3")
	require.NoError(t, err)

	host, ok := unwrapHostProxy(obj.(*goja.Object))
	require.True(t, ok)
	m, ok := host.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, int64(3), m["c"])
}

func TestHostListProxyPushAndIndex(t *testing.T) {
	rt := goja.New()
	obj, err := hostListToJS(rt, []any{int64(1), int64(2)})
	require.NoError(t, err)
	require.NoError(t, rt.Set("a", obj))

	_, err = rt.RunString("a.push(3)")
	require.NoError(t, err)

	v, err := rt.RunString("a.length")
	require.NoError(t, err)
	require.EqualValues(t, 3, v.ToInteger())

	v0, err := rt.RunString("a[0]")
	require.NoError(t, err)
	require.EqualValues(t, 1, v0.ToInteger())
}

func TestHostListProxySortMutatesOriginalAnySlice(t *testing.T) {
	rt := goja.New()
	original := []any{int64(3), int64(1), int64(2)}
	obj, err := hostListToJS(rt, original)
	require.NoError(t, err)
	require.NoError(t, rt.Set("a", obj))

	_, err = rt.RunString("a.sort((x, y) => x - y)")
	require.NoError(t, err)

	require.Equal(t, []any{int64(1), int64(2), int64(3)}, original)
}

func TestHostListProxyPushWritesBackThroughPointer(t *testing.T) {
	rt := goja.New()
	original := []any{int64(1), int64(2)}
	obj, err := hostListToJS(rt, &original)
	require.NoError(t, err)
	require.NoError(t, rt.Set("a", obj))

	_, err = rt.RunString("a.push(3)")
	require.NoError(t, err)

	require.Equal(t, []any{int64(1), int64(2), int64(3)}, original)
}

func TestHostListProxyPushWritesBackThroughTypedSlicePointer(t *testing.T) {
	rt := goja.New()
	original := []int{10, 20}
	obj, err := hostListToJS(rt, &original)
	require.NoError(t, err)
	require.NoError(t, rt.Set("a", obj))

	_, err = rt.RunString("a.push(30); a.shift()")
	require.NoError(t, err)

	require.Equal(t, []int{20, 30}, original)
}

func TestHostListProxyTypedSliceByValueDoesNotPropagate(t *testing.T) {
	rt := goja.New()
	original := []int{1, 2}
	obj, err := hostListToJS(rt, original)
	require.NoError(t, err)
	require.NoError(t, rt.Set("a", obj))

	_, err = rt.RunString("a.push(3)")
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, original)
}

func TestIsHostProxyObjectRoundTrip(t *testing.T) {
	rt := goja.New()
	obj, err := hostDictToJS(rt, map[string]any{"x": int64(1)})
	require.NoError(t, err)
	require.True(t, isHostProxyObject(obj.(*goja.Object)))

	plain := rt.NewObject()
	require.False(t, isHostProxyObject(plain))
}
