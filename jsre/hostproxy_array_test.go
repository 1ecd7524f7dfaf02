package jsre

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func newListRT(t *testing.T, data []any) (*goja.Runtime, *goja.Object) {
	t.Helper()
	rt := goja.New()
	obj, err := hostListToJS(rt, data)
	require.NoError(t, err)
	require.NoError(t, rt.Set("a", obj))
	return rt, obj.(*goja.Object)
}

func TestArrayPushPopShiftUnshift(t *testing.T) {
	rt, _ := newListRT(t, []any{int64(1), int64(2)})

	v, err := rt.RunString("a.push(3); a.length")
	require.NoError(t, err)
	require.EqualValues(t, 3, v.ToInteger())

	v, err = rt.RunString("a.pop()")
	require.NoError(t, err)
	require.EqualValues(t, 3, v.ToInteger())

	v, err = rt.RunString("a.unshift(0); a[0]")
	require.NoError(t, err)
	require.EqualValues(t, 0, v.ToInteger())

	v, err = rt.RunString("a.shift(); a[0]")
	require.NoError(t, err)
	require.EqualValues(t, 1, v.ToInteger())
}

func TestArraySliceSpliceConcat(t *testing.T) {
	rt, _ := newListRT(t, []any{int64(1), int64(2), int64(3), int64(4)})

	v, err := rt.RunString("a.slice(1, 3).length")
	require.NoError(t, err)
	require.EqualValues(t, 2, v.ToInteger())

	v, err = rt.RunString("a.splice(1, 2, 9, 9, 9); a.length")
	require.NoError(t, err)
	require.EqualValues(t, 5, v.ToInteger())

	v, err = rt.RunString("a.concat([7, 8]).length")
	require.NoError(t, err)
	require.EqualValues(t, 7, v.ToInteger())
}

func TestArrayMapFilterReduce(t *testing.T) {
	rt, _ := newListRT(t, []any{int64(1), int64(2), int64(3)})

	v, err := rt.RunString("a.map(x => x * 2)[1]")
	require.NoError(t, err)
	require.EqualValues(t, 4, v.ToInteger())

	v, err = rt.RunString("a.filter(x => x % 2 === 0).length")
	require.NoError(t, err)
	require.EqualValues(t, 1, v.ToInteger())

	v, err = rt.RunString("a.reduce((acc, x) => acc + x, 0)")
	require.NoError(t, err)
	require.EqualValues(t, 6, v.ToInteger())
}

func TestArraySortStableWithComparator(t *testing.T) {
	rt, _ := newListRT(t, []any{int64(3), int64(1), int64(2)})

	_, err := rt.RunString("a.sort((x, y) => x - y)")
	require.NoError(t, err)

	v, err := rt.RunString("a.join(',')")
	require.NoError(t, err)
	require.Equal(t, "1,2,3", v.String())
}

func TestArrayFlat(t *testing.T) {
	rt, _ := newListRT(t, []any{[]any{int64(1), int64(2)}, []any{int64(3)}})

	v, err := rt.RunString("a.flat().length")
	require.NoError(t, err)
	require.EqualValues(t, 3, v.ToInteger())
}

func TestArrayEntriesIterator(t *testing.T) {
	rt, _ := newListRT(t, []any{int64(10), int64(20)})

	v, err := rt.RunString(`
		var it = a.entries();
		var first = it.next();
		first.value[0] + ':' + first.value[1]
	`)
	require.NoError(t, err)
	require.Equal(t, "0:10", v.String())
}
