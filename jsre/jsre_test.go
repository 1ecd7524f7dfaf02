package jsre

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	result, err := rt.Eval("40 + 2", DefaultEvalOptions())
	require.NoError(t, err)
	require.EqualValues(t, 42, result)
}

func TestEvalNestedDictAccess(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	require.NoError(t, rt.Set("d", map[string]any{
		"nested": map[string]any{"y": 20},
	}))

	result, err := rt.Eval("d.nested.y * 2", DefaultEvalOptions())
	require.NoError(t, err)
	require.EqualValues(t, 40, result)
}

func TestEvalFunctionOverHostDict(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	require.NoError(t, rt.Set("d", map[string]any{
		"nested": map[string]any{"y": 20},
	}))

	result, err := rt.Eval("(d => d.nested.y * 2)(d)", DefaultEvalOptions())
	require.NoError(t, err)
	require.EqualValues(t, 40, result)
}

func TestEvalArraySortMutatesHostList(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	list := []any{3, 1, 2}
	require.NoError(t, rt.Set("a", list))

	result, err := rt.Eval("a.sort((x, y) => x - y)", DefaultEvalOptions())
	require.NoError(t, err)

	arr, ok := result.([]any)
	require.True(t, ok)
	require.Equal(t, 3, len(arr))
	require.Equal(t, []any{1, 2, 3}, list)
	require.EqualValues(t, 1, arr[0])
}

func TestEvalThrownErrorBecomesSpiderMonkeyError(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	_, err := rt.Eval("(() => { throw new Error('boom'); })()", DefaultEvalOptions())
	require.Error(t, err)

	var smErr *SpiderMonkeyError
	require.ErrorAs(t, err, &smErr)
	require.Contains(t, smErr.Message, "boom")
}

func TestEvalCompileError(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	_, err := rt.Eval("this is not valid js (((", DefaultEvalOptions())
	require.Error(t, err)
}

func TestIsCompilableUnit(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	require.True(t, rt.IsCompilableUnit("1 + 2"))
	require.False(t, rt.IsCompilableUnit("function f() {"))
}

func TestHostFunctionCallableFromJS(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	var got int64
	require.NoError(t, rt.Set("addOne", func(x int64) int64 {
		got = x
		return x + 1
	}))

	result, err := rt.Eval("addOne(41)", DefaultEvalOptions())
	require.NoError(t, err)
	require.EqualValues(t, 42, result)
	require.EqualValues(t, 41, got)
}

func TestWaitReturnsWhenIdle(t *testing.T) {
	rt := New(DefaultConfig())
	defer rt.Stop()

	_, err := rt.Eval("1", DefaultEvalOptions())
	require.NoError(t, err)
	rt.Wait()
}
