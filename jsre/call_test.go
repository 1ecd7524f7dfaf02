package jsre

import (
	"errors"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestCallHostFuncBasic(t *testing.T) {
	rt := goja.New()
	fn := func(a, b int64) int64 { return a + b }
	res, err := callHostFunc(rt, fn, []any{int64(2), int64(3)})
	require.NoError(t, err)
	require.EqualValues(t, 5, res.ToInteger())
}

func TestCallHostFuncWithTrailingError(t *testing.T) {
	rt := goja.New()
	fn := func(a int64) (int64, error) {
		if a < 0 {
			return 0, errors.New("negative")
		}
		return a * 2, nil
	}

	res, err := callHostFunc(rt, fn, []any{int64(4)})
	require.NoError(t, err)
	require.EqualValues(t, 8, res.ToInteger())

	_, err = callHostFunc(rt, fn, []any{int64(-1)})
	require.Error(t, err)
}

func TestCallHostFuncVariadic(t *testing.T) {
	rt := goja.New()
	fn := func(nums ...int64) int64 {
		var sum int64
		for _, n := range nums {
			sum += n
		}
		return sum
	}
	res, err := callHostFunc(rt, fn, []any{int64(1), int64(2), int64(3)})
	require.NoError(t, err)
	require.EqualValues(t, 6, res.ToInteger())
}
