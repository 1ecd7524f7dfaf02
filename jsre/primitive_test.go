package jsre

import (
	"math/big"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestHostBigIntToJSSmallFastPath(t *testing.T) {
	rt := goja.New()
	jv, err := hostBigIntToJS(rt, BigInt{Int: big.NewInt(42)})
	require.NoError(t, err)
	require.NoError(t, rt.Set("n", jv))

	v, err := rt.RunString("typeof n")
	require.NoError(t, err)
	require.Equal(t, "bigint", v.String())
}

func TestHostBigIntToJSLargeSlowPath(t *testing.T) {
	rt := goja.New()
	big256, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	jv, err := hostBigIntToJS(rt, BigInt{Int: big256})
	require.NoError(t, err)
	require.NoError(t, rt.Set("n", jv))

	v, err := rt.RunString("n.toString()")
	require.NoError(t, err)
	require.Equal(t, big256.String(), v.String())
}

func TestJsToHostNumberNarrowing(t *testing.T) {
	rt := goja.New()

	v, err := rt.RunString("3")
	require.NoError(t, err)
	n := jsToHostNumber(v)
	_, isInt := n.(int64)
	require.True(t, isInt)

	v, err = rt.RunString("3.5")
	require.NoError(t, err)
	n = jsToHostNumber(v)
	_, isFloat := n.(float64)
	require.True(t, isFloat)
}

func TestLatin1DecodeEncodeRoundTrip(t *testing.T) {
	b := []byte{0x41, 0x42, 0xE9}
	s := latin1Decode(b)
	back, ok := latin1Encode(s)
	require.True(t, ok)
	require.Equal(t, b, back)
}

func TestLatin1EncodeRejectsNonLatin1(t *testing.T) {
	_, ok := latin1Encode("中")
	require.False(t, ok)
}

func TestHostStringToJSUsesNarrowPathForLatin1(t *testing.T) {
	rt := goja.New()
	v := hostStringToJS(rt, "café")
	require.Equal(t, "café", v.String())
}

func TestHostStringToJSWideStringUnaffected(t *testing.T) {
	rt := goja.New()
	v := hostStringToJS(rt, "日本語")
	require.Equal(t, "日本語", v.String())
}

func TestHostNumberToJSSafeIntegerBoundary(t *testing.T) {
	rt := goja.New()

	v, err := hostNumberToJS(rt, int64(1)<<53-1)
	require.NoError(t, err)
	require.EqualValues(t, float64(int64(1)<<53-1), v.ToFloat())

	_, err = hostNumberToJS(rt, int64(1)<<53)
	require.Error(t, err)
}

func TestHostNumberToJSUint64OverflowBoundary(t *testing.T) {
	rt := goja.New()

	v, err := hostNumberToJS(rt, uint64(1)<<53-1)
	require.NoError(t, err)
	require.EqualValues(t, float64(uint64(1)<<53-1), v.ToFloat())

	_, err = hostNumberToJS(rt, uint64(1)<<53)
	require.Error(t, err)
}

func TestHostNumberToJSNegativeOverflow(t *testing.T) {
	rt := goja.New()
	_, err := hostNumberToJS(rt, -(int64(1)<<53 + 1))
	require.Error(t, err)
}
