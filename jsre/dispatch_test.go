package jsre

import (
	"errors"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestHostToJSNullVsUndefined(t *testing.T) {
	rt := goja.New()

	nv, err := hostToJS(rt, nil)
	require.NoError(t, err)
	require.True(t, goja.IsUndefined(nv))

	nullv, err := hostToJS(rt, Null)
	require.NoError(t, err)
	require.True(t, goja.IsNull(nullv))
}

func TestJsToHostDateRoundTrip(t *testing.T) {
	rt := goja.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	jv, err := hostToJS(rt, now)
	require.NoError(t, err)

	back, err := jsToHost(rt, jv)
	require.NoError(t, err)
	got, ok := back.(time.Time)
	require.True(t, ok)
	require.True(t, got.Equal(now))
}

func TestJsToHostBufferRoundTrip(t *testing.T) {
	rt := goja.New()
	data := []byte{1, 2, 3, 4}

	jv, err := hostToJS(rt, data)
	require.NoError(t, err)

	back, err := jsToHost(rt, jv)
	require.NoError(t, err)
	got, ok := back.([]byte)
	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestHostCallableToJSPropagatesError(t *testing.T) {
	rt := goja.New()
	fn := func() error { return errors.New("boom") }
	jv := hostCallableToJS(rt, fn)
	require.NoError(t, rt.Set("f", jv))

	_, err := rt.RunString("f()")
	require.Error(t, err)
}

func TestJsToHostFunctionRoundTripsBackToJS(t *testing.T) {
	rt := goja.New()
	fnVal, err := rt.RunString("(function add(a, b) { return a + b; })")
	require.NoError(t, err)

	host, err := jsToHost(rt, fnVal)
	require.NoError(t, err)
	proxy, ok := host.(*JSFunctionProxy)
	require.True(t, ok)

	back, err := hostToJS(rt, proxy)
	require.NoError(t, err)
	require.Same(t, fnVal.ToObject(rt), back)
}

func TestJsToHostSymbolIsTypeError(t *testing.T) {
	rt := goja.New()
	symVal, err := rt.RunString("Symbol('x')")
	require.NoError(t, err)

	_, err = jsToHost(rt, symVal)
	require.Error(t, err)
}
