package jsre

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestRegisterLookupUnregisterHostProxy(t *testing.T) {
	rt := goja.New()
	obj := rt.NewObject()

	require.False(t, isHostProxyObject(obj))

	registerHostProxy(obj, familyMapping, map[string]any{"x": 1})
	require.True(t, isHostProxyObject(obj))

	host, ok := unwrapHostProxy(obj)
	require.True(t, ok)
	require.Equal(t, map[string]any{"x": 1}, host)

	unregisterHostProxy(obj)
	require.False(t, isHostProxyObject(obj))
}
