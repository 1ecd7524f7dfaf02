package jsre

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestInternalBindingUtilsNamespace(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	installInternalBinding(rt, loop)

	v, err := rt.RunString(`
		var utils = internalBinding('utils');
		utils.isAnyArrayBuffer(new ArrayBuffer(4))
	`)
	require.NoError(t, err)
	require.True(t, v.ToBoolean())
}

func TestInternalBindingUnknownNamespacePanics(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	installInternalBinding(rt, loop)

	_, err := rt.RunString(`internalBinding('nope')`)
	require.Error(t, err)
}

func TestInternalBindingTimersNamespace(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	installInternalBinding(rt, loop)
	go loop.Run()
	defer loop.Stop()

	v, err := rt.RunString(`
		var timers = internalBinding('timers');
		var id = timers.enqueueWithDelay(function() {}, 1000);
		timers.timerHasRef(id);
	`)
	require.NoError(t, err)
	require.True(t, v.ToBoolean())
}

func TestInternalBindingGetPromiseDetails(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	installInternalBinding(rt, loop)

	v, err := rt.RunString(`
		var utils = internalBinding('utils');
		var p = Promise.resolve(5);
		utils.getPromiseDetails(p)
	`)
	require.NoError(t, err)
	arr := v.ToObject(rt)
	require.Equal(t, "fulfilled", arr.Get("0").String())
}
