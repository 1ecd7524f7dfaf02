package jsre

import (
	"errors"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestWrapJSExceptionFromGojaException(t *testing.T) {
	rt := goja.New()
	_, err := rt.RunString("throw new Error('boom')")
	require.Error(t, err)

	wrapped := wrapJSException(err)
	var smErr *SpiderMonkeyError
	require.True(t, errors.As(wrapped, &smErr))
	require.Contains(t, smErr.Message, "boom")
	require.NotNil(t, smErr.JSError)
}

func TestHostErrorToJSRoundTrip(t *testing.T) {
	rt := goja.New()

	jv, err := hostErrorToJS(rt, errors.New("bad input"))
	require.NoError(t, err)
	require.NoError(t, rt.Set("e", jv))

	v, err := rt.RunString("e.message")
	require.NoError(t, err)
	require.Contains(t, v.String(), "bad input")
}

func TestHostErrorToJSReemitsOriginalJSError(t *testing.T) {
	rt := goja.New()
	_, runErr := rt.RunString("throw new TypeError('nope')")
	require.Error(t, runErr)

	wrapped := wrapJSException(runErr)
	jv, err := hostErrorToJS(rt, wrapped)
	require.NoError(t, err)

	var smErr *SpiderMonkeyError
	require.True(t, errors.As(wrapped, &smErr))
	require.Equal(t, smErr.JSError, jv)
}
