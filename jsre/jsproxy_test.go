package jsre

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestJSObjectProxyGetSetDelete(t *testing.T) {
	rt := goja.New()
	v, err := rt.RunString("({a: 1, b: 2})")
	require.NoError(t, err)
	p := NewJSObjectProxy(rt, v.ToObject(rt))

	got, err := p.Get("a")
	require.NoError(t, err)
	require.EqualValues(t, 1, got)

	require.NoError(t, p.Set("c", int64(3)))
	got, err = p.Get("c")
	require.NoError(t, err)
	require.EqualValues(t, 3, got)

	require.NoError(t, p.Delete("a"))
	require.False(t, p.Has("a"))
}

func TestJSObjectProxyKeysIntersect(t *testing.T) {
	rt := goja.New()
	v1, _ := rt.RunString("({a: 1, b: 2})")
	v2, _ := rt.RunString("({b: 3, c: 4})")
	k1 := NewJSObjectProxy(rt, v1.ToObject(rt)).Keys()
	k2 := NewJSObjectProxy(rt, v2.ToObject(rt)).Keys()

	require.Equal(t, 2, k1.Cardinality())
	require.ElementsMatch(t, []string{"b"}, k1.Intersect(k2))
}

func TestJSArrayProxyIterReflectsLiveMutation(t *testing.T) {
	rt := goja.New()
	v, err := rt.RunString("[1, 2, 3]")
	require.NoError(t, err)
	p := NewJSArrayProxy(rt, v.ToObject(rt))
	require.Equal(t, 3, p.Len())

	it := p.Iter()
	first, ok := it.Next()
	require.True(t, ok)
	require.EqualValues(t, 1, first)

	require.NoError(t, p.Set(1, int64(99)))
	second, ok := it.Next()
	require.True(t, ok)
	require.EqualValues(t, 99, second)
}

func TestJSFunctionProxyCall(t *testing.T) {
	rt := goja.New()
	v, err := rt.RunString("(function(a, b) { return a + b; })")
	require.NoError(t, err)
	callable, ok := goja.AssertFunction(v)
	require.True(t, ok)

	p := NewJSFunctionProxy(rt, v.ToObject(rt), callable)
	res, err := p.Call(int64(1), int64(2))
	require.NoError(t, err)
	require.EqualValues(t, 3, res)
	require.Same(t, v.ToObject(rt), p.Unwrap())
}

func TestJSMethodProxyCall(t *testing.T) {
	rt := goja.New()
	v, err := rt.RunString("({ greeting: 'hi', greet: function(name) { return this.greeting + ' ' + name; } })")
	require.NoError(t, err)
	obj := v.ToObject(rt)

	mp, err := NewJSMethodProxy(rt, obj, "greet")
	require.NoError(t, err)
	res, err := mp.Call("world")
	require.NoError(t, err)
	require.Equal(t, "hi world", res)
}
