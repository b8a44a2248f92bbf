package starlang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventOrderingBreadthFirst(t *testing.T) {
	in := New()
	err := in.Load(`let log = []
on "a": emit "b"
on "b": set log: log + ["b"]
on "a": set log: log + ["a1"]
`, "test.star")
	require.NoError(t, err)

	require.NoError(t, in.Emit("a", Null))

	log, ok := in.Get("log")
	require.True(t, ok)
	require.Equal(t, VTList, log.Tag)
	var got []string
	for _, e := range log.List().Elems {
		got = append(got, e.Str())
	}
	// The second "a" handler runs before the deferred "b" handler.
	require.Equal(t, []string{"a1", "b"}, got)
}

func TestEmitFromScriptDrainsOnLoad(t *testing.T) {
	in := New()
	err := in.Load(`let hits = 0
on "ping": set hits: hits + 1
emit "ping"
emit "ping"
`, "test.star")
	require.NoError(t, err)
	v, _ := in.Get("hits")
	require.Equal(t, 2.0, v.Num())
}

func TestHandlerGuardSeesEventData(t *testing.T) {
	in := New()
	err := in.Load(`let taken = 0
on "hit" when event.dmg > 10:
  set taken: taken + event.dmg
`, "test.star")
	require.NoError(t, err)

	small := NewMapObject()
	small.Set("dmg", Num(5))
	require.NoError(t, in.Emit("hit", MapOf(small)))

	big := NewMapObject()
	big.Set("dmg", Num(25))
	require.NoError(t, in.Emit("hit", MapOf(big)))

	v, _ := in.Get("taken")
	require.Equal(t, 25.0, v.Num())
}

func TestEmitStatementWithDataLiteral(t *testing.T) {
	in := New()
	var got Value
	in.On("spawn", func(event string, data Value) { got = data })
	err := in.Load(`let kind = "slime"
emit "spawn" { kind: kind, count: 3 }
`, "test.star")
	require.NoError(t, err)
	require.Equal(t, VTMap, got.Tag)
	kind, _ := got.Map().Get("kind")
	require.Equal(t, "slime", kind.Str())
}

func TestListenersRunBeforeHandlersAndWildcardSeesAll(t *testing.T) {
	in := New()
	var order []string
	in.On("a", func(event string, data Value) { order = append(order, "exact") })
	in.On(Wildcard, func(event string, data Value) { order = append(order, "wild:"+event) })

	err := in.Load(`on "a": emit "done"
on "done": let x = 1
`, "test.star")
	require.NoError(t, err)
	require.NoError(t, in.Emit("a", Null))

	// Exact listener, then wildcard for "a", then the handler cascade
	// produced "done", seen only by the wildcard.
	require.Equal(t, []string{"exact", "wild:a", "wild:done"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	in := New()
	calls := 0
	off := in.On("tick", func(event string, data Value) { calls++ })

	require.NoError(t, in.Tick(0.5))
	off()
	off() // double unsubscribe is harmless
	require.NoError(t, in.Tick(0.5))

	require.Equal(t, 1, calls)
}

func TestTickCarriesDt(t *testing.T) {
	in := New()
	var dt Value
	in.On("tick", func(event string, data Value) {
		dt, _ = data.Map().Get("dt")
	})
	require.NoError(t, in.Tick(0.25))
	require.Equal(t, 0.25, dt.Num())
}

func TestTickEventNameOption(t *testing.T) {
	in := New(WithTickEvent("frame"))
	seen := ""
	in.On(Wildcard, func(event string, data Value) { seen = event })
	require.NoError(t, in.Tick(0.1))
	require.Equal(t, "frame", seen)
}

func TestEmitDuringExternalDispatchIsDeferred(t *testing.T) {
	in := New()
	var order []string
	in.On("first", func(event string, data Value) {
		order = append(order, "first")
		require.NoError(t, in.Emit("second", Null))
		// "second" must not have dispatched inline.
		order = append(order, "first-done")
	})
	in.On("second", func(event string, data Value) { order = append(order, "second") })

	require.NoError(t, in.Emit("first", Null))
	require.Equal(t, []string{"first", "first-done", "second"}, order)
}

func TestHandlerErrorSurfacesFromEmit(t *testing.T) {
	in := New()
	err := in.Load(`on "boom": let x = missing
`, "test.star")
	require.NoError(t, err)

	err = in.Emit("boom", Null)
	require.Error(t, err)
	re, ok := err.(*RuntimeError)
	require.True(t, ok, "error type %T", err)
	require.Contains(t, re.Msg, "undefined variable")
}
