package refname

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkingKeyStable(t *testing.T) {
	n := New()
	a := n.WorkingKey("app.models.Point", "", 7)
	b := n.WorkingKey("app.models.Point", "", 7)
	require.Equal(t, a, b, "one identity keeps one working key")
	require.Equal(t, "app.models.Point-1", a)

	c := n.WorkingKey("app.models.Point", "", 9)
	require.Equal(t, "app.models.Point-2", c, "a second instance of the same name advances the counter")
}

func TestWorkingKeyNormalization(t *testing.T) {
	n := New()
	wk := n.WorkingKey("generics.Box", "[int]", 1)
	require.Equal(t, "generics.Box_int_-1", wk)
}

func TestRemapShortestWins(t *testing.T) {
	n := New()
	n.WorkingKey("app.models.Point", "", 1)
	m := n.Remap()
	require.Equal(t, "Point", m["app.models.Point-1"])
}

func TestRemapCollisionAcrossScopes(t *testing.T) {
	n := New()
	n.WorkingKey("geo.a.Point", "", 1)
	n.WorkingKey("geo.b.Point", "", 2)
	m := n.Remap()
	require.Equal(t, "Point", m["geo.a.Point-1"], "sorted order decides the shortest-name claimant")
	require.Equal(t, "b.Point", m["geo.b.Point-1"])
}

func TestRemapCollisionSameQualifiedName(t *testing.T) {
	n := New()
	n.WorkingKey("app.Point", "", 1)
	n.WorkingKey("app.Point", "", 2)
	n.WorkingKey("app.Point", "", 3)
	m := n.Remap()
	require.Equal(t, "Point", m["app.Point-1"])
	require.Equal(t, "app.Point", m["app.Point-2"])
	require.Equal(t, "app.Point-3", m["app.Point-3"])
}

func TestRemapGenericArgsDistinguish(t *testing.T) {
	n := New()
	n.WorkingKey("generics.Box", "[int]", 1)
	n.WorkingKey("generics.Box", "[str]", 2)
	m := n.Remap()
	require.Equal(t, "Box_int_", m["generics.Box_int_-1"])
	require.Equal(t, "Box_str_", m["generics.Box_str_-1"])
}

func TestRemapDeterministic(t *testing.T) {
	build := func() map[string]string {
		n := New()
		n.WorkingKey("x.c.T", "", 1)
		n.WorkingKey("x.a.T", "", 2)
		n.WorkingKey("x.b.T", "", 3)
		return n.Remap()
	}
	require.Equal(t, build(), build())
}
