package csg

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/soypat/gridfinity/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func box(t *testing.T, k *Kernel, min, max r3.Vec, name string) kernel.Body {
	t.Helper()
	b, err := k.Box(min, r3.Sub(max, min), name)
	require.NoError(t, err)
	return b
}

func assertBounds(t *testing.T, k *Kernel, b kernel.Body, min, max r3.Vec) {
	t.Helper()
	bb, err := k.Bounds(b)
	require.NoError(t, err)
	for _, c := range []struct{ got, want float64 }{
		{bb.Min.X, min.X}, {bb.Min.Y, min.Y}, {bb.Min.Z, min.Z},
		{bb.Max.X, max.X}, {bb.Max.Y, max.Y}, {bb.Max.Z, max.Z},
	} {
		assert.InDelta(t, c.want, c.got, 1e-9, "bounds %v", bb)
	}
}

func TestPrimitives(t *testing.T) {
	k := New()
	_, err := k.Box(r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 1}, "flat")
	assert.True(t, errors.Is(err, kernel.ErrInfeasible))

	c, err := k.Cylinder(r3.Vec{X: 1, Y: 1}, 0.5, -2, kernel.AxisZ, "hole")
	require.NoError(t, err)
	assertBounds(t, k, c, r3.Vec{X: 0.5, Y: 0.5, Z: -2}, r3.Vec{X: 1.5, Y: 1.5})

	e, err := k.Extrude(kernel.ExtrudeInput{
		Name:     "ramp",
		Plane:    kernel.Plane{Origin: r3.Vec{X: 2}, Normal: kernel.AxisX},
		Profile:  kernel.Polygon{Vertices: []r2.Vec{{}, {X: 1}, {Y: 1}}},
		Distance: 3,
	})
	require.NoError(t, err)
	assertBounds(t, k, e, r3.Vec{X: 2}, r3.Vec{X: 5, Y: 1, Z: 1})

	_, err = k.Extrude(kernel.ExtrudeInput{
		Name:     "spike",
		Plane:    kernel.XYPlane(0),
		Profile:  kernel.Rect{Size: r2.Vec{X: 1, Y: 1}},
		Distance: 1,
		Taper:    math.Pi / 4,
	})
	assert.True(t, errors.Is(err, kernel.ErrInfeasible), "taper collapses the profile")

	p := k.Program()
	require.Len(t, p.Ops, 2)
	assert.Equal(t, "z", p.Ops[0].Query)
	assert.Equal(t, "polygon n=3", p.Ops[1].Profile)
	assert.Equal(t, "normal x", p.Ops[1].Query)
	assert.Equal(t, []int{1, 2}, []int{p.Ops[0].Seq, p.Ops[1].Seq})
}

func TestEdgeTreatments(t *testing.T) {
	k := New()
	b := box(t, k, r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 1}, "block")
	require.NoError(t, k.Fillet(b, kernel.EdgesParallel(kernel.AxisZ), 1))
	require.NoError(t, k.Chamfer(b, kernel.FaceLoop(kernel.TopFace), 0.5))

	err := k.Fillet(b, kernel.FaceLoop(kernel.TopFace), 1.5)
	assert.True(t, errors.Is(err, kernel.ErrInfeasible), "%v", err)
	err = k.Chamfer(b, kernel.EdgeQuery{}, 0.1)
	assert.True(t, errors.Is(err, kernel.ErrInvalidQuery), "%v", err)

	p := k.Program()
	require.Len(t, p.Ops, 3)
	assert.Equal(t, b.ID(), p.Ops[1].Target)
	assert.Equal(t, "edges(parallel z)", p.Ops[1].Query)
	assert.Equal(t, 1.0, p.Ops[1].Params["radius"])
	assert.Equal(t, 0.5, p.Ops[2].Params["distance"])
}

func TestShell(t *testing.T) {
	k := New()
	b := box(t, k, r3.Vec{}, r3.Vec{X: 4, Y: 2, Z: 3}, "cup")
	err := k.Shell(b, kernel.TopFace, 1)
	assert.True(t, errors.Is(err, kernel.ErrInfeasible), "walls meet across y")
	err = k.Shell(b, kernel.FaceQuery{}, 0.1)
	assert.True(t, errors.Is(err, kernel.ErrInvalidQuery))
	require.NoError(t, k.Shell(b, kernel.TopFace, 0.5))
	shells := k.Program().Filter(OpShell)
	require.Len(t, shells, 1)
	assert.Equal(t, "face(max-z)", shells[0].Query)
}

func TestBooleans(t *testing.T) {
	k := New()
	a := box(t, k, r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2}, "a")
	b := box(t, k, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 3, Y: 3, Z: 3}, "b")
	c := box(t, k, r3.Vec{X: 1.5}, r3.Vec{X: 4, Y: 1, Z: 1}, "c")

	require.NoError(t, k.Join(a, []kernel.Body{b}, true))
	assertBounds(t, k, a, r3.Vec{}, r3.Vec{X: 3, Y: 3, Z: 3})
	_, err := k.Bounds(b)
	assert.NoError(t, err, "kept tools stay usable")

	require.NoError(t, k.Cut(a, []kernel.Body{b}, false))
	assertBounds(t, k, a, r3.Vec{}, r3.Vec{X: 3, Y: 3, Z: 3})
	_, err = k.Bounds(b)
	assert.True(t, errors.Is(err, kernel.ErrConsumed))
	err = k.Join(a, []kernel.Body{b}, false)
	assert.True(t, errors.Is(err, kernel.ErrConsumed))

	require.NoError(t, k.Intersect(a, []kernel.Body{c}, false))
	assertBounds(t, k, a, r3.Vec{X: 1.5}, r3.Vec{X: 3, Y: 1, Z: 1})

	far := box(t, k, r3.Vec{X: 10}, r3.Vec{X: 11, Y: 1, Z: 1}, "far")
	err = k.Intersect(a, []kernel.Body{far}, false)
	assert.True(t, errors.Is(err, kernel.ErrNoIntersection))

	err = k.Join(a, nil, false)
	assert.True(t, errors.Is(err, kernel.ErrInvalidQuery))
	err = k.Join(a, []kernel.Body{a}, false)
	assert.True(t, errors.Is(err, kernel.ErrInvalidQuery))

	live := k.Live()
	require.Len(t, live, 2)
	assert.Equal(t, "a", live[0].Name())
	assert.Equal(t, "far", live[1].Name())
}

func TestForeignBody(t *testing.T) {
	k1, k2 := New(), New()
	b := box(t, k1, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, "mine")
	_, err := k2.Bounds(b)
	assert.True(t, errors.Is(err, kernel.ErrUnknownBody))
	assert.True(t, errors.Is(k2.Fillet(nil, kernel.EdgesParallel(kernel.AxisZ), 0.1), kernel.ErrUnknownBody))
}

func TestCopyRemove(t *testing.T) {
	k := New()
	b := box(t, k, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, "orig")
	c, err := k.Copy(b, "dup")
	require.NoError(t, err)
	assert.NotEqual(t, b.ID(), c.ID())
	assertBounds(t, k, c, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, k.Remove(b))
	assert.True(t, errors.Is(k.Remove(b), kernel.ErrConsumed))
	_, err = k.Bounds(c)
	assert.NoError(t, err)
}

func TestPatterns(t *testing.T) {
	k := New()
	b := box(t, k, r3.Vec{X: 1}, r3.Vec{X: 2, Y: 1, Z: 1}, "peg")

	copies, err := k.RectPattern([]kernel.Body{b}, kernel.RectPattern{Count1: 3, Spacing1: 2, Count2: 2, Spacing2: 5})
	require.NoError(t, err)
	require.Len(t, copies, 5)
	assertBounds(t, k, copies[len(copies)-1], r3.Vec{X: 5, Y: 5}, r3.Vec{X: 6, Y: 6, Z: 1})
	_, err = k.RectPattern([]kernel.Body{b}, kernel.RectPattern{Count1: 0, Count2: 1})
	assert.True(t, errors.Is(err, kernel.ErrInvalidQuery))

	rot, err := k.CircPattern([]kernel.Body{b}, kernel.Line{Dir: kernel.AxisZ}, 4)
	require.NoError(t, err)
	require.Len(t, rot, 3)
	assertBounds(t, k, rot[0], r3.Vec{X: -1, Y: 1}, r3.Vec{Y: 2, Z: 1})
	assertBounds(t, k, rot[1], r3.Vec{X: -2, Y: -1}, r3.Vec{X: -1, Z: 1})

	m, err := k.Mirror([]kernel.Body{b}, kernel.Plane{Normal: kernel.AxisX})
	require.NoError(t, err)
	require.Len(t, m, 1)
	assertBounds(t, k, m[0], r3.Vec{X: -2}, r3.Vec{X: -1, Y: 1, Z: 1})
	_, err = k.Mirror([]kernel.Body{b}, kernel.Plane{})
	assert.True(t, errors.Is(err, kernel.ErrInvalidQuery))

	p := k.Program()
	assert.Equal(t, 1, p.Count(OpRectPattern))
	assert.Equal(t, 4.0, p.Filter(OpCircPattern)[0].Params["count"])
	assert.Equal(t, "normal x", p.Filter(OpMirror)[0].Query)
}

func TestFaceBounds(t *testing.T) {
	k := New()
	b := box(t, k, r3.Vec{}, r3.Vec{X: 2, Y: 3, Z: 4}, "block")
	f, err := k.FaceBounds(b, kernel.FaceQuery{Side: kernel.MaxY})
	require.NoError(t, err)
	assert.Equal(t, 3.0, f.Min.Y)
	assert.Equal(t, 3.0, f.Max.Y)
	assert.Equal(t, 4.0, f.Max.Z)
}

func TestProgramYAML(t *testing.T) {
	k := New()
	a := box(t, k, r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 1}, "a")
	b := box(t, k, r3.Vec{X: 1, Y: 1}, r3.Vec{X: 2, Y: 2, Z: 1}, "b")
	require.NoError(t, k.Fillet(a, kernel.EdgesParallel(kernel.AxisZ), 0.25))
	require.NoError(t, k.Cut(a, []kernel.Body{b}, false))

	var buf bytes.Buffer
	require.NoError(t, k.Program().WriteYAML(&buf))
	assert.Contains(t, buf.String(), "op: fillet")
	got, err := ReadProgram(&buf)
	require.NoError(t, err)
	assert.Equal(t, k.Program(), got)

	_, err = ReadProgram(bytes.NewBufferString("ops: [1"))
	assert.Error(t, err)
}

func TestNormalized(t *testing.T) {
	k := New()
	a := box(t, k, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, "a")
	b := box(t, k, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, "b")
	require.NoError(t, k.Join(b, []kernel.Body{a}, false))

	n := k.Program().Normalized()
	require.Len(t, n.Ops, 3)
	assert.Equal(t, []string{"b1"}, n.Ops[0].Results)
	assert.Equal(t, []string{"b2"}, n.Ops[1].Results)
	assert.Equal(t, "b2", n.Ops[2].Target)
	assert.Equal(t, []string{"b1"}, n.Ops[2].Tools)
	assert.Nil(t, n.Ops[2].Results)
	assert.NotEqual(t, "b1", k.Program().Ops[0].Results[0], "the original program keeps ids")
}
