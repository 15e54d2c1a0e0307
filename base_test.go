package gridfinity

import (
	"errors"
	"testing"

	"github.com/soypat/gridfinity/kernel"
	"github.com/soypat/gridfinity/kernel/csg"
	"github.com/soypat/gridfinity/sdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newCSG() (*Generator, *csg.Kernel) {
	k := csg.New()
	return New(k), k
}

func newSDF() (*Generator, *sdf.Kernel) {
	k := sdf.New()
	return New(k), k
}

func named(p csg.Program, kind csg.OpKind, name string) []csg.Op {
	var out []csg.Op
	for _, op := range p.Filter(kind) {
		if op.Name == name {
			out = append(out, op)
		}
	}
	return out
}

func assertBox(t *testing.T, want, got r3.Box) {
	t.Helper()
	assert.InDelta(t, want.Min.X, got.Min.X, 1e-9, "min x")
	assert.InDelta(t, want.Min.Y, got.Min.Y, 1e-9, "min y")
	assert.InDelta(t, want.Min.Z, got.Min.Z, 1e-9, "min z")
	assert.InDelta(t, want.Max.X, got.Max.X, 1e-9, "max x")
	assert.InDelta(t, want.Max.Y, got.Max.Y, 1e-9, "max y")
	assert.InDelta(t, want.Max.Z, got.Max.Z, 1e-9, "max z")
}

func binFoot() BaseInput {
	return BaseInput{
		Origin:        r3.Vec{X: -XYClearance, Y: -XYClearance},
		Width:         BaseWidth,
		Length:        BaseLength,
		CornerRadius:  CornerFilletRadius,
		Clearance:     XYClearance,
		BottomChamfer: true,
	}
}

func TestFootprint(t *testing.T) {
	fp := binFoot().Footprint()
	assert.InDelta(t, 0, fp.Min.X, 1e-12)
	assert.InDelta(t, 0, fp.Min.Y, 1e-12)
	assert.InDelta(t, 4.15, fp.Size.X, 1e-12)
	assert.InDelta(t, 4.15, fp.Size.Y, 1e-12)
	assert.InDelta(t, 0.375, fp.Radius, 1e-12)

	// A bin foot lines up with the bin body above it.
	s := DefaultBinSpec(1, 1, 3)
	assert.InDelta(t, s.BodyWidth(), fp.Size.X, 1e-12)

	// Baseplate sockets are one clearance larger than the feet on every
	// side.
	c := XYClearance
	socket := BaseInput{
		Origin:       r3.Vec{X: -2 * c, Y: -2 * c},
		Width:        BaseWidth + 2*c,
		Length:       BaseLength + 2*c,
		CornerRadius: CornerFilletRadius + c,
		Clearance:    c,
	}.Footprint()
	assert.InDelta(t, fp.Min.X-c, socket.Min.X, 1e-12)
	assert.InDelta(t, fp.Size.X+2*c, socket.Size.X, 1e-12)
	assert.InDelta(t, fp.Radius+c, socket.Radius, 1e-12)
}

func TestBaseProfileProgram(t *testing.T) {
	g, k := newCSG()
	b, err := g.BaseProfile(binFoot())
	require.NoError(t, err)

	p := k.Program()
	ext := p.Filter(csg.OpExtrude)
	require.Len(t, ext, 3)
	assert.Equal(t, []string{"base", "base mid", "base bottom"}, []string{ext[0].Name, ext[1].Name, ext[2].Name})
	assert.Equal(t, "rect min=(0,0) size=(4.15,4.15) r=0.375", ext[0].Profile)
	assert.Equal(t, "rect min=(0.24,0.24) size=(3.67,3.67) r=0.135", ext[1].Profile)
	assert.Equal(t, ext[1].Profile, ext[2].Profile)
	assert.InDelta(t, -BaseTopSectionHeight, ext[0].Params["distance"], 1e-12)
	assert.Greater(t, ext[0].Params["taper"], 0.0)
	assert.Equal(t, 0.0, ext[1].Params["taper"])
	assert.Greater(t, ext[2].Params["taper"], 0.0)
	assert.Equal(t, 1, p.Count(csg.OpJoin))

	bb, err := k.Bounds(b)
	require.NoError(t, err)
	assertBox(t, r3.Box{Max: r3.Vec{X: 4.15, Y: 4.15}, Min: r3.Vec{Z: -BaseHeight}}, bb)
}

func TestBaseProfileShape(t *testing.T) {
	g, k := newSDF()
	b, err := g.BaseProfile(binFoot())
	require.NoError(t, err)
	for _, tc := range []struct {
		name   string
		p      r3.Vec
		inside bool
	}{
		{name: "centre", p: r3.Vec{X: 2.075, Y: 2.075, Z: -0.25}, inside: true},
		{name: "top rim", p: r3.Vec{X: 0.05, Y: 2.075, Z: -0.01}, inside: true},
		{name: "outside the top taper", p: r3.Vec{X: 0.05, Y: 2.075, Z: -0.2}},
		{name: "outside the mid section", p: r3.Vec{X: 0.1, Y: 2.075, Z: -0.3}},
		{name: "outside the bottom chamfer", p: r3.Vec{X: 0.3, Y: 2.075, Z: -0.49}},
		{name: "inside the bottom chamfer", p: r3.Vec{X: 0.4, Y: 2.075, Z: -0.49}, inside: true},
		{name: "above", p: r3.Vec{X: 2.075, Y: 2.075, Z: 0.01}},
		{name: "below", p: r3.Vec{X: 2.075, Y: 2.075, Z: -0.51}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := k.Evaluate(b, tc.p)
			require.NoError(t, err)
			if tc.inside {
				assert.Less(t, d, 0.0)
			} else {
				assert.Greater(t, d, 0.0)
			}
		})
	}
}

func TestBaseProfileInfeasible(t *testing.T) {
	g, k := newCSG()
	in := binFoot()
	in.Width = 0.3
	_, err := g.BaseProfile(in)
	assert.True(t, errors.Is(err, kernel.ErrInfeasible), "%v", err)
	assert.Empty(t, k.Program().Ops)
}

func TestHoles(t *testing.T) {
	g, k := newCSG()
	hs, err := g.Holes(HoleInput{
		Center:         r3.Vec{X: 0.775, Y: 0.775, Z: -BaseHeight},
		Magnet:         true,
		MagnetDiameter: MagnetCutoutDiameter,
		MagnetDepth:    MagnetCutoutDepth,
		Screw:          true,
		ScrewDiameter:  PlateScrewHoleDiameter,
		ScrewDepth:     BaseplateExtraHeight,
		HeadDiameter:   ScrewHeadCutoutDiameter,
	})
	require.NoError(t, err)
	require.Len(t, hs, 3)

	p := k.Program()
	cyl := p.Filter(csg.OpCylinder)
	require.Len(t, cyl, 3)
	assert.InDelta(t, -MagnetCutoutDepth, cyl[0].Params["depth"], 1e-12)
	assert.InDelta(t, -BaseplateExtraHeight, cyl[1].Params["depth"], 1e-12)
	// The countersink opens at the bottom of the extension and rises.
	assert.InDelta(t, -BaseHeight-BaseplateExtraHeight, cyl[2].Params["center.z"], 1e-12)
	assert.InDelta(t, 0.19, cyl[2].Params["depth"], 1e-12)
	ch := p.Filter(csg.OpChamfer)
	require.Len(t, ch, 1)
	assert.Equal(t, "edges(loop face(max-z))", ch[0].Query)
	assert.InDelta(t, 0.14, ch[0].Params["distance"], 1e-12)

	// Feet holes run upwards and need no countersink.
	g, k = newCSG()
	hs, err = g.Holes(HoleInput{
		Center:         r3.Vec{Z: -BaseHeight},
		Up:             true,
		Magnet:         true,
		MagnetDiameter: MagnetCutoutDiameter,
		MagnetDepth:    MagnetCutoutDepth,
	})
	require.NoError(t, err)
	require.Len(t, hs, 1)
	bb, err := k.Bounds(hs[0])
	require.NoError(t, err)
	assert.InDelta(t, -BaseHeight, bb.Min.Z, 1e-12)
	assert.InDelta(t, -BaseHeight+MagnetCutoutDepth, bb.Max.Z, 1e-12)
}
