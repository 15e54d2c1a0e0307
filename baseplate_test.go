package gridfinity

import (
	"errors"
	"testing"

	"github.com/soypat/gridfinity/kernel/csg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBaseplateProgram(t *testing.T) {
	g, k := newCSG()
	plate, err := g.Baseplate(DefaultBaseplateSpec(3, 2))
	require.NoError(t, err)

	bb, err := k.Bounds(plate)
	require.NoError(t, err)
	assertBox(t, r3.Box{Min: r3.Vec{Z: -1.14}, Max: r3.Vec{X: 12.55, Y: 8.35}}, bb)

	p := k.Program()
	var sockets, holes *csg.Op
	for _, op := range p.Filter(csg.OpRectPattern) {
		op := op
		switch op.Params["count1"] {
		case 3:
			sockets = &op
		case 2:
			holes = &op
		}
	}
	require.NotNil(t, sockets)
	assert.Equal(t, 2.0, sockets.Params["count2"])
	assert.Len(t, sockets.Results, 5)
	assert.InDelta(t, BaseWidth, sockets.Params["spacing1"], 1e-12)
	assert.InDelta(t, BaseLength, sockets.Params["spacing2"], 1e-12)
	require.NotNil(t, holes)
	assert.InDelta(t, 2.6, holes.Params["spacing1"], 1e-12)
	assert.Len(t, holes.Results, 3, "one magnet socket copied to the other corners")

	clearance := named(p, csg.OpBox, "bin clearance")
	require.Len(t, clearance, 1)
	assert.InDelta(t, -BaseplateBinZClearance, clearance[0].Params["origin.z"], 1e-12)

	ext := named(p, csg.OpExtrude, "baseplate extension")
	require.Len(t, ext, 1)
	assert.Equal(t, "rect min=(0,0) size=(12.55,8.35) r=0.375", ext[0].Profile)

	// Fillet, extension and bottom chamfer are applied in that order.
	var order []csg.OpKind
	for _, op := range p.Ops {
		if op.Target == plate.ID() && (op.Kind == csg.OpFillet || op.Kind == csg.OpChamfer || op.Kind == csg.OpJoin) {
			order = append(order, op.Kind)
		}
	}
	assert.Equal(t, []csg.OpKind{csg.OpFillet, csg.OpJoin, csg.OpChamfer}, order)
	cuts := p.Filter(csg.OpCut)
	require.NotEmpty(t, cuts)
	final := cuts[len(cuts)-1]
	assert.Equal(t, plate.ID(), final.Target)
	assert.Len(t, final.Tools, 7, "six sockets and the clearance")
}

func TestBaseplateVariants(t *testing.T) {
	t.Run("padding", func(t *testing.T) {
		s := DefaultBaseplateSpec(2, 2)
		s.PaddingLeft, s.PaddingTop = 0.5, 0.3
		g, k := newCSG()
		plate, err := g.Baseplate(s)
		require.NoError(t, err)
		bb, err := k.Bounds(plate)
		require.NoError(t, err)
		assertBox(t, r3.Box{Min: r3.Vec{X: -0.5, Z: -1.14}, Max: r3.Vec{X: 8.35, Y: 8.65}}, bb)
		p := k.Program()
		assert.Len(t, named(p, csg.OpBox, "padding left"), 1)
		assert.Len(t, named(p, csg.OpBox, "padding top"), 1)
		assert.Empty(t, named(p, csg.OpBox, "padding right"))
	})
	t.Run("flat", func(t *testing.T) {
		s := DefaultBaseplateSpec(1, 1)
		s.HasExtendedBottom = false
		g, k := newCSG()
		plate, err := g.Baseplate(s)
		require.NoError(t, err)
		bb, err := k.Bounds(plate)
		require.NoError(t, err)
		assert.InDelta(t, -BaseHeight, bb.Min.Z, 1e-12)
		p := k.Program()
		assert.Zero(t, p.Count(csg.OpCylinder), "holes need the extension")
		assert.Empty(t, named(p, csg.OpExtrude, "baseplate extension"))
	})
	t.Run("sharp corners", func(t *testing.T) {
		s := DefaultBaseplateSpec(1, 1)
		s.CornerFilletRadius = XYClearance
		g, k := newCSG()
		_, err := g.Baseplate(s)
		require.NoError(t, err)
		p := k.Program()
		assert.Zero(t, p.Count(csg.OpFillet))
		ext := named(p, csg.OpExtrude, "baseplate extension")
		require.Len(t, ext, 1)
		assert.Equal(t, "rect min=(0,0) size=(4.15,4.15) r=0", ext[0].Profile)
	})
	t.Run("skeleton without extension", func(t *testing.T) {
		s := DefaultBaseplateSpec(2, 1)
		s.HasExtendedBottom = false
		s.HasSkeletonizedBottom = true
		s.HasConnectionHoles = true
		g, k := newCSG()
		plate, err := g.Baseplate(s)
		require.NoError(t, err)
		require.NotNil(t, plate)
		p := k.Program()
		assert.Empty(t, named(p, csg.OpExtrude, "skeleton"))
		assert.Empty(t, p.Filter(csg.OpCircPattern))
		assert.Zero(t, p.Count(csg.OpCylinder))
	})
	t.Run("invalid", func(t *testing.T) {
		s := DefaultBaseplateSpec(1, 1)
		s.Width = 0
		g, k := newCSG()
		plate, err := g.Baseplate(s)
		assert.True(t, errors.Is(err, ErrInvalidSpec))
		assert.Nil(t, plate)
		assert.Empty(t, k.Program().Ops)
	})
}

func TestBaseplateSkeleton(t *testing.T) {
	s := DefaultBaseplateSpec(2, 1)
	s.HasSkeletonizedBottom = true
	s.HasConnectionHoles = true
	s.HasScrewHoles = true
	g, k := newCSG()
	_, err := g.Baseplate(s)
	require.NoError(t, err)

	p := k.Program()
	circ := p.Filter(csg.OpCircPattern)
	require.Len(t, circ, 1)
	assert.Equal(t, 4.0, circ[0].Params["count"])
	assert.Len(t, circ[0].Results, 3)
	assert.InDelta(t, 2.075, circ[0].Params["point.x"], 1e-12)
	assert.InDelta(t, 2.075, circ[0].Params["point.y"], 1e-12)

	holes := named(p, csg.OpCylinder, "connection hole y")
	require.Len(t, holes, 1)
	h := holes[0]
	assert.InDelta(t, 2.075, h.Params["center.x"], 1e-9)
	assert.InDelta(t, 0.295, h.Params["center.y"], 1e-9)
	assert.InDelta(t, -0.82, h.Params["center.z"], 1e-9)
	assert.InDelta(t, -BaseLength/2, h.Params["depth"], 1e-12)
	assert.Len(t, named(p, csg.OpCylinder, "connection hole x"), 1)

	mirrors := p.Filter(csg.OpMirror)
	require.Len(t, mirrors, 2)
	assert.Equal(t, "normal y", mirrors[0].Query)
	assert.Len(t, mirrors[0].Results, 2, "one hole per column")
	assert.InDelta(t, 2.075, mirrors[0].Params["origin.y"], 1e-12)
	assert.Equal(t, "normal x", mirrors[1].Query)
	assert.Len(t, mirrors[1].Results, 1, "one hole per row")
	assert.InDelta(t, 4.175, mirrors[1].Params["origin.x"], 1e-12)
}

func TestBaseplateRectangularSkeleton(t *testing.T) {
	s := DefaultBaseplateSpec(1, 1)
	s.BaseLength = 5
	s.HasSkeletonizedBottom = true
	s.HasScrewHoles = true

	g, k := newCSG()
	_, err := g.Baseplate(s)
	require.NoError(t, err)
	p := k.Program()
	assert.Empty(t, p.Filter(csg.OpCircPattern))
	assert.Len(t, named(p, csg.OpExtrude, "skeleton"), 1)
	mirrors := p.Filter(csg.OpMirror)
	require.Len(t, mirrors, 2)
	assert.Equal(t, "normal x", mirrors[0].Query)
	assert.InDelta(t, 2.075, mirrors[0].Params["origin.x"], 1e-12)
	assert.Len(t, mirrors[0].Results, 1)
	assert.Equal(t, "normal y", mirrors[1].Query)
	assert.InDelta(t, 2.475, mirrors[1].Params["origin.y"], 1e-12)
	assert.Len(t, mirrors[1].Results, 2)

	pats := p.Filter(csg.OpRectPattern)
	require.Len(t, pats, 1, "corner holes only")
	assert.InDelta(t, 2.6, pats[0].Params["spacing1"], 1e-12)
	assert.InDelta(t, 3.4, pats[0].Params["spacing2"], 1e-12)

	sg, sk := newSDF()
	plate, err := sg.Baseplate(s)
	require.NoError(t, err)
	for _, tc := range []struct {
		name   string
		p      r3.Vec
		inside bool
	}{
		{name: "arm", p: r3.Vec{X: 1.5, Y: 1.8, Z: -0.8}},
		{name: "mirrored arm", p: r3.Vec{X: 1.5, Y: 3.15, Z: -0.8}},
		{name: "opposite arm", p: r3.Vec{X: 2.65, Y: 3.15, Z: -0.8}},
		{name: "rim", p: r3.Vec{X: 0.15, Y: 2, Z: -0.8}, inside: true},
	} {
		d, err := sk.Evaluate(plate, tc.p)
		require.NoError(t, err)
		assert.Equal(t, tc.inside, d < 0, "%s: distance %g", tc.name, d)
	}
}

func TestBaseplateShape(t *testing.T) {
	g, k := newSDF()
	plate, err := g.Baseplate(DefaultBaseplateSpec(3, 2))
	require.NoError(t, err)
	bb, err := k.Bounds(plate)
	require.NoError(t, err)
	assertBox(t, r3.Box{Min: r3.Vec{Z: -1.14}, Max: r3.Vec{X: 12.55, Y: 8.35}}, bb)

	for _, tc := range []struct {
		name   string
		p      r3.Vec
		inside bool
	}{
		{name: "first socket", p: r3.Vec{X: 2.075, Y: 2.075, Z: -0.2}},
		{name: "last socket", p: r3.Vec{X: 2.075 + 2*4.2, Y: 2.075 + 4.2, Z: -0.2}},
		{name: "between sockets", p: r3.Vec{X: 4.175, Y: 2.075, Z: -0.45}, inside: true},
		{name: "magnet socket", p: r3.Vec{X: 0.775, Y: 0.775, Z: -0.6}},
		{name: "magnet socket copy", p: r3.Vec{X: 3.375 + 4.2, Y: 3.375, Z: -0.6}},
		{name: "extension", p: r3.Vec{X: 2.075, Y: 2.075, Z: -0.8}, inside: true},
		{name: "below", p: r3.Vec{X: 2.075, Y: 2.075, Z: -1.2}},
		{name: "outside", p: r3.Vec{X: -0.1, Y: 2.075, Z: -0.8}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := k.Evaluate(plate, tc.p)
			require.NoError(t, err)
			assert.Equal(t, tc.inside, d < 0, "distance %g", d)
		})
	}
}
