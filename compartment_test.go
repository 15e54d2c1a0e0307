package gridfinity

import (
	"errors"
	"testing"

	"github.com/soypat/gridfinity/kernel/csg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLayout(t *testing.T) {
	s := DefaultBinSpec(2, 1, 3)
	s.CompartmentsX = 2
	s.Compartments = UniformCompartments(2, 1, 0)
	l, err := s.Layout()
	require.NoError(t, err)

	assert.InDelta(t, 0.12, l.MinX, 1e-12)
	assert.InDelta(t, 8.23, l.MaxX, 1e-12)
	assert.InDelta(t, 0.12, l.MinY, 1e-12)
	assert.InDelta(t, 4.03, l.MaxY, 1e-12)
	assert.InDelta(t, 3.995, l.UnitWidth, 1e-12)
	assert.InDelta(t, 3.91, l.UnitLength, 1e-12)
	require.Len(t, l.Cells, 2)
	for i, want := range []float64{0.12, 4.235} {
		c := l.Cells[i]
		assert.InDelta(t, want, c.Origin.X, 1e-12)
		assert.InDelta(t, 0.12, c.Origin.Y, 1e-12)
		assert.InDelta(t, 1.6, c.Origin.Z, 1e-12)
		assert.InDelta(t, 3.995, c.Width, 1e-12)
		assert.InDelta(t, 1.5, c.Depth, 1e-12)
	}
	// The last cell ends on the usable bound.
	last := l.Cells[1]
	assert.InDelta(t, l.MaxX, last.Origin.X+last.Width, 1e-12)
}

func TestLayoutSpans(t *testing.T) {
	s := DefaultBinSpec(3, 2, 6)
	s.CompartmentsX, s.CompartmentsY = 3, 2
	s.Compartments = []Compartment{
		{X: 0, Y: 0, Width: 2, Length: 2},
		{X: 2, Y: 0, Width: 1, Length: 1, Depth: 0.5},
		{X: 2, Y: 1, Width: 1, Length: 1, Depth: 10},
	}
	l, err := s.Layout()
	require.NoError(t, err)
	require.Len(t, l.Cells, 3)

	wide := l.Cells[0]
	assert.InDelta(t, 2*l.UnitWidth+s.WallThickness, wide.Width, 1e-12)
	assert.InDelta(t, l.MaxY-l.MinY, wide.Length, 1e-12)
	assert.InDelta(t, l.MaxX, l.Cells[1].Origin.X+l.Cells[1].Width, 1e-12)
	assert.InDelta(t, l.MaxY, l.Cells[2].Origin.Y+l.Cells[2].Length, 1e-12)

	top := s.BodyHeight()
	assert.InDelta(t, top-CompartmentBottomThickness, wide.Depth, 1e-12)
	assert.InDelta(t, 0.5, l.Cells[1].Depth, 1e-12)
	assert.InDelta(t, top-CompartmentBottomThickness, l.Cells[2].Depth, 1e-12, "depth capped by the floor")
}

func TestLayoutVariants(t *testing.T) {
	t.Run("scoop under lip", func(t *testing.T) {
		s := DefaultBinSpec(1, 1, 3)
		s.HasScoop = true
		l, err := s.Layout()
		require.NoError(t, err)
		assert.InDelta(t, LipWallThickness-XYClearance, l.MinY, 1e-12)
		assert.InDelta(t, l.MinY, l.Cells[0].Origin.Y, 1e-12)
	})
	t.Run("shelled cuts through", func(t *testing.T) {
		s := DefaultBinSpec(1, 1, 3)
		s.IsShelled = true
		l, err := s.Layout()
		require.NoError(t, err)
		assert.InDelta(t, 2.1, l.Cells[0].Depth, 1e-12)
	})
	t.Run("solid", func(t *testing.T) {
		s := DefaultBinSpec(1, 1, 3)
		s.IsSolid = true
		l, err := s.Layout()
		require.NoError(t, err)
		assert.Empty(t, l.Cells)
		assert.Zero(t, l.UnitWidth)
	})
	t.Run("invalid", func(t *testing.T) {
		s := DefaultBinSpec(1, 1, 3)
		s.CompartmentsX = 0
		_, err := s.Layout()
		assert.True(t, errors.Is(err, ErrInvalidSpec))
	})
}

func TestTabInput(t *testing.T) {
	s := DefaultBinSpec(2, 1, 3)
	cell := s.layout().Cells[0]

	s.TabPosition, s.TabLength = 1.5, 1
	in := s.tabInput(cell)
	assert.InDelta(t, cell.Origin.X+BaseWidth, in.Origin.X, 1e-12)
	assert.InDelta(t, cell.Origin.Y+cell.Length, in.Origin.Y, 1e-12)
	assert.InDelta(t, 1.6, in.Origin.Z, 1e-12)
	assert.InDelta(t, BaseWidth, in.Length, 1e-12)

	s.TabPosition, s.TabLength = 0, -1
	in = s.tabInput(cell)
	assert.InDelta(t, cell.Origin.X+cell.Width, in.Origin.X, 1e-12)
	assert.InDelta(t, -BaseWidth, in.Length, 1e-12)

	s.TabLength = 5
	in = s.tabInput(cell)
	assert.InDelta(t, 2*BaseWidth, in.Length, 1e-12)
}

func TestCompartmentTabs(t *testing.T) {
	s := DefaultBinSpec(1, 1, 3)
	s.HasTab = true
	g, k := newCSG()
	_, err := g.Bin(s)
	require.NoError(t, err)

	p := k.Program()
	tabs := named(p, csg.OpExtrude, "tab")
	require.Len(t, tabs, 1)
	assert.Equal(t, "polygon n=3", tabs[0].Profile)
	assert.Equal(t, "normal x", tabs[0].Query)
	assert.InDelta(t, 0.12, tabs[0].Params["origin.x"], 1e-12)
	assert.InDelta(t, 4.03, tabs[0].Params["origin.y"], 1e-12)
	inter := p.Filter(csg.OpIntersect)
	require.Len(t, inter, 1)
	assert.True(t, inter[0].Keep)

	// Zero length tabs are skipped.
	s.TabLength = 0
	g, k = newCSG()
	_, err = g.Bin(s)
	require.NoError(t, err)
	assert.Empty(t, named(k.Program(), csg.OpExtrude, "tab"))
}

func TestRightAnchoredTabs(t *testing.T) {
	for _, tc := range []struct {
		name     string
		position float64
		originX  float64
		kept     bool
	}{
		{name: "one unit from the right", position: 1, originX: 0.12 + 8.11 - BaseWidth, kept: true},
		{name: "at the left edge", position: 2, originX: 0.12 + 8.11 - 2*BaseWidth},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultBinSpec(2, 1, 3)
			s.HasTab = true
			s.TabPosition, s.TabLength = tc.position, -1
			g, k := newCSG()
			_, err := g.Bin(s)
			require.NoError(t, err)

			p := k.Program()
			tabs := named(p, csg.OpExtrude, "tab")
			require.Len(t, tabs, 1)
			assert.InDelta(t, tc.originX, tabs[0].Params["origin.x"], 1e-9)
			assert.InDelta(t, -BaseWidth, tabs[0].Params["distance"], 1e-12)
			if tc.kept {
				assert.Len(t, p.Filter(csg.OpIntersect), 1)
				assert.Zero(t, p.Count(csg.OpRemove))
			} else {
				assert.Empty(t, p.Filter(csg.OpIntersect), "the tab misses the cavity")
				assert.Equal(t, 1, p.Count(csg.OpRemove))
			}
		})
	}
}

func TestTabShape(t *testing.T) {
	s := DefaultBinSpec(1, 1, 3)
	s.HasTab = true
	g, k := newSDF()
	b, err := g.Bin(s)
	require.NoError(t, err)
	for _, tc := range []struct {
		name   string
		p      r3.Vec
		inside bool
	}{
		{name: "tab near wall", p: r3.Vec{X: 2, Y: 3.9, Z: 1.5}, inside: true},
		{name: "under tab slope", p: r3.Vec{X: 2, Y: 3, Z: 1}},
		{name: "cavity", p: r3.Vec{X: 2, Y: 2, Z: 1}},
		{name: "clearance above tab", p: r3.Vec{X: 2, Y: 3.9, Z: 1.58}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := k.Evaluate(b, tc.p)
			require.NoError(t, err)
			assert.Equal(t, tc.inside, d < 0, "distance %g", d)
		})
	}
}
