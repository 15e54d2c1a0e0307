package gridfinity

import (
	"fmt"
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// TabInput describes a label tab hanging from a max-Y wall.
type TabInput struct {
	// Origin is the start of the tab on the wall face at the top of the
	// body.
	Origin r3.Vec
	// Length runs along X. Negative lengths run towards -X.
	Length float64
	// Width is how far the tab protrudes from the wall.
	Width float64
	// OverhangAngle is the underside slope in degrees from horizontal.
	OverhangAngle float64
	TopClearance  float64
}

// Tab builds the triangular tab prism described by in.
func (g *Generator) Tab(in TabInput) (kernel.Body, error) {
	drop := in.Width * math.Tan(degToRad(in.OverhangAngle))
	top := -in.TopClearance
	b, err := g.k.Extrude(kernel.ExtrudeInput{
		Name:  "tab",
		Plane: kernel.Plane{Origin: in.Origin, Normal: kernel.AxisX},
		Profile: kernel.Polygon{Vertices: []r2.Vec{
			{X: 0, Y: top},
			{X: -in.Width, Y: top},
			{X: 0, Y: top - drop},
		}},
		Distance: in.Length,
	})
	if err != nil {
		return nil, fmt.Errorf("tab: %w", err)
	}
	return b, nil
}

// tabInput places the tab of a compartment cell following the bin's
// tab settings.
func (s BinSpec) tabInput(cell Cell) TabInput {
	offset, length := clampTab(s.TabPosition, s.TabLength, s.Width)
	x := cell.Origin.X + offset*s.BaseWidth
	if s.TabLength < 0 {
		x = cell.Origin.X + cell.Width - offset*s.BaseWidth
	}
	return TabInput{
		Origin:        r3.Vec{X: x, Y: cell.Origin.Y + cell.Length, Z: cell.Origin.Z},
		Length:        length * s.BaseWidth,
		Width:         s.TabWidth,
		OverhangAngle: s.TabOverhangAngle,
		TopClearance:  TabTopClearance,
	}
}
