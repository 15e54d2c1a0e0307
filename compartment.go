package gridfinity

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cell is the placed geometry of one compartment.
type Cell struct {
	Compartment Compartment
	// Origin is the minimum XY corner of the cavity at the body top.
	Origin r3.Vec
	Width  float64
	Length float64
	Depth  float64
}

// Layout partitions the usable footprint of a bin among its compartments.
type Layout struct {
	// Usable footprint bounds.
	MinX, MaxX float64
	MinY, MaxY float64
	// UnitWidth and UnitLength are the size of a single cell.
	UnitWidth  float64
	UnitLength float64
	Cells      []Cell
}

// Layout validates s and computes its compartment layout. Solid bins have
// no cells.
func (s BinSpec) Layout() (Layout, error) {
	if err := s.Validate(); err != nil {
		return Layout{}, err
	}
	return s.layout(), nil
}

func (s BinSpec) layout() Layout {
	w := s.WallThickness
	l := Layout{
		MinX: w,
		MaxX: s.BodyWidth() - w,
		MinY: w,
		MaxY: s.BodyLength() - w,
	}
	if s.HasLip && s.HasScoop {
		// The scoop ramp starts under the lip wall.
		l.MinY = LipWallThickness - s.XYClearance
	}
	if s.IsSolid {
		return l
	}
	l.UnitWidth = CellUnit(l.MaxX-l.MinX, s.CompartmentsX, w)
	l.UnitLength = CellUnit(l.MaxY-l.MinY, s.CompartmentsY, w)
	top := s.BodyHeight()
	for _, c := range s.Compartments {
		depth := float64(s.Height) * s.HeightUnit
		if !s.IsShelled {
			depth = top - CompartmentBottomThickness
			if c.Depth > 0 {
				depth = math.Min(depth, c.Depth)
			}
		}
		l.Cells = append(l.Cells, Cell{
			Compartment: c,
			Origin: r3.Vec{
				X: l.MinX + float64(c.X)*(l.UnitWidth+w),
				Y: l.MinY + float64(c.Y)*(l.UnitLength+w),
				Z: top,
			},
			Width:  CellSpan(l.UnitWidth, c.Width, w),
			Length: CellSpan(l.UnitLength, c.Length, w),
			Depth:  depth,
		})
	}
	return l
}

// cutoutRadius is the corner radius left inside a wall of thickness wall.
func (s BinSpec) cutoutRadius() float64 {
	return ClampRadius(s.CornerFilletRadius, s.WallThickness, CutoutBottomFilletRadius)
}

// compartments builds the tool bodies of every cell of l. It returns the
// compartment cavities and tabs, and separately the compartment lips.
func (g *Generator) compartments(s BinSpec, l Layout) (cells, lips BodySet, err error) {
	for i, cell := range l.Cells {
		set, err := g.compartment(s, cell)
		if err != nil {
			return BodySet{}, BodySet{}, fmt.Errorf("compartment %d: %w", i, err)
		}
		cells = cells.Concat(set)
		if !s.HasCompartmentsLip {
			continue
		}
		w := s.WallThickness
		lip, err := g.Lip(LipInput{
			Name:          fmt.Sprintf("compartment %d lip", i),
			Origin:        r3.Vec{X: cell.Origin.X - w, Y: cell.Origin.Y - w, Z: cell.Origin.Z},
			BaseWidth:     s.BaseWidth,
			BaseLength:    s.BaseLength,
			Width:         (cell.Width + 2*w) / s.BaseWidth,
			Length:        (cell.Length + 2*w) / s.BaseLength,
			CornerRadius:  s.CornerFilletRadius,
			WallThickness: w,
			HasNotches:    s.HasLipNotches,
			HasScoop:      s.HasScoop,
		})
		if err != nil {
			return BodySet{}, BodySet{}, fmt.Errorf("compartment %d lip: %w", i, err)
		}
		lips = lips.Concat(lip)
	}
	if len(l.Cells) > 1 && !s.HasCompartmentsLip {
		slot, err := g.Cutout(CutoutInput{
			Name:         "compartments top clearance",
			Origin:       r3.Vec{X: l.MinX, Y: l.MinY, Z: s.BodyHeight()},
			Width:        l.MaxX - l.MinX,
			Length:       l.MaxY - l.MinY,
			Depth:        TabTopClearance,
			FilletRadius: s.cutoutRadius(),
		})
		if err != nil {
			return BodySet{}, BodySet{}, err
		}
		cells = cells.WithSubtract(slot)
	}
	return cells, lips, nil
}

// compartment builds the cavity of one cell and its tab.
func (g *Generator) compartment(s BinSpec, cell Cell) (BodySet, error) {
	cutout, err := g.Cutout(CutoutInput{
		Name:            "compartment",
		Origin:          cell.Origin,
		Width:           cell.Width,
		Length:          cell.Length,
		Depth:           cell.Depth,
		FilletRadius:    s.cutoutRadius(),
		HasBottomFillet: !s.IsShelled,
		HasScoop:        s.HasScoop,
		ScoopMaxRadius:  s.ScoopMaxRadius,
	})
	if err != nil {
		return BodySet{}, err
	}
	set := BodySet{}.WithSubtract(cutout)
	if !s.HasTab {
		return set, nil
	}
	in := s.tabInput(cell)
	if math.Abs(in.Length) < FilterTolerance {
		return set, nil
	}
	tab, err := g.Tab(in)
	if err != nil {
		return BodySet{}, err
	}
	// Only the part of the tab inside the cavity protrudes from the wall.
	err = g.k.Intersect(tab, []kernel.Body{cutout}, true)
	if errors.Is(err, kernel.ErrNoIntersection) {
		// Offsets past the cell leave nothing to hang.
		return set, g.k.Remove(tab)
	}
	if err != nil {
		return BodySet{}, fmt.Errorf("tab: %w", err)
	}
	return set.WithMerge(tab), nil
}
