package gridfinity

import (
	"fmt"
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// LipInput describes the stacking lip on top of a bin or compartment.
type LipInput struct {
	Name string
	// Origin is the minimum corner of the lip footprint at the lip bottom.
	Origin r3.Vec
	// BaseWidth and BaseLength are the grid pitch.
	BaseWidth  float64
	BaseLength float64
	// Width and Length are in grid units and may be fractional.
	Width  float64
	Length float64

	Clearance    float64
	CornerRadius float64
	// WallThickness is the wall the lip sits on. Walls thinner than the
	// lip wall get a chamfered transition.
	WallThickness float64
	// HasNotches cuts one socket per grid cell instead of a single socket
	// spanning the footprint.
	HasNotches bool
	// HasScoop leaves the min-Y side of the transition unchamfered.
	HasScoop bool
}

// Size returns the real footprint size of the lip.
func (in LipInput) Size() r3.Vec {
	c := in.Clearance
	return r3.Vec{
		X: Span(in.Width, in.BaseWidth, c),
		Y: Span(in.Length, in.BaseLength, c),
		Z: LipExtraHeight,
	}
}

// Lip builds the lip described by in. The returned set holds the lip in
// its merge list and the wall transition tool in its subtract list.
func (g *Generator) Lip(in LipInput) (BodySet, error) {
	name := in.Name
	if name == "" {
		name = "lip"
	}
	var (
		o     = in.Origin
		c     = in.Clearance
		size  = in.Size()
		lip   kernel.Body
		tools []kernel.Body
		set   BodySet
	)
	socket := func(w, l float64) BaseInput {
		return BaseInput{
			Name:         name + " socket",
			Origin:       r3.Vec{X: o.X - 2*c, Y: o.Y - 2*c, Z: o.Z + BaseHeight},
			Width:        w + 2*c,
			Length:       l + 2*c,
			CornerRadius: in.CornerRadius + 2*c,
			Clearance:    c,
		}
	}
	stages := []stage{
		{name: "body", run: func() (err error) {
			if size.X <= 0 || size.Y <= 0 {
				return fmt.Errorf("%s footprint %gx%g: %w", name, size.X, size.Y, kernel.ErrInfeasible)
			}
			lip, err = g.roundedBox(o, size, in.CornerRadius, name)
			return err
		}},
		{name: "notches", enabled: func() bool { return in.HasNotches }, run: func() error {
			foot, err := g.BaseProfile(socket(in.BaseWidth, in.BaseLength))
			if err != nil {
				return err
			}
			feet, err := g.pattern([]kernel.Body{foot}, kernel.RectPattern{
				Count1:   gridCount(in.Width),
				Spacing1: in.BaseWidth,
				Count2:   gridCount(in.Length),
				Spacing2: in.BaseLength,
			})
			if err != nil {
				return err
			}
			tools = append(tools, feet...)
			lw := LipWallThickness - c
			mid, err := g.roundedBox(
				r3.Vec{X: o.X + lw, Y: o.Y + lw, Z: o.Z},
				r3.Vec{X: size.X - 2*lw, Y: size.Y - 2*lw, Z: LipExtraHeight},
				math.Max(0, in.CornerRadius-lw), name+" opening")
			if err != nil {
				return err
			}
			tools = append(tools, mid)
			return nil
		}},
		{name: "socket", enabled: func() bool { return !in.HasNotches }, run: func() error {
			foot, err := g.BaseProfile(socket(in.Width*in.BaseWidth, in.Length*in.BaseLength))
			if err != nil {
				return err
			}
			tools = append(tools, foot)
			return nil
		}},
		{name: "top recess", run: func() error {
			recess, err := g.k.Box(r3.Vec{X: o.X, Y: o.Y, Z: o.Z + BaseHeight},
				r3.Vec{X: size.X, Y: size.Y, Z: LipTopRecessHeight}, name+" top recess")
			if err != nil {
				return err
			}
			tools = append(tools, recess)
			return nil
		}},
		{name: "cut", run: func() error {
			set = set.WithMerge(lip)
			return g.cut(lip, tools)
		}},
		{name: "transition", enabled: func() bool { return in.WallThickness < LipWallThickness }, run: func() error {
			tr, err := g.lipTransition(in)
			if err != nil {
				return err
			}
			set = set.WithSubtract(tr)
			return nil
		}},
	}
	if err := g.runStages(name, stages); err != nil {
		return BodySet{}, err
	}
	return set, nil
}

// lipTransition builds the tool that carves a 45° ramp from the thin bin
// wall up to the thicker lip wall.
func (g *Generator) lipTransition(in LipInput) (kernel.Body, error) {
	var (
		o    = in.Origin
		w    = in.WallThickness
		size = in.Size()
		h    = ClampRadius(in.CornerRadius, w, CutoutBottomFilletRadius)
	)
	y, l := o.Y+w, size.Y-2*w
	edges := kernel.FaceLoop(kernel.TopFace)
	if in.HasScoop {
		// The scoop ramp needs the min-Y face flush with the lip wall.
		lw := LipWallThickness - in.Clearance
		y, l = o.Y+lw, size.Y-w-lw
		edges = edges.Excluding(kernel.MinY)
	}
	b, err := g.roundedBox(r3.Vec{X: o.X + w, Y: y, Z: o.Z}, r3.Vec{X: size.X - 2*w, Y: l, Z: h}, h, "lip transition")
	if err != nil {
		return nil, err
	}
	if err := g.k.Chamfer(b, edges, math.Min(w, h)); err != nil {
		return nil, fmt.Errorf("lip transition chamfer: %w", err)
	}
	return b, nil
}

// gridCount rounds a fractional grid size to a whole number of cells, at
// least one.
func gridCount(units float64) int {
	return int(math.Max(1, math.Round(units)))
}
