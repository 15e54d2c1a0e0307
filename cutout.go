package gridfinity

import (
	"fmt"
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// CutoutInput describes a compartment cavity.
type CutoutInput struct {
	Name string
	// Origin is the minimum XY corner of the cavity at the top of the body.
	Origin r3.Vec
	Width  float64
	Length float64
	Depth  float64
	// FilletRadius rounds the vertical corners and, with HasBottomFillet,
	// the bottom edges.
	FilletRadius    float64
	HasBottomFillet bool
	// HasScoop rounds the bottom edge on the min-Y side into a ramp of at
	// most ScoopMaxRadius.
	HasScoop       bool
	ScoopMaxRadius float64
}

// ScoopRadius returns the scoop radius used for in.
func (in CutoutInput) ScoopRadius() float64 {
	return math.Min(in.ScoopMaxRadius, math.Min(in.Depth, in.Length))
}

// Cutout builds the cavity tool body described by in.
func (g *Generator) Cutout(in CutoutInput) (kernel.Body, error) {
	name := in.Name
	if name == "" {
		name = "cutout"
	}
	origin := r3.Vec{X: in.Origin.X, Y: in.Origin.Y, Z: in.Origin.Z - in.Depth}
	b, err := g.roundedBox(origin, r3.Vec{X: in.Width, Y: in.Length, Z: in.Depth}, in.FilletRadius, name)
	if err != nil {
		return nil, err
	}
	if in.HasScoop {
		scoop := kernel.FaceLoop(kernel.BottomFace).OnlySide(kernel.MinY)
		if err := g.k.Fillet(b, scoop, in.ScoopRadius()); err != nil {
			return nil, fmt.Errorf("%s scoop: %w", name, err)
		}
	}
	if in.HasBottomFillet {
		r := math.Min(in.FilletRadius, in.Depth)
		if err := g.k.Fillet(b, kernel.FaceLoop(kernel.BottomFace), r); err != nil {
			return nil, fmt.Errorf("%s bottom fillet: %w", name, err)
		}
	}
	return b, nil
}

// HoleInput describes the socket holes at one corner of a grid cell.
// Holes start at Center and run upwards when Up is set, else downwards.
type HoleInput struct {
	Center r3.Vec
	Up     bool

	Magnet         bool
	MagnetDiameter float64
	MagnetDepth    float64

	Screw         bool
	ScrewDiameter float64
	ScrewDepth    float64
	// HeadDiameter adds a chamfered countersink at the far end of the
	// screw hole when larger than ScrewDiameter.
	HeadDiameter float64
}

// Holes builds the magnet socket and screw hole tools of one cell corner.
func (g *Generator) Holes(in HoleInput) ([]kernel.Body, error) {
	sign := -1.0
	if in.Up {
		sign = 1
	}
	var out []kernel.Body
	if in.Magnet {
		m, err := g.verticalCylinder(in.Center, in.MagnetDiameter, sign*in.MagnetDepth, "magnet socket")
		if err != nil {
			return nil, fmt.Errorf("magnet socket: %w", err)
		}
		out = append(out, m)
	}
	if !in.Screw {
		return out, nil
	}
	s, err := g.verticalCylinder(in.Center, in.ScrewDiameter, sign*in.ScrewDepth, "screw hole")
	if err != nil {
		return nil, fmt.Errorf("screw hole: %w", err)
	}
	out = append(out, s)
	if in.HeadDiameter > in.ScrewDiameter {
		far := in.Center
		far.Z += sign * in.ScrewDepth
		head, err := g.screwHead(far, in.ScrewDiameter, in.HeadDiameter, -sign)
		if err != nil {
			return nil, err
		}
		out = append(out, head)
	}
	return out, nil
}

// screwHead builds a countersink whose wide end is at center and which
// extends dir (±1) along Z, its far rim chamfered down to the screw.
func (g *Generator) screwHead(center r3.Vec, screwD, headD, dir float64) (kernel.Body, error) {
	chamfer := (headD - screwD) / 2
	h := ScrewHeadCutoutOffsetHeight + chamfer
	b, err := g.verticalCylinder(center, headD, dir*h, "screw head")
	if err != nil {
		return nil, fmt.Errorf("screw head: %w", err)
	}
	face := kernel.TopFace
	if dir < 0 {
		face = kernel.BottomFace
	}
	if err := g.k.Chamfer(b, kernel.FaceLoop(face), chamfer); err != nil {
		return nil, fmt.Errorf("screw head chamfer: %w", err)
	}
	return b, nil
}

// connectionHole builds a cylinder of the given diameter centred on the
// face of b at side and running length outwards from it.
func (g *Generator) connectionHole(b kernel.Body, side kernel.Side, diameter, length float64) (kernel.Body, error) {
	face, err := g.k.FaceBounds(b, kernel.FaceQuery{Side: side})
	if err != nil {
		return nil, err
	}
	center := r3.Scale(0.5, r3.Add(face.Min, face.Max))
	depth := length
	if !side.IsMax() {
		depth = -length
	}
	return g.k.Cylinder(center, diameter/2, depth, side.Axis(), "connection hole "+side.Axis().String())
}
