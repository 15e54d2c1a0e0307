package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Profile is a closed 2D region drawn on a Plane.
type Profile interface {
	// Bounds returns the bounding rectangle in plane coordinates.
	Bounds() r2.Box
	// Validate reports malformed profiles.
	Validate() error
}

// Rect is a rectangle with minimum corner Min, optionally with all four
// corners rounded by Radius.
type Rect struct {
	Min    r2.Vec
	Size   r2.Vec
	Radius float64
}

func (r Rect) Bounds() r2.Box { return r2.Box{Min: r.Min, Max: r2.Add(r.Min, r.Size)} }

func (r Rect) Validate() error {
	if r.Size.X <= 0 || r.Size.Y <= 0 {
		return fmt.Errorf("rect size %v not positive: %w", r.Size, ErrInfeasible)
	}
	if r.Radius < 0 || 2*r.Radius > math.Min(r.Size.X, r.Size.Y)+tolerance {
		return fmt.Errorf("rect radius %.4g does not fit size %v: %w", r.Radius, r.Size, ErrInfeasible)
	}
	return nil
}

// Circle is a disk.
type Circle struct {
	Center r2.Vec
	Radius float64
}

func (c Circle) Bounds() r2.Box {
	d := r2.Vec{X: c.Radius, Y: c.Radius}
	return r2.Box{Min: r2.Sub(c.Center, d), Max: r2.Add(c.Center, d)}
}

func (c Circle) Validate() error {
	if c.Radius <= 0 {
		return fmt.Errorf("circle radius %.4g not positive: %w", c.Radius, ErrInfeasible)
	}
	return nil
}

// Polygon is a simple closed polygon. The closing edge is implicit.
type Polygon struct {
	Vertices []r2.Vec
}

func (p Polygon) Bounds() r2.Box {
	if len(p.Vertices) == 0 {
		return r2.Box{}
	}
	bb := r2.Box{Min: p.Vertices[0], Max: p.Vertices[0]}
	for _, v := range p.Vertices[1:] {
		bb.Min = r2.Vec{X: math.Min(bb.Min.X, v.X), Y: math.Min(bb.Min.Y, v.Y)}
		bb.Max = r2.Vec{X: math.Max(bb.Max.X, v.X), Y: math.Max(bb.Max.Y, v.Y)}
	}
	return bb
}

func (p Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return fmt.Errorf("polygon has %d vertices: %w", len(p.Vertices), ErrInfeasible)
	}
	return nil
}

// ArcTo appends to vertices the points of a circular arc about center that
// starts at the last vertex and sweeps by sweep radians (positive is
// counter-clockwise). The arc is approximated with segs segments.
func ArcTo(vertices []r2.Vec, center r2.Vec, sweep float64, segs int) []r2.Vec {
	if len(vertices) == 0 || segs <= 0 {
		return vertices
	}
	start := r2.Sub(vertices[len(vertices)-1], center)
	radius := r2.Norm(start)
	a0 := math.Atan2(start.Y, start.X)
	for i := 1; i <= segs; i++ {
		a := a0 + sweep*float64(i)/float64(segs)
		vertices = append(vertices, r2.Add(center, r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}))
	}
	return vertices
}

const tolerance = 1e-9
