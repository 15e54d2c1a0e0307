// Package sdf implements kernel.Kernel with signed distance functions.
// Bodies are composed lazily: every operation wraps the previous distance
// function, and the result can be sampled with Kernel.Evaluate.
package sdf

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF2 is the interface to a 2d signed distance function object.
type SDF2 interface {
	// Evaluate takes a point in 2D space as input and returns
	// the minimum distance of the SDF2 to the point. The distance
	// is negative if the point is contained within the SDF2.
	Evaluate(p r2.Vec) float64
	// Bounds returns the bounding box that completely contains the SDF2.
	Bounds() r2.Box
}

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

// roundRect2 is a rectangle with all corners rounded by radius.
type roundRect2 struct {
	center r2.Vec
	half   r2.Vec // half size minus radius
	radius float64
	bb     r2.Box
}

func newRoundRect2(min, size r2.Vec, radius float64) *roundRect2 {
	if size.X <= 0 || size.Y <= 0 {
		panic("size <= 0")
	}
	if radius < 0 {
		panic("radius < 0")
	}
	half := r2.Scale(0.5, size)
	radius = math.Min(radius, math.Min(half.X, half.Y))
	return &roundRect2{
		center: r2.Add(min, half),
		half:   r2.Sub(half, r2.Vec{X: radius, Y: radius}),
		radius: radius,
		bb:     r2.Box{Min: min, Max: r2.Add(min, size)},
	}
}

// Evaluate returns the minimum distance to a rounded rectangle.
func (s *roundRect2) Evaluate(p r2.Vec) float64 {
	q := r2.Sub(p, s.center)
	d := r2.Vec{X: math.Abs(q.X) - s.half.X, Y: math.Abs(q.Y) - s.half.Y}
	outside := r2.Norm(r2.Vec{X: math.Max(d.X, 0), Y: math.Max(d.Y, 0)})
	inside := math.Min(math.Max(d.X, d.Y), 0)
	return outside + inside - s.radius
}

func (s *roundRect2) Bounds() r2.Box { return s.bb }

// circle2 is a disk.
type circle2 struct {
	center r2.Vec
	radius float64
}

func (s *circle2) Evaluate(p r2.Vec) float64 {
	return r2.Norm(r2.Sub(p, s.center)) - s.radius
}

func (s *circle2) Bounds() r2.Box {
	d := r2.Vec{X: s.radius, Y: s.radius}
	return r2.Box{Min: r2.Sub(s.center, d), Max: r2.Add(s.center, d)}
}

// polygon2 is an SDF2 made from a closed set of line segments.
type polygon2 struct {
	vertex []r2.Vec  // vertices, closed
	vector []r2.Vec  // unit line vectors
	length []float64 // line lengths
	bb     r2.Box
}

func newPolygon2(vertex []r2.Vec) *polygon2 {
	n := len(vertex)
	if n < 3 {
		panic("number of vertices < 3")
	}
	s := polygon2{}
	s.vertex = append([]r2.Vec(nil), vertex...)
	if r2.Norm(r2.Sub(vertex[0], vertex[n-1])) > tolerance {
		s.vertex = append(s.vertex, vertex[0])
	}
	nsegs := len(s.vertex) - 1
	s.vector = make([]r2.Vec, nsegs)
	s.length = make([]float64, nsegs)
	vmin, vmax := s.vertex[0], s.vertex[0]
	for i := 0; i < nsegs; i++ {
		l := r2.Sub(s.vertex[i+1], s.vertex[i])
		s.length[i] = r2.Norm(l)
		if s.length[i] > 0 {
			s.vector[i] = r2.Scale(1/s.length[i], l)
		}
		vmin = r2.Vec{X: math.Min(vmin.X, s.vertex[i].X), Y: math.Min(vmin.Y, s.vertex[i].Y)}
		vmax = r2.Vec{X: math.Max(vmax.X, s.vertex[i].X), Y: math.Max(vmax.Y, s.vertex[i].Y)}
	}
	s.bb = r2.Box{Min: vmin, Max: vmax}
	return &s
}

// Evaluate returns the minimum distance for a 2d polygon.
func (s *polygon2) Evaluate(p r2.Vec) float64 {
	dd := math.MaxFloat64 // d^2 to polygon (>0)
	wn := 0               // winding number (inside/outside)
	pb := r2.Sub(p, s.vertex[0])
	for i := range s.vector {
		a := s.vertex[i]
		b := s.vertex[i+1]
		pa := pb
		pb = r2.Sub(p, b)
		t := r2.Dot(pa, s.vector[i])
		dn := r2.Dot(pa, r2.Vec{X: s.vector[i].Y, Y: -s.vector[i].X})
		switch {
		case t < 0:
			dd = math.Min(dd, r2.Norm2(pa))
		case t > s.length[i]:
			dd = math.Min(dd, r2.Norm2(pb))
		default:
			dd = math.Min(dd, dn*dn)
		}
		// See: http://geomalgorithms.com/a03-_inclusion.html
		if a.Y <= p.Y {
			if b.Y > p.Y && dn < 0 {
				wn++
			}
		} else if b.Y <= p.Y && dn > 0 {
			wn--
		}
	}
	d := math.Sqrt(dd)
	if wn != 0 {
		return -d
	}
	return d
}

func (s *polygon2) Bounds() r2.Box { return s.bb }

// union2 is a union of SDF2s.
type union2 struct {
	sdf []SDF2
	bb  r2.Box
}

func newUnion2(sdf ...SDF2) SDF2 {
	if len(sdf) == 1 {
		return sdf[0]
	}
	s := union2{sdf: sdf, bb: sdf[0].Bounds()}
	for _, x := range sdf[1:] {
		b := x.Bounds()
		s.bb = r2.Box{
			Min: r2.Vec{X: math.Min(s.bb.Min.X, b.Min.X), Y: math.Min(s.bb.Min.Y, b.Min.Y)},
			Max: r2.Vec{X: math.Max(s.bb.Max.X, b.Max.X), Y: math.Max(s.bb.Max.Y, b.Max.Y)},
		}
	}
	return &s
}

func (s *union2) Evaluate(p r2.Vec) float64 {
	d := math.MaxFloat64
	for _, x := range s.sdf {
		d = math.Min(d, x.Evaluate(p))
	}
	return d
}

func (s *union2) Bounds() r2.Box { return s.bb }

// offset2 offsets the distance function of an existing SDF2. Positive
// offsets grow the shape.
type offset2 struct {
	sdf    SDF2
	offset float64
	bb     r2.Box
}

func newOffset2(sdf SDF2, offset float64) SDF2 {
	if offset == 0 {
		return sdf
	}
	bb := sdf.Bounds()
	d := r2.Vec{X: offset, Y: offset}
	return &offset2{sdf: sdf, offset: offset, bb: r2.Box{Min: r2.Sub(bb.Min, d), Max: r2.Add(bb.Max, d)}}
}

func (s *offset2) Evaluate(p r2.Vec) float64 { return s.sdf.Evaluate(p) - s.offset }

func (s *offset2) Bounds() r2.Box { return s.bb }

// roundConvex rounds the convex corners of sdf by radius: shrinking and
// growing by the same amount leaves straight edges in place and replaces
// corners by arcs.
func roundConvex(sdf SDF2, radius float64) SDF2 {
	if radius <= 0 {
		return sdf
	}
	return newOffset2(newOffset2(sdf, -radius), radius)
}

const tolerance = 1e-9
