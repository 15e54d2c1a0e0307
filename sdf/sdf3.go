package sdf

import (
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// insetKind selects how a prism cross section shrinks with height.
type insetKind uint8

const (
	insetTaper insetKind = iota
	insetChamfer
	insetFillet
)

// inset shrinks a prism cross section as a function of the distance t from
// a reference height measured into the material (t = (h-at)*dir).
type inset struct {
	kind insetKind
	at   float64
	dir  float64
	size float64 // tan(draft) for tapers, distance or radius otherwise
}

func (in inset) eval(h float64) float64 {
	t := math.Max(0, (h-in.at)*in.dir)
	switch in.kind {
	case insetTaper:
		return t * in.size
	case insetChamfer:
		return math.Max(0, in.size-t)
	case insetFillet:
		if t >= in.size {
			return 0
		}
		d := in.size - t
		return in.size - math.Sqrt(in.size*in.size-d*d)
	}
	return 0
}

// prism is a profile swept along a plane normal between heights h0 and h1.
type prism struct {
	plane   kernel.Plane
	profile SDF2
	// rect is set while the profile is an axis aligned rounded rectangle.
	rect   *kernel.Rect
	h0, h1 float64
	insets []inset
}

func (s *prism) clone() *prism {
	c := *s
	c.insets = append([]inset(nil), s.insets...)
	if s.rect != nil {
		r := *s.rect
		c.rect = &r
	}
	return &c
}

// Evaluate returns the minimum distance to the prism.
func (s *prism) Evaluate(p r3.Vec) float64 {
	uv, h := s.plane.ToLocal(p)
	hc := math.Min(math.Max(h, s.h0), s.h1)
	d := s.profile.Evaluate(uv)
	for _, in := range s.insets {
		d += in.eval(hc)
	}
	return math.Max(d, math.Max(s.h0-h, h-s.h1))
}

// Bounds returns the world bounding box of the prism.
func (s *prism) Bounds() r3.Box {
	pb := s.profile.Bounds()
	grow := 0.0
	for _, h := range [2]float64{s.h0, s.h1} {
		sum := 0.0
		for _, in := range s.insets {
			sum += in.eval(h)
		}
		grow = math.Max(grow, -sum)
	}
	if grow > 0 {
		g := r2.Vec{X: grow, Y: grow}
		pb = r2.Box{Min: r2.Sub(pb.Min, g), Max: r2.Add(pb.Max, g)}
	}
	return box3(s.plane.ToWorld(pb.Min, s.h0), s.plane.ToWorld(pb.Max, s.h1))
}

// plain reports whether the prism has no height dependent insets.
func (s *prism) plain() bool { return len(s.insets) == 0 }

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
	bb  r3.Box
}

func newUnion3(sdf ...SDF3) SDF3 {
	if len(sdf) == 0 {
		panic("union of no SDF3")
	}
	if len(sdf) == 1 {
		return sdf[0]
	}
	s := union3{sdf: sdf, bb: sdf[0].Bounds()}
	for _, x := range sdf[1:] {
		s.bb = boxUnion(s.bb, x.Bounds())
	}
	return &s
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	d := math.MaxFloat64
	for _, x := range s.sdf {
		d = math.Min(d, x.Evaluate(p))
	}
	return d
}

func (s *union3) Bounds() r3.Box { return s.bb }

// diff3 is the difference of two SDF3s, s0 - s1.
type diff3 struct {
	s0, s1 SDF3
}

func (s *diff3) Evaluate(p r3.Vec) float64 {
	return math.Max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

// Bounds of the difference is that of the minuend.
func (s *diff3) Bounds() r3.Box { return s.s0.Bounds() }

// intersection3 is the intersection of SDF3s.
type intersection3 struct {
	sdf []SDF3
	bb  r3.Box
}

func newIntersection3(sdf ...SDF3) (SDF3, bool) {
	if len(sdf) == 1 {
		return sdf[0], true
	}
	bb := sdf[0].Bounds()
	for _, x := range sdf[1:] {
		var ok bool
		bb, ok = boxIntersect(bb, x.Bounds())
		if !ok {
			return nil, false
		}
	}
	return &intersection3{sdf: sdf, bb: bb}, true
}

func (s *intersection3) Evaluate(p r3.Vec) float64 {
	d := -math.MaxFloat64
	for _, x := range s.sdf {
		d = math.Max(d, x.Evaluate(p))
	}
	return d
}

func (s *intersection3) Bounds() r3.Box { return s.bb }

// transform3 evaluates an SDF3 in a rigidly moved frame. fwd maps the
// source into world space and inv is its inverse.
type transform3 struct {
	sdf SDF3
	inv func(r3.Vec) r3.Vec
	bb  r3.Box
}

func newTransform3(sdf SDF3, fwd, inv func(r3.Vec) r3.Vec) SDF3 {
	return &transform3{sdf: sdf, inv: inv, bb: transformBox(sdf.Bounds(), fwd)}
}

func (s *transform3) Evaluate(p r3.Vec) float64 { return s.sdf.Evaluate(s.inv(p)) }

func (s *transform3) Bounds() r3.Box { return s.bb }

func box3(a, b r3.Vec) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

func boxUnion(a, b r3.Box) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

func boxIntersect(a, b r3.Box) (r3.Box, bool) {
	c := r3.Box{
		Min: r3.Vec{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)},
	}
	if c.Max.X-c.Min.X <= tolerance || c.Max.Y-c.Min.Y <= tolerance || c.Max.Z-c.Min.Z <= tolerance {
		return r3.Box{}, false
	}
	return c, true
}

func transformBox(b r3.Box, f func(r3.Vec) r3.Vec) r3.Box {
	out := box3(f(b.Min), f(b.Max))
	for _, v := range [...]r3.Vec{
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
	} {
		p := f(v)
		out = boxUnion(out, r3.Box{Min: p, Max: p})
	}
	return out
}
