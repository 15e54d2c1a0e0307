package csg

import (
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func canon(b r3.Box) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(b.Min.X, b.Max.X), Y: math.Min(b.Min.Y, b.Max.Y), Z: math.Min(b.Min.Z, b.Max.Z)},
		Max: r3.Vec{X: math.Max(b.Min.X, b.Max.X), Y: math.Max(b.Min.Y, b.Max.Y), Z: math.Max(b.Min.Z, b.Max.Z)},
	}
}

func union(a, b r3.Box) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// intersect returns the common box of a and b. Boxes that only touch do
// not intersect.
func intersect(a, b r3.Box) (r3.Box, bool) {
	c := r3.Box{
		Min: r3.Vec{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)},
	}
	const eps = 1e-12
	if c.Max.X-c.Min.X <= eps || c.Max.Y-c.Min.Y <= eps || c.Max.Z-c.Min.Z <= eps {
		return r3.Box{}, false
	}
	return c, true
}

func vertices(b r3.Box) [8]r3.Vec {
	return [8]r3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

func transformBox(b r3.Box, f func(r3.Vec) r3.Vec) r3.Box {
	v := vertices(b)
	p := f(v[0])
	out := r3.Box{Min: p, Max: p}
	for _, x := range v[1:] {
		p = f(x)
		out = union(out, r3.Box{Min: p, Max: p})
	}
	return out
}

func reflect(v r3.Vec, p kernel.Plane) r3.Vec {
	switch p.Normal {
	case kernel.AxisX:
		v.X = 2*p.Origin.X - v.X
	case kernel.AxisY:
		v.Y = 2*p.Origin.Y - v.Y
	case kernel.AxisZ:
		v.Z = 2*p.Origin.Z - v.Z
	}
	return v
}

func extrudeBounds(p kernel.Plane, pb r2.Box, distance float64) r3.Box {
	return canon(r3.Box{Min: p.ToWorld(pb.Min, 0), Max: p.ToWorld(pb.Max, distance)})
}
