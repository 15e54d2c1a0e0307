package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis is one of the working frame axes.
type Axis uint8

const (
	AxisNone Axis = iota
	AxisX
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "none"
	}
}

// Component returns the coordinate of v along a.
func (a Axis) Component(v r3.Vec) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	panic("component of AxisNone")
}

// Unit returns the unit vector of a.
func (a Axis) Unit() r3.Vec {
	switch a {
	case AxisX:
		return r3.Vec{X: 1}
	case AxisY:
		return r3.Vec{Y: 1}
	case AxisZ:
		return r3.Vec{Z: 1}
	}
	return r3.Vec{}
}

// Side names the extreme of a body along an axis.
type Side uint8

const (
	SideNone Side = iota
	MinX
	MaxX
	MinY
	MaxY
	MinZ
	MaxZ
)

// Axis returns the axis the side is measured along.
func (s Side) Axis() Axis {
	switch s {
	case MinX, MaxX:
		return AxisX
	case MinY, MaxY:
		return AxisY
	case MinZ, MaxZ:
		return AxisZ
	}
	return AxisNone
}

// IsMax reports whether s is the maximum extreme of its axis.
func (s Side) IsMax() bool { return s == MaxX || s == MaxY || s == MaxZ }

func (s Side) String() string {
	switch s {
	case MinX:
		return "min-x"
	case MaxX:
		return "max-x"
	case MinY:
		return "min-y"
	case MaxY:
		return "max-y"
	case MinZ:
		return "min-z"
	case MaxZ:
		return "max-z"
	}
	return "none"
}

// FaceQuery selects the planar face normal to Side.Axis() whose bounding
// box lies furthest towards Side. Ties resolve to the largest face.
type FaceQuery struct {
	Side Side
}

var (
	TopFace    = FaceQuery{Side: MaxZ}
	BottomFace = FaceQuery{Side: MinZ}
)

func (q FaceQuery) String() string { return "face(" + q.Side.String() + ")" }

// EdgeQuery selects edges of a body. Exactly one of Parallel or Face is set.
//
// Parallel selects every edge collinear to the axis (for a prism extruded
// along Z these are the vertical corner edges).
//
// Face selects the tangentially connected edge loop bounding the face.
// Exclude removes the chain on one side of that loop: the straight edge on
// that side plus its two adjacent corner arcs. Only keeps just the straight
// edge on that side. The scoop side of a compartment is always MinY.
type EdgeQuery struct {
	Parallel Axis
	Face     FaceQuery
	Exclude  Side
	Only     Side
}

// EdgesParallel selects all edges collinear to a.
func EdgesParallel(a Axis) EdgeQuery { return EdgeQuery{Parallel: a} }

// FaceLoop selects the edge loop bounding the face selected by f.
func FaceLoop(f FaceQuery) EdgeQuery { return EdgeQuery{Face: f} }

// Excluding returns q without the edge chain on side s.
func (q EdgeQuery) Excluding(s Side) EdgeQuery {
	q.Exclude = s
	return q
}

// OnlySide returns q restricted to the straight edge on side s.
func (q EdgeQuery) OnlySide(s Side) EdgeQuery {
	q.Only = s
	return q
}

// Validate checks the query is well formed.
func (q EdgeQuery) Validate() error {
	switch {
	case q.Parallel != AxisNone && q.Face.Side != SideNone:
		return fmt.Errorf("edge query selects both parallel axis %s and %s: %w", q.Parallel, q.Face, ErrInvalidQuery)
	case q.Parallel == AxisNone && q.Face.Side == SideNone:
		return fmt.Errorf("empty edge query: %w", ErrInvalidQuery)
	case q.Exclude != SideNone && q.Only != SideNone:
		return fmt.Errorf("edge query both excludes %s and keeps only %s: %w", q.Exclude, q.Only, ErrInvalidQuery)
	case q.Parallel != AxisNone && (q.Exclude != SideNone || q.Only != SideNone):
		return fmt.Errorf("side filter on parallel edge query: %w", ErrInvalidQuery)
	}
	return nil
}

func (q EdgeQuery) String() string {
	if q.Parallel != AxisNone {
		return "edges(parallel " + q.Parallel.String() + ")"
	}
	s := "edges(loop " + q.Face.String()
	if q.Exclude != SideNone {
		s += " except " + q.Exclude.String()
	}
	if q.Only != SideNone {
		s += " only " + q.Only.String()
	}
	return s + ")"
}

// Plane is a construction plane through Origin normal to an axis. Profiles
// drawn on it use local coordinates (u, v):
//
//	Normal Z: u=x, v=y
//	Normal X: u=y, v=z
//	Normal Y: u=x, v=z
type Plane struct {
	Origin r3.Vec
	Normal Axis
}

// XYPlane returns the plane normal to Z at height z.
func XYPlane(z float64) Plane { return Plane{Origin: r3.Vec{Z: z}, Normal: AxisZ} }

// ToWorld maps local profile coordinates and a height along the normal to
// world coordinates.
func (p Plane) ToWorld(uv r2.Vec, h float64) r3.Vec {
	o := p.Origin
	switch p.Normal {
	case AxisX:
		return r3.Vec{X: o.X + h, Y: o.Y + uv.X, Z: o.Z + uv.Y}
	case AxisY:
		return r3.Vec{X: o.X + uv.X, Y: o.Y + h, Z: o.Z + uv.Y}
	default:
		return r3.Vec{X: o.X + uv.X, Y: o.Y + uv.Y, Z: o.Z + h}
	}
}

// ToLocal is the inverse of ToWorld.
func (p Plane) ToLocal(w r3.Vec) (uv r2.Vec, h float64) {
	d := r3.Sub(w, p.Origin)
	switch p.Normal {
	case AxisX:
		return r2.Vec{X: d.Y, Y: d.Z}, d.X
	case AxisY:
		return r2.Vec{X: d.X, Y: d.Z}, d.Y
	default:
		return r2.Vec{X: d.X, Y: d.Y}, d.Z
	}
}

// Line is a construction axis through Point along Dir.
type Line struct {
	Point r3.Vec
	Dir   Axis
}

// CheckEdgeSize rejects a fillet radius or chamfer distance r that does
// not fit the material next to the edges q selects on a body bounded by
// bb. Edges running along an axis may use at most half of the other two
// extents. A face loop is limited by the body extent normal to the face
// and half of the face extents. A single straight edge (EdgeQuery.Only)
// may span the full extent on both of its sides.
func CheckEdgeSize(bb r3.Box, q EdgeQuery, r float64) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if r <= 0 {
		return fmt.Errorf("radius %.4g not positive: %w", r, ErrInfeasible)
	}
	sz := r3.Sub(bb.Max, bb.Min)
	limit := math.Inf(1)
	switch {
	case q.Parallel != AxisNone:
		for _, a := range [...]Axis{AxisX, AxisY, AxisZ} {
			if a != q.Parallel {
				limit = math.Min(limit, a.Component(sz)/2)
			}
		}
	case q.Only != SideNone:
		limit = math.Min(q.Face.Side.Axis().Component(sz), q.Only.Axis().Component(sz))
	default:
		ax := q.Face.Side.Axis()
		limit = ax.Component(sz)
		for _, a := range [...]Axis{AxisX, AxisY, AxisZ} {
			if a != ax {
				limit = math.Min(limit, a.Component(sz)/2)
			}
		}
	}
	if r > limit+tolerance {
		return fmt.Errorf("radius %.4g exceeds available material %.4g on %s: %w", r, limit, q, ErrInfeasible)
	}
	return nil
}

// FaceBox returns the face of bb selected by q.
func FaceBox(bb r3.Box, q FaceQuery) (r3.Box, error) {
	face := bb
	switch q.Side {
	case MinX:
		face.Max.X = bb.Min.X
	case MaxX:
		face.Min.X = bb.Max.X
	case MinY:
		face.Max.Y = bb.Min.Y
	case MaxY:
		face.Min.Y = bb.Max.Y
	case MinZ:
		face.Max.Z = bb.Min.Z
	case MaxZ:
		face.Min.Z = bb.Max.Z
	default:
		return r3.Box{}, fmt.Errorf("%s: %w", q, ErrInvalidQuery)
	}
	return face, nil
}
