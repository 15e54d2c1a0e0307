package sdf

import (
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type cornerKind uint8

const (
	cornerSharp cornerKind = iota
	cornerRound
	cornerChamfer
)

type corner struct {
	kind cornerKind
	size float64
}

// arcSegments is the number of segments used to approximate a quarter arc.
const arcSegments = 12

// cornerRect returns the counter-clockwise outline of the rectangle
// [lo, hi] with its corners treated individually. Corners are ordered
// bottom-left, bottom-right, top-right, top-left.
func cornerRect(lo, hi r2.Vec, corners [4]corner) []r2.Vec {
	// Per corner: the corner point, the unit step towards the start of the
	// treatment and the unit step towards its end.
	type frame struct{ at, start, end r2.Vec }
	frames := [4]frame{
		{at: lo, start: r2.Vec{Y: 1}, end: r2.Vec{X: 1}},
		{at: r2.Vec{X: hi.X, Y: lo.Y}, start: r2.Vec{X: -1}, end: r2.Vec{Y: 1}},
		{at: hi, start: r2.Vec{Y: -1}, end: r2.Vec{X: -1}},
		{at: r2.Vec{X: lo.X, Y: hi.Y}, start: r2.Vec{X: 1}, end: r2.Vec{Y: -1}},
	}
	var out []r2.Vec
	for i, c := range corners {
		f := frames[i]
		if c.kind == cornerSharp || c.size <= 0 {
			out = append(out, f.at)
			continue
		}
		out = append(out, r2.Add(f.at, r2.Scale(c.size, f.start)))
		switch c.kind {
		case cornerChamfer:
			out = append(out, r2.Add(f.at, r2.Scale(c.size, f.end)))
		case cornerRound:
			center := r2.Add(f.at, r2.Scale(c.size, r2.Add(f.start, f.end)))
			out = kernel.ArcTo(out, center, math.Pi/2, arcSegments)
		}
	}
	return out
}

// selects reports whether the side limited loop query q treats the
// straight edge on side s.
func selects(q kernel.EdgeQuery, s kernel.Side) bool {
	if q.Only != kernel.SideNone {
		return q.Only == s
	}
	return q.Exclude != s
}

// edgeTrims builds the bodies whose intersection with a Z prism bounded
// by bb treats the edges of the top or bottom loop that q selects. Each
// trim is a cornered rectangle swept across the body, so treated corners
// meet mitred instead of following the vertical corner arcs.
func edgeTrims(bb r3.Box, q kernel.EdgeQuery, c corner) []SDF3 {
	top := q.Face.Side.IsMax()
	var out []SDF3
	for _, ax := range [...]kernel.Axis{kernel.AxisX, kernel.AxisY} {
		minSide, maxSide := kernel.MinX, kernel.MaxX
		sweep := kernel.AxisY
		if ax == kernel.AxisY {
			minSide, maxSide = kernel.MinY, kernel.MaxY
			sweep = kernel.AxisX
		}
		treatMin, treatMax := selects(q, minSide), selects(q, maxSide)
		if !treatMin && !treatMax {
			continue
		}
		var corners [4]corner
		switch {
		case top && treatMin:
			corners[3] = c
		case !top && treatMin:
			corners[0] = c
		}
		switch {
		case top && treatMax:
			corners[2] = c
		case !top && treatMax:
			corners[1] = c
		}
		lo := r2.Vec{X: ax.Component(bb.Min), Y: bb.Min.Z}
		hi := r2.Vec{X: ax.Component(bb.Max), Y: bb.Max.Z}
		out = append(out, &prism{
			plane:   kernel.Plane{Normal: sweep},
			profile: newPolygon2(cornerRect(lo, hi, corners)),
			h0:      sweep.Component(bb.Min) - 1,
			h1:      sweep.Component(bb.Max) + 1,
		})
	}
	return out
}
