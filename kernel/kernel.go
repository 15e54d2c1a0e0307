// Package kernel declares the solid modelling capabilities the gridfinity
// composers need. Implementations own a single mutable document: every call
// reads and mutates it, so callers must issue operations sequentially.
//
// Bodies passed as tools to Join, Cut or Intersect with keepTools=false are
// consumed. A consumed body is moved-from and any further use of it fails
// with ErrConsumed.
package kernel

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is an opaque handle to a solid owned by a Kernel.
type Body interface {
	// ID returns the kernel assigned identity of the body.
	ID() string
	// Name returns the human readable label given at creation.
	Name() string
}

// Kernel is the full capability set consumed by the composers.
type Kernel interface {
	Builder
	Modifier
	Combiner
	Replicator
	Inspector
}

// Builder creates new bodies from primitives and profiles.
type Builder interface {
	// Box creates an axis aligned box with minimum corner origin.
	// All size components must be positive.
	Box(origin, size r3.Vec, name string) (Body, error)
	// Cylinder creates a cylinder whose start cap is centred at center and
	// which extends depth along dir. A negative depth extends against dir.
	Cylinder(center r3.Vec, radius, depth float64, dir Axis, name string) (Body, error)
	// Extrude sweeps a profile drawn on a plane along the plane normal.
	Extrude(in ExtrudeInput) (Body, error)
}

// Modifier changes the shape of an existing body in place.
type Modifier interface {
	Fillet(b Body, edges EdgeQuery, radius float64) error
	// Chamfer applies an equal distance chamfer.
	Chamfer(b Body, edges EdgeQuery, distance float64) error
	// Shell hollows b leaving walls of the given thickness and removing
	// the selected face.
	Shell(b Body, open FaceQuery, thickness float64) error
}

// Combiner performs boolean operations. The target is modified in place.
type Combiner interface {
	Join(target Body, tools []Body, keepTools bool) error
	Cut(target Body, tools []Body, keepTools bool) error
	// Intersect keeps the part of target common to all tools. It fails with
	// ErrNoIntersection if nothing remains.
	Intersect(target Body, tools []Body, keepTools bool) error
	// Copy duplicates a body.
	Copy(b Body, name string) (Body, error)
	// Remove deletes a body from the document, consuming it.
	Remove(b Body) error
}

// Replicator creates transformed copies. The returned slices contain only
// the new copies, never the originals.
type Replicator interface {
	RectPattern(bodies []Body, p RectPattern) ([]Body, error)
	// CircPattern returns count-1 rotated copies of every body spread
	// evenly about axis.
	CircPattern(bodies []Body, axis Line, count int) ([]Body, error)
	Mirror(bodies []Body, plane Plane) ([]Body, error)
}

// Inspector answers topological and metric queries.
type Inspector interface {
	Bounds(b Body) (r3.Box, error)
	// FaceBounds returns the bounding box of the face selected by q.
	FaceBounds(b Body, q FaceQuery) (r3.Box, error)
}

// ExtrudeInput describes a profile extrusion.
type ExtrudeInput struct {
	Name    string
	Plane   Plane
	Profile Profile
	// Distance is measured along the plane normal. Negative values extrude
	// against the normal.
	Distance float64
	// Taper is the draft angle in radians. Positive angles shrink the
	// profile as the extrusion proceeds.
	Taper float64
}

// RectPattern replicates bodies along X with Count1 instances spaced
// Spacing1 apart and along Y with Count2 instances spaced Spacing2 apart.
// Counts include the original.
type RectPattern struct {
	Count1   int
	Spacing1 float64
	Count2   int
	Spacing2 float64
}

// Instances returns the total number of instances including the original.
func (p RectPattern) Instances() int { return p.Count1 * p.Count2 }
