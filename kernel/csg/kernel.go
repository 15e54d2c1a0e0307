// Package csg implements kernel.Kernel by recording every call into a
// Program while tracking analytic bounding boxes. It validates radii and
// body ownership the way a B-rep kernel would, which makes it suitable both
// as the engine's output format and as a test double.
package csg

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type body struct {
	id       string
	name     string
	bb       r3.Box
	consumed bool
}

func (b *body) ID() string   { return b.id }
func (b *body) Name() string { return b.name }

// Kernel records operations. The zero value is not usable, call New.
type Kernel struct {
	prog   Program
	bodies map[string]*body
	order  []*body
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns an empty recording kernel.
func New() *Kernel {
	return &Kernel{bodies: make(map[string]*body)}
}

// Program returns the operations recorded so far.
func (k *Kernel) Program() Program {
	return Program{Ops: append([]Op(nil), k.prog.Ops...)}
}

// Live returns the bodies that have not been consumed, in creation order.
func (k *Kernel) Live() []kernel.Body {
	var live []kernel.Body
	for _, b := range k.order {
		if !b.consumed {
			live = append(live, b)
		}
	}
	return live
}

func (k *Kernel) record(op Op) {
	op.Seq = len(k.prog.Ops) + 1
	k.prog.Ops = append(k.prog.Ops, op)
}

func (k *Kernel) newBody(name string, bb r3.Box) *body {
	b := &body{id: uuid.NewString(), name: name, bb: canon(bb)}
	k.bodies[b.id] = b
	k.order = append(k.order, b)
	return b
}

func (k *Kernel) lookup(h kernel.Body) (*body, error) {
	if h == nil {
		return nil, fmt.Errorf("csg: nil body: %w", kernel.ErrUnknownBody)
	}
	b, ok := k.bodies[h.ID()]
	if !ok {
		return nil, fmt.Errorf("csg: body %q: %w", h.Name(), kernel.ErrUnknownBody)
	}
	if b.consumed {
		return nil, fmt.Errorf("csg: body %q: %w", b.name, kernel.ErrConsumed)
	}
	return b, nil
}

func (k *Kernel) lookupAll(hs []kernel.Body) ([]*body, []string, error) {
	bs := make([]*body, len(hs))
	ids := make([]string, len(hs))
	for i, h := range hs {
		b, err := k.lookup(h)
		if err != nil {
			return nil, nil, err
		}
		bs[i] = b
		ids[i] = b.id
	}
	return bs, ids, nil
}

func (k *Kernel) Box(origin, size r3.Vec, name string) (kernel.Body, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("csg: box %q size %v: %w", name, size, kernel.ErrInfeasible)
	}
	b := k.newBody(name, r3.Box{Min: origin, Max: r3.Add(origin, size)})
	k.record(Op{Kind: OpBox, Name: name, Results: []string{b.id}, Params: vecParams(map[string]float64{}, "origin", origin, "size", size)})
	return b, nil
}

func (k *Kernel) Cylinder(center r3.Vec, radius, depth float64, dir kernel.Axis, name string) (kernel.Body, error) {
	if radius <= 0 || depth == 0 || dir == kernel.AxisNone {
		return nil, fmt.Errorf("csg: cylinder %q radius %.4g depth %.4g: %w", name, radius, depth, kernel.ErrInfeasible)
	}
	plane := kernel.Plane{Origin: center, Normal: dir}
	bb := extrudeBounds(plane, kernel.Circle{Radius: radius}.Bounds(), depth)
	b := k.newBody(name, bb)
	params := vecParams(map[string]float64{"radius": radius, "depth": depth}, "center", center)
	k.record(Op{Kind: OpCylinder, Name: name, Results: []string{b.id}, Query: dir.String(), Params: params})
	return b, nil
}

func (k *Kernel) Extrude(in kernel.ExtrudeInput) (kernel.Body, error) {
	if in.Profile == nil {
		return nil, fmt.Errorf("csg: extrude %q without profile: %w", in.Name, kernel.ErrInfeasible)
	}
	if err := in.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("csg: extrude %q: %w", in.Name, err)
	}
	if in.Distance == 0 {
		return nil, fmt.Errorf("csg: extrude %q zero distance: %w", in.Name, kernel.ErrInfeasible)
	}
	pb := in.Profile.Bounds()
	if in.Taper < 0 {
		// Negative draft grows the profile.
		grow := math.Abs(in.Distance) * math.Tan(-in.Taper)
		pb = r2.Box{Min: r2.Sub(pb.Min, r2.Vec{X: grow, Y: grow}), Max: r2.Add(pb.Max, r2.Vec{X: grow, Y: grow})}
	} else if in.Taper > 0 {
		shrink := math.Abs(in.Distance) * math.Tan(in.Taper)
		sz := r2.Sub(pb.Max, pb.Min)
		if 2*shrink >= math.Min(sz.X, sz.Y)+1e-9 {
			return nil, fmt.Errorf("csg: extrude %q taper collapses profile: %w", in.Name, kernel.ErrInfeasible)
		}
	}
	b := k.newBody(in.Name, extrudeBounds(in.Plane, pb, in.Distance))
	params := vecParams(map[string]float64{"distance": in.Distance, "taper": in.Taper}, "origin", in.Plane.Origin)
	k.record(Op{Kind: OpExtrude, Name: in.Name, Results: []string{b.id}, Query: "normal " + in.Plane.Normal.String(), Profile: describeProfile(in.Profile), Params: params})
	return b, nil
}

func (k *Kernel) Fillet(h kernel.Body, edges kernel.EdgeQuery, radius float64) error {
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	if err := kernel.CheckEdgeSize(b.bb, edges, radius); err != nil {
		return fmt.Errorf("csg: fillet %q: %w", b.name, err)
	}
	k.record(Op{Kind: OpFillet, Target: b.id, Query: edges.String(), Params: map[string]float64{"radius": radius}})
	return nil
}

func (k *Kernel) Chamfer(h kernel.Body, edges kernel.EdgeQuery, distance float64) error {
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	if err := kernel.CheckEdgeSize(b.bb, edges, distance); err != nil {
		return fmt.Errorf("csg: chamfer %q: %w", b.name, err)
	}
	k.record(Op{Kind: OpChamfer, Target: b.id, Query: edges.String(), Params: map[string]float64{"distance": distance}})
	return nil
}

func (k *Kernel) Shell(h kernel.Body, open kernel.FaceQuery, thickness float64) error {
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	if open.Side == kernel.SideNone {
		return fmt.Errorf("csg: shell %q: no open face: %w", b.name, kernel.ErrInvalidQuery)
	}
	sz := r3.Sub(b.bb.Max, b.bb.Min)
	ax := open.Side.Axis()
	if thickness <= 0 || thickness >= ax.Component(sz) {
		return fmt.Errorf("csg: shell %q thickness %.4g: %w", b.name, thickness, kernel.ErrInfeasible)
	}
	for _, other := range []kernel.Axis{kernel.AxisX, kernel.AxisY, kernel.AxisZ} {
		if other != ax && 2*thickness >= other.Component(sz) {
			return fmt.Errorf("csg: shell %q thickness %.4g exceeds %s extent: %w", b.name, thickness, other, kernel.ErrInfeasible)
		}
	}
	k.record(Op{Kind: OpShell, Target: b.id, Query: open.String(), Params: map[string]float64{"thickness": thickness}})
	return nil
}

func (k *Kernel) Join(target kernel.Body, tools []kernel.Body, keepTools bool) error {
	t, bs, ids, err := k.boolean(target, tools)
	if err != nil {
		return err
	}
	for _, b := range bs {
		t.bb = union(t.bb, b.bb)
	}
	k.consume(bs, keepTools)
	k.record(Op{Kind: OpJoin, Target: t.id, Tools: ids, Keep: keepTools})
	return nil
}

func (k *Kernel) Cut(target kernel.Body, tools []kernel.Body, keepTools bool) error {
	t, bs, ids, err := k.boolean(target, tools)
	if err != nil {
		return err
	}
	k.consume(bs, keepTools)
	k.record(Op{Kind: OpCut, Target: t.id, Tools: ids, Keep: keepTools})
	return nil
}

func (k *Kernel) Intersect(target kernel.Body, tools []kernel.Body, keepTools bool) error {
	t, bs, ids, err := k.boolean(target, tools)
	if err != nil {
		return err
	}
	bb := t.bb
	for _, b := range bs {
		var ok bool
		bb, ok = intersect(bb, b.bb)
		if !ok {
			return fmt.Errorf("csg: intersect %q with %q: %w", t.name, b.name, kernel.ErrNoIntersection)
		}
	}
	t.bb = bb
	k.consume(bs, keepTools)
	k.record(Op{Kind: OpIntersect, Target: t.id, Tools: ids, Keep: keepTools})
	return nil
}

func (k *Kernel) boolean(target kernel.Body, tools []kernel.Body) (*body, []*body, []string, error) {
	t, err := k.lookup(target)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(tools) == 0 {
		return nil, nil, nil, fmt.Errorf("csg: boolean on %q without tools: %w", t.name, kernel.ErrInvalidQuery)
	}
	bs, ids, err := k.lookupAll(tools)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, b := range bs {
		if b == t {
			return nil, nil, nil, fmt.Errorf("csg: body %q used as its own tool: %w", t.name, kernel.ErrInvalidQuery)
		}
	}
	return t, bs, ids, nil
}

func (k *Kernel) consume(bs []*body, keep bool) {
	if keep {
		return
	}
	for _, b := range bs {
		b.consumed = true
	}
}

func (k *Kernel) Copy(h kernel.Body, name string) (kernel.Body, error) {
	b, err := k.lookup(h)
	if err != nil {
		return nil, err
	}
	c := k.newBody(name, b.bb)
	k.record(Op{Kind: OpCopy, Name: name, Target: b.id, Results: []string{c.id}})
	return c, nil
}

func (k *Kernel) Remove(h kernel.Body) error {
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	b.consumed = true
	k.record(Op{Kind: OpRemove, Target: b.id})
	return nil
}

func (k *Kernel) RectPattern(hs []kernel.Body, p kernel.RectPattern) ([]kernel.Body, error) {
	bs, ids, err := k.lookupAll(hs)
	if err != nil {
		return nil, err
	}
	if p.Count1 < 1 || p.Count2 < 1 {
		return nil, fmt.Errorf("csg: rect pattern counts %dx%d: %w", p.Count1, p.Count2, kernel.ErrInvalidQuery)
	}
	var out []kernel.Body
	var rids []string
	for _, b := range bs {
		for j := 0; j < p.Count2; j++ {
			for i := 0; i < p.Count1; i++ {
				if i == 0 && j == 0 {
					continue
				}
				off := r3.Vec{X: float64(i) * p.Spacing1, Y: float64(j) * p.Spacing2}
				c := k.newBody(b.name, r3.Box{Min: r3.Add(b.bb.Min, off), Max: r3.Add(b.bb.Max, off)})
				out = append(out, c)
				rids = append(rids, c.id)
			}
		}
	}
	k.record(Op{Kind: OpRectPattern, Tools: ids, Results: rids, Params: map[string]float64{
		"count1": float64(p.Count1), "spacing1": p.Spacing1, "count2": float64(p.Count2), "spacing2": p.Spacing2,
	}})
	return out, nil
}

func (k *Kernel) CircPattern(hs []kernel.Body, axis kernel.Line, count int) ([]kernel.Body, error) {
	bs, ids, err := k.lookupAll(hs)
	if err != nil {
		return nil, err
	}
	if count < 1 || axis.Dir == kernel.AxisNone {
		return nil, fmt.Errorf("csg: circular pattern count %d: %w", count, kernel.ErrInvalidQuery)
	}
	var out []kernel.Body
	var rids []string
	for _, b := range bs {
		for i := 1; i < count; i++ {
			rot := r3.NewRotation(2*math.Pi*float64(i)/float64(count), axis.Dir.Unit())
			c := k.newBody(b.name, transformBox(b.bb, func(v r3.Vec) r3.Vec {
				return r3.Add(axis.Point, rot.Rotate(r3.Sub(v, axis.Point)))
			}))
			out = append(out, c)
			rids = append(rids, c.id)
		}
	}
	k.record(Op{Kind: OpCircPattern, Tools: ids, Results: rids, Query: axis.Dir.String(),
		Params: vecParams(map[string]float64{"count": float64(count)}, "point", axis.Point)})
	return out, nil
}

func (k *Kernel) Mirror(hs []kernel.Body, plane kernel.Plane) ([]kernel.Body, error) {
	bs, ids, err := k.lookupAll(hs)
	if err != nil {
		return nil, err
	}
	if plane.Normal == kernel.AxisNone {
		return nil, fmt.Errorf("csg: mirror plane without normal: %w", kernel.ErrInvalidQuery)
	}
	var out []kernel.Body
	var rids []string
	for _, b := range bs {
		c := k.newBody(b.name, transformBox(b.bb, func(v r3.Vec) r3.Vec { return reflect(v, plane) }))
		out = append(out, c)
		rids = append(rids, c.id)
	}
	k.record(Op{Kind: OpMirror, Tools: ids, Results: rids, Query: "normal " + plane.Normal.String(),
		Params: vecParams(map[string]float64{}, "origin", plane.Origin)})
	return out, nil
}

func (k *Kernel) Bounds(h kernel.Body) (r3.Box, error) {
	b, err := k.lookup(h)
	if err != nil {
		return r3.Box{}, err
	}
	return b.bb, nil
}

func (k *Kernel) FaceBounds(h kernel.Body, q kernel.FaceQuery) (r3.Box, error) {
	b, err := k.lookup(h)
	if err != nil {
		return r3.Box{}, err
	}
	return kernel.FaceBox(b.bb, q)
}

func describeProfile(p kernel.Profile) string {
	switch p := p.(type) {
	case kernel.Rect:
		return fmt.Sprintf("rect min=(%.4g,%.4g) size=(%.4g,%.4g) r=%.4g", p.Min.X, p.Min.Y, p.Size.X, p.Size.Y, p.Radius)
	case kernel.Circle:
		return fmt.Sprintf("circle c=(%.4g,%.4g) r=%.4g", p.Center.X, p.Center.Y, p.Radius)
	case kernel.Polygon:
		return fmt.Sprintf("polygon n=%d", len(p.Vertices))
	}
	return fmt.Sprintf("%T", p)
}

func vecParams(m map[string]float64, kv ...interface{}) map[string]float64 {
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		v := kv[i+1].(r3.Vec)
		m[key+".x"] = v.X
		m[key+".y"] = v.Y
		m[key+".z"] = v.Z
	}
	return m
}
