package sdf

import (
	"fmt"
	"math"
	"runtime/debug"
	"sort"

	"github.com/google/uuid"
	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// shapeErr carries a panic raised while building a distance function.
type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("sdf: %s", s.panicObj)
}

// Unwrap reports construction panics as infeasible geometry.
func (s *shapeErr) Unwrap() error { return kernel.ErrInfeasible }

func recoverShape(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

type body struct {
	id       string
	name     string
	consumed bool
	// pr is set while the body is a single prism, possibly trimmed.
	pr    *prism
	trims []SDF3
	// sdf holds composed bodies.
	sdf SDF3
}

func (b *body) ID() string   { return b.id }
func (b *body) Name() string { return b.name }

func (b *body) shape() SDF3 {
	if b.pr == nil {
		return b.sdf
	}
	if len(b.trims) == 0 {
		return b.pr
	}
	s, ok := newIntersection3(append([]SDF3{b.pr}, b.trims...)...)
	if !ok {
		panic("trims leave no material")
	}
	return s
}

func (b *body) compose(s SDF3) {
	b.pr, b.trims, b.sdf = nil, nil, s
}

// Kernel builds bodies as signed distance functions. Prism bodies support
// edge treatments and shelling; composed bodies only support booleans,
// patterns and queries, other calls return kernel.ErrUnsupported.
type Kernel struct {
	bodies map[string]*body
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns an empty SDF kernel.
func New() *Kernel {
	return &Kernel{bodies: make(map[string]*body)}
}

func (k *Kernel) add(name string, pr *prism, s SDF3) *body {
	b := &body{id: uuid.NewString(), name: name, pr: pr, sdf: s}
	k.bodies[b.id] = b
	return b
}

func (k *Kernel) lookup(h kernel.Body) (*body, error) {
	if h == nil {
		return nil, fmt.Errorf("sdf: nil body: %w", kernel.ErrUnknownBody)
	}
	b, ok := k.bodies[h.ID()]
	if !ok {
		return nil, fmt.Errorf("sdf: body %q: %w", h.Name(), kernel.ErrUnknownBody)
	}
	if b.consumed {
		return nil, fmt.Errorf("sdf: body %q: %w", b.name, kernel.ErrConsumed)
	}
	return b, nil
}

func (k *Kernel) lookupAll(hs []kernel.Body) ([]*body, error) {
	bs := make([]*body, len(hs))
	for i, h := range hs {
		b, err := k.lookup(h)
		if err != nil {
			return nil, err
		}
		bs[i] = b
	}
	return bs, nil
}

// Evaluate returns the signed distance from p to body h. Negative values
// are inside the material.
func (k *Kernel) Evaluate(h kernel.Body, p r3.Vec) (d float64, err error) {
	defer recoverShape(&err)
	b, err := k.lookup(h)
	if err != nil {
		return 0, err
	}
	return b.shape().Evaluate(p), nil
}

// Shape returns the distance function of a live body.
func (k *Kernel) Shape(h kernel.Body) (s SDF3, err error) {
	defer recoverShape(&err)
	b, err := k.lookup(h)
	if err != nil {
		return nil, err
	}
	return b.shape(), nil
}

func (k *Kernel) Box(origin, size r3.Vec, name string) (_ kernel.Body, err error) {
	defer recoverShape(&err)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("sdf: box %q size %v: %w", name, size, kernel.ErrInfeasible)
	}
	rect := kernel.Rect{Min: r2.Vec{X: origin.X, Y: origin.Y}, Size: r2.Vec{X: size.X, Y: size.Y}}
	return k.add(name, &prism{
		plane:   kernel.Plane{Normal: kernel.AxisZ},
		profile: newRoundRect2(rect.Min, rect.Size, 0),
		rect:    &rect,
		h0:      origin.Z,
		h1:      origin.Z + size.Z,
	}, nil), nil
}

func (k *Kernel) Cylinder(center r3.Vec, radius, depth float64, dir kernel.Axis, name string) (_ kernel.Body, err error) {
	defer recoverShape(&err)
	if radius <= 0 || depth == 0 || dir == kernel.AxisNone {
		return nil, fmt.Errorf("sdf: cylinder %q radius %.4g depth %.4g: %w", name, radius, depth, kernel.ErrInfeasible)
	}
	uv, h := kernel.Plane{Normal: dir}.ToLocal(center)
	return k.add(name, &prism{
		plane:   kernel.Plane{Normal: dir},
		profile: &circle2{center: uv, radius: radius},
		h0:      math.Min(h, h+depth),
		h1:      math.Max(h, h+depth),
	}, nil), nil
}

func (k *Kernel) Extrude(in kernel.ExtrudeInput) (_ kernel.Body, err error) {
	defer recoverShape(&err)
	if in.Profile == nil {
		return nil, fmt.Errorf("sdf: extrude %q without profile: %w", in.Name, kernel.ErrInfeasible)
	}
	if err := in.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("sdf: extrude %q: %w", in.Name, err)
	}
	if in.Distance == 0 || in.Plane.Normal == kernel.AxisNone {
		return nil, fmt.Errorf("sdf: extrude %q zero distance: %w", in.Name, kernel.ErrInfeasible)
	}
	off, h := kernel.Plane{Normal: in.Plane.Normal}.ToLocal(in.Plane.Origin)
	pr := &prism{
		plane: kernel.Plane{Normal: in.Plane.Normal},
		h0:    math.Min(h, h+in.Distance),
		h1:    math.Max(h, h+in.Distance),
	}
	switch p := in.Profile.(type) {
	case kernel.Rect:
		p.Min = r2.Add(p.Min, off)
		pr.rect = &p
		pr.profile = newRoundRect2(p.Min, p.Size, p.Radius)
	case kernel.Circle:
		pr.profile = &circle2{center: r2.Add(p.Center, off), radius: p.Radius}
	case kernel.Polygon:
		v := make([]r2.Vec, len(p.Vertices))
		for i := range v {
			v[i] = r2.Add(p.Vertices[i], off)
		}
		pr.profile = newPolygon2(v)
	default:
		return nil, fmt.Errorf("sdf: extrude %q profile %T: %w", in.Name, in.Profile, kernel.ErrUnsupported)
	}
	if in.Taper != 0 {
		pb := pr.profile.Bounds()
		sz := r2.Sub(pb.Max, pb.Min)
		shrink := math.Abs(in.Distance) * math.Tan(in.Taper)
		if 2*shrink >= math.Min(sz.X, sz.Y)+tolerance {
			return nil, fmt.Errorf("sdf: extrude %q taper collapses profile: %w", in.Name, kernel.ErrInfeasible)
		}
		pr.insets = append(pr.insets, inset{kind: insetTaper, at: h, dir: math.Copysign(1, in.Distance), size: math.Tan(in.Taper)})
	}
	return k.add(in.Name, pr, nil), nil
}

func (k *Kernel) Fillet(h kernel.Body, edges kernel.EdgeQuery, radius float64) (err error) {
	defer recoverShape(&err)
	return k.treatEdges(h, edges, corner{kind: cornerRound, size: radius})
}

func (k *Kernel) Chamfer(h kernel.Body, edges kernel.EdgeQuery, distance float64) (err error) {
	defer recoverShape(&err)
	return k.treatEdges(h, edges, corner{kind: cornerChamfer, size: distance})
}

func (k *Kernel) treatEdges(h kernel.Body, q kernel.EdgeQuery, c corner) error {
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	if err := kernel.CheckEdgeSize(b.shape().Bounds(), q, c.size); err != nil {
		return fmt.Errorf("sdf: %q: %w", b.name, err)
	}
	if b.pr == nil {
		return fmt.Errorf("sdf: %s on composed body %q: %w", q, b.name, kernel.ErrUnsupported)
	}
	pr := b.pr.clone()
	switch {
	case q.Parallel != kernel.AxisNone:
		if q.Parallel != pr.plane.Normal || c.kind != cornerRound {
			return fmt.Errorf("sdf: %s on prism %q along %s: %w", q, b.name, pr.plane.Normal, kernel.ErrUnsupported)
		}
		if pr.rect != nil {
			if pr.rect.Radius > 0 {
				return fmt.Errorf("sdf: %q corners already rounded: %w", b.name, kernel.ErrUnsupported)
			}
			pr.rect.Radius = c.size
			pr.profile = newRoundRect2(pr.rect.Min, pr.rect.Size, c.size)
		} else {
			pr.profile = roundConvex(pr.profile, c.size)
		}
	case q.Face.Side.Axis() != pr.plane.Normal:
		return fmt.Errorf("sdf: %s on prism %q along %s: %w", q, b.name, pr.plane.Normal, kernel.ErrUnsupported)
	case q.Exclude == kernel.SideNone && q.Only == kernel.SideNone:
		in := inset{kind: insetFillet, at: pr.h0, dir: 1, size: c.size}
		if c.kind == cornerChamfer {
			in.kind = insetChamfer
		}
		if q.Face.Side.IsMax() {
			in.at, in.dir = pr.h1, -1
		}
		pr.insets = append(pr.insets, in)
	default:
		if pr.plane.Normal != kernel.AxisZ {
			return fmt.Errorf("sdf: side limited %s on prism %q: %w", q, b.name, kernel.ErrUnsupported)
		}
		b.trims = append(append([]SDF3(nil), b.trims...), edgeTrims(pr.Bounds(), q, c)...)
	}
	b.pr = pr
	return nil
}

func (k *Kernel) Shell(h kernel.Body, open kernel.FaceQuery, thickness float64) (err error) {
	defer recoverShape(&err)
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	if b.pr == nil || open.Side.Axis() != b.pr.plane.Normal {
		return fmt.Errorf("sdf: shell %q from %s: %w", b.name, open, kernel.ErrUnsupported)
	}
	pr := b.pr
	sz := r3.Sub(pr.Bounds().Max, pr.Bounds().Min)
	ax := pr.plane.Normal
	if thickness <= 0 || thickness >= ax.Component(sz) {
		return fmt.Errorf("sdf: shell %q thickness %.4g: %w", b.name, thickness, kernel.ErrInfeasible)
	}
	for _, other := range [...]kernel.Axis{kernel.AxisX, kernel.AxisY, kernel.AxisZ} {
		if other != ax && 2*thickness >= other.Component(sz) {
			return fmt.Errorf("sdf: shell %q thickness %.4g exceeds %s extent: %w", b.name, thickness, other, kernel.ErrInfeasible)
		}
	}
	inner := &prism{
		plane:   pr.plane,
		profile: newOffset2(pr.profile, -thickness),
		h0:      pr.h0 + thickness,
		h1:      pr.h1 + 1,
		insets:  pr.insets,
	}
	if !open.Side.IsMax() {
		inner.h0, inner.h1 = pr.h0-1, pr.h1-thickness
	}
	b.compose(&diff3{s0: b.shape(), s1: inner})
	return nil
}

func (k *Kernel) boolean(target kernel.Body, tools []kernel.Body) (*body, []*body, error) {
	t, err := k.lookup(target)
	if err != nil {
		return nil, nil, err
	}
	if len(tools) == 0 {
		return nil, nil, fmt.Errorf("sdf: boolean on %q without tools: %w", t.name, kernel.ErrInvalidQuery)
	}
	bs, err := k.lookupAll(tools)
	if err != nil {
		return nil, nil, err
	}
	for _, b := range bs {
		if b == t {
			return nil, nil, fmt.Errorf("sdf: body %q used as its own tool: %w", t.name, kernel.ErrInvalidQuery)
		}
	}
	return t, bs, nil
}

func consume(bs []*body, keep bool) {
	if keep {
		return
	}
	for _, b := range bs {
		b.consumed = true
	}
}

func shapes(bs []*body) []SDF3 {
	s := make([]SDF3, len(bs))
	for i, b := range bs {
		s[i] = b.shape()
	}
	return s
}

func (k *Kernel) Join(target kernel.Body, tools []kernel.Body, keepTools bool) (err error) {
	defer recoverShape(&err)
	t, bs, err := k.boolean(target, tools)
	if err != nil {
		return err
	}
	if pr := mergePrisms(t, bs); pr != nil {
		t.pr, t.trims = pr, nil
	} else {
		t.compose(newUnion3(append([]SDF3{t.shape()}, shapes(bs)...)...))
	}
	consume(bs, keepTools)
	return nil
}

func (k *Kernel) Cut(target kernel.Body, tools []kernel.Body, keepTools bool) (err error) {
	defer recoverShape(&err)
	t, bs, err := k.boolean(target, tools)
	if err != nil {
		return err
	}
	t.compose(&diff3{s0: t.shape(), s1: newUnion3(shapes(bs)...)})
	consume(bs, keepTools)
	return nil
}

func (k *Kernel) Intersect(target kernel.Body, tools []kernel.Body, keepTools bool) (err error) {
	defer recoverShape(&err)
	t, bs, err := k.boolean(target, tools)
	if err != nil {
		return err
	}
	s, ok := newIntersection3(append([]SDF3{t.shape()}, shapes(bs)...)...)
	if !ok {
		return fmt.Errorf("sdf: intersect %q: %w", t.name, kernel.ErrNoIntersection)
	}
	t.compose(s)
	consume(bs, keepTools)
	return nil
}

func (k *Kernel) Copy(h kernel.Body, name string) (_ kernel.Body, err error) {
	defer recoverShape(&err)
	b, err := k.lookup(h)
	if err != nil {
		return nil, err
	}
	c := k.add(name, b.pr, b.sdf)
	c.trims = append([]SDF3(nil), b.trims...)
	return c, nil
}

func (k *Kernel) Remove(h kernel.Body) error {
	b, err := k.lookup(h)
	if err != nil {
		return err
	}
	b.consumed = true
	return nil
}

func (k *Kernel) RectPattern(hs []kernel.Body, p kernel.RectPattern) (_ []kernel.Body, err error) {
	defer recoverShape(&err)
	bs, err := k.lookupAll(hs)
	if err != nil {
		return nil, err
	}
	if p.Count1 < 1 || p.Count2 < 1 {
		return nil, fmt.Errorf("sdf: rect pattern counts %dx%d: %w", p.Count1, p.Count2, kernel.ErrInvalidQuery)
	}
	var out []kernel.Body
	for _, b := range bs {
		s := b.shape()
		for j := 0; j < p.Count2; j++ {
			for i := 0; i < p.Count1; i++ {
				if i == 0 && j == 0 {
					continue
				}
				off := r3.Vec{X: float64(i) * p.Spacing1, Y: float64(j) * p.Spacing2}
				out = append(out, k.add(b.name, nil, newTransform3(s,
					func(v r3.Vec) r3.Vec { return r3.Add(v, off) },
					func(v r3.Vec) r3.Vec { return r3.Sub(v, off) },
				)))
			}
		}
	}
	return out, nil
}

func (k *Kernel) CircPattern(hs []kernel.Body, axis kernel.Line, count int) (_ []kernel.Body, err error) {
	defer recoverShape(&err)
	bs, err := k.lookupAll(hs)
	if err != nil {
		return nil, err
	}
	if count < 1 || axis.Dir == kernel.AxisNone {
		return nil, fmt.Errorf("sdf: circular pattern count %d: %w", count, kernel.ErrInvalidQuery)
	}
	var out []kernel.Body
	for _, b := range bs {
		s := b.shape()
		for i := 1; i < count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(count)
			fwd := r3.NewRotation(angle, axis.Dir.Unit())
			inv := r3.NewRotation(-angle, axis.Dir.Unit())
			out = append(out, k.add(b.name, nil, newTransform3(s,
				func(v r3.Vec) r3.Vec { return r3.Add(axis.Point, fwd.Rotate(r3.Sub(v, axis.Point))) },
				func(v r3.Vec) r3.Vec { return r3.Add(axis.Point, inv.Rotate(r3.Sub(v, axis.Point))) },
			)))
		}
	}
	return out, nil
}

func (k *Kernel) Mirror(hs []kernel.Body, plane kernel.Plane) (_ []kernel.Body, err error) {
	defer recoverShape(&err)
	bs, err := k.lookupAll(hs)
	if err != nil {
		return nil, err
	}
	if plane.Normal == kernel.AxisNone {
		return nil, fmt.Errorf("sdf: mirror plane without normal: %w", kernel.ErrInvalidQuery)
	}
	reflect := func(v r3.Vec) r3.Vec {
		uv, h := plane.ToLocal(v)
		return plane.ToWorld(uv, -h)
	}
	var out []kernel.Body
	for _, b := range bs {
		out = append(out, k.add(b.name, nil, newTransform3(b.shape(), reflect, reflect)))
	}
	return out, nil
}

func (k *Kernel) Bounds(h kernel.Body) (_ r3.Box, err error) {
	defer recoverShape(&err)
	b, err := k.lookup(h)
	if err != nil {
		return r3.Box{}, err
	}
	return b.shape().Bounds(), nil
}

func (k *Kernel) FaceBounds(h kernel.Body, q kernel.FaceQuery) (_ r3.Box, err error) {
	defer recoverShape(&err)
	b, err := k.lookup(h)
	if err != nil {
		return r3.Box{}, err
	}
	return kernel.FaceBox(b.shape().Bounds(), q)
}

// mergePrisms joins untreated prisms sharing a normal without composing
// distance functions, so the result still accepts edge treatments. Prisms
// spanning the same heights merge their profiles. Equal rectangles whose
// height ranges touch or overlap merge into one taller prism. It returns
// nil when the bodies do not qualify.
func mergePrisms(t *body, tools []*body) *prism {
	all := append([]*body{t}, tools...)
	for _, b := range all {
		if b.pr == nil || len(b.trims) > 0 || !b.pr.plain() || b.pr.plane.Normal != t.pr.plane.Normal {
			return nil
		}
	}
	first := t.pr
	sameRange := true
	for _, b := range tools {
		if math.Abs(b.pr.h0-first.h0) > tolerance || math.Abs(b.pr.h1-first.h1) > tolerance {
			sameRange = false
			break
		}
	}
	if sameRange {
		if rect, ok := rectUnion(all); ok {
			return &prism{plane: first.plane, profile: newRoundRect2(rect.Min, rect.Size, 0), rect: &rect, h0: first.h0, h1: first.h1}
		}
		profiles := make([]SDF2, len(all))
		for i, b := range all {
			profiles[i] = b.pr.profile
		}
		return &prism{plane: first.plane, profile: newUnion2(profiles...), h0: first.h0, h1: first.h1}
	}
	if first.rect == nil {
		return nil
	}
	type span struct{ h0, h1 float64 }
	spans := []span{{first.h0, first.h1}}
	for _, b := range tools {
		if b.pr.rect == nil || !sameRect(*b.pr.rect, *first.rect) {
			return nil
		}
		spans = append(spans, span{b.pr.h0, b.pr.h1})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].h0 < spans[j].h0 })
	h0, h1 := spans[0].h0, spans[0].h1
	for _, s := range spans[1:] {
		if s.h0 > h1+tolerance {
			return nil
		}
		h1 = math.Max(h1, s.h1)
	}
	pr := first.clone()
	pr.h0, pr.h1 = h0, h1
	return pr
}

func sameRect(a, b kernel.Rect) bool {
	near := func(x, y float64) bool { return math.Abs(x-y) <= tolerance }
	return near(a.Min.X, b.Min.X) && near(a.Min.Y, b.Min.Y) &&
		near(a.Size.X, b.Size.X) && near(a.Size.Y, b.Size.Y) && near(a.Radius, b.Radius)
}

// rectUnion returns the union of sharp rectangle profiles when that union
// is itself a rectangle.
func rectUnion(bs []*body) (kernel.Rect, bool) {
	var xs, ys []float64
	for _, b := range bs {
		r := b.pr.rect
		if r == nil || r.Radius != 0 {
			return kernel.Rect{}, false
		}
		xs = append(xs, r.Min.X, r.Min.X+r.Size.X)
		ys = append(ys, r.Min.Y, r.Min.Y+r.Size.Y)
	}
	sort.Float64s(xs)
	sort.Float64s(ys)
	covered := func(p r2.Vec) bool {
		for _, b := range bs {
			r := b.pr.rect
			if p.X > r.Min.X && p.X < r.Min.X+r.Size.X && p.Y > r.Min.Y && p.Y < r.Min.Y+r.Size.Y {
				return true
			}
		}
		return false
	}
	for i := 1; i < len(xs); i++ {
		if xs[i]-xs[i-1] <= tolerance {
			continue
		}
		for j := 1; j < len(ys); j++ {
			if ys[j]-ys[j-1] <= tolerance {
				continue
			}
			if !covered(r2.Vec{X: (xs[i] + xs[i-1]) / 2, Y: (ys[j] + ys[j-1]) / 2}) {
				return kernel.Rect{}, false
			}
		}
	}
	lo := r2.Vec{X: xs[0], Y: ys[0]}
	return kernel.Rect{Min: lo, Size: r2.Sub(r2.Vec{X: xs[len(xs)-1], Y: ys[len(ys)-1]}, lo)}, true
}
