package gridfinity

import (
	"fmt"
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// BaseInput places one standard foot. The foot is widest at Origin.Z and
// narrows downwards over BaseHeight.
type BaseInput struct {
	Name string
	// Origin is the minimum corner of the nominal cell at the top face.
	Origin r3.Vec
	// Width and Length are the nominal cell size.
	Width  float64
	Length float64
	// CornerRadius is the nominal corner radius, reduced by Clearance.
	CornerRadius float64
	Clearance    float64
	// BottomChamfer tapers the bottom section. Without it the bottom
	// section is straight.
	BottomChamfer bool
}

// Footprint returns the outer rectangle of the foot in the XY plane.
func (in BaseInput) Footprint() kernel.Rect {
	c := in.Clearance
	return kernel.Rect{
		Min:    r2.Vec{X: in.Origin.X + c, Y: in.Origin.Y + c},
		Size:   r2.Vec{X: in.Width - 2*c, Y: in.Length - 2*c},
		Radius: ClampRadius(in.CornerRadius, c, 0),
	}
}

// bottomInset returns how far the bottom face of the foot sits inside its
// footprint.
func (in BaseInput) bottomInset() float64 {
	if in.BottomChamfer {
		return BaseTopSectionHeight + BaseBottomSectionHeight
	}
	return BaseTopSectionHeight
}

// BaseProfile builds the three section foot described by in: a 45° top
// section, a straight middle section and a bottom section that is tapered
// or straight.
func (g *Generator) BaseProfile(in BaseInput) (kernel.Body, error) {
	name := in.Name
	if name == "" {
		name = "base"
	}
	fp := in.Footprint()
	if err := fp.Validate(); err != nil {
		return nil, fmt.Errorf("%s footprint: %w", name, err)
	}
	inset := func(r kernel.Rect, d float64) kernel.Rect {
		return kernel.Rect{
			Min:    r2.Add(r.Min, r2.Vec{X: d, Y: d}),
			Size:   r2.Sub(r.Size, r2.Vec{X: 2 * d, Y: 2 * d}),
			Radius: math.Max(0, r.Radius-d),
		}
	}
	draft := degToRad(45)
	z := in.Origin.Z
	top, err := g.extrudeRect(z, fp.Min, fp.Size, fp.Radius, -BaseTopSectionHeight, draft, name)
	if err != nil {
		return nil, fmt.Errorf("%s top section: %w", name, err)
	}
	mid := inset(fp, BaseTopSectionHeight)
	z -= BaseTopSectionHeight
	midBody, err := g.extrudeRect(z, mid.Min, mid.Size, mid.Radius, -BaseMidSectionHeight, 0, name+" mid")
	if err != nil {
		return nil, fmt.Errorf("%s mid section: %w", name, err)
	}
	z -= BaseMidSectionHeight
	taper := 0.0
	if in.BottomChamfer {
		taper = draft
	}
	bottomBody, err := g.extrudeRect(z, mid.Min, mid.Size, mid.Radius, -BaseBottomSectionHeight, taper, name+" bottom")
	if err != nil {
		return nil, fmt.Errorf("%s bottom section: %w", name, err)
	}
	if err := g.k.Join(top, []kernel.Body{midBody, bottomBody}, false); err != nil {
		return nil, fmt.Errorf("%s sections: %w", name, err)
	}
	return top, nil
}
