package gridfinity

import (
	"fmt"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bin builds the bin described by s. The body occupies Z in [0, BodyHeight]
// with the lip above it and the feet below it.
func (g *Generator) Bin(s BinSpec) (kernel.Body, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var (
		top = s.BodyHeight()
		l   = s.layout()

		body     kernel.Body
		feet     []kernel.Body
		lip      BodySet
		cells    BodySet
		cellLips BodySet
	)
	stages := []stage{
		{name: "body", run: func() (err error) {
			body, err = g.roundedBox(r3.Vec{}, r3.Vec{X: s.BodyWidth(), Y: s.BodyLength(), Z: top}, s.CornerFilletRadius, "bin")
			return err
		}},
		{name: "lip", enabled: func() bool { return s.HasLip }, run: func() (err error) {
			lip, err = g.Lip(LipInput{
				Origin:        r3.Vec{Z: top},
				BaseWidth:     s.BaseWidth,
				BaseLength:    s.BaseLength,
				Width:         float64(s.Width),
				Length:        float64(s.Length),
				Clearance:     s.XYClearance,
				CornerRadius:  s.CornerFilletRadius,
				WallThickness: s.WallThickness,
				HasNotches:    s.HasLipNotches,
				HasScoop:      s.HasScoop,
			})
			return err
		}},
		{name: "compartments", enabled: func() bool { return !s.IsSolid }, run: func() (err error) {
			cells, cellLips, err = g.compartments(s, l)
			return err
		}},
		{name: "feet", enabled: func() bool { return s.HasBase }, run: func() (err error) {
			feet, err = g.feet(s)
			return err
		}},
		{name: "shell", enabled: func() bool { return s.IsShelled }, run: func() error {
			// The solid copy keeps the dividers between compartments.
			dividers, err := g.k.Copy(body, "bin dividers")
			if err != nil {
				return err
			}
			if err := g.k.Shell(body, kernel.TopFace, s.WallThickness); err != nil {
				return err
			}
			if err := g.join(dividers, feet, true); err != nil {
				return err
			}
			if err := g.join(body, feet, false); err != nil {
				return err
			}
			if err := g.cut(dividers, cells.Subtract()); err != nil {
				return err
			}
			cells = BodySet{}.WithMerge(cells.Merge()...).WithMerge(dividers)
			return nil
		}},
		{name: "cavities", enabled: func() bool { return !s.IsShelled }, run: func() error {
			if err := g.cut(body, cells.Subtract()); err != nil {
				return err
			}
			return g.join(body, feet, false)
		}},
		{name: "merge", run: func() error {
			return g.join(body, cells.Merge(), false)
		}},
		{name: "lip join", enabled: func() bool { return s.HasLip }, run: func() error {
			return g.join(body, lip.Merge(), false)
		}},
		{name: "lip transition", enabled: func() bool { return s.HasLip }, run: func() error {
			if !s.HasCompartmentsLip {
				return g.cut(body, lip.Subtract())
			}
			// Compartment lips carry their own transitions.
			for _, b := range lip.Subtract() {
				if err := g.k.Remove(b); err != nil {
					return err
				}
			}
			return nil
		}},
		{name: "compartment lips", enabled: func() bool { return cellLips.Len() > 0 }, run: func() error {
			if err := g.join(body, cellLips.Merge(), false); err != nil {
				return err
			}
			return g.cut(body, cellLips.Subtract())
		}},
	}
	if err := g.runStages("bin", stages); err != nil {
		return nil, err
	}
	return body, nil
}

// feet builds one foot per grid cell of s with its magnet and screw holes.
func (g *Generator) feet(s BinSpec) ([]kernel.Body, error) {
	c := s.XYClearance
	foot, err := g.BaseProfile(BaseInput{
		Name:          "foot",
		Origin:        r3.Vec{X: -c, Y: -c},
		Width:         s.BaseWidth,
		Length:        s.BaseLength,
		CornerRadius:  s.CornerFilletRadius,
		Clearance:     c,
		BottomChamfer: true,
	})
	if err != nil {
		return nil, err
	}
	if s.HasMagnetCutouts || s.HasScrewHoles {
		holes, err := g.Holes(HoleInput{
			Center:         r3.Vec{X: ScrewHolesOffset - c, Y: ScrewHolesOffset - c, Z: -BaseHeight},
			Up:             true,
			Magnet:         s.HasMagnetCutouts,
			MagnetDiameter: s.MagnetCutoutDiameter,
			MagnetDepth:    s.MagnetCutoutDepth,
			Screw:          s.HasScrewHoles,
			ScrewDiameter:  s.ScrewHoleDiameter,
			ScrewDepth:     BaseHeight,
		})
		if err != nil {
			return nil, err
		}
		spacing := s.BaseWidth - 2*ScrewHolesOffset
		holes, err = g.pattern(holes, kernel.RectPattern{Count1: 2, Spacing1: spacing, Count2: 2, Spacing2: spacing})
		if err != nil {
			return nil, err
		}
		if err := g.cut(foot, holes); err != nil {
			return nil, fmt.Errorf("foot holes: %w", err)
		}
	}
	return g.pattern([]kernel.Body{foot}, kernel.RectPattern{
		Count1: s.Width, Spacing1: s.BaseWidth,
		Count2: s.Length, Spacing2: s.BaseLength,
	})
}
