package gridfinity

import (
	"math"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Baseplate builds the plate described by s. The plate top sits at Z=0
// lowered by the bin clearance; sockets and the optional extension hang
// below it.
func (g *Generator) Baseplate(s BaseplateSpec) (kernel.Body, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var (
		c      = s.XYClearance
		trueW  = s.PlateWidth()
		trueL  = s.PlateLength()
		padW   = trueW + s.PaddingLeft + s.PaddingRight
		padL   = trueL + s.PaddingBottom + s.PaddingTop
		padMin = r3.Sub(r3.Vec{}, r3.Vec{X: s.PaddingLeft, Y: s.PaddingBottom})
		ext    = s.BottomExtensionHeight
		radius = math.Max(0, s.CornerFilletRadius-c)

		template kernel.Body
		skeleton kernel.Body
		holes    []kernel.Body
		tools    []kernel.Body
		plate    kernel.Body
	)
	if radius <= FilterTolerance {
		radius = 0
	}
	holeCenter := r3.Vec{X: ScrewHolesOffset - c, Y: ScrewHolesOffset - c, Z: -BaseHeight}
	stages := []stage{
		{name: "socket", run: func() (err error) {
			template, err = g.BaseProfile(BaseInput{
				Name:          "socket",
				Origin:        r3.Vec{X: -2 * c, Y: -2 * c},
				Width:         s.BaseWidth + 2*c,
				Length:        s.BaseLength + 2*c,
				CornerRadius:  s.CornerFilletRadius + c,
				Clearance:     c,
				BottomChamfer: true,
			})
			return err
		}},
		{name: "holes", enabled: func() bool { return s.HasExtendedBottom && (s.HasMagnetCutouts || s.HasScrewHoles) }, run: func() error {
			hs, err := g.Holes(HoleInput{
				Center:         holeCenter,
				Magnet:         s.HasMagnetCutouts,
				MagnetDiameter: s.MagnetCutoutDiameter,
				MagnetDepth:    s.MagnetCutoutDepth,
				Screw:          s.HasScrewHoles,
				ScrewDiameter:  s.ScrewHoleDiameter,
				ScrewDepth:     ext,
				HeadDiameter:   s.ScrewHeadCutoutDiameter,
			})
			if err != nil {
				return err
			}
			hs, err = g.pattern(hs, kernel.RectPattern{
				Count1: 2, Spacing1: s.BaseWidth - 2*ScrewHolesOffset,
				Count2: 2, Spacing2: s.BaseLength - 2*ScrewHolesOffset,
			})
			if err != nil {
				return err
			}
			return g.join(template, hs, false)
		}},
		// The skeleton is carved from the extension and has nothing to cut
		// without it.
		{name: "skeleton", enabled: func() bool { return s.HasExtendedBottom && s.HasSkeletonizedBottom }, run: func() (err error) {
			skeleton, err = g.skeleton(s, holeCenter)
			return err
		}},
		{name: "connection holes", enabled: func() bool { return skeleton != nil && s.HasConnectionHoles }, run: func() (err error) {
			holes, err = g.connectionHoles(s, skeleton)
			return err
		}},
		{name: "skeleton join", enabled: func() bool { return skeleton != nil }, run: func() error {
			return g.join(template, []kernel.Body{skeleton}, false)
		}},
		{name: "socket pattern", run: func() (err error) {
			tools, err = g.pattern([]kernel.Body{template}, kernel.RectPattern{
				Count1: s.Width, Spacing1: s.BaseWidth,
				Count2: s.Length, Spacing2: s.BaseLength,
			})
			return err
		}},
		{name: "plate", run: func() (err error) {
			plate, err = g.k.Box(r3.Vec{Z: -BaseHeight}, r3.Vec{X: trueW, Y: trueL, Z: BaseHeight}, "baseplate")
			return err
		}},
		{name: "padding", enabled: s.hasPadding, run: func() error {
			var pads []kernel.Body
			add := func(x0, y0, x1, y1 float64, name string) error {
				if x1-x0 <= 0 || y1-y0 <= 0 {
					return nil
				}
				b, err := g.k.Box(r3.Vec{X: x0, Y: y0, Z: -BaseHeight}, r3.Vec{X: x1 - x0, Y: y1 - y0, Z: BaseHeight}, name)
				if err != nil {
					return err
				}
				pads = append(pads, b)
				return nil
			}
			y0, y1 := padMin.Y, trueL+s.PaddingTop
			for _, err := range []error{
				add(padMin.X, y0, 0, y1, "padding left"),
				add(trueW, y0, trueW+s.PaddingRight, y1, "padding right"),
				add(0, y0, trueW, 0, "padding bottom"),
				add(0, trueL, trueW, y1, "padding top"),
			} {
				if err != nil {
					return err
				}
			}
			return g.join(plate, pads, false)
		}},
		{name: "fillet", enabled: func() bool { return radius > FilterTolerance }, run: func() error {
			return g.k.Fillet(plate, kernel.EdgesParallel(kernel.AxisZ), radius)
		}},
		{name: "extension", enabled: func() bool { return s.HasExtendedBottom }, run: func() error {
			b, err := g.extrudeRect(-BaseHeight, r2.Vec{X: padMin.X, Y: padMin.Y}, r2.Vec{X: padW, Y: padL}, radius, -ext, 0, "baseplate extension")
			if err != nil {
				return err
			}
			return g.join(plate, []kernel.Body{b}, false)
		}},
		{name: "bottom chamfer", run: func() error {
			return g.k.Chamfer(plate, kernel.FaceLoop(kernel.BottomFace), BaseplateBottomChamfer)
		}},
		{name: "bin clearance", enabled: func() bool { return s.BinZClearance > FilterTolerance }, run: func() error {
			b, err := g.k.Box(r3.Vec{X: padMin.X, Y: padMin.Y, Z: -s.BinZClearance}, r3.Vec{X: padW, Y: padL, Z: s.BinZClearance}, "bin clearance")
			if err != nil {
				return err
			}
			tools = append(tools, b)
			return nil
		}},
		{name: "cut", run: func() error {
			return g.cut(plate, append(tools, holes...))
		}},
	}
	if err := g.runStages("baseplate", stages); err != nil {
		return nil, err
	}
	return plate, nil
}

// skeleton builds the material relief cut from the bottom extension of one
// cell: four arms around the cell centre, each clearing the corner holes.
// Square cells rotate one arm about the centre, other cells mirror it
// across both centre planes.
func (g *Generator) skeleton(s BaseplateSpec, hole r3.Vec) (kernel.Body, error) {
	var (
		c      = s.XYClearance
		edge   = -c + BaseTopSectionHeight + BaseBottomSectionHeight
		center = r2.Vec{X: s.BaseWidth/2 - c, Y: s.BaseLength/2 - c}
		r      = math.Max(s.MagnetCutoutDiameter, s.ScrewHeadCutoutDiameter)/2 + skeletonArmMargin
		h      = r2.Vec{X: hole.X, Y: hole.Y}
	)
	vs := []r2.Vec{{X: h.X + r, Y: h.Y}}
	vs = kernel.ArcTo(vs, h, math.Pi/2, 8)
	vs = append(vs,
		r2.Vec{X: edge, Y: h.Y + r},
		r2.Vec{X: edge, Y: center.Y},
		r2.Vec{X: center.X, Y: center.Y},
		r2.Vec{X: center.X, Y: edge},
		r2.Vec{X: h.X + r, Y: edge},
	)
	arm, err := g.k.Extrude(kernel.ExtrudeInput{
		Name:     "skeleton",
		Plane:    kernel.XYPlane(-BaseHeight),
		Profile:  kernel.Polygon{Vertices: vs},
		Distance: -s.BottomExtensionHeight,
	})
	if err != nil {
		return nil, err
	}
	var arms []kernel.Body
	if s.BaseWidth == s.BaseLength {
		arms, err = g.k.CircPattern([]kernel.Body{arm}, kernel.Line{Point: r3.Vec{X: center.X, Y: center.Y}, Dir: kernel.AxisZ}, 4)
	} else {
		arms, err = g.mirrorQuadrant(arm, center)
	}
	if err != nil {
		return nil, err
	}
	if err := g.join(arm, arms, false); err != nil {
		return nil, err
	}
	return arm, nil
}

// mirrorQuadrant copies a body occupying one quadrant of a cell into the
// other three by mirroring across the cell centre planes.
func (g *Generator) mirrorQuadrant(b kernel.Body, center r2.Vec) ([]kernel.Body, error) {
	mx, err := g.k.Mirror([]kernel.Body{b}, kernel.Plane{Origin: r3.Vec{X: center.X}, Normal: kernel.AxisX})
	if err != nil {
		return nil, err
	}
	my, err := g.k.Mirror(append([]kernel.Body{b}, mx...), kernel.Plane{Origin: r3.Vec{Y: center.Y}, Normal: kernel.AxisY})
	if err != nil {
		return nil, err
	}
	return append(mx, my...), nil
}

// connectionHoles builds the holes joining neighbouring plates through the
// skeleton channels on all four sides of the plate.
func (g *Generator) connectionHoles(s BaseplateSpec, skeleton kernel.Body) ([]kernel.Body, error) {
	c := s.XYClearance
	y, err := g.connectionHole(skeleton, kernel.MinY, s.ConnectionHoleDiameter, s.BaseLength/2)
	if err != nil {
		return nil, err
	}
	x, err := g.connectionHole(skeleton, kernel.MinX, s.ConnectionHoleDiameter, s.BaseWidth/2)
	if err != nil {
		return nil, err
	}
	ys, err := g.pattern([]kernel.Body{y}, kernel.RectPattern{Count1: s.Width, Spacing1: s.BaseWidth, Count2: 1})
	if err != nil {
		return nil, err
	}
	xs, err := g.pattern([]kernel.Body{x}, kernel.RectPattern{Count1: 1, Count2: s.Length, Spacing2: s.BaseLength})
	if err != nil {
		return nil, err
	}
	ysm, err := g.k.Mirror(ys, kernel.Plane{Origin: r3.Vec{Y: float64(s.Length)*s.BaseLength/2 - c}, Normal: kernel.AxisY})
	if err != nil {
		return nil, err
	}
	xsm, err := g.k.Mirror(xs, kernel.Plane{Origin: r3.Vec{X: float64(s.Width)*s.BaseWidth/2 - c}, Normal: kernel.AxisX})
	if err != nil {
		return nil, err
	}
	out := append(append(ys, ysm...), xs...)
	return append(out, xsm...), nil
}
