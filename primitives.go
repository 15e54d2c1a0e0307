package gridfinity

import (
	"fmt"

	"github.com/soypat/gridfinity/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// roundedBox builds an axis aligned box with its vertical edges filleted by
// radius. Radii below FilterTolerance leave the edges sharp.
func (g *Generator) roundedBox(origin, size r3.Vec, radius float64, name string) (kernel.Body, error) {
	b, err := g.k.Box(origin, size, name)
	if err != nil {
		return nil, err
	}
	if radius > FilterTolerance {
		if err := g.k.Fillet(b, kernel.EdgesParallel(kernel.AxisZ), radius); err != nil {
			return nil, fmt.Errorf("round %s corners: %w", name, err)
		}
	}
	return b, nil
}

// verticalCylinder builds a Z cylinder whose start cap is centred at
// center. Negative depths extend downwards.
func (g *Generator) verticalCylinder(center r3.Vec, diameter, depth float64, name string) (kernel.Body, error) {
	return g.k.Cylinder(center, diameter/2, depth, kernel.AxisZ, name)
}

// extrudeRect extrudes a rounded rectangle drawn at height z by distance.
func (g *Generator) extrudeRect(z float64, lo, size r2.Vec, radius, distance, taper float64, name string) (kernel.Body, error) {
	return g.k.Extrude(kernel.ExtrudeInput{
		Name:     name,
		Plane:    kernel.XYPlane(z),
		Profile:  kernel.Rect{Min: lo, Size: size, Radius: radius},
		Distance: distance,
		Taper:    taper,
	})
}

// join merges tools into target when there are any.
func (g *Generator) join(target kernel.Body, tools []kernel.Body, keep bool) error {
	if len(tools) == 0 {
		return nil
	}
	return g.k.Join(target, tools, keep)
}

// cut subtracts tools from target when there are any.
func (g *Generator) cut(target kernel.Body, tools []kernel.Body) error {
	if len(tools) == 0 {
		return nil
	}
	return g.k.Cut(target, tools, false)
}

// pattern returns the originals followed by their rect pattern copies.
func (g *Generator) pattern(bodies []kernel.Body, p kernel.RectPattern) ([]kernel.Body, error) {
	if p.Instances() == 1 {
		return bodies, nil
	}
	copies, err := g.k.RectPattern(bodies, p)
	if err != nil {
		return nil, err
	}
	return append(append([]kernel.Body(nil), bodies...), copies...), nil
}
