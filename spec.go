package gridfinity

import (
	"errors"
	"fmt"
)

// BaseplateSpec describes a tileable baseplate.
type BaseplateSpec struct {
	// Width and Length are grid counts.
	Width  int `yaml:"width"`
	Length int `yaml:"length"`
	// BaseWidth and BaseLength are the grid pitch.
	BaseWidth  float64 `yaml:"base_width"`
	BaseLength float64 `yaml:"base_length"`

	XYClearance        float64 `yaml:"xy_clearance"`
	CornerFilletRadius float64 `yaml:"corner_fillet_radius"`

	PaddingLeft   float64 `yaml:"padding_left"`
	PaddingRight  float64 `yaml:"padding_right"`
	PaddingTop    float64 `yaml:"padding_top"`
	PaddingBottom float64 `yaml:"padding_bottom"`
	// BinZClearance lowers the top of the plate so bins rest on their feet.
	BinZClearance float64 `yaml:"bin_z_clearance"`

	HasSkeletonizedBottom bool `yaml:"has_skeletonized_bottom"`
	HasConnectionHoles    bool `yaml:"has_connection_holes"`
	HasMagnetCutouts      bool `yaml:"has_magnet_cutouts"`
	HasScrewHoles         bool `yaml:"has_screw_holes"`
	HasExtendedBottom     bool `yaml:"has_extended_bottom"`

	MagnetCutoutDiameter    float64 `yaml:"magnet_cutout_diameter"`
	MagnetCutoutDepth       float64 `yaml:"magnet_cutout_depth"`
	ScrewHoleDiameter       float64 `yaml:"screw_hole_diameter"`
	ScrewHeadCutoutDiameter float64 `yaml:"screw_head_cutout_diameter"`
	ConnectionHoleDiameter  float64 `yaml:"connection_hole_diameter"`
	BottomExtensionHeight   float64 `yaml:"bottom_extension_height"`
}

// DefaultBaseplateSpec returns a standard w×l baseplate with an extended
// bottom carrying magnet sockets.
func DefaultBaseplateSpec(w, l int) BaseplateSpec {
	return BaseplateSpec{
		Width:                   w,
		Length:                  l,
		BaseWidth:               BaseWidth,
		BaseLength:              BaseLength,
		XYClearance:             XYClearance,
		CornerFilletRadius:      CornerFilletRadius,
		BinZClearance:           BaseplateBinZClearance,
		HasExtendedBottom:       true,
		HasMagnetCutouts:        true,
		MagnetCutoutDiameter:    MagnetCutoutDiameter,
		MagnetCutoutDepth:       MagnetCutoutDepth,
		ScrewHoleDiameter:       PlateScrewHoleDiameter,
		ScrewHeadCutoutDiameter: ScrewHeadCutoutDiameter,
		ConnectionHoleDiameter:  ConnectionHoleDiameter,
		BottomExtensionHeight:   BaseplateExtraHeight,
	}
}

// PlateWidth returns the real width of the plate without padding.
func (s BaseplateSpec) PlateWidth() float64 {
	return Span(float64(s.Width), s.BaseWidth, s.XYClearance)
}

// PlateLength returns the real length of the plate without padding.
func (s BaseplateSpec) PlateLength() float64 {
	return Span(float64(s.Length), s.BaseLength, s.XYClearance)
}

func (s BaseplateSpec) hasPadding() bool {
	return s.PaddingLeft > 0 || s.PaddingRight > 0 || s.PaddingTop > 0 || s.PaddingBottom > 0
}

// Validate reports every invalid field of s.
func (s BaseplateSpec) Validate() error {
	var errs []error
	check := func(ok bool, field, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
		}
	}
	check(s.Width >= 1, "width", "grid count %d < 1", s.Width)
	check(s.Length >= 1, "length", "grid count %d < 1", s.Length)
	check(s.BaseWidth > 0, "base_width", "pitch %g not positive", s.BaseWidth)
	check(s.BaseLength > 0, "base_length", "pitch %g not positive", s.BaseLength)
	check(s.XYClearance >= 0, "xy_clearance", "negative clearance %g", s.XYClearance)
	check(s.CornerFilletRadius >= 0, "corner_fillet_radius", "negative radius %g", s.CornerFilletRadius)
	for _, p := range []struct {
		field string
		v     float64
	}{
		{"padding_left", s.PaddingLeft}, {"padding_right", s.PaddingRight},
		{"padding_top", s.PaddingTop}, {"padding_bottom", s.PaddingBottom},
		{"bin_z_clearance", s.BinZClearance},
	} {
		check(p.v >= 0, p.field, "negative value %g", p.v)
	}
	if s.HasExtendedBottom {
		check(s.BottomExtensionHeight > 0, "bottom_extension_height", "extension %g not positive", s.BottomExtensionHeight)
	}
	if s.HasExtendedBottom && s.HasConnectionHoles && s.HasSkeletonizedBottom {
		check(s.ConnectionHoleDiameter > 0, "connection_hole_diameter", "diameter %g not positive", s.ConnectionHoleDiameter)
	}
	if s.HasExtendedBottom && s.HasMagnetCutouts {
		check(s.MagnetCutoutDiameter > 0, "magnet_cutout_diameter", "diameter %g not positive", s.MagnetCutoutDiameter)
		check(s.MagnetCutoutDepth > 0 && s.MagnetCutoutDepth <= s.BottomExtensionHeight, "magnet_cutout_depth",
			"depth %g outside (0, %g]", s.MagnetCutoutDepth, s.BottomExtensionHeight)
	}
	if s.HasExtendedBottom && s.HasScrewHoles {
		check(s.ScrewHoleDiameter > 0, "screw_hole_diameter", "diameter %g not positive", s.ScrewHoleDiameter)
		check(s.ScrewHeadCutoutDiameter > s.ScrewHoleDiameter, "screw_head_cutout_diameter",
			"head %g not wider than screw %g", s.ScrewHeadCutoutDiameter, s.ScrewHoleDiameter)
	}
	return errors.Join(errs...)
}

// Compartment is a rectangle of cells in a bin's compartment grid.
type Compartment struct {
	// X and Y are the cell offset of the compartment.
	X int `yaml:"x"`
	Y int `yaml:"y"`
	// Width and Length are the cell span, at least one.
	Width  int `yaml:"width"`
	Length int `yaml:"length"`
	// Depth is the requested cut depth. Zero cuts as deep as the body
	// allows.
	Depth float64 `yaml:"depth"`
}

// UniformCompartments returns an nx×ny grid of single cell compartments in
// X-major order.
func UniformCompartments(nx, ny int, depth float64) []Compartment {
	cs := make([]Compartment, 0, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			cs = append(cs, Compartment{X: i, Y: j, Width: 1, Length: 1, Depth: depth})
		}
	}
	return cs
}

func (c Compartment) overlaps(o Compartment) bool {
	return c.X < o.X+o.Width && o.X < c.X+c.Width && c.Y < o.Y+o.Length && o.Y < c.Y+c.Length
}

// BinSpec describes a bin body.
type BinSpec struct {
	// Width, Length and Height are grid counts. Height is in height units.
	Width  int `yaml:"width"`
	Length int `yaml:"length"`
	Height int `yaml:"height"`

	BaseWidth  float64 `yaml:"base_width"`
	BaseLength float64 `yaml:"base_length"`
	HeightUnit float64 `yaml:"height_unit"`

	WallThickness      float64 `yaml:"wall_thickness"`
	CornerFilletRadius float64 `yaml:"corner_fillet_radius"`
	XYClearance        float64 `yaml:"xy_clearance"`

	IsSolid            bool    `yaml:"is_solid"`
	IsShelled          bool    `yaml:"is_shelled"`
	HasLip             bool    `yaml:"has_lip"`
	HasLipNotches      bool    `yaml:"has_lip_notches"`
	HasScoop           bool    `yaml:"has_scoop"`
	HasCompartmentsLip bool    `yaml:"has_compartments_lip"`
	ScoopMaxRadius     float64 `yaml:"scoop_max_radius"`

	HasTab bool `yaml:"has_tab"`
	// TabLength is in grid units. Negative lengths anchor the tab at the
	// right end of the compartment.
	TabLength float64 `yaml:"tab_length"`
	TabWidth  float64 `yaml:"tab_width"`
	// TabPosition is the tab start in grid units.
	TabPosition float64 `yaml:"tab_position"`
	// TabOverhangAngle is in degrees from horizontal.
	TabOverhangAngle float64 `yaml:"tab_overhang_angle"`

	// CompartmentsX and CompartmentsY size the grid compartments live in.
	CompartmentsX int           `yaml:"compartments_x"`
	CompartmentsY int           `yaml:"compartments_y"`
	Compartments  []Compartment `yaml:"compartments"`

	// HasBase builds the feet under the body.
	HasBase          bool `yaml:"has_base"`
	HasMagnetCutouts bool `yaml:"has_magnet_cutouts"`
	HasScrewHoles    bool `yaml:"has_screw_holes"`

	MagnetCutoutDiameter float64 `yaml:"magnet_cutout_diameter"`
	MagnetCutoutDepth    float64 `yaml:"magnet_cutout_depth"`
	ScrewHoleDiameter    float64 `yaml:"screw_hole_diameter"`
}

// DefaultBinSpec returns a standard w×l×h bin with a lip and one
// compartment.
func DefaultBinSpec(w, l, h int) BinSpec {
	return BinSpec{
		Width:              w,
		Length:             l,
		Height:             h,
		BaseWidth:          BaseWidth,
		BaseLength:         BaseLength,
		HeightUnit:         HeightUnit,
		WallThickness:      WallThickness,
		CornerFilletRadius: CornerFilletRadius,
		XYClearance:        XYClearance,
		HasLip:             true,
		ScoopMaxRadius:     ScoopMaxRadius,
		TabLength:          1,
		TabWidth:           TabWidth,
		TabOverhangAngle:   TabOverhangAngle,
		CompartmentsX:      1,
		CompartmentsY:      1,
		Compartments:       UniformCompartments(1, 1, 0),

		MagnetCutoutDiameter: MagnetCutoutDiameter,
		MagnetCutoutDepth:    MagnetCutoutDepth,
		ScrewHoleDiameter:    ScrewHoleDiameter,
	}
}

// BodyWidth returns the real width of the bin body.
func (s BinSpec) BodyWidth() float64 { return Span(float64(s.Width), s.BaseWidth, s.XYClearance) }

// BodyLength returns the real length of the bin body.
func (s BinSpec) BodyLength() float64 { return Span(float64(s.Length), s.BaseLength, s.XYClearance) }

// BodyHeight returns the height of the body above the base.
func (s BinSpec) BodyHeight() float64 { return BodyHeight(s.Height, s.HeightUnit) }

// Validate reports every invalid field of s.
func (s BinSpec) Validate() error {
	var errs []error
	check := func(ok bool, field, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
		}
	}
	check(s.Width >= 1, "width", "grid count %d < 1", s.Width)
	check(s.Length >= 1, "length", "grid count %d < 1", s.Length)
	check(s.Height >= 1, "height", "grid count %d < 1", s.Height)
	check(s.BaseWidth > 0, "base_width", "pitch %g not positive", s.BaseWidth)
	check(s.BaseLength > 0, "base_length", "pitch %g not positive", s.BaseLength)
	check(s.HeightUnit > 0, "height_unit", "unit %g not positive", s.HeightUnit)
	check(s.XYClearance >= 0, "xy_clearance", "negative clearance %g", s.XYClearance)
	check(s.CornerFilletRadius >= 0, "corner_fillet_radius", "negative radius %g", s.CornerFilletRadius)
	check(s.WallThickness > 0, "wall_thickness", "thickness %g not positive", s.WallThickness)
	if s.Height >= 1 && s.HeightUnit > 0 {
		check(s.BodyHeight() > CompartmentBottomThickness, "height", "body height %g leaves no room for compartments", s.BodyHeight())
	}
	if s.HasBase && s.HasMagnetCutouts {
		check(s.MagnetCutoutDiameter > 0, "magnet_cutout_diameter", "diameter %g not positive", s.MagnetCutoutDiameter)
		check(s.MagnetCutoutDepth > 0 && s.MagnetCutoutDepth < BaseHeight, "magnet_cutout_depth",
			"depth %g outside (0, %g)", s.MagnetCutoutDepth, BaseHeight)
	}
	if s.HasBase && s.HasScrewHoles {
		check(s.ScrewHoleDiameter > 0, "screw_hole_diameter", "diameter %g not positive", s.ScrewHoleDiameter)
	}
	if s.HasScoop {
		check(s.ScoopMaxRadius > 0, "scoop_max_radius", "radius %g not positive", s.ScoopMaxRadius)
	}
	if s.HasTab {
		check(s.TabWidth > 0, "tab_width", "width %g not positive", s.TabWidth)
		check(s.TabOverhangAngle > 0 && s.TabOverhangAngle < 90, "tab_overhang_angle", "angle %g outside (0, 90)", s.TabOverhangAngle)
	}
	if !s.IsSolid {
		check(s.CompartmentsX >= 1, "compartments_x", "grid count %d < 1", s.CompartmentsX)
		check(s.CompartmentsY >= 1, "compartments_y", "grid count %d < 1", s.CompartmentsY)
		check(len(s.Compartments) > 0, "compartments", "no compartments in a hollow bin")
		for i, c := range s.Compartments {
			field := fmt.Sprintf("compartments[%d]", i)
			check(c.Width >= 1 && c.Length >= 1, field, "span %dx%d < 1", c.Width, c.Length)
			check(c.X >= 0 && c.Y >= 0 && c.X+c.Width <= s.CompartmentsX && c.Y+c.Length <= s.CompartmentsY, field,
				"cells [%d,%d)x[%d,%d) outside %dx%d grid", c.X, c.X+c.Width, c.Y, c.Y+c.Length, s.CompartmentsX, s.CompartmentsY)
			check(c.Depth >= 0, field, "negative depth %g", c.Depth)
			for j := 0; j < i; j++ {
				check(!c.overlaps(s.Compartments[j]), field, "overlaps compartments[%d]", j)
			}
		}
	}
	return errors.Join(errs...)
}
