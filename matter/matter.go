// Package matter compensates printed dimensions for the way filament
// materials shrink after printing. Dimensions are in centimetres.
package matter

import (
	"fmt"
	"strings"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{name: "pla", shrink: 0.2e-2, pullShrink: .045} // 0.2% shrinkage
	// PETG shrinks slightly more than PLA and strings into holes.
	PETG = ViscousMaterial{name: "petg", shrink: 0.4e-2, pullShrink: .05}
)

var materials = []ViscousMaterial{PLA, PETG}

type ViscousMaterial struct {
	name string
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// Lookup returns the material called name, case insensitive.
func Lookup(name string) (ViscousMaterial, error) {
	for _, m := range materials {
		if strings.EqualFold(m.name, name) {
			return m, nil
		}
	}
	return ViscousMaterial{}, fmt.Errorf("unknown material %q", name)
}

func (m ViscousMaterial) String() string { return m.name }

// Scale returns the modelled size of an outer dimension so it measures
// real once printed.
func (m ViscousMaterial) Scale(real float64) float64 {
	return real / (1 - m.shrink)
}

// InternalDimScale returns the modelled size of a hole or pocket so it
// measures real once printed. Non positive dimensions are returned as is.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		return real
	}
	return real*(m.shrink+1) + m.pullShrink
}
