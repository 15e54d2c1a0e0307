package gridfinity

import "math"

// Standard dimensions in centimetres.
const (
	BaseWidth  = 4.2
	BaseLength = 4.2
	HeightUnit = 0.7

	XYClearance        = 0.025
	CornerFilletRadius = 0.4

	BaseTopSectionHeight    = 0.24
	BaseMidSectionHeight    = 0.18
	BaseBottomSectionHeight = 0.08
	BaseHeight              = BaseTopSectionHeight + BaseMidSectionHeight + BaseBottomSectionHeight

	LipWallThickness   = BaseTopSectionHeight - XYClearance
	LipTopRecessHeight = 0.12
	LipExtraHeight     = 0.5 + LipTopRecessHeight

	WallThickness              = 0.12
	CompartmentBottomThickness = 0.1
	CutoutBottomFilletRadius   = 0.2

	TabWidth         = 1.3
	TabOverhangAngle = 45.0 // degrees
	TabTopClearance  = 0.05

	ScoopMaxRadius = 2.5

	BaseplateExtraHeight   = 0.64
	BaseplateBinZClearance = 0.05
	BaseplateBottomChamfer = 0.05

	ScrewHolesOffset            = 0.8
	ScrewHoleDiameter           = 0.3
	ConnectionHoleDiameter      = 0.32
	PlateScrewHoleDiameter      = 0.32
	ScrewHeadCutoutDiameter     = 0.6
	ScrewHeadCutoutOffsetHeight = 0.05
	MagnetCutoutDiameter        = 0.65
	MagnetCutoutDepth           = 0.24

	// FilterTolerance is the smallest dimension worth building a feature for.
	FilterTolerance = 1e-5

	// skeletonArmMargin separates the skeleton arm arc from the largest hole.
	skeletonArmMargin = 0.1
)

// Span returns the real extent of count grid units of size unit, shrunk by
// clearance on both sides.
func Span(count, unit, clearance float64) float64 {
	return count*unit - 2*clearance
}

// ClampRadius returns the requested radius less the material consumed by
// an offset, never below minimum.
func ClampRadius(requested, consumed, minimum float64) float64 {
	return math.Max(minimum, requested-consumed)
}

// CellUnit returns the size of one of count cells separated by walls of
// thickness wall that exactly fill span.
func CellUnit(span float64, count int, wall float64) float64 {
	return (span - float64(count-1)*wall) / float64(count)
}

// CellSpan returns the size of a run of n cells of size unit including the
// n-1 walls inside it.
func CellSpan(unit float64, n int, wall float64) float64 {
	return unit*float64(n) + float64(n-1)*wall
}

// BodyHeight returns the height of a bin body above its base for a bin
// height in height units.
func BodyHeight(binHeight int, heightUnit float64) float64 {
	return float64(binHeight)*heightUnit - BaseHeight
}

// clampTab returns the tab start offset and the signed tab length, both in
// grid units. The offset stays within [0, binWidth-length] and the length
// magnitude within [0, binWidth].
func clampTab(position, length float64, binWidth int) (offset, clamped float64) {
	w := float64(binWidth)
	offset = math.Max(0, math.Min(position, w-length))
	clamped = math.Copysign(math.Max(0, math.Min(math.Abs(length), w)), length)
	return offset, clamped
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
