package drivetrain

import (
	"math"

	"github.com/drivese/drivese/pkg/core"
)

// BearingType is a main bearing family from the bearing catalogue.
type BearingType string

const (
	BearingCARB BearingType = "CARB"
	BearingSRB  BearingType = "SRB"
	BearingTRB1 BearingType = "TRB1"
	BearingTRB2 BearingType = "TRB2"
	BearingCRB  BearingType = "CRB"
	BearingRB   BearingType = "RB"
)

// Valid reports whether b is in the catalogue.
func (b BearingType) Valid() bool {
	switch b {
	case BearingCARB, BearingSRB, BearingTRB1, BearingTRB2, BearingCRB, BearingRB:
		return true
	}
	return false
}

// BearingSlopeLimit returns the allowable shaft misalignment at the bearing in rad.
func BearingSlopeLimit(b BearingType) float64 {
	switch b {
	case BearingTRB1, BearingTRB2:
		return 3.0 / 60.0 / 180.0 * math.Pi
	case BearingCRB:
		return 4.0 / 60.0 / 180.0 * math.Pi
	case BearingSRB, BearingRB:
		return 0.078
	case BearingCARB:
		return 0.5 / 180.0 * math.Pi
	}
	return 0
}

// ResizeForBearing returns the shaft diameter seated in the bearing, the bearing
// facewidth and the bare bearing mass (without housing) for a shaft diameter in m.
func ResizeForBearing(d float64, b BearingType) (diameter, facewidth, mass float64) {
	switch b {
	case BearingCARB:
		return d, 0.2663*d + 0.0435, 1561.4 * math.Pow(d, 2.6007)
	case BearingSRB:
		return d, 0.2762 * d, 876.7 * math.Pow(d, 1.7195)
	case BearingTRB1:
		return d, 0.0740, 92.863 * math.Pow(d, 0.8399)
	case BearingCRB:
		return d, 0.1136 * d, 304.19 * math.Pow(d, 1.8885)
	case BearingTRB2:
		return d, 0.1499 * d, 543.01 * math.Pow(d, 1.9043)
	case BearingRB:
		return d, 0.0839, 229.47 * math.Pow(d, 1.8036)
	}
	return d, 0, 0
}

// Bearing holds the housed mass properties of one main bearing.
type Bearing struct {
	Mass float64      `json:"mass"`
	CM   core.Vec3    `json:"cm"`
	I    core.Inertia `json:"I"`
}

// MassProps returns the bearing as a generic mass element.
func (b Bearing) MassProps() core.MassProps {
	return core.MassProps{Mass: b.Mass, CM: b.CM, I: b.I}
}

func bearingInertia(mass, shaftDiameter float64) core.Inertia {
	i0 := mass * shaftDiameter * shaftDiameter / 4.0
	return core.Inertia{i0, i0 / 2.0, i0 / 2.0}
}

// SizeMainBearing adds the housing to the upwind bearing. When the shaft gives no
// location the bearing is placed from the rotor diameter.
func SizeMainBearing(bearingMass, shaftDiameter, rotorDiameter float64, location core.Vec3) Bearing {
	mass := bearingMass * (1 + bearingHousingFactor)
	cm := location
	if location[0] == 0 {
		cm = core.Vec3{-0.035 * rotorDiameter, 0, 0.025 * rotorDiameter}
	}
	return Bearing{Mass: mass, CM: cm, I: bearingInertia(mass, shaftDiameter)}
}

// SizeSecondBearing adds the housing to the downwind bearing. A bearing with no mass or
// no location is absent and reported as zero.
func SizeSecondBearing(bearingMass, shaftDiameter float64, location core.Vec3) Bearing {
	mass := bearingMass * (1 + bearingHousingFactor)
	if mass <= 0 || location[0] == 0 {
		return Bearing{}
	}
	return Bearing{Mass: mass, CM: location, I: bearingInertia(mass, shaftDiameter)}
}
