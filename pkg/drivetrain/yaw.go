package drivetrain

import (
	"math"

	"github.com/drivese/drivese/pkg/core"
)

// YawSystem is the yaw friction plate plus drives.
type YawSystem struct {
	Motors int          `json:"motors"`
	Mass   float64      `json:"mass"`
	CM     core.Vec3    `json:"cm"`
	I      core.Inertia `json:"I"`
}

// MassProps returns the yaw system as a generic mass element.
func (y YawSystem) MassProps() core.MassProps {
	return core.MassProps{Mass: y.Mass, CM: y.CM, I: y.I}
}

// yawMotorCount picks the drive count from the rotor size.
func yawMotorCount(rotorDiameter float64) int {
	switch {
	case rotorDiameter < 90:
		return 4
	case rotorDiameter < 120:
		return 6
	default:
		return 8
	}
}

// SizeYawSystem sizes the yaw system below the bedplate. motors of zero picks the drive
// count from the rotor diameter.
func SizeYawSystem(motors int, rotorDiameter, towerTopDiameter, bedplateHeight float64) YawSystem {
	const (
		plateDensity = 8000.0
		motorMass    = 190.0
	)
	if motors == 0 {
		motors = yawMotorCount(rotorDiameter)
	}
	plate := math.Pi * towerTopDiameter * (towerTopDiameter * 0.10) * (rotorDiameter / 1000.0)
	return YawSystem{
		Motors: motors,
		Mass:   plate*plateDensity + float64(motors)*motorMass,
		CM:     core.Vec3{0, 0, -bedplateHeight},
	}
}
