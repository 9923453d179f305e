package hub

import "github.com/drivese/drivese/pkg/core"

const (
	pitchDensity = 7860.0
	pitchStress  = 371e6
)

// PitchSystemMass returns the pitch bearing and actuator mass from the blade mass and
// the flapwise root bending moment.
func PitchSystemMass(bladeMass float64, blades int, rootMomentY float64) (float64, error) {
	if rootMomentY < 0 {
		return 0, core.InvalidInput("rotorBendingMomentY", "must not be negative, got %g", rootMomentY)
	}
	return 0.22*bladeMass*float64(blades) + 12.6*rootMomentY*pitchDensity/pitchStress, nil
}
