package hub

import "github.com/drivese/drivese/pkg/core"

// minSpinnerRotor is the rotor diameter below which the spinner scaling goes negative.
const minSpinnerRotor = 520.5 / 18.5

// SpinnerMass returns the nose cone mass from the rotor diameter.
func SpinnerMass(rotorDiameter float64) (float64, error) {
	if rotorDiameter <= minSpinnerRotor {
		return 0, core.InvalidInput("rotorDiameter", "spinner needs more than %.2f m, got %g", minSpinnerRotor, rotorDiameter)
	}
	return 18.5*rotorDiameter - 520.5, nil
}
