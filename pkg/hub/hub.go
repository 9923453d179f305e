// Package hub sizes the rotor hub system: the cast hub, the pitch system, the spinner
// and their combined mass properties.
package hub

import (
	"math"

	"github.com/drivese/drivese/pkg/core"
)

const castDensity = 7200.0

// Hub is the cast hub shell.
type Hub struct {
	Mass      float64 `json:"mass"`
	Diameter  float64 `json:"diameter"`
	Thickness float64 `json:"thickness"`
}

// BladeRootDiameter estimates the blade root diameter in m from a rating in kW.
func BladeRootDiameter(ratingKW float64) float64 {
	return 2.659 * math.Pow(ratingKW/1000.0, 0.3254)
}

// SizeHub models the hub as a cylinder with one opening per blade root and one for the
// main shaft flange. A blade root diameter of zero is estimated from the rating.
func SizeHub(bladeRootDiameter, ratingKW float64, blades int) (Hub, error) {
	brd := bladeRootDiameter
	if brd <= 0 {
		if ratingKW <= 0 {
			return Hub{}, core.InvalidInput("machineRating", "needed to estimate the blade root, got %g", ratingKW)
		}
		brd = BladeRootDiameter(ratingKW)
	}

	rCyl := 1.1 * brd / 2.0
	hCyl := 2.8 * brd / 2.0
	t := rCyl / 10.0
	cylinder := 2 * math.Pi * rCyl * t * hCyl
	opening := math.Pi * (brd / 2.0) * (brd / 2.0) * t

	h := Hub{
		Mass:      (cylinder - float64(1+blades)*opening) * castDensity,
		Diameter:  2 * rCyl,
		Thickness: t,
	}
	if h.Mass <= 0 {
		return Hub{}, core.InvalidInput("bladeNumber", "%d blade openings leave no hub shell", blades)
	}
	return h, nil
}
