package drivetrain

import "math"

// RotorMassEstimate returns an empirical rotor mass in kg for a machine rating in kW.
func RotorMassEstimate(ratingKW float64) float64 {
	return 23.566 * ratingKW
}

// HubToMainBearingDistance estimates the distance from hub centre to main bearing in m.
func HubToMainBearingDistance(rotorDiameter float64) float64 {
	return 0.007835*rotorDiameter + 0.9642
}

// RotorBendingMy estimates the rotor bending moment about y from rotor mass and hub distance.
func RotorBendingMy(rotorMass, distance float64) float64 {
	return 59.7 * rotorMass * distance
}

// RotorBendingMz estimates the rotor bending moment about z from rotor mass and hub distance.
func RotorBendingMz(rotorMass, distance float64) float64 {
	return 53.846 * rotorMass * distance
}

// ShaftDiameterFromMoment returns the outer shaft diameter in m required to carry the
// resultant bending moment (N-m) together with the rotor torque rbmx (N-m), using a
// distortion energy criterion on shaft steel.
func ShaftDiameterFromMoment(moment, rbmx float64) float64 {
	d1 := 16.0 * shaftSafety / math.Pi / shaftYieldPsi
	d2 := kNmToInLb * math.Sqrt(4.0*math.Pow(moment*0.001, 2)+3.0*math.Pow(rbmx*0.001, 2))
	return math.Cbrt(d1*d2) * inToM
}

// hollow folds an inner bore into an equivalent outer diameter.
func hollow(outer, inner float64) float64 {
	return math.Pow(math.Pow(outer, 4)+math.Pow(inner, 4), 0.25)
}

// defaultFlangeLength is used when no flange length is given.
func defaultFlangeLength(rotorDiameter float64) float64 {
	d := rotorDiameter / 100.0
	return 0.3*d*d - 0.1*d + 0.4
}
