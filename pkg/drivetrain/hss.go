package drivetrain

import "github.com/drivese/drivese/pkg/core"

// HighSpeedSide is the high speed shaft together with the mechanical brake.
type HighSpeedSide struct {
	DesignTorque float64      `json:"designTorque"`
	ShaftMass    float64      `json:"shaftMass"`
	BrakeMass    float64      `json:"brakeMass"`
	Mass         float64      `json:"mass"`
	Diameter     float64      `json:"diameter"`
	Length       float64      `json:"length"`
	CM           core.Vec3    `json:"cm"`
	I            core.Inertia `json:"I"`
}

// MassProps returns the high speed side as a generic mass element.
func (h HighSpeedSide) MassProps() core.MassProps {
	return core.MassProps{Mass: h.Mass, CM: h.CM, I: h.I}
}

// SizeHighSpeedSide sizes the high speed shaft and brake from the gearbox output torque.
// lengthIn of zero estimates the shaft length from the rotor diameter.
func SizeHighSpeedSide(rotorDiameter, rotorTorque, gearRatio, lssDiameter float64, gb Gearbox, lengthIn float64) HighSpeedSide {
	const density = 7850.0

	h := HighSpeedSide{DesignTorque: rotorTorque / gearRatio}
	h.ShaftMass = 0.025 * h.DesignTorque
	h.BrakeMass = 0.5 * h.ShaftMass
	h.Mass = h.ShaftMass + h.BrakeMass
	h.Diameter = 1.5 * lssDiameter

	h.Length = lengthIn
	if lengthIn == 0 {
		h.Length = 0.5 + rotorDiameter/127.0
	}

	h.CM = core.Vec3{
		gb.CM[0] + gb.Length/2 + h.Length/2,
		gb.CM[1],
		gb.CM[2] + gb.Height*0.2,
	}

	d2 := h.Diameter * h.Diameter
	i0 := 0.25 * h.Length * 3.14159 * density * d2 * gearRatio * gearRatio * d2 / 8.0
	i1 := h.Mass * (0.75*d2 + h.Length*h.Length) / 12.0
	h.I = core.Inertia{i0, i1, i1}
	return h
}
