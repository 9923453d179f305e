package hub

import (
	"math"

	"github.com/drivese/drivese/pkg/core"
	"github.com/drivese/drivese/pkg/drivetrain"
)

// System holds the combined hub, pitch system and spinner.
type System struct {
	Mass      float64      `json:"mass"`
	RotorMass float64      `json:"rotorMass"`
	CM        core.Vec3    `json:"cm"`
	I         core.Tensor6 `json:"I"`
	HubI      core.Inertia `json:"hubI"`
}

// shellInertia is the moment of inertia of a thick spherical shell.
func shellInertia(mass, diameter, thickness float64) float64 {
	r := diameter / 2
	ri := r - thickness
	den := math.Pow(r, 3) - math.Pow(ri, 3)
	if den == 0 {
		return 0
	}
	return 0.4 * mass * (math.Pow(r, 5) - math.Pow(ri, 5)) / den
}

// AddMasses totals the hub system and the rotor mass and sums the component inertias
// about the hub centre.
func AddMasses(h Hub, pitchMass, spinnerMass, bladeMass float64, blades int) System {
	s := System{Mass: h.Mass + pitchMass + spinnerMass}
	s.RotorMass = s.Mass + float64(blades)*bladeMass

	hubI := shellInertia(h.Mass, h.Diameter, h.Thickness)
	pitchI := pitchMass * h.Diameter * h.Diameter / 4

	spinnerD := h.Diameter
	if spinnerD == 0 {
		spinnerD = 3.30
	}
	spinnerI := shellInertia(spinnerMass, spinnerD, spinnerD*0.055/3.30)

	total := hubI + pitchI + spinnerI
	s.HubI = core.Inertia{hubI, hubI, hubI}
	s.I = core.Tensor6{total, total, total}
	return s
}

// LocateSystem returns the hub centre upwind of the main bearing along the tilted shaft.
// A distance of zero is estimated from the rotor diameter.
func LocateSystem(rotorDiameter, distanceHub2MB, shaftAngle float64, mainBearing core.Vec3) core.Vec3 {
	d := distanceHub2MB
	if d <= 0 {
		d = drivetrain.HubToMainBearingDistance(rotorDiameter)
	}
	return core.Vec3{mainBearing[0] - d, 0, mainBearing[2] + d*math.Sin(shaftAngle)}
}
