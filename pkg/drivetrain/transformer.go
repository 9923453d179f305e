package drivetrain

import "github.com/drivese/drivese/pkg/core"

// Transformer is an optional up-tower transformer.
type Transformer struct {
	Mass   float64      `json:"mass"`
	Length float64      `json:"length"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	CM     core.Vec3    `json:"cm"`
	I      core.Inertia `json:"I"`
}

// MassProps returns the transformer as a generic mass element.
func (t Transformer) MassProps() core.MassProps {
	return core.MassProps{Mass: t.Mass, CM: t.CM, I: t.I}
}

// RNA is the rotor-nacelle assembly without bedplate, yaw and transformer, used to
// place the transformer.
type RNA struct {
	Mass float64 `json:"mass"`
	CMX  float64 `json:"cmX"`
}

// RNAInputs are the drivetrain masses and x positions the RNA is built from.
type RNAInputs struct {
	RotorMass     float64
	MachineRating float64
	Overhang      float64
	LSS           core.MassProps
	MB1           core.MassProps
	MB2           core.MassProps
	Gearbox       core.MassProps
	HSS           core.MassProps
	Generator     core.MassProps
}

// SizeRNA returns the rotor-nacelle mass and its x centre. The rotor sits at -overhang
// and its mass is estimated from the rating when not given.
func SizeRNA(in RNAInputs) RNA {
	rotor := in.RotorMass
	if rotor <= 0 {
		rotor = RotorMassEstimate(in.MachineRating)
	}
	masses := []float64{rotor, in.LSS.Mass, in.MB1.Mass, in.MB2.Mass, in.Gearbox.Mass, in.HSS.Mass, in.Generator.Mass}
	xs := []float64{-in.Overhang, in.LSS.CM[0], in.MB1.CM[0], in.MB2.CM[0], in.Gearbox.CM[0], in.HSS.CM[0], in.Generator.CM[0]}

	var r RNA
	var moment float64
	for i, m := range masses {
		r.Mass += m
		moment += m * xs[i]
	}
	r.CMX = moment / r.Mass
	return r
}

// SizeTransformer places an up-tower transformer behind the generator so the RNA centre
// moves toward the tower face. Without an up-tower transformer it returns zero.
func SizeTransformer(uptower bool, ratingKW, towerTopDiameter, rotorDiameter float64, gen Generator, rna RNA) Transformer {
	if !uptower {
		return Transformer{}
	}
	t := Transformer{Mass: 2.4445*ratingKW + 1599.0}
	bottomOD := towerTopDiameter * 1.7

	var x float64
	if rna.CMX <= -bottomOD/2 {
		x = (bottomOD/2*(rna.Mass+t.Mass) - rna.Mass*rna.CMX) / t.Mass
		if x > gen.CM[0]*3 {
			x = gen.CM[0] + 1.6*0.015*rotorDiameter
		}
	} else {
		x = gen.CM[0] + 1.8*0.015*rotorDiameter
	}
	t.CM = core.Vec3{x, gen.CM[1], gen.CM[2] / 0.75 * 0.5}

	t.Width = towerTopDiameter + 0.5
	t.Height = 0.016 * rotorDiameter
	t.Length = 0.012 * rotorDiameter
	box := func(a, b float64) float64 { return t.Mass * (a*a + b*b) / 12.0 }
	t.I = core.Inertia{box(t.Height, t.Width), box(t.Length, t.Height), box(t.Length, t.Width)}
	return t
}
