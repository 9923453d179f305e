package drivetrain

import "github.com/drivese/drivese/pkg/core"

// AboveYawInputs are the masses supported above the yaw bearing.
type AboveYawInputs struct {
	MachineRating   float64
	Crane           bool
	LSSMass         float64
	MB1Mass         float64
	MB2Mass         float64
	GearboxMass     float64
	HSSMass         float64
	GeneratorMass   float64
	BedplateMass    float64
	BedplateLength  float64
	BedplateWidth   float64
	TransformerMass float64
}

// AboveYaw holds the auxiliary mass adders and the nacelle envelope.
type AboveYaw struct {
	ElectricalMass    float64 `json:"electricalMass"`
	VSElectronicsMass float64 `json:"vsElectronicsMass"`
	HVACMass          float64 `json:"hvacMass"`
	ControlsMass      float64 `json:"controlsMass"`
	PlatformsMass     float64 `json:"platformsMass"`
	CraneMass         float64 `json:"craneMass"`
	MainframeMass     float64 `json:"mainframeMass"`
	CoverMass         float64 `json:"coverMass"`
	Mass              float64 `json:"mass"`
	Length            float64 `json:"length"`
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
}

// SizeAboveYaw adds auxiliary systems, mainframe and cover to the drivetrain masses.
// The VS electronics are carried by the transformer model and stay at zero here.
func SizeAboveYaw(in AboveYawInputs) AboveYaw {
	a := AboveYaw{
		HVACMass:      0.08 * in.MachineRating,
		PlatformsMass: 0.125 * in.BedplateMass,
	}
	if in.Crane {
		a.CraneMass = 3000.0
	}
	a.MainframeMass = in.BedplateMass + a.CraneMass + a.PlatformsMass

	coverArea := 2 * in.BedplateLength * in.BedplateLength
	a.CoverMass = 84.1 * coverArea / 2

	a.Mass = in.LSSMass + in.MB1Mass + in.MB2Mass + in.GearboxMass + in.HSSMass + in.GeneratorMass +
		a.MainframeMass + in.TransformerMass +
		a.ElectricalMass + a.VSElectronicsMass + a.HVACMass + a.CoverMass

	a.Length = in.BedplateLength
	a.Width = in.BedplateWidth
	a.Height = 2.0 / 3.0 * a.Length
	return a
}

// NacelleInputs are the sized components the nacelle totals are built from.
type NacelleInputs struct {
	AboveYawMass  float64
	MainframeMass float64
	Yaw           core.MassProps
	LSS           core.MassProps
	MB1           core.MassProps
	MB2           core.MassProps
	Gearbox       core.MassProps
	HSS           core.MassProps
	Generator     core.MassProps
	Transformer   core.MassProps
	Bedplate      core.MassProps
}

// Nacelle holds the nacelle totals. I is the full tensor about the nacelle cm.
type Nacelle struct {
	Mass float64      `json:"mass"`
	CM   core.Vec3    `json:"cm"`
	I    core.Tensor6 `json:"I"`
}

// mainframe treats the bedplate, crane and platforms as one element at the bedplate cm,
// with the bedplate inertia scaled by mass.
func (in NacelleInputs) mainframe() core.MassProps {
	mf := core.MassProps{Mass: in.MainframeMass, CM: in.Bedplate.CM}
	if in.Bedplate.Mass > 0 {
		scale := in.MainframeMass / in.Bedplate.Mass
		mf.I = core.Inertia{in.Bedplate.I[0] * scale, in.Bedplate.I[1] * scale, in.Bedplate.I[2] * scale}
	}
	return mf
}

// SizeNacelle totals the nacelle. The yaw system is taken at the tower axis for the cm
// and carries no inertia.
func SizeNacelle(in NacelleInputs) Nacelle {
	n := Nacelle{Mass: in.AboveYawMass + in.Yaw.Mass}

	parts := []core.MassProps{in.LSS, in.HSS, in.MB1, in.MB2, in.Gearbox, in.Transformer, in.Generator, in.mainframe()}

	var moment core.Vec3
	var weight float64
	for _, p := range parts {
		moment = moment.Add(p.CM.Scale(p.Mass))
		weight += p.Mass
	}
	weight += in.Yaw.Mass
	if weight > 0 {
		n.CM = moment.Scale(1 / weight)
	}

	var t [3][3]float64
	for _, p := range parts {
		r := p.CM.Sub(n.CM)
		rr := r.Dot(r)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				v := -p.Mass * r[i] * r[j]
				if i == j {
					v += p.Mass*rr + p.I[i]
				}
				t[i][j] += v
			}
		}
	}
	n.I = core.Tensor6{t[0][0], t[1][1], t[2][2], t[0][1], t[0][2], t[1][2]}
	return n
}
