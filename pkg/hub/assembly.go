package hub

import (
	"fmt"
	"math"
	"sort"

	"github.com/drivese/drivese/pkg/core"
)

// Inputs describe the rotor the hub system is sized for. The rating is in kW and the
// shaft angle in rad.
type Inputs struct {
	RotorDiameter       float64   `json:"rotorDiameter" validate:"gt=0"`
	BladeNumber         int       `json:"bladeNumber" validate:"gte=1,lte=6"`
	BladeMass           float64   `json:"bladeMass" validate:"gte=0"`
	BladeRootDiameter   float64   `json:"bladeRootDiameter" validate:"gte=0"`
	MachineRating       float64   `json:"machineRating" validate:"gte=0"`
	RotorBendingMomentY float64   `json:"rotorBendingMomentY" validate:"gte=0"`
	ShaftAngle          float64   `json:"shaftAngle" validate:"gte=0,lt=1.5707963"`
	DistanceHub2MB      float64   `json:"distanceHub2MB" validate:"gte=0"`
	MainBearingCM       core.Vec3 `json:"mainBearingCm"`
}

// Result holds the sized hub system.
type Result struct {
	Hub         Hub     `json:"hub"`
	PitchMass   float64 `json:"pitchMass"`
	SpinnerMass float64 `json:"spinnerMass"`
	System      System  `json:"system"`
}

// Assemble sizes the hub, pitch system and spinner and combines them.
func Assemble(in Inputs) (*Result, error) {
	if err := core.Validate(in); err != nil {
		return nil, err
	}
	r := &Result{}
	var err error

	if r.Hub, err = SizeHub(in.BladeRootDiameter, in.MachineRating, in.BladeNumber); err != nil {
		return nil, fmt.Errorf("hub: %w", err)
	}
	if r.PitchMass, err = PitchSystemMass(in.BladeMass, in.BladeNumber, in.RotorBendingMomentY); err != nil {
		return nil, fmt.Errorf("pitch system: %w", err)
	}
	if r.SpinnerMass, err = SpinnerMass(in.RotorDiameter); err != nil {
		return nil, fmt.Errorf("spinner: %w", err)
	}

	r.System = AddMasses(r.Hub, r.PitchMass, r.SpinnerMass, in.BladeMass, in.BladeNumber)
	r.System.CM = LocateSystem(in.RotorDiameter, in.DistanceHub2MB, in.ShaftAngle, in.MainBearingCM)

	if err := core.CheckFinite("hub system", "mass", r.System.Mass, "cm", r.System.CM, "hubI", r.System.HubI); err != nil {
		return nil, err
	}
	return r, nil
}

// Components lists the hub system parts. Their masses sum to the hub system mass.
func (r *Result) Components() []core.ComponentResult {
	return []core.ComponentResult{
		{Name: "hub", Mass: r.Hub.Mass, CM: r.System.CM, Width: r.Hub.Diameter},
		{Name: "pitch_system", Mass: r.PitchMass, CM: r.System.CM},
		{Name: "spinner", Mass: r.SpinnerMass, CM: r.System.CM},
	}
}

// RootBendingMoment estimates the flapwise blade root moment at rated wind speed.
func RootBendingMoment(rotorDiameter, solidity, ratedWindSpeed float64, blades int) float64 {
	const airDensity = 1.225
	return (3.06 * math.Pi / 8) * airDensity * ratedWindSpeed * ratedWindSpeed *
		(solidity * math.Pow(rotorDiameter, 3)) / float64(blades)
}

var presets = map[string]Inputs{
	"5mw": {
		RotorDiameter:       126.0,
		BladeNumber:         3,
		BladeMass:           17740.0,
		BladeRootDiameter:   3.542,
		MachineRating:       5000.0,
		RotorBendingMomentY: RootBendingMoment(126.0, 0.0517, 11.05, 3),
		ShaftAngle:          5.0 * math.Pi / 180.0,
	},
	"1.5mw": {
		RotorDiameter:       70.0,
		BladeNumber:         3,
		BladeMass:           4470.0,
		BladeRootDiameter:   2.0,
		MachineRating:       1500.0,
		RotorBendingMomentY: RootBendingMoment(70.0, 0.065, 12.12, 3),
	},
	"750kw": {
		RotorDiameter:       48.2,
		BladeNumber:         3,
		BladeMass:           3400.0,
		BladeRootDiameter:   1.0,
		MachineRating:       750.0,
		RotorBendingMomentY: RootBendingMoment(48.2, 0.07, 16.0, 3),
	},
}

// PresetNames lists the reference hubs in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the inputs of a reference hub.
func Preset(name string) (Inputs, error) {
	in, ok := presets[name]
	if !ok {
		return Inputs{}, core.InvalidInput("preset", "unknown preset %q", name)
	}
	return in, nil
}
