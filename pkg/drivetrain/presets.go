package drivetrain

import (
	"math"
	"sort"

	"github.com/drivese/drivese/pkg/core"
)

const presetShaftAngle = 5.0 * math.Pi / 180.0

// ratedTorque is the design rotor torque used by the presets: 1.5 times the
// aerodynamic torque at rated power and speed.
func ratedTorque(ratingKW, efficiency, rpm float64) float64 {
	return 1.5 * (ratingKW * 1000 / efficiency) / (rpm * math.Pi / 30)
}

type preset struct {
	cfg3, cfg4 Config
	in         func(Layout) Inputs
}

var presets = map[string]preset{
	"5mw": {
		cfg3: Config{GearConfiguration: GearEEP, ShaftFactor: ShaftNormal, MB1Type: BearingSRB,
			IECClass: "B", DrivetrainDesign: GeneratorGeared, UptowerTransformer: true, Crane: true},
		cfg4: Config{GearConfiguration: GearEEP, ShaftFactor: ShaftNormal, MB1Type: BearingCARB, MB2Type: BearingSRB,
			IECClass: "B", DrivetrainDesign: GeneratorGeared, UptowerTransformer: true, Crane: true},
		in: func(Layout) Inputs {
			return Inputs{
				RotorDiameter:        126.0,
				RotorSpeed:           12.1,
				MachineRating:        5000.0,
				DrivetrainEfficiency: 0.95,
				RotorTorque:          ratedTorque(5000.0, 0.95, 12.1),
				RotorThrust:          599610.0,
				RotorBendingMomentX:  330770.0,
				RotorBendingMomentY:  -16665000.0,
				RotorBendingMomentZ:  2896300.0,
				RotorForceY:          186780.0,
				RotorForceZ:          -842710.0,
				GearRatio:            96.76,
				PlanetNumbers:        [3]int{3, 3, 1},
				ShaftAngle:           presetShaftAngle,
				ShaftRatio:           0.10,
				ShrinkDiscMass:       333.3 * 5000.0 / 1000.0,
				CarrierMass:          8000.0,
				FlangeLength:         0.5,
				Overhang:             5.0,
				DistanceHub2MB:       1.912,
				GearboxInputCM:       0.1,
				HSSInputLength:       1.5,
				TowerTopDiameter:     3.78,
			}
		},
	},
	"1.5mw": {
		cfg3: Config{GearConfiguration: GearEPP, ShaftFactor: ShaftNormal, MB1Type: BearingSRB,
			IECClass: "B", DrivetrainDesign: GeneratorGeared},
		cfg4: Config{GearConfiguration: GearEPP, ShaftFactor: ShaftNormal, MB1Type: BearingCARB, MB2Type: BearingSRB,
			IECClass: "B", DrivetrainDesign: GeneratorGeared},
		in: func(l Layout) Inputs {
			in := Inputs{
				RotorDiameter:        77.0,
				RotorSpeed:           16.18,
				MachineRating:        1500.0,
				DrivetrainEfficiency: 0.95,
				RotorTorque:          ratedTorque(1500.0, 0.95, 16.18),
				RotorThrust:          2.6204e5,
				RotorBendingMomentX:  8.4389e5,
				RotorBendingMomentY:  -2.6758e6,
				RotorBendingMomentZ:  7.5222e2,
				RotorForceY:          2.8026e4,
				RotorForceZ:          -3.4763e5,
				GearRatio:            78.0,
				PlanetNumbers:        [3]int{3, 1, 1},
				ShaftAngle:           presetShaftAngle,
				ShaftRatio:           0.1,
				ShrinkDiscMass:       333.3 * 1500.0 / 1000.0,
				CarrierMass:          2000.0,
				FlangeLength:         0.285,
				Overhang:             3.3,
				DistanceHub2MB:       1.535,
				TowerTopDiameter:     2.3,
			}
			if l == Layout4pt {
				in.Overhang = 4.0
				in.DistanceHub2MB = 1.3
			}
			return in
		},
	},
	"750kw": {
		cfg3: Config{GearConfiguration: GearEPP, ShaftFactor: ShaftNormal, MB1Type: BearingSRB,
			IECClass: "A", DrivetrainDesign: GeneratorGeared},
		cfg4: Config{GearConfiguration: GearEPP, ShaftFactor: ShaftNormal, MB1Type: BearingSRB, MB2Type: BearingTRB2,
			IECClass: "A", DrivetrainDesign: GeneratorGeared},
		in: func(Layout) Inputs {
			return Inputs{
				RotorDiameter:        48.2,
				RotorSpeed:           22.0,
				MachineRating:        750.0,
				DrivetrainEfficiency: 0.95,
				RotorTorque:          ratedTorque(750.0, 0.95, 22.0),
				RotorThrust:          143000.0,
				RotorBendingMomentX:  401e3,
				RotorBendingMomentY:  495.6e3,
				RotorBendingMomentZ:  -443e3,
				RotorForceY:          -12600.0,
				RotorForceZ:          -142e3,
				GearRatio:            81.491,
				PlanetNumbers:        [3]int{3, 1, 1},
				ShaftAngle:           presetShaftAngle,
				ShaftRatio:           0.1,
				ShrinkDiscMass:       333.3 * 750.0 / 1000.0,
				CarrierMass:          250.0,
				FlangeLength:         0.285,
				Overhang:             2.26,
				DistanceHub2MB:       1.22,
				GearboxInputCM:       0.8,
				TowerTopDiameter:     2.21,
			}
		},
	},
}

// PresetNames lists the reference turbines in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the configuration and inputs of a reference turbine for a layout.
func Preset(name string, layout Layout) (Config, Inputs, error) {
	p, ok := presets[name]
	if !ok {
		return Config{}, Inputs{}, core.InvalidInput("preset", "unknown preset %q", name)
	}
	if !layout.Valid() {
		return Config{}, Inputs{}, core.InvalidInput("layout", "must be 3pt or 4pt, got %q", layout)
	}
	cfg := p.cfg4
	if layout == Layout3pt {
		cfg = p.cfg3
	}
	return cfg, p.in(layout), nil
}
