package drivetrain

import (
	"math"

	"github.com/drivese/drivese/pkg/core"
)

// GeneratorDesign selects the generator mass model.
type GeneratorDesign string

const (
	GeneratorGeared        GeneratorDesign = "geared"
	GeneratorSingleStage   GeneratorDesign = "single_stage"
	GeneratorMultiDrive    GeneratorDesign = "multi_drive"
	GeneratorPMDirectDrive GeneratorDesign = "pm_direct_drive"
)

// generatorCoefficients maps a design to its mass coefficient and exponent and whether
// the mass scales with torque rather than rating. The short names are accepted as aliases.
func generatorCoefficients(d GeneratorDesign) (coeff, exp float64, torqueBased, ok bool) {
	switch d {
	case GeneratorGeared:
		return 6.4737, 0.9223, false, true
	case GeneratorSingleStage:
		return 10.51, 0.9223, false, true
	case GeneratorMultiDrive, "multi":
		return 5.34, 0.9223, false, true
	case GeneratorPMDirectDrive, "pm_direct":
		return 37.68, 1.0, true, true
	}
	return 0, 0, false, false
}

// Generator is a sized generator.
type Generator struct {
	Mass   float64      `json:"mass"`
	Length float64      `json:"length"`
	Depth  float64      `json:"depth"`
	Width  float64      `json:"width"`
	CM     core.Vec3    `json:"cm"`
	I      core.Inertia `json:"I"`
}

// MassProps returns the generator as a generic mass element.
func (g Generator) MassProps() core.MassProps {
	return core.MassProps{Mass: g.Mass, CM: g.CM, I: g.I}
}

// SizeGenerator sizes the generator behind the high speed side. A rotor speed of zero
// assumes an 80 m/s tip speed.
func SizeGenerator(design GeneratorDesign, rotorDiameter, ratingKW, gearRatio float64, hss HighSpeedSide, rotorRPM float64) (Generator, error) {
	coeff, exp, torqueBased, ok := generatorCoefficients(design)
	if !ok {
		return Generator{}, core.InvalidInput("drivetrainDesign", "unknown generator design %q", design)
	}

	rpm := rotorRPM
	if rpm == 0 {
		rpm = 80 / (rotorDiameter * 0.5 * math.Pi / 30)
	}
	torque := ratingKW * 1.1 / (rpm * math.Pi / 30)

	var g Generator
	if torqueBased {
		g.Mass = coeff * math.Pow(torque, exp)
	} else {
		g.Mass = coeff * math.Pow(ratingKW, exp)
	}

	g.Length = 1.8 * 0.015 * rotorDiameter
	g.Depth = 0.015 * rotorDiameter
	g.Width = 0.5 * g.Depth
	g.CM = core.Vec3{hss.CM[0] + hss.Length/2 + g.Length/2, hss.CM[1], hss.CM[2]}

	dw := g.Depth*g.Depth + g.Width*g.Width
	i0 := 4.86e-5*math.Pow(rotorDiameter, 5.333) + (2.0/3.0*g.Mass)*dw/8.0
	i1 := i0/2.0/(gearRatio*gearRatio) +
		1.0/3.0*g.Mass*g.Length*g.Length/12.0 +
		2.0/3.0*g.Mass*(dw+4.0/3.0*g.Length*g.Length)/16.0
	g.I = core.Inertia{i0, i1, i1}

	if err := core.CheckFinite("generator", "mass", g.Mass, "I", g.I); err != nil {
		return Generator{}, err
	}
	return g, nil
}
