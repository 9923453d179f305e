package drivetrain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/drivese/drivese/pkg/core"
)

// GearConfiguration names the stage layout, e for epicyclic and p for parallel.
type GearConfiguration string

const (
	GearEEP  GearConfiguration = "eep"
	GearEEP2 GearConfiguration = "eep_2"
	GearEEP3 GearConfiguration = "eep_3"
	GearEPP  GearConfiguration = "epp"
)

// Valid reports whether c is a supported configuration.
func (c GearConfiguration) Valid() bool {
	switch c {
	case GearEEP, GearEEP2, GearEEP3, GearEPP:
		return true
	}
	return false
}

// ShaftFactor scales gearbox mass for the shaft arrangement.
type ShaftFactor string

const (
	ShaftNormal ShaftFactor = "normal"
	ShaftShort  ShaftFactor = "short"
)

func (f ShaftFactor) factor() (float64, bool) {
	switch f {
	case ShaftNormal:
		return 1.0, true
	case ShaftShort:
		return 1.25, true
	}
	return 0, false
}

type stageKind int

const (
	stageParallel  stageKind = 1
	stageEpicyclic stageKind = 2
)

// invalidRatioVol is returned for stage splits that cannot be built.
const invalidRatioVol = 1e12

// stageKinds reads the stage layout; characters other than e and p are ignored.
func stageKinds(c GearConfiguration) []stageKind {
	var kinds []stageKind
	for _, ch := range c {
		switch ch {
		case 'e':
			kinds = append(kinds, stageEpicyclic)
		case 'p':
			kinds = append(kinds, stageParallel)
		}
	}
	return kinds
}

// GearboxInputs drive the gearbox sizing.
type GearboxInputs struct {
	GearRatio     float64
	PlanetNumbers [3]int
	RotorSpeed    float64
	RotorDiameter float64
	RotorTorque   float64
	InputCM       float64
}

// Gearbox is a sized three-stage gearbox.
type Gearbox struct {
	StageRatios [3]float64   `json:"stageRatios"`
	StageMasses [3]float64   `json:"stageMasses"`
	Mass        float64      `json:"mass"`
	CM          core.Vec3    `json:"cm"`
	I           core.Inertia `json:"I"`
	Length      float64      `json:"length"`
	Height      float64      `json:"height"`
	Diameter    float64      `json:"diameter"`
}

// MassProps returns the gearbox as a generic mass element.
func (g Gearbox) MassProps() core.MassProps {
	return core.MassProps{Mass: g.Mass, CM: g.CM, I: g.I}
}

// stageMass is the dimensionless mass of a single stage.
func stageMass(ratio float64, planets int, kind stageKind) float64 {
	if kind == stageParallel {
		return 1.0 + ratio + ratio*ratio + 1.0/ratio
	}
	const kr = 0.4
	kgamma := 1.1
	if planets == 5 {
		kgamma = 1.35
	}
	np := float64(planets)
	sun := 0.5*ratio - 1.0
	rr := (ratio - 1) * (ratio - 1)
	return kgamma * (1/np + 1/(np*sun) + sun + sun*sun + kr*rr/np + kr*rr/(np*sun))
}

// epicyclicVolume is the relative volume of an epicyclic stage with b planets and
// structure weight coefficient kr.
func epicyclicVolume(x, b, kr float64) float64 {
	s := x/2.0 - 1.0
	rr := (x - 1.0) * (x - 1.0)
	return 1.0/b + 1.0/(b*s) + s + s*s + kr*rr/b + kr*rr/(b*s)
}

func parallelVolume(x float64) float64 {
	return 1.0 + 1.0/x + x + x*x
}

// gearVolume is the relative volume of the train for stage ratios x.
func gearVolume(c GearConfiguration, x [3]float64, planets [3]int) float64 {
	b1, b2 := float64(planets[0]), float64(planets[1])
	v := epicyclicVolume(x[0], b1, 0) / x[0]
	switch c {
	case GearEPP:
		v += parallelVolume(x[1]) / (x[0] * x[1])
	case GearEEP2:
		v += epicyclicVolume(x[1], b2, 1.6) / (x[0] * x[1])
	case GearEEP3:
		v += epicyclicVolume(x[1], b2, 0.8) / (x[0] * x[1])
	default:
		v += epicyclicVolume(x[1], b2, 0) / (x[0] * x[1])
	}
	return v + parallelVolume(x[2])/(x[0]*x[1]*x[2])
}

func ratiosUsable(c GearConfiguration, x [3]float64) bool {
	if x[0] <= 2 || x[1] <= 0 || x[2] <= 0 {
		return false
	}
	if c != GearEPP && x[1] <= 2 {
		return false
	}
	return true
}

// StageRatios splits the overall ratio over three stages so the train volume is
// minimal. The product constraint is eliminated by solving for the last free stage;
// eep_3 also fixes the last stage at 3.
func StageRatios(c GearConfiguration, ratio float64, planets [3]int) ([3]float64, error) {
	if !c.Valid() {
		return [3]float64{}, core.InvalidInput("gearConfiguration", "unknown configuration %q", c)
	}
	start := math.Cbrt(ratio)

	var expand func(v []float64) [3]float64
	var x0 []float64
	if c == GearEEP3 {
		expand = func(v []float64) [3]float64 {
			return [3]float64{v[0], ratio / (3.0 * v[0]), 3.0}
		}
		x0 = []float64{start}
	} else {
		expand = func(v []float64) [3]float64 {
			return [3]float64{v[0], v[1], ratio / (v[0] * v[1])}
		}
		x0 = []float64{start, start}
	}

	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			x := expand(v)
			if !ratiosUsable(c, x) {
				return invalidRatioVol
			}
			vol := gearVolume(c, x, planets)
			if !core.Finite(vol) {
				return invalidRatioVol
			}
			return vol
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 5000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 200,
		},
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if result == nil {
		return [3]float64{}, fmt.Errorf("gearbox stage ratios: %w: %v", core.ErrNotConverged, err)
	}
	x := expand(result.Location.X)
	if !ratiosUsable(c, x) || result.Location.F >= invalidRatioVol {
		return [3]float64{}, fmt.Errorf("gearbox stage ratios: %w: no usable split of %.3f", core.ErrNotConverged, ratio)
	}
	return x, nil
}

// SizeGearbox sizes the gearbox from the surface durability of each stage.
func SizeGearbox(c GearConfiguration, shaft ShaftFactor, in GearboxInputs) (Gearbox, error) {
	kshaft, ok := shaft.factor()
	if !ok {
		return Gearbox{}, core.InvalidInput("shaftFactor", "must be normal or short, got %q", shaft)
	}
	kinds := stageKinds(c)
	if len(kinds) != 3 {
		return Gearbox{}, core.InvalidInput("gearConfiguration", "need three stages, got %q", c)
	}
	for i, k := range kinds {
		if k == stageEpicyclic && in.PlanetNumbers[i] < 1 {
			return Gearbox{}, core.InvalidInput("planetNumbers", "epicyclic stage %d needs planets", i+1)
		}
	}
	ratios, err := StageRatios(c, in.GearRatio, in.PlanetNumbers)
	if err != nil {
		return Gearbox{}, err
	}

	const (
		ka    = 0.6
		kunit = 8.029
	)
	kfact := 1100.0
	switch {
	case in.RotorTorque < 200.0:
		kfact = 850.0
	case in.RotorTorque < 700.0:
		kfact = 950.0
	}

	g := Gearbox{StageRatios: ratios}
	torque := in.RotorTorque
	for i := range ratios {
		torque /= ratios[i]
		g.StageMasses[i] = kunit * ka / kfact * torque * stageMass(ratios[i], in.PlanetNumbers[i], kinds[i])
		g.Mass += g.StageMasses[i]
	}
	g.Mass *= kshaft

	g.Length = 0.012 * in.RotorDiameter
	g.Height = 0.015 * in.RotorDiameter
	g.Diameter = 0.75 * g.Height
	g.CM = core.Vec3{in.InputCM, 0, 0.4 * g.Height}

	i0 := g.Mass*g.Diameter*g.Diameter/8 + (g.Mass/2)*g.Height*g.Height/8
	i1 := g.Mass * (0.5*g.Diameter*g.Diameter + 2.0/3.0*g.Length*g.Length + 0.25*g.Height*g.Height) / 8
	g.I = core.Inertia{i0, i1, i1}

	if err := core.CheckFinite("gearbox", "mass", g.Mass, "I", g.I); err != nil {
		return Gearbox{}, err
	}
	return g, nil
}
