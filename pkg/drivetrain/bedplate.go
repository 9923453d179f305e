package drivetrain

import (
	"fmt"
	"math"

	"github.com/drivese/drivese/pkg/core"
)

// BedplateInputs are the loads the two bedplate sections carry. Locations are x
// positions of the component centres.
type BedplateInputs struct {
	GearboxLength       float64
	GearboxLocation     float64
	GearboxMass         float64
	HSSLocation         float64
	HSSMass             float64
	GeneratorLocation   float64
	GeneratorMass       float64
	LSSLocation         float64
	LSSMass             float64
	LSSLength           float64
	MB1CM               core.Vec3
	MB1Facewidth        float64
	MB1Mass             float64
	MB2CM               core.Vec3
	MB2Mass             float64
	TransformerMass     float64
	TransformerCM       core.Vec3
	TowerTopDiameter    float64
	RotorDiameter       float64
	MachineRating       float64
	RotorMass           float64
	RotorBendingMomentY float64
	RotorForceZ         float64
	FlangeLength        float64
	DistanceHub2MB      float64
}

// Bedplate is a pair of parallel I-beams, steel behind the tower and cast in front.
type Bedplate struct {
	Mass        float64      `json:"mass"`
	SteelMass   float64      `json:"steelMass"`
	CastMass    float64      `json:"castMass"`
	Length      float64      `json:"length"`
	FrontLength float64      `json:"frontLength"`
	RearLength  float64      `json:"rearLength"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	CM          core.Vec3    `json:"cm"`
	I           core.Inertia `json:"I"`
}

// MassProps returns the bedplate as a generic mass element.
func (b Bedplate) MassProps() core.MassProps {
	return core.MassProps{Mass: b.Mass, CM: b.CM, I: b.I}
}

// iBeam is the cross section of one bedplate beam.
type iBeam struct {
	tf, tw, h0, b0 float64
}

func startingBeam() iBeam {
	return iBeam{tf: 0.01905, tw: 0.0127, h0: 0.6096, b0: 0.6096 / 2.0}
}

func (b *iBeam) grow() {
	b.tf += 0.002
	b.tw += 0.002
	b.b0 += 0.006
	b.h0 += 0.006
}

func (b iBeam) section() (inertia, area float64) {
	bi := (b.b0 - b.tw) / 2.0
	hi := b.h0 - 2.0*b.tf
	inertia = b.b0*math.Pow(b.h0, 3)/12.0 - 2*bi*math.Pow(hi, 3)/12.0
	area = b.b0*b.h0 - 2.0*bi*hi
	return inertia, area
}

// pointDeflection is the tip deflection of a cantilever of length l loaded with p at a.
func pointDeflection(l, a, p, e, i float64) float64 {
	return p * a * a * (3.0*l - a) / (6.0 * e * i)
}

// distributedDeflection is the tip deflection of a cantilever under its own weight w per m.
func distributedDeflection(l, w, e, i float64) float64 {
	return w * math.Pow(l, 4) / (8.0 * e * i)
}

type pointLoad struct {
	at, force float64
}

// beamResponse holds the root stress, tip deflection and mass of both beams.
type beamResponse struct {
	stress, deflection, mass float64
}

// sizeBeam grows the section until the root stress and tip deflection meet the limits.
// evaluate is called with the current section and returns its response.
func sizeBeam(name string, length, stressMax float64, evaluate func(iBeam) beamResponse) (iBeam, beamResponse, error) {
	const (
		deflDenom  = 1500.0
		stressTol  = 5e5
		deflTol    = 1e-4
		stressMult = 8.0
	)
	beam := startingBeam()
	resp := beamResponse{stress: 250e6, deflection: 1.0}
	deflMax := length / deflDenom
	for pass := 0; resp.stress*stressMult-stressMax > stressTol || resp.deflection-deflMax > deflTol; pass++ {
		if pass >= bedplateMaxPasses {
			return beam, resp, fmt.Errorf("bedplate %s section: %w after %d passes", name, core.ErrNotConverged, pass)
		}
		resp = evaluate(beam)
		beam.grow()
	}
	return beam, resp, nil
}

// SizeBedplate sizes the rear steel and front cast bedplate sections.
func SizeBedplate(in BedplateInputs) (Bedplate, error) {
	hub2mb := in.DistanceHub2MB
	if hub2mb <= 0 {
		hub2mb = HubToMainBearingDistance(in.RotorDiameter)
	}

	var transLoc, convMass float64
	if in.TransformerMass > 0 {
		transLoc = in.TransformerCM[0]
		convMass = 0.3 * in.TransformerMass
	} else {
		convMass = (2.4445*in.MachineRating + 1599.0) * 0.3
	}
	convLoc := in.GeneratorLocation * 2.0

	mb1x := math.Abs(in.MB1CM[0])
	var rear float64
	if transLoc > 0 {
		rear = transLoc * 1.1
	} else {
		rear = in.GeneratorLocation*4.237/2.886 - in.TowerTopDiameter/2.0
	}
	front := mb1x + in.MB1Facewidth/2.0
	if rear <= 0 || front <= 0 {
		return Bedplate{}, core.InvalidInput("bedplate", "section lengths must be positive (rear %.3f m, front %.3f m)", rear, front)
	}
	rotorLoc := mb1x + hub2mb

	rotorFz := math.Abs(in.RotorForceZ)
	rotorMy := math.Abs(in.RotorBendingMomentY)
	if in.RotorMass > 0 && rotorMy == 0 {
		rotorMy = RotorBendingMy(in.RotorMass, hub2mb)
	}
	if rotorFz == 0 && in.RotorMass > 0 {
		rotorFz = in.RotorMass * gravity
	}

	// The rear section carries the gearbox only when it has a location.
	gbLoc, gbMass := in.GearboxLocation, in.GearboxMass
	if gbLoc == 0 {
		gbMass = 0
	}
	rearLoads := []pointLoad{
		{in.HSSLocation, in.HSSMass * gravity / 2},
		{in.GeneratorLocation, in.GeneratorMass * gravity / 2},
		{convLoc, convMass * gravity / 2},
		{transLoc, in.TransformerMass * gravity / 2},
		{gbLoc, gbMass * gravity / 2},
	}
	rearBeam, rearResp, err := sizeBeam("rear", rear, steelStressMax, func(b iBeam) beamResponse {
		i, a := b.section()
		w := a * steelDensity
		defl := distributedDeflection(rear, w*gravity, steelModulus, i)
		for _, p := range rearLoads {
			defl += pointDeflection(rear, p.at, p.force, steelModulus, i)
		}
		moment := (in.HSSLocation*in.HSSMass +
			in.GeneratorLocation*in.GeneratorMass +
			convLoc*convMass +
			transLoc*in.TransformerMass +
			w*rear*rear/2.0) * gravity
		return beamResponse{
			stress:     moment * b.h0 / (2.0 * i),
			deflection: defl,
			mass:       2.0 * a * rear * steelDensity,
		}
	})
	if err != nil {
		return Bedplate{}, err
	}

	// A gearbox upwind of the tower axis loads the front section instead.
	if in.GearboxLocation < 0 {
		gbLoc, gbMass = math.Abs(in.GearboxLocation), in.GearboxMass
	} else {
		gbLoc, gbMass = 0, 0
	}
	lssLoc := math.Abs(in.LSSLocation)
	frontLoads := []pointLoad{
		{gbLoc, gbMass * gravity / 2},
		{in.MB1CM[0], in.MB1Mass * gravity / 2},
		{in.MB2CM[0], in.MB2Mass * gravity / 2},
		{lssLoc, in.LSSMass * gravity / 2},
		{rotorLoc, in.RotorMass * gravity / 2},
		{rotorLoc, rotorFz / 2},
	}
	frontBeam, frontResp, err := sizeBeam("front", front, castStressMax, func(b iBeam) beamResponse {
		i, a := b.section()
		w := a * castDensity
		defl := distributedDeflection(front, w*gravity, castModulus, i) +
			rotorMy/2.0*front*front/(2.0*castModulus*i)
		for _, p := range frontLoads {
			defl += pointDeflection(front, p.at, p.force, castModulus, i)
		}
		moment := (in.MB1CM[0]*in.MB1Mass/2.0+
			in.MB2CM[0]*in.MB2Mass/2.0+
			lssLoc*in.LSSMass/2.0+
			w*front*front/2.0+
			rotorLoc*in.RotorMass/2.0)*gravity +
			rotorLoc*rotorFz/2.0 +
			rotorMy/2.0
		return beamResponse{
			stress:     moment * b.h0 / 2 / i,
			deflection: defl,
			mass:       2.0 * a * front * castDensity,
		}
	})
	if err != nil {
		return Bedplate{}, err
	}

	support := 1.1 + 5e13*math.Pow(in.RotorDiameter, -8)
	bp := Bedplate{
		SteelMass:   rearResp.mass * support,
		CastMass:    frontResp.mass * support,
		FrontLength: front,
		RearLength:  rear,
		Length:      front + rear,
		Width:       frontBeam.b0 + in.TowerTopDiameter,
		Height:      math.Max(frontBeam.h0, rearBeam.h0),
	}
	bp.Mass = bp.SteelMass + bp.CastMass
	bp.CM = core.Vec3{(bp.SteelMass*rear/2 - bp.CastMass*front/2) / bp.Mass, 0, -bp.Height / 2}

	depth := bp.Length / 2.0
	i0 := bp.Mass * (bp.Width*bp.Width + depth*depth) / 8
	i1 := bp.Mass * (depth*depth + bp.Width*bp.Width + 4.0/3.0*bp.Length*bp.Length) / 16
	bp.I = core.Inertia{i0, i1, i1}

	if err := core.CheckFinite("bedplate", "mass", bp.Mass, "cm", bp.CM, "I", bp.I); err != nil {
		return Bedplate{}, err
	}
	return bp, nil
}
