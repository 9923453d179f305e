package drivetrain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/drivese/drivese/pkg/core"
)

// LowSpeedShaftInputs are the rotor loads and geometry the main shaft is sized against.
// Zero values for DistanceHub2MB, FlangeLength and the rotor moments select estimates.
type LowSpeedShaftInputs struct {
	RotorDiameter       float64
	RotorMass           float64
	RotorThrust         float64
	RotorForceY         float64
	RotorForceZ         float64
	RotorBendingMomentX float64
	RotorBendingMomentY float64
	RotorBendingMomentZ float64
	Overhang            float64
	MachineRating       float64
	GearboxMass         float64
	CarrierMass         float64
	GearboxCM           core.Vec3
	GearboxLength       float64
	ShrinkDiscMass      float64
	FlangeLength        float64
	DistanceHub2MB      float64
	ShaftAngle          float64
	ShaftRatio          float64
}

// LowSpeedShaft is a sized main shaft together with the bare bearings it seats.
// Bearing masses exclude housings.
type LowSpeedShaft struct {
	DesignTorque      float64      `json:"designTorque"`
	DesignBendingLoad float64      `json:"designBendingLoad"`
	Length            float64      `json:"length"`
	Diameter1         float64      `json:"diameter1"`
	Diameter2         float64      `json:"diameter2"`
	InnerDiameter     float64      `json:"innerDiameter"`
	Mass              float64      `json:"mass"`
	CM                core.Vec3    `json:"cm"`
	I                 core.Inertia `json:"I"`
	MB1Facewidth      float64      `json:"mb1Facewidth"`
	MB2Facewidth      float64      `json:"mb2Facewidth"`
	MB1Mass           float64      `json:"mb1Mass"`
	MB2Mass           float64      `json:"mb2Mass"`
	MB1CM             core.Vec3    `json:"mb1Cm"`
	MB2CM             core.Vec3    `json:"mb2Cm"`
}

// MassProps returns the shaft as a generic mass element.
func (l LowSpeedShaft) MassProps() core.MassProps {
	return core.MassProps{Mass: l.Mass, CM: l.CM, I: l.I}
}

// shaftSizer carries the state of the iterative shaft sizing between passes.
// Diameters from one pass seed the self weight of the next.
type shaftSizer struct {
	h        float64 // hub centre to main bearing
	density  float64
	cosSA    float64
	sinSA    float64
	lBG      float64 // main bearing to gearbox trunnions
	hGB      float64
	lGB      float64
	mx       float64
	my       float64
	mz       float64
	fy       float64
	fz       float64
	wRotor   float64
	wLSS     float64
	wGearbox float64
	wDisc    float64
	ratio    float64

	dMax, dMin, dMed, dIn float64

	slope      float64 // slope at the downwind end of the last evaluated span
	peakMoment float64
}

func newShaftSizer(in LowSpeedShaftInputs, density float64) *shaftSizer {
	return &shaftSizer{
		h:        in.DistanceHub2MB,
		density:  density,
		cosSA:    math.Cos(in.ShaftAngle),
		sinSA:    math.Sin(in.ShaftAngle),
		hGB:      1.0,
		mx:       in.RotorBendingMomentX,
		my:       in.RotorBendingMomentY,
		mz:       in.RotorBendingMomentZ,
		fy:       in.RotorForceY,
		fz:       in.RotorForceZ,
		wRotor:   in.RotorMass * gravity,
		wGearbox: in.GearboxMass * gravity,
		wDisc:    in.ShrinkDiscMass * gravity,
		ratio:    in.ShaftRatio,
		dMax:     1.0,
		dMin:     0.2,
	}
}

func span(from, to float64) []float64 {
	return floats.Span(make([]float64, samplePoints), from, to)
}

// sizeOverhung sizes a shaft supported by the main bearing and the gearbox trunnions,
// with lMS the length from the main bearing to the gearbox. hubSection adds the shaft
// section between hub and bearing to the self weight used for the slope.
func (s *shaftSizer) sizeOverhung(lMS float64, hubSection bool) {
	h := s.h
	lAS := lMS / 2.0

	s.wLSS = math.Pi / 3.0 * (s.dMax*s.dMax + s.dMin*s.dMin + s.dMax*s.dMin) * lMS * s.density * gravity / 4.0

	fMBy := s.mz/s.lBG - s.fy*(s.lBG+h)/s.lBG
	fMBz := (-s.my +
		s.wRotor*(s.cosSA*(h+s.lBG)+s.sinSA*s.hGB) +
		s.wLSS*s.cosSA*(s.lBG-lAS) +
		s.wDisc*s.cosSA*(s.lBG-lMS) -
		s.wGearbox*s.cosSA*s.lGB -
		s.fz*s.cosSA*(s.lBG+h)) / s.lBG

	moments := make([]float64, 0, 2*samplePoints)
	for _, x := range span(0, h) {
		my := -s.my + s.wRotor*s.cosSA*x + 0.5*s.wLSS/lMS*x*x - s.fz*x
		mz := -s.mz - s.fy*x
		moments = append(moments, math.Hypot(my, mz))
	}
	for _, x := range span(h, h+lMS) {
		my := -s.fz*x - s.my + s.wRotor*s.cosSA*x - fMBz*(x-h) + 0.5*s.wLSS/lMS*x*x
		mz := -s.mz - fMBy*(x-h) - s.fy*x
		moments = append(moments, math.Hypot(my, mz))
	}

	s.peakMoment = floats.Max(moments)
	s.dMax = ShaftDiameterFromMoment(s.peakMoment, s.mx)
	s.dMin = ShaftDiameterFromMoment(moments[len(moments)-1], s.mx)
	s.dIn = s.ratio * s.dMax
	s.dMax = hollow(s.dMax, s.dIn)
	s.dMin = hollow(s.dMin, s.dIn)

	w := math.Pi/12.0*lMS*(s.dMax*s.dMax+s.dMin*s.dMin+s.dMax*s.dMin) - math.Pi/4.0*s.dIn*s.dIn*lMS
	if hubSection {
		w += math.Pi / 4.0 * h * s.dMax * s.dMax
	}
	w *= gravity * s.density

	wr := s.wRotor * s.cosSA
	defl := func(z float64) float64 {
		return -s.fz*z*z*z/6.0 + wr*z*z*z/6.0 - s.my*z*z/2.0 -
			fMBz*math.Pow(z-h, 3)/6.0 + w/(lMS+h)/24.0*math.Pow(z, 4)
	}
	c1 := -(defl(h+lMS) - defl(h)) / lMS
	z := h + lMS
	slope := -s.fz*z*z/2.0 + wr*z*z/2.0 - s.my*z - fMBz*(z-h)*(z-h)/2.0 + w/(lMS+h)/6.0*z*z*z + c1

	i2 := math.Pi / 64.0 * (math.Pow(s.dMax, 4) - math.Pow(s.dIn, 4))
	s.slope = slope / shaftModulus / i2
}

// sizeTwoBearing sizes a shaft carried by two main bearings lMB apart, with lGB the
// length from the second bearing to the gearbox. The self weight is the one found by
// sizeOverhung.
func (s *shaftSizer) sizeTwoBearing(lMB, lGB float64) {
	h := s.h
	lAS := (lGB + lMB) / 2.0

	fMB2y := -s.mz/lMB + s.fy*h/lMB
	fMB2z := (s.my -
		s.wRotor*s.cosSA*h -
		s.wLSS*lAS*s.cosSA -
		s.wDisc*(lMB+shaftStartLength)*s.cosSA +
		s.wGearbox*s.cosSA*s.lGB +
		s.fz*s.cosSA*h) / lMB
	fMB1y := -s.fy - fMB2y
	fMB1z := (s.wRotor+s.wLSS+s.wDisc)*s.cosSA - s.fz - fMB2z

	spread := 0.5 * s.wLSS / (lMB + shaftStartLength)
	base := func(x float64) (float64, float64) {
		return -s.fz*x + s.wRotor*s.cosSA*x - s.my + spread*x*x, -s.mz - s.fy*x
	}

	moments := make([]float64, 0, 3*samplePoints)
	for _, x := range span(0, h) {
		my, mz := base(x)
		moments = append(moments, math.Hypot(my, mz))
	}
	for _, x := range span(h, h+lMB) {
		my, mz := base(x)
		my -= fMB1z * (x - h)
		mz -= fMB1y * (x - h)
		moments = append(moments, math.Hypot(my, mz))
	}
	for _, x := range span(h+lMB, h+lMB+lGB) {
		my, mz := base(x)
		my -= fMB1z*(x-h) + fMB2z*(x-h-lMB)
		mz -= fMB1y*(x-h) + fMB2y*(x-h-lMB)
		moments = append(moments, math.Hypot(my, mz))
	}

	n := len(moments)
	s.peakMoment = floats.Max(moments)
	s.dMax = ShaftDiameterFromMoment(s.peakMoment, s.mx)
	s.dMin = ShaftDiameterFromMoment(moments[n-1], s.mx)
	s.dMed = ShaftDiameterFromMoment(moments[n-1-samplePoints], s.mx)
	s.dIn = s.ratio * s.dMax
	s.dMax = hollow(s.dMax, s.dIn)
	s.dMin = hollow(s.dMin, s.dIn)
	s.dMed = hollow(s.dMed, s.dIn)

	w := (math.Pi/12.0*lMB*(s.dMax*s.dMax+s.dMed*s.dMed+s.dMax*s.dMed) -
		math.Pi/4.0*s.dIn*s.dIn*lMB) * gravity * s.density

	wr := s.wRotor * s.cosSA
	lw := shaftStartLength + lMB
	defl1 := func(z float64) float64 {
		return -s.fz*z*z*z/6.0 + wr*z*z*z/6.0 - s.my*z*z/2.0 -
			fMB1z*math.Pow(z-h, 3)/6.0 + w/lw/24.0*math.Pow(z, 4)
	}
	gx1 := func(z, c float64) float64 {
		return -s.fz*z*z/2.0 + wr*z*z/2.0 - s.my*z - fMB1z*(z-h)*(z-h)/2.0 + w/lw/6.0*z*z*z + c
	}
	gx2 := func(z float64) float64 {
		return -s.fz*z*z/2.0 + wr*z*z/2.0 - s.my*z - fMB1z*(z-h)*(z-h)/2.0 -
			fMB2z*(z-h-lMB)*(z-h-lMB)/2.0 + w/lw/6.0*z*z*z
	}
	c11 := -(defl1(h+lMB) - defl1(h)) / lMB
	c12 := gx1(h+lMB, c11) - gx2(h+lMB)

	i2 := math.Pi / 64.0 * (math.Pow(s.dMax, 4) - math.Pow(s.dIn, 4))
	s.slope = (gx2(h+lMB+lGB) + c12) / shaftModulus / i2
}

// applyShaftDefaults fills estimated values for inputs left at zero.
func applyShaftDefaults(in LowSpeedShaftInputs, estimateRotorMass bool) LowSpeedShaftInputs {
	if in.DistanceHub2MB == 0 {
		in.DistanceHub2MB = HubToMainBearingDistance(in.RotorDiameter)
	}
	if in.RotorMass > 0 && in.RotorBendingMomentY == 0 {
		in.RotorBendingMomentY = RotorBendingMy(in.RotorMass, in.DistanceHub2MB)
	}
	if in.RotorMass > 0 && in.RotorBendingMomentZ == 0 {
		in.RotorBendingMomentZ = RotorBendingMz(in.RotorMass, in.DistanceHub2MB)
	}
	if estimateRotorMass && in.RotorMass == 0 {
		in.RotorMass = RotorMassEstimate(in.MachineRating)
	}
	if in.FlangeLength == 0 {
		in.FlangeLength = defaultFlangeLength(in.RotorDiameter)
	}
	return in
}

// shaftRoom is the length available between the main bearing and the gearbox face.
func shaftRoom(in LowSpeedShaftInputs) (float64, error) {
	room := in.Overhang - in.DistanceHub2MB + (in.GearboxCM[0] - in.GearboxLength/2.0)
	if room <= 0 {
		return 0, core.InvalidInput("overhang", "no room for the shaft between hub and gearbox (%.3f m)", room)
	}
	return room, nil
}

// gearboxFace is the upwind face of the gearbox where the shaft ends.
func gearboxFace(in LowSpeedShaftInputs) core.Vec3 {
	return core.Vec3{in.GearboxCM[0] - in.GearboxLength/2.0, in.GearboxCM[1], in.GearboxCM[2]}
}

// alongShaft returns the point a distance d upwind of from along the tilted shaft.
func alongShaft(from core.Vec3, d, angle float64) core.Vec3 {
	return from.Add(core.Vec3{-d * math.Cos(angle), 0, d * math.Sin(angle)})
}

// finishShaft places the shaft, folds in the shrink disc and fills the inertia.
func finishShaft(l *LowSpeedShaft, in LowSpeedShaftInputs, outer float64) {
	face := gearboxFace(in)
	cm := alongShaft(face, 0.65*l.Length, in.ShaftAngle)
	total := l.Mass + in.ShrinkDiscMass
	l.CM = core.Vec3{
		(cm[0]*l.Mass + face[0]*in.ShrinkDiscMass) / total,
		cm[1],
		(cm[2]*l.Mass + face[2]*in.ShrinkDiscMass) / total,
	}
	l.Mass = total

	dd := l.InnerDiameter*l.InnerDiameter + outer*outer
	i0 := l.Mass * dd / 8.0
	i1 := l.Mass * (dd + 4.0/3.0*l.Length*l.Length) / 16.0
	l.I = core.Inertia{i0, i1, i1}
}

func (l LowSpeedShaft) check(name string) error {
	return core.CheckFinite(name,
		"mass", l.Mass, "length", l.Length, "diameter1", l.Diameter1, "diameter2", l.Diameter2,
		"cm", l.CM, "I", l.I, "mb1Mass", l.MB1Mass, "mb2Mass", l.MB2Mass)
}

// SizeLowSpeedShaft4pt sizes a main shaft carried on two main bearings. The first
// bearing is positioned until the shaft slope meets the mb1 misalignment limit, then
// the bearing spacing is grown until the slope at the second bearing meets the mb2 limit.
func SizeLowSpeedShaft4pt(in LowSpeedShaftInputs, mb1, mb2 BearingType) (LowSpeedShaft, error) {
	if !mb1.Valid() {
		return LowSpeedShaft{}, core.InvalidInput("mb1Type", "unknown bearing %q", mb1)
	}
	if !mb2.Valid() {
		return LowSpeedShaft{}, core.InvalidInput("mb2Type", "unknown bearing %q", mb2)
	}
	in = applyShaftDefaults(in, true)
	if in.DistanceHub2MB >= 6.11 {
		return LowSpeedShaft{}, core.InvalidInput("distanceHub2MB", "%.3f m leaves no bearing span", in.DistanceHub2MB)
	}
	room, err := shaftRoom(in)
	if err != nil {
		return LowSpeedShaft{}, err
	}

	s := newShaftSizer(in, shaftDensity4pt)
	s.lBG = 6.11 - s.h
	limit1 := BearingSlopeLimit(mb1)
	limit2 := BearingSlopeLimit(mb2)

	var lMS, next float64
	check := 1.0
	for math.Abs(check) > slopeTolerance && next < room {
		lMS = shaftStartLength
		if next > 0 {
			lMS = next
		}
		s.sizeOverhung(lMS, false)
		check = math.Abs(math.Abs(s.slope) - limit1)
		next = lMS + shaftStep
	}

	lMB0 := next
	var lMB, lMBNext, lGB float64
	checkMB := 1.0
	for math.Abs(checkMB) > slopeTolerance && lMBNext < room {
		lMB = lMB0
		if lMBNext > 0 {
			lMB = lMBNext
		}
		check = 1.0
		lGBNext := 0.0
		for pass := 0; math.Abs(check) > slopeTolerance && pass < 2; pass++ {
			lGB = shaftStartLength
			if lGBNext > 0 {
				lGB = lGBNext
			}
			s.sizeTwoBearing(lMB, lGB)
			check = math.Abs(math.Abs(s.slope) - limit1)
			lGBNext = lGB + gearboxSideStep
			checkMB = math.Abs(math.Abs(s.slope) - limit2)
			lMBNext = lMB + shaftStep
		}
	}

	d1, fw1, m1 := ResizeForBearing(s.dMax, mb1)
	d2, fw2, m2 := ResizeForBearing(s.dMed, mb2)
	din := s.dIn
	fw := (fw1 + fw2) / 2.0
	vol := math.Pi/3.0*(d1*d1+d2*d2+d1*d2)*(lMB-fw)/4.0 +
		math.Pi/4.0*(d1*d1-din*din)*fw1 +
		math.Pi/4.0*(d2*d2-din*din)*fw2 -
		math.Pi/4.0*din*din*(lMB+fw)

	face := gearboxFace(in)
	l := LowSpeedShaft{
		DesignTorque:      math.Abs(in.RotorBendingMomentX),
		DesignBendingLoad: s.peakMoment,
		Length:            lMBNext + fw + in.FlangeLength,
		Diameter1:         d1,
		Diameter2:         d2,
		InnerDiameter:     din,
		Mass:              vol * shaftDensity4pt * 1.33,
		MB1Facewidth:      fw1,
		MB2Facewidth:      fw2,
		MB1Mass:           m1,
		MB2Mass:           m2,
		MB1CM:             alongShaft(face, lMBNext+fw2/2.0, in.ShaftAngle),
		MB2CM:             alongShaft(face, fw2*0.5, in.ShaftAngle),
	}
	finishShaft(&l, in, s.dMax)
	if err := l.check("lss4pt"); err != nil {
		return LowSpeedShaft{}, err
	}
	return l, nil
}

// SizeLowSpeedShaft3pt sizes a main shaft carried on one main bearing with the gearbox
// trunnions as the second support. Without a rotor mass the rotor weight is left out of
// the bearing loads.
func SizeLowSpeedShaft3pt(in LowSpeedShaftInputs, mb1 BearingType) (LowSpeedShaft, error) {
	if !mb1.Valid() {
		return LowSpeedShaft{}, core.InvalidInput("mb1Type", "unknown bearing %q", mb1)
	}
	in = applyShaftDefaults(in, false)
	room, err := shaftRoom(in)
	if err != nil {
		return LowSpeedShaft{}, err
	}

	s := newShaftSizer(in, shaftDensity3pt)
	s.lBG = 6.11 * (in.MachineRating / 5.0e3)
	limit := BearingSlopeLimit(mb1)

	var lMS, next float64
	check := 1.0
	for math.Abs(check) > slopeTolerance && next < room {
		lMS = shaftStartLength
		if next > 0 {
			lMS = next
		}
		s.sizeOverhung(lMS, true)
		check = math.Abs(math.Abs(s.slope) - limit)
		next = lMS + shaftStep
	}

	d1, fwMax, m1 := ResizeForBearing(s.dMax, mb1)
	d2, fwMin, _ := ResizeForBearing(s.dMin, BearingSRB)
	din := s.dIn
	fw := (fwMax + fwMin) / 2.0
	vol := math.Pi/3.0*(d1*d1+d2*d2+d1*d2)*(lMS-fw)/4.0 +
		math.Pi/4.0*(d1*d1-din*din)*fwMax +
		math.Pi/4.0*(d2*d2-din*din)*fwMin -
		math.Pi/4.0*din*din*(lMS+fw)

	l := LowSpeedShaft{
		DesignTorque:      math.Abs(in.RotorBendingMomentX),
		DesignBendingLoad: s.peakMoment,
		Length:            next + fw + in.FlangeLength,
		Diameter1:         d1,
		Diameter2:         d2,
		InnerDiameter:     din,
		Mass:              vol * shaftDensity3pt * 1.35,
		MB1Facewidth:      fwMax,
		MB1Mass:           m1,
		MB1CM:             alongShaft(gearboxFace(in), lMS, in.ShaftAngle),
	}
	finishShaft(&l, in, d1)
	if err := l.check("lss3pt"); err != nil {
		return LowSpeedShaft{}, err
	}
	return l, nil
}

func (l LowSpeedShaft) String() string {
	return fmt.Sprintf("lss: len %.3f m d1 %.3f m d2 %.3f m mass %.1f kg", l.Length, l.Diameter1, l.Diameter2, l.Mass)
}
