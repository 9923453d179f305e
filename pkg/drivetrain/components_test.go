package drivetrain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivese/drivese/pkg/core"
)

func TestResizeForBearing(t *testing.T) {
	tests := []struct {
		bearing   BearingType
		facewidth float64
		mass      float64
	}{
		{BearingCARB, 0.2663 + 0.0435, 1561.4},
		{BearingSRB, 0.2762, 876.7},
		{BearingTRB1, 0.0740, 92.863},
		{BearingCRB, 0.1136, 304.19},
		{BearingTRB2, 0.1499, 543.01},
		{BearingRB, 0.0839, 229.47},
	}
	for _, tt := range tests {
		t.Run(string(tt.bearing), func(t *testing.T) {
			d, fw, m := ResizeForBearing(1.0, tt.bearing)
			assert.Equal(t, 1.0, d)
			assert.InDelta(t, tt.facewidth, fw, 1e-12)
			assert.InDelta(t, tt.mass, m, 1e-9)
		})
	}

	_, fw, m := ResizeForBearing(1.0, BearingType("XYZ"))
	assert.Zero(t, fw)
	assert.Zero(t, m)
}

func TestBearingSlopeLimit(t *testing.T) {
	assert.InDelta(t, 0.078, BearingSlopeLimit(BearingSRB), 1e-12)
	assert.InDelta(t, 0.5*math.Pi/180, BearingSlopeLimit(BearingCARB), 1e-12)
	assert.Greater(t, BearingSlopeLimit(BearingCRB), BearingSlopeLimit(BearingTRB1))
	assert.Zero(t, BearingSlopeLimit(BearingType("")))
}

func TestSizeBearings(t *testing.T) {
	mb := SizeMainBearing(100, 0.8, 126, core.Vec3{-1.5, 0, 0.3})
	assert.InDelta(t, 100*(1+8000.0/2700.0), mb.Mass, 1e-9)
	assert.Equal(t, core.Vec3{-1.5, 0, 0.3}, mb.CM)
	assert.InDelta(t, mb.Mass*0.64/4, mb.I[0], 1e-9)
	assert.InDelta(t, mb.I[0]/2, mb.I[1], 1e-9)

	placed := SizeMainBearing(100, 0.8, 100, core.Vec3{})
	assert.InDelta(t, -3.5, placed.CM[0], 1e-12)
	assert.InDelta(t, 2.5, placed.CM[2], 1e-12)

	assert.Equal(t, Bearing{}, SizeSecondBearing(0, 0.8, core.Vec3{-1, 0, 0}))
	assert.Equal(t, Bearing{}, SizeSecondBearing(100, 0.8, core.Vec3{}))
	assert.Positive(t, SizeSecondBearing(100, 0.8, core.Vec3{-1, 0, 0}).Mass)
}

func TestStageRatios(t *testing.T) {
	tests := []struct {
		config  GearConfiguration
		ratio   float64
		planets [3]int
	}{
		{GearEEP, 96.76, [3]int{3, 3, 1}},
		{GearEPP, 78.0, [3]int{3, 1, 1}},
		{GearEEP2, 97.0, [3]int{3, 3, 1}},
		{GearEEP3, 97.0, [3]int{3, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.config), func(t *testing.T) {
			x, err := StageRatios(tt.config, tt.ratio, tt.planets)
			require.NoError(t, err)
			assert.InDelta(t, tt.ratio, x[0]*x[1]*x[2], 1e-6*tt.ratio)
			assert.Greater(t, x[0], 2.0)
			assert.Positive(t, x[2])
			if tt.config == GearEEP3 {
				assert.Equal(t, 3.0, x[2])
			}
		})
	}

	_, err := StageRatios(GearConfiguration("ppp"), 50, [3]int{1, 1, 1})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestSizeGearbox(t *testing.T) {
	in := GearboxInputs{
		GearRatio:     96.76,
		PlanetNumbers: [3]int{3, 3, 1},
		RotorSpeed:    12.1,
		RotorDiameter: 126.0,
		RotorTorque:   ratedTorque(5000, 0.95, 12.1),
		InputCM:       0.1,
	}
	normal, err := SizeGearbox(GearEEP, ShaftNormal, in)
	require.NoError(t, err)
	short, err := SizeGearbox(GearEEP, ShaftShort, in)
	require.NoError(t, err)

	assert.Positive(t, normal.Mass)
	assert.InDelta(t, normal.Mass*1.25, short.Mass, 1e-6*short.Mass)
	assert.InDelta(t, normal.StageMasses[0]+normal.StageMasses[1]+normal.StageMasses[2], normal.Mass, 1e-6*normal.Mass)
	assert.InDelta(t, 0.012*126.0, normal.Length, 1e-12)
	assert.InDelta(t, 0.1, normal.CM[0], 1e-12)
	assert.InDelta(t, 0.4*normal.Height, normal.CM[2], 1e-12)

	_, err = SizeGearbox(GearEEP, ShaftFactor("long"), in)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	in.PlanetNumbers = [3]int{0, 3, 1}
	_, err = SizeGearbox(GearEEP, ShaftNormal, in)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestSizeGenerator(t *testing.T) {
	hss := HighSpeedSide{CM: core.Vec3{2, 0, 1}, Length: 1.5}
	g, err := SizeGenerator(GeneratorGeared, 126, 5000, 96.76, hss, 12.1)
	require.NoError(t, err)
	assert.Positive(t, g.Mass)
	assert.InDelta(t, 2+0.75+g.Length/2, g.CM[0], 1e-12)

	alias, err := SizeGenerator(GeneratorDesign("multi"), 126, 5000, 96.76, hss, 12.1)
	require.NoError(t, err)
	multi, err := SizeGenerator(GeneratorMultiDrive, 126, 5000, 96.76, hss, 12.1)
	require.NoError(t, err)
	assert.Equal(t, multi, alias)

	_, err = SizeGenerator(GeneratorDesign("steam"), 126, 5000, 96.76, hss, 12.1)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestSizeYawSystem(t *testing.T) {
	assert.Equal(t, 4, SizeYawSystem(0, 77, 2.3, 1).Motors)
	assert.Equal(t, 6, SizeYawSystem(0, 100, 3, 1).Motors)
	assert.Equal(t, 8, SizeYawSystem(0, 126, 3.78, 1).Motors)
	assert.Equal(t, 2, SizeYawSystem(2, 126, 3.78, 1).Motors)

	y := SizeYawSystem(0, 126, 3.78, 1.2)
	plate := math.Pi * 3.78 * 0.378 * 0.126 * 8000
	assert.InDelta(t, plate+8*190, y.Mass, 1e-6)
	assert.Equal(t, core.Vec3{0, 0, -1.2}, y.CM)
}

func TestSizeTransformer(t *testing.T) {
	gen := Generator{CM: core.Vec3{3, 0, 1.5}}
	assert.Equal(t, Transformer{}, SizeTransformer(false, 5000, 3.78, 126, gen, RNA{Mass: 1e5, CMX: -3}))

	tr := SizeTransformer(true, 5000, 3.78, 126, gen, RNA{Mass: 1e5, CMX: 0})
	assert.InDelta(t, 2.4445*5000+1599, tr.Mass, 1e-9)
	assert.InDelta(t, 3+1.8*0.015*126, tr.CM[0], 1e-12)
	assert.InDelta(t, 1.0, tr.CM[2], 1e-12)
	assert.InDelta(t, 4.28, tr.Width, 1e-12)
}

func TestSizeRNAEstimatesRotorMass(t *testing.T) {
	r := SizeRNA(RNAInputs{MachineRating: 5000, Overhang: 5})
	assert.InDelta(t, RotorMassEstimate(5000), r.Mass, 1e-9)
	assert.InDelta(t, -5, r.CMX, 1e-12)
}

func TestSizeBeamGivesUp(t *testing.T) {
	_, _, err := sizeBeam("rear", 5, steelStressMax, func(iBeam) beamResponse {
		return beamResponse{stress: 1e12, deflection: 1}
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotConverged))
}

func TestSizeBedplateRejectsEmptySections(t *testing.T) {
	_, err := SizeBedplate(BedplateInputs{
		GeneratorLocation: 0.5,
		TowerTopDiameter:  3.78,
		RotorDiameter:     126,
		MachineRating:     5000,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestShaftRoom(t *testing.T) {
	in := LowSpeedShaftInputs{Overhang: 2, DistanceHub2MB: 1.9, GearboxCM: core.Vec3{0.1, 0, 0}, GearboxLength: 1.5}
	_, err := shaftRoom(in)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	in.Overhang = 5
	room, err := shaftRoom(in)
	require.NoError(t, err)
	assert.InDelta(t, 5-1.9+0.1-0.75, room, 1e-12)
}

func TestSizeLowSpeedShaft4ptRejectsLongHub(t *testing.T) {
	_, in, err := Preset("5mw", Layout4pt)
	require.NoError(t, err)
	shaft := LowSpeedShaftInputs{
		RotorDiameter:  in.RotorDiameter,
		Overhang:       in.Overhang,
		MachineRating:  in.MachineRating,
		GearboxLength:  1.5,
		DistanceHub2MB: 6.2,
	}
	_, err = SizeLowSpeedShaft4pt(shaft, BearingCARB, BearingSRB)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, err = SizeLowSpeedShaft4pt(shaft, BearingType("XX"), BearingSRB)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestSizeAboveYaw(t *testing.T) {
	a := SizeAboveYaw(AboveYawInputs{
		MachineRating:  5000,
		Crane:          true,
		BedplateMass:   40000,
		BedplateLength: 10,
		BedplateWidth:  4,
		GearboxMass:    50000,
	})
	assert.InDelta(t, 400, a.HVACMass, 1e-9)
	assert.InDelta(t, 5000, a.PlatformsMass, 1e-9)
	assert.InDelta(t, 3000, a.CraneMass, 1e-9)
	assert.InDelta(t, 48000, a.MainframeMass, 1e-9)
	assert.InDelta(t, 8410, a.CoverMass, 1e-9)
	assert.InDelta(t, 50000+48000+400+8410, a.Mass, 1e-6)
	assert.InDelta(t, 20.0/3.0, a.Height, 1e-12)

	assert.Zero(t, SizeAboveYaw(AboveYawInputs{BedplateMass: 1}).CraneMass)
}

func TestSizeNacelleSinglePart(t *testing.T) {
	n := SizeNacelle(NacelleInputs{
		AboveYawMass: 100,
		Gearbox:      core.MassProps{Mass: 100, CM: core.Vec3{2, 0, 1}, I: core.Inertia{1, 2, 3}},
	})
	assert.InDelta(t, 100, n.Mass, 1e-12)
	assert.Equal(t, core.Vec3{2, 0, 1}, n.CM)
	assert.Equal(t, core.Tensor6{1, 2, 3, 0, 0, 0}, n.I)
}
