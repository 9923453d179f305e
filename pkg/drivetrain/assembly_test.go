package drivetrain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivese/drivese/pkg/core"
)

func assemblePreset(t *testing.T, name string, layout Layout) *Result {
	t.Helper()
	cfg, in, err := Preset(name, layout)
	require.NoError(t, err)
	r, err := Assemble(layout, cfg, in)
	require.NoError(t, err, "%s %s", name, layout)
	return r
}

func TestAssemblePresets(t *testing.T) {
	for _, name := range PresetNames() {
		for _, layout := range []Layout{Layout3pt, Layout4pt} {
			t.Run(name+"/"+string(layout), func(t *testing.T) {
				r := assemblePreset(t, name, layout)

				for _, c := range r.Components() {
					assert.True(t, core.Finite(c.Mass), c.Name)
					assert.GreaterOrEqual(t, c.Mass, 0.0, c.Name)
					assert.True(t, c.CM.IsFinite(), c.Name)
				}
				assert.Positive(t, r.LowSpeedShaft.Mass)
				assert.Positive(t, r.LowSpeedShaft.Length)
				assert.Positive(t, r.Gearbox.Mass)
				assert.Positive(t, r.Bedplate.Mass)
				assert.Positive(t, r.Nacelle.Mass)
				assert.True(t, r.Nacelle.CM.IsFinite())
				for _, v := range r.Nacelle.I {
					assert.True(t, core.Finite(v))
				}
				assert.GreaterOrEqual(t, r.LowSpeedShaft.Diameter1, r.LowSpeedShaft.InnerDiameter)

				if layout == Layout3pt {
					assert.Zero(t, r.SecondBearing.Mass)
				} else {
					assert.Positive(t, r.SecondBearing.Mass)
				}
			})
		}
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	first := assemblePreset(t, "5mw", Layout4pt)
	second := assemblePreset(t, "5mw", Layout4pt)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated assembly differs (-first +second):\n%s", diff)
	}
}

func TestLayoutDoesNotChangeUnrelatedComponents(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			three := assemblePreset(t, name, Layout3pt)
			four := assemblePreset(t, name, Layout4pt)

			assert.Equal(t, three.Gearbox, four.Gearbox)
			assert.Equal(t, three.Generator.Mass, four.Generator.Mass)
			assert.Equal(t, three.Generator.CM, four.Generator.CM)
			assert.Equal(t, three.YawSystem.Motors, four.YawSystem.Motors)
			assert.NotEqual(t, three.LowSpeedShaft.Mass, four.LowSpeedShaft.Mass)
		})
	}
}

// Reference masses for the NREL 5 MW machine: gearbox eep at 96.76 with planets
// 3/3/1, geared generator at 5000 kW.
func TestReferenceMasses5MW(t *testing.T) {
	torque := ratedTorque(5000, 0.95, 12.1)
	require.InDelta(t, 6230511.0388, torque, 1e-3)

	gb, err := SizeGearbox(GearEEP, ShaftNormal, GearboxInputs{
		GearRatio:     96.76,
		PlanetNumbers: [3]int{3, 3, 1},
		RotorSpeed:    12.1,
		RotorDiameter: 126,
		RotorTorque:   torque,
	})
	require.NoError(t, err)
	assert.InEpsilon(t, 58594.49, gb.Mass, 1e-3)
	assert.InEpsilon(t, 3.958, gb.StageRatios[0], 1e-2)
	assert.InEpsilon(t, 6.186, gb.StageRatios[1], 1e-2)
	assert.InEpsilon(t, 3.952, gb.StageRatios[2], 1e-2)

	hss := SizeHighSpeedSide(126, 61020.46893707*96.76, 96.76, 0.5, gb, 0)
	assert.InDelta(t, 2288.26758514, hss.Mass, 1e-6)

	gen, err := SizeGenerator(GeneratorGeared, 126, 5000, 96.76, hss, 12.1)
	require.NoError(t, err)
	assert.InDelta(t, 16699.851325, gen.Mass, 1e-5)

	for _, layout := range []Layout{Layout3pt, Layout4pt} {
		r := assemblePreset(t, "5mw", layout)
		assert.InEpsilon(t, 58594.49, r.Gearbox.Mass, 1e-3, string(layout))
		assert.InDelta(t, 16699.851325, r.Generator.Mass, 1e-5, string(layout))
		assert.InDelta(t, 2414.6772, r.HighSpeedSide.Mass, 1e-3, string(layout))
	}
}

func TestComponentsSumToNacelle(t *testing.T) {
	for _, layout := range []Layout{Layout3pt, Layout4pt} {
		r := assemblePreset(t, "5mw", layout)
		var total float64
		names := map[string]bool{}
		for _, c := range r.Components() {
			total += c.Mass
			names[c.Name] = true
		}
		assert.InDelta(t, r.Nacelle.Mass, total, 1e-6*r.Nacelle.Mass, string(layout))
		assert.True(t, names["transformer"])
		assert.True(t, names["crane"])
	}
}

func TestNoTransformerWhenDownTower(t *testing.T) {
	r := assemblePreset(t, "750kw", Layout4pt)
	assert.Equal(t, Transformer{}, r.Transformer)
	assert.Zero(t, r.AboveYaw.CraneMass)
	for _, c := range r.Components() {
		assert.NotEqual(t, "transformer", c.Name)
	}
}

func TestAssembleRejectsBadInputs(t *testing.T) {
	cfg, in, err := Preset("5mw", Layout4pt)
	require.NoError(t, err)

	tests := []struct {
		name   string
		layout Layout
		mutate func(*Config, *Inputs)
	}{
		{"unknown layout", Layout("5pt"), func(*Config, *Inputs) {}},
		{"zero diameter", Layout4pt, func(_ *Config, in *Inputs) { in.RotorDiameter = 0 }},
		{"one metre rotor", Layout4pt, func(_ *Config, in *Inputs) { in.RotorDiameter = 1 }},
		{"twenty metre rotor", Layout4pt, func(_ *Config, in *Inputs) { in.RotorDiameter = 20 }},
		{"twenty metre rotor 3pt", Layout3pt, func(_ *Config, in *Inputs) { in.RotorDiameter = 20 }},
		{"oversized rotor", Layout4pt, func(_ *Config, in *Inputs) { in.RotorDiameter = 240 }},
		{"rating too high for rotor", Layout4pt, func(_ *Config, in *Inputs) { in.RotorDiameter = 60 }},
		{"rating too low for rotor", Layout3pt, func(_ *Config, in *Inputs) { in.MachineRating = 1000 }},
		{"negative rotor mass", Layout4pt, func(_ *Config, in *Inputs) { in.RotorMass = -1 }},
		{"efficiency above one", Layout4pt, func(_ *Config, in *Inputs) { in.DrivetrainEfficiency = 1.2 }},
		{"gear ratio of one", Layout4pt, func(_ *Config, in *Inputs) { in.GearRatio = 1 }},
		{"vertical shaft", Layout4pt, func(_ *Config, in *Inputs) { in.ShaftAngle = 1.6 }},
		{"unknown gear configuration", Layout4pt, func(c *Config, _ *Inputs) { c.GearConfiguration = "ppp" }},
		{"unknown bearing", Layout4pt, func(c *Config, _ *Inputs) { c.MB1Type = "BALL" }},
		{"missing second bearing", Layout4pt, func(c *Config, _ *Inputs) { c.MB2Type = "" }},
		{"unknown generator", Layout4pt, func(c *Config, _ *Inputs) { c.DrivetrainDesign = "steam" }},
		{"no room for shaft", Layout3pt, func(_ *Config, in *Inputs) { in.Overhang = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, i := cfg, in
			tt.mutate(&c, &i)
			r, err := Assemble(tt.layout, c, i)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidInput), err.Error())
		})
	}
}

func TestValidateEmpiricalRange(t *testing.T) {
	for _, name := range PresetNames() {
		_, in, err := Preset(name, Layout4pt)
		require.NoError(t, err)
		assert.NoError(t, checkEmpiricalRange(in), name)
	}

	_, in, err := Preset("5mw", Layout4pt)
	require.NoError(t, err)

	in.RotorDiameter = 20
	err = checkEmpiricalRange(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rotorDiameter")

	in.RotorDiameter = 80
	err = checkEmpiricalRange(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "machineRating")
}

func TestPreset(t *testing.T) {
	assert.Equal(t, []string{"1.5mw", "5mw", "750kw"}, PresetNames())

	_, three, err := Preset("1.5mw", Layout3pt)
	require.NoError(t, err)
	_, four, err := Preset("1.5mw", Layout4pt)
	require.NoError(t, err)
	assert.Equal(t, 3.3, three.Overhang)
	assert.Equal(t, 4.0, four.Overhang)

	cfg, in, err := Preset("5mw", Layout4pt)
	require.NoError(t, err)
	assert.Equal(t, BearingCARB, cfg.MB1Type)
	assert.InDelta(t, 1666.5, in.ShrinkDiscMass, 1e-9)

	_, _, err = Preset("10mw", Layout4pt)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestLayoutAssembly(t *testing.T) {
	assert.Equal(t, core.AssemblyDrive3pt, Layout3pt.Assembly())
	assert.Equal(t, core.AssemblyDrive4pt, Layout4pt.Assembly())
}
