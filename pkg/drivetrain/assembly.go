package drivetrain

import (
	"fmt"
	"math"

	"github.com/drivese/drivese/pkg/core"
)

// Layout selects the main shaft arrangement.
type Layout string

const (
	// Layout4pt carries the shaft on two main bearings.
	Layout4pt Layout = "4pt"
	// Layout3pt carries the shaft on one main bearing and the gearbox trunnions.
	Layout3pt Layout = "3pt"
)

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == Layout4pt || l == Layout3pt
}

// Assembly returns the run assembly name for the layout.
func (l Layout) Assembly() core.Assembly {
	if l == Layout3pt {
		return core.AssemblyDrive3pt
	}
	return core.AssemblyDrive4pt
}

// Config selects component variants for a drivetrain.
type Config struct {
	GearConfiguration  GearConfiguration `json:"gearConfiguration" validate:"required,oneof=eep eep_2 eep_3 epp"`
	ShaftFactor        ShaftFactor       `json:"shaftFactor" validate:"required,oneof=normal short"`
	MB1Type            BearingType       `json:"mb1Type" validate:"required,oneof=CARB SRB TRB1 TRB2 CRB RB"`
	MB2Type            BearingType       `json:"mb2Type,omitempty" validate:"omitempty,oneof=CARB SRB TRB1 TRB2 CRB RB"`
	IECClass           string            `json:"iecClass,omitempty" validate:"omitempty,oneof=A B C"`
	DrivetrainDesign   GeneratorDesign   `json:"drivetrainDesign" validate:"required,oneof=geared single_stage multi_drive pm_direct_drive multi pm_direct"`
	UptowerTransformer bool              `json:"uptowerTransformer"`
	Crane              bool              `json:"crane"`
	YawMotors          int               `json:"yawMotors" validate:"gte=0"`
}

// Inputs are the rotor loads and turbine geometry for one drivetrain evaluation.
// Angles are in rad, ratings in kW, loads in N and N-m.
type Inputs struct {
	RotorDiameter        float64 `json:"rotorDiameter" validate:"gt=0"`
	RotorSpeed           float64 `json:"rotorSpeed" validate:"gte=0"`
	MachineRating        float64 `json:"machineRating" validate:"gt=0"`
	DrivetrainEfficiency float64 `json:"drivetrainEfficiency" validate:"gte=0,lte=1"`
	RotorTorque          float64 `json:"rotorTorque" validate:"gt=0"`
	RotorMass            float64 `json:"rotorMass" validate:"gte=0"`
	RotorThrust          float64 `json:"rotorThrust"`
	RotorForceY          float64 `json:"rotorForceY"`
	RotorForceZ          float64 `json:"rotorForceZ"`
	RotorBendingMomentX  float64 `json:"rotorBendingMomentX"`
	RotorBendingMomentY  float64 `json:"rotorBendingMomentY"`
	RotorBendingMomentZ  float64 `json:"rotorBendingMomentZ"`
	GearRatio            float64 `json:"gearRatio" validate:"gt=1"`
	PlanetNumbers        [3]int  `json:"planetNumbers" validate:"dive,gte=0"`
	ShaftAngle           float64 `json:"shaftAngle" validate:"gte=0,lt=1.5707963"`
	ShaftRatio           float64 `json:"shaftRatio" validate:"gte=0,lt=1"`
	ShrinkDiscMass       float64 `json:"shrinkDiscMass" validate:"gte=0"`
	CarrierMass          float64 `json:"carrierMass" validate:"gte=0"`
	FlangeLength         float64 `json:"flangeLength" validate:"gte=0"`
	Overhang             float64 `json:"overhang" validate:"gt=0"`
	DistanceHub2MB       float64 `json:"distanceHub2MB" validate:"gte=0"`
	GearboxInputCM       float64 `json:"gearboxInputCm"`
	HSSInputLength       float64 `json:"hssInputLength" validate:"gte=0"`
	TowerTopDiameter     float64 `json:"towerTopDiameter" validate:"gt=0"`
}

// Validate checks the configuration and inputs for a layout.
func Validate(layout Layout, cfg Config, in Inputs) error {
	if !layout.Valid() {
		return core.InvalidInput("layout", "must be 3pt or 4pt, got %q", layout)
	}
	if err := core.Validate(cfg); err != nil {
		return err
	}
	if layout == Layout4pt && cfg.MB2Type == "" {
		return core.InvalidInput("mb2Type", "required for the 4pt layout")
	}
	if err := core.Validate(in); err != nil {
		return err
	}
	return checkEmpiricalRange(in)
}

// checkEmpiricalRange rejects rotors the mass fits were not built for. Outside this
// range the bedplate support multiplier grows as D^-8 and dominates the nacelle.
func checkEmpiricalRange(in Inputs) error {
	if in.RotorDiameter < minRotorDiameter || in.RotorDiameter > maxRotorDiameter {
		return core.InvalidInput("rotorDiameter", "%.1f m outside the empirical range [%.0f, %.0f] m",
			in.RotorDiameter, minRotorDiameter, maxRotorDiameter)
	}
	area := math.Pi * in.RotorDiameter * in.RotorDiameter / 4
	if specific := in.MachineRating / area; specific < minSpecificRatingKW || specific > maxSpecificRatingKW {
		return core.InvalidInput("machineRating", "%.0f W/m^2 over the swept area outside the empirical range [%.0f, %.0f] W/m^2",
			specific*1000, minSpecificRatingKW*1000, maxSpecificRatingKW*1000)
	}
	return nil
}

// Result holds every sized component of one drivetrain evaluation.
type Result struct {
	Layout        Layout        `json:"layout"`
	Gearbox       Gearbox       `json:"gearbox"`
	LowSpeedShaft LowSpeedShaft `json:"lowSpeedShaft"`
	MainBearing   Bearing       `json:"mainBearing"`
	SecondBearing Bearing       `json:"secondBearing"`
	HighSpeedSide HighSpeedSide `json:"highSpeedSide"`
	Generator     Generator     `json:"generator"`
	RNA           RNA           `json:"rna"`
	Transformer   Transformer   `json:"transformer"`
	Bedplate      Bedplate      `json:"bedplate"`
	AboveYaw      AboveYaw      `json:"aboveYaw"`
	YawSystem     YawSystem     `json:"yawSystem"`
	Nacelle       Nacelle       `json:"nacelle"`
}

// Assemble4pt sizes a drivetrain with two main bearings.
func Assemble4pt(cfg Config, in Inputs) (*Result, error) {
	return Assemble(Layout4pt, cfg, in)
}

// Assemble3pt sizes a drivetrain with one main bearing.
func Assemble3pt(cfg Config, in Inputs) (*Result, error) {
	return Assemble(Layout3pt, cfg, in)
}

// Assemble evaluates the drivetrain components once in dependency order:
// gearbox, shaft, bearings, high speed side, generator, RNA, transformer, bedplate,
// above-yaw adders, yaw system and nacelle.
func Assemble(layout Layout, cfg Config, in Inputs) (*Result, error) {
	if err := Validate(layout, cfg, in); err != nil {
		return nil, err
	}
	r := &Result{Layout: layout}

	gb, err := SizeGearbox(cfg.GearConfiguration, cfg.ShaftFactor, GearboxInputs{
		GearRatio:     in.GearRatio,
		PlanetNumbers: in.PlanetNumbers,
		RotorSpeed:    in.RotorSpeed,
		RotorDiameter: in.RotorDiameter,
		RotorTorque:   in.RotorTorque,
		InputCM:       in.GearboxInputCM,
	})
	if err != nil {
		return nil, fmt.Errorf("gearbox: %w", err)
	}
	r.Gearbox = gb

	shaftIn := LowSpeedShaftInputs{
		RotorDiameter:       in.RotorDiameter,
		RotorMass:           in.RotorMass,
		RotorThrust:         in.RotorThrust,
		RotorForceY:         in.RotorForceY,
		RotorForceZ:         in.RotorForceZ,
		RotorBendingMomentX: in.RotorBendingMomentX,
		RotorBendingMomentY: in.RotorBendingMomentY,
		RotorBendingMomentZ: in.RotorBendingMomentZ,
		Overhang:            in.Overhang,
		MachineRating:       in.MachineRating,
		GearboxMass:         gb.Mass,
		CarrierMass:         in.CarrierMass,
		GearboxCM:           gb.CM,
		GearboxLength:       gb.Length,
		ShrinkDiscMass:      in.ShrinkDiscMass,
		FlangeLength:        in.FlangeLength,
		DistanceHub2MB:      in.DistanceHub2MB,
		ShaftAngle:          in.ShaftAngle,
		ShaftRatio:          in.ShaftRatio,
	}
	if layout == Layout4pt {
		r.LowSpeedShaft, err = SizeLowSpeedShaft4pt(shaftIn, cfg.MB1Type, cfg.MB2Type)
	} else {
		r.LowSpeedShaft, err = SizeLowSpeedShaft3pt(shaftIn, cfg.MB1Type)
	}
	if err != nil {
		return nil, fmt.Errorf("low speed shaft: %w", err)
	}
	lss := r.LowSpeedShaft

	r.MainBearing = SizeMainBearing(lss.MB1Mass, lss.Diameter1, in.RotorDiameter, lss.MB1CM)
	r.SecondBearing = SizeSecondBearing(lss.MB2Mass, lss.Diameter2, lss.MB2CM)
	r.HighSpeedSide = SizeHighSpeedSide(in.RotorDiameter, in.RotorTorque, in.GearRatio, lss.Diameter1, gb, in.HSSInputLength)

	r.Generator, err = SizeGenerator(cfg.DrivetrainDesign, in.RotorDiameter, in.MachineRating, in.GearRatio, r.HighSpeedSide, in.RotorSpeed)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	r.RNA = SizeRNA(RNAInputs{
		RotorMass:     in.RotorMass,
		MachineRating: in.MachineRating,
		Overhang:      in.Overhang,
		LSS:           lss.MassProps(),
		MB1:           r.MainBearing.MassProps(),
		MB2:           r.SecondBearing.MassProps(),
		Gearbox:       gb.MassProps(),
		HSS:           r.HighSpeedSide.MassProps(),
		Generator:     r.Generator.MassProps(),
	})
	r.Transformer = SizeTransformer(cfg.UptowerTransformer, in.MachineRating, in.TowerTopDiameter, in.RotorDiameter, r.Generator, r.RNA)

	r.Bedplate, err = SizeBedplate(BedplateInputs{
		GearboxLength:       gb.Length,
		GearboxLocation:     gb.CM[0],
		GearboxMass:         gb.Mass,
		HSSLocation:         r.HighSpeedSide.CM[0],
		HSSMass:             r.HighSpeedSide.Mass,
		GeneratorLocation:   r.Generator.CM[0],
		GeneratorMass:       r.Generator.Mass,
		LSSLocation:         lss.CM[0],
		LSSMass:             lss.Mass,
		LSSLength:           lss.Length,
		MB1CM:               r.MainBearing.CM,
		MB1Facewidth:        lss.MB1Facewidth,
		MB1Mass:             r.MainBearing.Mass,
		MB2CM:               r.SecondBearing.CM,
		MB2Mass:             r.SecondBearing.Mass,
		TransformerMass:     r.Transformer.Mass,
		TransformerCM:       r.Transformer.CM,
		TowerTopDiameter:    in.TowerTopDiameter,
		RotorDiameter:       in.RotorDiameter,
		MachineRating:       in.MachineRating,
		RotorMass:           in.RotorMass,
		RotorBendingMomentY: in.RotorBendingMomentY,
		RotorForceZ:         in.RotorForceZ,
		FlangeLength:        in.FlangeLength,
		DistanceHub2MB:      in.DistanceHub2MB,
	})
	if err != nil {
		return nil, fmt.Errorf("bedplate: %w", err)
	}

	r.AboveYaw = SizeAboveYaw(AboveYawInputs{
		MachineRating:   in.MachineRating,
		Crane:           cfg.Crane,
		LSSMass:         lss.Mass,
		MB1Mass:         r.MainBearing.Mass,
		MB2Mass:         r.SecondBearing.Mass,
		GearboxMass:     gb.Mass,
		HSSMass:         r.HighSpeedSide.Mass,
		GeneratorMass:   r.Generator.Mass,
		BedplateMass:    r.Bedplate.Mass,
		BedplateLength:  r.Bedplate.Length,
		BedplateWidth:   r.Bedplate.Width,
		TransformerMass: r.Transformer.Mass,
	})
	r.YawSystem = SizeYawSystem(cfg.YawMotors, in.RotorDiameter, in.TowerTopDiameter, r.Bedplate.Height)

	r.Nacelle = SizeNacelle(NacelleInputs{
		AboveYawMass:  r.AboveYaw.Mass,
		MainframeMass: r.AboveYaw.MainframeMass,
		Yaw:           r.YawSystem.MassProps(),
		LSS:           lss.MassProps(),
		MB1:           r.MainBearing.MassProps(),
		MB2:           r.SecondBearing.MassProps(),
		Gearbox:       gb.MassProps(),
		HSS:           r.HighSpeedSide.MassProps(),
		Generator:     r.Generator.MassProps(),
		Transformer:   r.Transformer.MassProps(),
		Bedplate:      r.Bedplate.MassProps(),
	})

	if err := core.CheckFinite("nacelle", "mass", r.Nacelle.Mass, "cm", r.Nacelle.CM, "I", r.Nacelle.I); err != nil {
		return nil, err
	}
	return r, nil
}

// Components breaks the nacelle mass down into rows that sum to the nacelle mass.
// Costs are left at zero.
func (r *Result) Components() []core.ComponentResult {
	rows := []core.ComponentResult{
		{Name: "lss", Mass: r.LowSpeedShaft.Mass, CM: r.LowSpeedShaft.CM, Length: r.LowSpeedShaft.Length},
		{Name: "main_bearing", Mass: r.MainBearing.Mass, CM: r.MainBearing.CM},
	}
	if r.SecondBearing.Mass > 0 {
		rows = append(rows, core.ComponentResult{Name: "second_bearing", Mass: r.SecondBearing.Mass, CM: r.SecondBearing.CM})
	}
	rows = append(rows,
		core.ComponentResult{Name: "gearbox", Mass: r.Gearbox.Mass, CM: r.Gearbox.CM, Length: r.Gearbox.Length, Height: r.Gearbox.Height},
		core.ComponentResult{Name: "hss", Mass: r.HighSpeedSide.Mass, CM: r.HighSpeedSide.CM, Length: r.HighSpeedSide.Length},
		core.ComponentResult{Name: "generator", Mass: r.Generator.Mass, CM: r.Generator.CM, Length: r.Generator.Length, Width: r.Generator.Width},
	)
	if r.Transformer.Mass > 0 {
		rows = append(rows, core.ComponentResult{Name: "transformer", Mass: r.Transformer.Mass, CM: r.Transformer.CM,
			Length: r.Transformer.Length, Height: r.Transformer.Height, Width: r.Transformer.Width})
	}
	rows = append(rows,
		core.ComponentResult{Name: "bedplate", Mass: r.Bedplate.Mass, CM: r.Bedplate.CM,
			Length: r.Bedplate.Length, Height: r.Bedplate.Height, Width: r.Bedplate.Width},
		core.ComponentResult{Name: "platforms", Mass: r.AboveYaw.PlatformsMass, CM: r.Bedplate.CM},
		core.ComponentResult{Name: "crane", Mass: r.AboveYaw.CraneMass},
		core.ComponentResult{Name: "hvac", Mass: r.AboveYaw.HVACMass},
		core.ComponentResult{Name: "cover", Mass: r.AboveYaw.CoverMass,
			Length: r.AboveYaw.Length, Height: r.AboveYaw.Height, Width: r.AboveYaw.Width},
		core.ComponentResult{Name: "yaw", Mass: r.YawSystem.Mass, CM: r.YawSystem.CM},
	)
	return rows
}
