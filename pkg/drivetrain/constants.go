package drivetrain

const (
	gravity = 9.81 // m/s^2

	kNmToInLb = 8850.745454036  // 1 kN-m in lb-in
	inToM     = 0.0254000508001 // 1 in in m

	shaftYieldPsi    = 66000.0 // approximate tensile strength of shaft steel
	shaftSafety      = 2.5     // peak load safety factor
	shaftModulus     = 2.1e11  // Young's modulus of shaft steel, N/m^2
	shaftDensity4pt  = 7800.0
	shaftDensity3pt  = 7850.0
	shaftStartLength = 0.5  // shaft length downwind of the main bearing on the first pass
	shaftStep        = 0.05 // shaft lengthening per pass
	gearboxSideStep  = 0.0025
	slopeTolerance   = 1e-4
	samplePoints     = 101 // bending moment samples per shaft segment

	// Housing mass relative to the bare bearing.
	bearingHousingFactor = 8000.0 / 2700.0

	steelDensity   = 7800.0
	castDensity    = 7100.0
	steelModulus   = 210e9
	castModulus    = 169e9
	steelStressMax = 620e6
	castStressMax  = 200e6

	// bedplateMaxPasses bounds the beam growth loops.
	bedplateMaxPasses = 10000

	// Range of the turbines the empirical fits were built from: the 750 kW GRC
	// through multi-MW machines. Specific rating is rated power over swept area.
	minRotorDiameter    = 40.0  // m
	maxRotorDiameter    = 200.0 // m
	minSpecificRatingKW = 0.15  // kW/m^2
	maxSpecificRatingKW = 0.70  // kW/m^2
)
