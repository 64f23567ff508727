package engine

// Physical constants.
const (
	universalGasConstant = 8314.4621 // J/(kmol K)
	standardGravity      = 9.81      // m/s^2
)

// Default model configuration values. All of them are overridable through
// Config; none appear inline in the stages.
const (
	defaultAmbientPressure = 101325.0 // Pa, sea level
	defaultProfileSamples  = 50

	defaultChamberLossMax   = 0.15 // max fractional pressure loss along the chamber
	defaultBellAreaExponent = 0.8  // bell contour area growth exponent

	defaultDivergenceFactor  = 0.98 // thrust coefficient damping, contour independent
	defaultBellEfficiency    = 0.97 // exit velocity efficiency, bell contour
	defaultConicalEfficiency = 0.94 // exit velocity efficiency, conical contour
)
