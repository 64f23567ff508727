package engine

import (
	"math"

	"github.com/cheatbot1234/thrust-vector-forge/internal/propellant"
)

// RegressionState is the output of the regression-rate stage.
type RegressionState struct {
	FluxEstimate   float64 // kg/(m^2 s), pressure-derived proxy driving the law
	RegressionRate float64 // m/s
	FuelFlow       float64 // kg/s
	OxidizerFlow   float64 // kg/s
	TotalFlow      float64 // kg/s
	OxidizerFlux   float64 // kg/(m^2 s), recomputed from the oxidizer flow
}

// Regress applies the empirical regression law r = a*G^n. The flux feeding
// the law is a pressure-derived estimate over the port; the reported flux is
// recomputed from the resulting oxidizer flow, which is the physically
// meaningful value.
func Regress(n Normalized, p propellant.Profile) RegressionState {
	est := math.Sqrt(2 * p.OxidizerRefDensity * n.ChamberPressure / n.PortArea)
	rate := p.RegressionA * math.Pow(est, p.RegressionN)

	fuel := rate * n.BurnArea * p.FuelDensity
	ox := n.MixtureRatio * fuel

	return RegressionState{
		FluxEstimate:   est,
		RegressionRate: rate,
		FuelFlow:       fuel,
		OxidizerFlow:   ox,
		TotalFlow:      fuel + ox,
		OxidizerFlux:   ox / n.PortArea,
	}
}
