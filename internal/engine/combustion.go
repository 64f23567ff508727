package engine

import (
	"math"

	"github.com/cheatbot1234/thrust-vector-forge/internal/propellant"
)

// CombustionState is the output of the combustion stage.
type CombustionState struct {
	TheoreticalTemp float64 // K, correlation output before efficiency
	Temperature     float64 // K, delivered chamber temperature
	Efficiency      float64 // combustion efficiency from L*
	Cstar           float64 // m/s, efficiency-scaled characteristic velocity
	Gamma           float64 // exhaust ratio of specific heats
	GasConstant     float64 // J/(kg K), specific
}

// Combust evaluates the chamber temperature correlation and the
// characteristic velocity. The correlation is unimodal in mixture ratio and
// monotonic in pressure; its output is clamped to the fit validity band, so
// the stage cannot fail on normalized input.
func Combust(n Normalized, p propellant.Profile) CombustionState {
	pcMPa := n.ChamberPressure / mpaToPa
	of := n.MixtureRatio

	theory := p.TBase +
		p.KPressure*math.Log(1+pcMPa) +
		p.KMixture*of -
		p.KMixtureQuad*(of-p.OFOpt)*(of-p.OFOpt)
	theory = math.Min(math.Max(theory, p.TMin), p.TMax)

	ratio := n.CharLength / p.LStarRef
	if ratio > 1 {
		ratio = 1
	}
	eff := p.EtaMin + (p.EtaMax-p.EtaMin)*ratio

	g := p.Gamma
	r := universalGasConstant / p.MolarMass
	// Standard closed form; the ideal value uses the theoretical temperature
	// so the efficiency enters exactly once.
	cstarIdeal := math.Sqrt(g*r*theory) / (g * math.Pow(2/(g+1), (g+1)/(2*(g-1))))

	return CombustionState{
		TheoreticalTemp: theory,
		Temperature:     theory * eff,
		Efficiency:      eff,
		Cstar:           cstarIdeal * eff,
		Gamma:           g,
		GasConstant:     r,
	}
}
