package engine

import (
	"math"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// NozzleState is the output of the nozzle flow stage.
type NozzleState struct {
	ExitMach          float64
	ExitPressure      float64 // Pa, ideal isentropic
	ExitTemperature   float64 // K
	ExitVelocity      float64 // m/s, contour-efficiency scaled
	ThroatVelocity    float64 // m/s, sonic
	SpecificImpulse   float64 // s
	ThrustCoefficient float64 // divergence-damped
	Thrust            float64 // N
}

// ExpandNozzle solves the isentropic expansion through the supplied area
// ratio. Area ratio, not pressure ratio, is the known quantity, so the exit
// Mach number comes from inverting the area-Mach relation for the supersonic
// root. Degenerate geometries that admit no positive thrust solution fail
// with a ComputationError rather than propagating NaN.
func ExpandNozzle(n Normalized, comb CombustionState, cfg Config) (NozzleState, error) {
	g := comb.Gamma
	r := comb.GasConstant
	t := comb.Temperature
	pc := n.ChamberPressure
	eps := n.ExpansionRatio

	mach, err := supersonicMach(eps, g)
	if err != nil {
		return NozzleState{}, err
	}

	// Exit static state from the stagnation relations.
	pratio := math.Pow(1+(g-1)/2*mach*mach, -g/(g-1))
	pExit := pc * pratio
	tratio := math.Pow(pratio, (g-1)/g)

	expansion := 1 - tratio
	if expansion <= 0 {
		return NozzleState{}, &ComputationError{
			Stage:    "nozzle",
			Quantity: "exitVelocity",
			Reason:   "exit pressure does not fall below chamber pressure",
		}
	}

	vIdeal := math.Sqrt(2 * g * r * t / (g - 1) * expansion)
	eta := cfg.ConicalEfficiency
	if n.Contour == model.ContourBell {
		eta = cfg.BellEfficiency
	}
	vExit := vIdeal * eta

	cfSquared := 2 * g * g / (g - 1) *
		math.Pow(2/(g+1), (g+1)/(g-1)) *
		expansion
	if cfSquared < 0 {
		return NozzleState{}, &ComputationError{
			Stage:    "nozzle",
			Quantity: "thrustCoefficient",
			Reason:   "negative radicand in the momentum term",
		}
	}
	cf := math.Sqrt(cfSquared) + eps*(pExit-cfg.AmbientPressure)/pc
	if cf <= 0 {
		return NozzleState{}, &ComputationError{
			Stage:    "nozzle",
			Quantity: "thrustCoefficient",
			Reason:   "no positive thrust solution for this expansion against ambient",
		}
	}
	cfDamped := cf * cfg.DivergenceFactor

	return NozzleState{
		ExitMach:          mach,
		ExitPressure:      pExit,
		ExitTemperature:   t * tratio,
		ExitVelocity:      vExit,
		ThroatVelocity:    math.Sqrt(2 * g * r * t / (g + 1)),
		SpecificImpulse:   vExit / standardGravity,
		ThrustCoefficient: cfDamped,
		Thrust:            cfDamped * pc * n.ThroatArea,
	}, nil
}

// areaRatio is the isentropic area-Mach relation A/A*.
func areaRatio(mach, g float64) float64 {
	term := 2 / (g + 1) * (1 + (g-1)/2*mach*mach)
	return math.Pow(term, (g+1)/(2*(g-1))) / mach
}

// supersonicMach inverts the area-Mach relation for the supersonic branch by
// bisection. The relation is strictly increasing for mach > 1, so the root is
// unique; the bracket upper bound grows until it encloses the target.
func supersonicMach(eps, g float64) (float64, error) {
	if eps < 1 {
		return 0, &ComputationError{
			Stage:    "nozzle",
			Quantity: "exitMach",
			Reason:   "area ratio below 1 has no supersonic solution",
		}
	}
	if eps == 1 {
		return 1, nil
	}

	lo, hi := 1.0, 2.0
	for areaRatio(hi, g) < eps {
		hi *= 2
		if hi > 1e6 {
			return 0, &ComputationError{
				Stage:    "nozzle",
				Quantity: "exitMach",
				Reason:   "area ratio out of invertible range",
			}
		}
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if areaRatio(mid, g) < eps {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo <= 1e-12*hi {
			break
		}
	}
	return (lo + hi) / 2, nil
}
