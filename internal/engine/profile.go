package engine

import (
	"math"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// Profiles holds the three axial series. Stations run fore to aft with
// strictly increasing x; the first sits at the injector face, the last at the
// nozzle exit plane.
type Profiles struct {
	Pressure    []model.ProfilePoint
	Temperature []model.ProfilePoint
	Velocity    []model.ProfilePoint
}

// GenerateProfiles samples the axial state at cfg.ProfileSamples equally
// spaced stations. Chamber stations follow the bounded loss model anchored at
// the chamber state and the sonic throat; nozzle stations reuse the isentropic
// relations of the nozzle stage at the local area ratio, so the final station
// reproduces the scalar exit pressure exactly. Profile values are ideal; the
// contour efficiency applies to scalar outputs only. Fewer than two samples
// fall back to the default station count.
func GenerateProfiles(n Normalized, comb CombustionState, noz NozzleState, cfg Config) (Profiles, error) {
	samples := cfg.ProfileSamples
	if samples < 2 {
		samples = defaultProfileSamples
	}
	g := comb.Gamma
	r := comb.GasConstant
	pc := n.ChamberPressure
	eps := n.ExpansionRatio
	total := n.ChamberLength + n.NozzleLength
	thetaT := 2 / (g + 1)

	out := Profiles{
		Pressure:    make([]model.ProfilePoint, 0, samples),
		Temperature: make([]model.ProfilePoint, 0, samples),
		Velocity:    make([]model.ProfilePoint, 0, samples),
	}

	for i := 0; i < samples; i++ {
		x := total * float64(i) / float64(samples-1)

		var p, t, v float64
		if x < n.ChamberLength {
			u := x / n.ChamberLength
			loss := cfg.ChamberLossMax * (1 - (1-u)*(1-u))
			p = pc * (1 - loss)
			t = comb.Temperature * (thetaT + (1-thetaT)*math.Sqrt(1-u))
			v = noz.ThroatVelocity * math.Sqrt(u)
		} else {
			u := (x - n.ChamberLength) / n.NozzleLength
			if u > 1 {
				u = 1
			}
			localEps := 1 + (eps-1)*u
			if n.Contour == model.ContourBell {
				localEps = 1 + (eps-1)*math.Pow(u, cfg.BellAreaExponent)
			}
			if i == samples-1 {
				// Pin the exit plane so the final station reproduces the
				// scalar exit state bit for bit.
				localEps = eps
			}
			mach, err := supersonicMach(localEps, g)
			if err != nil {
				return Profiles{}, err
			}
			pratio := math.Pow(1+(g-1)/2*mach*mach, -g/(g-1))
			tratio := math.Pow(pratio, (g-1)/g)
			p = pc * pratio
			t = comb.Temperature * tratio
			v = math.Sqrt(2 * g * r * comb.Temperature / (g - 1) * (1 - tratio))
		}

		out.Pressure = append(out.Pressure, model.ProfilePoint{X: x, Y: p})
		out.Temperature = append(out.Temperature, model.ProfilePoint{X: x, Y: t})
		out.Velocity = append(out.Velocity, model.ProfilePoint{X: x, Y: v})
	}
	return out, nil
}
