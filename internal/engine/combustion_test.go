package engine

import (
	"testing"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/propellant"
)

// normalizeRef normalizes the reference engine with an optional mutation.
func normalizeRef(t *testing.T, mutate func(*model.EngineGeometry, *model.OperatingPoint)) Normalized {
	t.Helper()
	geom := model.DefaultEngineGeometry()
	op := model.DefaultOperatingPoint()
	if mutate != nil {
		mutate(&geom, &op)
	}
	n, err := Normalize(geom, op)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return n
}

func combustAt(t *testing.T, of, pcMPa float64) CombustionState {
	t.Helper()
	n := normalizeRef(t, func(_ *model.EngineGeometry, op *model.OperatingPoint) {
		op.MixtureRatio = of
		op.ChamberPressureMPa = pcMPa
	})
	return Combust(n, propellant.Default())
}

func TestCombustTemperatureIsUnimodalInMixtureRatio(t *testing.T) {
	p := propellant.Default()
	peakOF := p.OFOpt + p.KMixture/(2*p.KMixtureQuad)

	peak := combustAt(t, peakOF, 10)
	below := combustAt(t, 1.5, 10)
	nearBelow := combustAt(t, 2.1, 10)
	nearAbove := combustAt(t, 2.8, 10)
	above := combustAt(t, 3.5, 10)

	if !(below.TheoreticalTemp < nearBelow.TheoreticalTemp && nearBelow.TheoreticalTemp < peak.TheoreticalTemp) {
		t.Fatalf("temperature must rise toward the optimum: %g, %g, %g",
			below.TheoreticalTemp, nearBelow.TheoreticalTemp, peak.TheoreticalTemp)
	}
	if !(peak.TheoreticalTemp > nearAbove.TheoreticalTemp && nearAbove.TheoreticalTemp > above.TheoreticalTemp) {
		t.Fatalf("temperature must fall beyond the optimum: %g, %g, %g",
			peak.TheoreticalTemp, nearAbove.TheoreticalTemp, above.TheoreticalTemp)
	}
}

func TestCombustTemperatureRisesWithPressure(t *testing.T) {
	low := combustAt(t, 2.1, 5)
	mid := combustAt(t, 2.1, 10)
	high := combustAt(t, 2.1, 20)

	if !(low.TheoreticalTemp < mid.TheoreticalTemp && mid.TheoreticalTemp < high.TheoreticalTemp) {
		t.Fatalf("temperature must rise with pressure: %g, %g, %g",
			low.TheoreticalTemp, mid.TheoreticalTemp, high.TheoreticalTemp)
	}
}

func TestCombustClampsToFitValidityBand(t *testing.T) {
	p := propellant.Default()

	cold := combustAt(t, 50, 10) // quadratic term dominates far from the optimum
	if cold.TheoreticalTemp != p.TMin {
		t.Fatalf("far off-optimum temperature = %g, want clamped to %g", cold.TheoreticalTemp, p.TMin)
	}

	for _, of := range []float64{0.5, 1, 2.1, 2.4, 4, 10, 50} {
		st := combustAt(t, of, 10)
		if st.TheoreticalTemp < p.TMin || st.TheoreticalTemp > p.TMax {
			t.Fatalf("O/F %g: temperature %g escapes [%g, %g]", of, st.TheoreticalTemp, p.TMin, p.TMax)
		}
	}
}

func TestCombustEfficiencyFollowsCharacteristicLength(t *testing.T) {
	p := propellant.Default()

	ref := Combust(normalizeRef(t, nil), p)
	if ref.Efficiency < p.EtaMin || ref.Efficiency > p.EtaMax {
		t.Fatalf("efficiency %g escapes [%g, %g]", ref.Efficiency, p.EtaMin, p.EtaMax)
	}

	big := Combust(normalizeRef(t, func(g *model.EngineGeometry, _ *model.OperatingPoint) {
		g.Chamber.FreeVolumeCC = 1e6 // drives L* far past the reference
	}), p)
	if big.Efficiency != p.EtaMax {
		t.Fatalf("saturated efficiency = %g, want %g", big.Efficiency, p.EtaMax)
	}

	small := Combust(normalizeRef(t, func(g *model.EngineGeometry, _ *model.OperatingPoint) {
		g.Chamber.FreeVolumeCC = 100
	}), p)
	if small.Efficiency >= ref.Efficiency {
		t.Fatalf("shorter L* must lower efficiency: %g vs %g", small.Efficiency, ref.Efficiency)
	}

	if ref.Temperature != ref.TheoreticalTemp*ref.Efficiency {
		t.Fatalf("delivered temperature %g must equal theory %g times efficiency %g",
			ref.Temperature, ref.TheoreticalTemp, ref.Efficiency)
	}
}

func TestCombustCharacteristicVelocityIsPlausible(t *testing.T) {
	st := Combust(normalizeRef(t, nil), propellant.Default())
	if st.Cstar < 1200 || st.Cstar > 1800 {
		t.Fatalf("characteristic velocity %g m/s outside the plausible band", st.Cstar)
	}
}
