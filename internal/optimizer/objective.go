package optimizer

import (
	"fmt"
	"sort"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// PenaltyScore is the scalarized score assigned to failed trials.
const PenaltyScore = 1e10

type metricReader func(result model.PerformanceResult) float64

var metricReaders = map[string]metricReader{
	"thrust":                 func(r model.PerformanceResult) float64 { return r.Thrust },
	"specificImpulse":        func(r model.PerformanceResult) float64 { return r.SpecificImpulse },
	"massFlowRate":           func(r model.PerformanceResult) float64 { return r.MassFlowRate },
	"chamberTemperature":     func(r model.PerformanceResult) float64 { return r.ChamberTemperature },
	"exitPressure":           func(r model.PerformanceResult) float64 { return r.ExitPressure },
	"thrustCoefficient":      func(r model.PerformanceResult) float64 { return r.ThrustCoefficient },
	"characteristicVelocity": func(r model.PerformanceResult) float64 { return r.CharacteristicVel },
	"oxidizerMassFlux":       func(r model.PerformanceResult) float64 { return r.OxidizerMassFlux },
	"fuelMassFlow":           func(r model.PerformanceResult) float64 { return r.FuelMassFlow },
	"oxidizerMassFlow":       func(r model.PerformanceResult) float64 { return r.OxidizerMassFlow },
}

// Normalization keeps objectives with very different units comparable in the
// scalarized sum. Metrics without an entry contribute their raw value.
var objectiveScales = map[string]float64{
	"thrust":          1e5,
	"specificImpulse": 300,
	"massFlowRate":    10,
}

// SupportedObjectives lists the result metrics a study may optimize.
func SupportedObjectives() []string {
	names := make([]string, 0, len(metricReaders))
	for name := range metricReaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ObjectiveValues extracts the configured metrics from a result.
func ObjectiveValues(objectives []model.ObjectiveSpec, result model.PerformanceResult) (map[string]float64, error) {
	values := make(map[string]float64, len(objectives))
	for _, obj := range objectives {
		read, ok := metricReaders[obj.Name]
		if !ok {
			return nil, fmt.Errorf("unknown objective metric: %s", obj.Name)
		}
		values[obj.Name] = read(result)
	}
	return values, nil
}

// Scalarize folds objective values into one minimization target. Maximized
// metrics enter negated so lower is always better.
func Scalarize(objectives []model.ObjectiveSpec, values map[string]float64) float64 {
	score := 0.0
	for _, obj := range objectives {
		value := values[obj.Name]
		if scale, ok := objectiveScales[obj.Name]; ok {
			value /= scale
		}
		if obj.Minimize {
			score += value
		} else {
			score -= value
		}
	}
	return score
}
