package optimizer

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// Importance needs enough completed trials to say anything useful.
const minImportanceTrials = 10

// ComputeImportance attributes score variation to parameters using the
// squared Pearson correlation between each parameter's sampled values and the
// trial scores, normalized to sum to one. Returns nil when fewer than ten
// trials completed or no parameter shows any correlation.
func ComputeImportance(trials []model.Trial, names []string) map[string]float64 {
	scores := make([]float64, 0, len(trials))
	byName := make(map[string][]float64, len(names))
	for _, trial := range trials {
		if trial.Error != "" {
			continue
		}
		scores = append(scores, trial.Score)
		for _, name := range names {
			byName[name] = append(byName[name], trial.Params[name])
		}
	}
	if len(scores) < minImportanceTrials {
		return nil
	}

	squared := make(map[string]float64, len(names))
	total := 0.0
	for _, name := range names {
		r := stat.Correlation(byName[name], scores, nil)
		if math.IsNaN(r) {
			r = 0
		}
		squared[name] = r * r
		total += r * r
	}
	if total == 0 {
		return nil
	}

	importance := make(map[string]float64, len(names))
	for _, name := range names {
		importance[name] = squared[name] / total
	}
	return importance
}
