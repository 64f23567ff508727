package optimizer

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// refine polishes the best sampled point with a bounded Nelder-Mead pass.
// Every evaluation is appended as a regular trial so the polish leaves the
// same audit trail as sampling. Evaluations run off the step lattice; only
// the range bounds are enforced.
func (r *Runner) refine(ctx context.Context, cfg model.StudyConfig, best model.Trial, firstNumber int) []model.Trial {
	var names []string
	for _, name := range sortedParameterNames(cfg.Parameters) {
		if cfg.Parameters[name].Fixed {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}

	x0 := make([]float64, len(names))
	for i, name := range names {
		rng := cfg.Parameters[name]
		x0[i] = clamp(best.Params[name], rng.Min, rng.Max)
	}

	var refined []model.Trial
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return PenaltyScore
			}
			params := cloneParams(best.Params)
			for i, name := range names {
				rng := cfg.Parameters[name]
				params[name] = clamp(x[i], rng.Min, rng.Max)
			}
			trial := r.runTrial(ctx, cfg, firstNumber+len(refined), params)
			refined = append(refined, trial)
			return trial.Score
		},
	}

	settings := &optimize.Settings{FuncEvaluations: cfg.RefineIters}
	if _, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{}); err != nil {
		log.WithFields(log.Fields{"error": err}).Debug("refinement stopped before convergence")
	}
	return refined
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
