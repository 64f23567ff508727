package optimizer

import "github.com/cheatbot1234/thrust-vector-forge/internal/model"

// ParetoFront filters the non-dominated trials on raw objective values. Only
// meaningful for multi-objective studies; single-objective callers should use
// the best-trial ranking instead. Failed trials never enter the front.
func ParetoFront(trials []model.Trial, objectives []model.ObjectiveSpec) []model.Trial {
	var front []model.Trial
	for i, candidate := range trials {
		if candidate.Error != "" {
			continue
		}
		dominated := false
		for j, other := range trials {
			if i == j || other.Error != "" {
				continue
			}
			if dominates(other, candidate, objectives) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, candidate)
		}
	}
	return front
}

// dominates reports whether a is at least as good as b on every objective and
// strictly better on at least one.
func dominates(a, b model.Trial, objectives []model.ObjectiveSpec) bool {
	strictlyBetter := false
	for _, obj := range objectives {
		av, bv := a.Values[obj.Name], b.Values[obj.Name]
		better, worse := av > bv, av < bv
		if obj.Minimize {
			better, worse = worse, better
		}
		if worse {
			return false
		}
		if better {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}
