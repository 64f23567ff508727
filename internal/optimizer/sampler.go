package optimizer

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// Points per axis when a grid range carries no step.
const defaultGridPoints = 10

// Sampler proposes the parameter set for a trial. Sample is called from the
// submitting goroutine only, never concurrently.
type Sampler interface {
	Name() string
	Sample(trial int) map[string]float64
}

// SamplerFromName resolves a configured sampler name.
func SamplerFromName(name string, parameters map[string]model.ParameterRange, seed int64) (Sampler, error) {
	switch name {
	case "", model.SamplerRandom:
		return NewRandomSampler(parameters, seed), nil
	case model.SamplerGrid:
		return NewGridSampler(parameters), nil
	default:
		return nil, fmt.Errorf("unsupported sampler: %s", name)
	}
}

// RandomSampler draws each free parameter uniformly from its range, snapping
// to the step lattice when one is configured.
type RandomSampler struct {
	names  []string
	ranges map[string]model.ParameterRange
	rng    *rand.Rand
}

func NewRandomSampler(parameters map[string]model.ParameterRange, seed int64) *RandomSampler {
	return &RandomSampler{
		names:  sortedParameterNames(parameters),
		ranges: parameters,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *RandomSampler) Name() string {
	return model.SamplerRandom
}

func (s *RandomSampler) Sample(_ int) map[string]float64 {
	params := make(map[string]float64, len(s.names))
	for _, name := range s.names {
		rng := s.ranges[name]
		if rng.Fixed {
			params[name] = rng.Value
			continue
		}
		value := rng.Min + s.rng.Float64()*(rng.Max-rng.Min)
		params[name] = quantize(value, rng)
	}
	return params
}

// GridSampler sweeps the cartesian lattice of stepped ranges in row-major
// order and wraps around when a study asks for more trials than the lattice
// holds.
type GridSampler struct {
	names []string
	axes  [][]float64
	size  int
}

func NewGridSampler(parameters map[string]model.ParameterRange) *GridSampler {
	names := sortedParameterNames(parameters)
	axes := make([][]float64, len(names))
	size := 1
	for i, name := range names {
		axes[i] = gridAxis(parameters[name])
		size *= len(axes[i])
	}
	return &GridSampler{names: names, axes: axes, size: size}
}

func (s *GridSampler) Name() string {
	return model.SamplerGrid
}

// Size reports the number of distinct lattice points.
func (s *GridSampler) Size() int {
	return s.size
}

func (s *GridSampler) Sample(trial int) map[string]float64 {
	index := trial % s.size
	params := make(map[string]float64, len(s.names))
	for i := len(s.names) - 1; i >= 0; i-- {
		axis := s.axes[i]
		params[s.names[i]] = axis[index%len(axis)]
		index /= len(axis)
	}
	return params
}

func gridAxis(rng model.ParameterRange) []float64 {
	if rng.Fixed {
		return []float64{rng.Value}
	}
	step := rng.Step
	if step <= 0 {
		step = (rng.Max - rng.Min) / (defaultGridPoints - 1)
	}
	if step <= 0 {
		return []float64{rng.Min}
	}
	axis := make([]float64, 0, int((rng.Max-rng.Min)/step)+1)
	for value := rng.Min; value <= rng.Max+step*1e-9; value += step {
		axis = append(axis, math.Min(value, rng.Max))
	}
	return axis
}

func quantize(value float64, rng model.ParameterRange) float64 {
	if rng.Step <= 0 {
		return value
	}
	snapped := rng.Min + math.Round((value-rng.Min)/rng.Step)*rng.Step
	if snapped > rng.Max {
		snapped = rng.Max
	}
	if snapped < rng.Min {
		snapped = rng.Min
	}
	return snapped
}

func sortedParameterNames(parameters map[string]model.ParameterRange) []string {
	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
