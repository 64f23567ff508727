package optimizer

import (
	"math"
	"testing"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

func TestRandomSamplerRespectsBoundsAndStep(t *testing.T) {
	parameters := map[string]model.ParameterRange{
		"chamberPressure": {Min: 5, Max: 20, Step: 0.5},
		"mixtureRatio":    {Min: 1.5, Max: 3},
	}
	sampler := NewRandomSampler(parameters, 42)

	for i := 0; i < 200; i++ {
		params := sampler.Sample(i)
		pc := params["chamberPressure"]
		if pc < 5 || pc > 20 {
			t.Fatalf("chamberPressure out of range at trial %d: %v", i, pc)
		}
		steps := (pc - 5) / 0.5
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			t.Fatalf("chamberPressure off the step lattice at trial %d: %v", i, pc)
		}
		of := params["mixtureRatio"]
		if of < 1.5 || of > 3 {
			t.Fatalf("mixtureRatio out of range at trial %d: %v", i, of)
		}
	}
}

func TestRandomSamplerPinsFixedParameters(t *testing.T) {
	parameters := map[string]model.ParameterRange{
		"chamberPressure": {Min: 5, Max: 20, Fixed: true, Value: 12},
		"mixtureRatio":    {Min: 1.5, Max: 3},
	}
	sampler := NewRandomSampler(parameters, 1)

	for i := 0; i < 20; i++ {
		if got := sampler.Sample(i)["chamberPressure"]; got != 12 {
			t.Fatalf("fixed parameter drifted at trial %d: %v", i, got)
		}
	}
}

func TestRandomSamplerDeterministicForSeed(t *testing.T) {
	parameters := map[string]model.ParameterRange{
		"chamberPressure": {Min: 5, Max: 20},
		"mixtureRatio":    {Min: 1.5, Max: 3},
	}
	first := NewRandomSampler(parameters, 99)
	second := NewRandomSampler(parameters, 99)

	for i := 0; i < 20; i++ {
		a, b := first.Sample(i), second.Sample(i)
		if a["chamberPressure"] != b["chamberPressure"] || a["mixtureRatio"] != b["mixtureRatio"] {
			t.Fatalf("same seed diverged at trial %d: %v vs %v", i, a, b)
		}
	}

	other := NewRandomSampler(parameters, 100)
	diverged := false
	base := NewRandomSampler(parameters, 99)
	for i := 0; i < 20; i++ {
		if base.Sample(i)["chamberPressure"] != other.Sample(i)["chamberPressure"] {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Fatal("different seeds produced identical draws")
	}
}

func TestGridSamplerSweepsLatticeAndWraps(t *testing.T) {
	parameters := map[string]model.ParameterRange{
		"a": {Min: 0, Max: 1, Step: 1},
		"b": {Min: 10, Max: 30, Step: 10},
	}
	sampler := NewGridSampler(parameters)
	if sampler.Size() != 6 {
		t.Fatalf("expected lattice of 6 points, got %d", sampler.Size())
	}

	want := []map[string]float64{
		{"a": 0, "b": 10},
		{"a": 0, "b": 20},
		{"a": 0, "b": 30},
		{"a": 1, "b": 10},
		{"a": 1, "b": 20},
		{"a": 1, "b": 30},
	}
	for i, expected := range want {
		got := sampler.Sample(i)
		if got["a"] != expected["a"] || got["b"] != expected["b"] {
			t.Fatalf("trial %d: got %v want %v", i, got, expected)
		}
	}

	wrapped := sampler.Sample(6)
	if wrapped["a"] != 0 || wrapped["b"] != 10 {
		t.Fatalf("expected trial 6 to wrap to lattice origin, got %v", wrapped)
	}
}

func TestGridSamplerDefaultsUnsteppedAxes(t *testing.T) {
	sampler := NewGridSampler(map[string]model.ParameterRange{
		"chamberPressure": {Min: 5, Max: 20},
	})
	if sampler.Size() != defaultGridPoints {
		t.Fatalf("expected %d points for an unstepped axis, got %d", defaultGridPoints, sampler.Size())
	}
	if first := sampler.Sample(0)["chamberPressure"]; first != 5 {
		t.Fatalf("expected axis to start at min, got %v", first)
	}
	last := sampler.Sample(defaultGridPoints - 1)["chamberPressure"]
	if math.Abs(last-20) > 1e-9 {
		t.Fatalf("expected axis to end at max, got %v", last)
	}
}

func TestSamplerFromName(t *testing.T) {
	parameters := map[string]model.ParameterRange{"chamberPressure": {Min: 5, Max: 20}}

	random, err := SamplerFromName("", parameters, 1)
	if err != nil {
		t.Fatalf("default sampler: %v", err)
	}
	if random.Name() != model.SamplerRandom {
		t.Fatalf("expected random default, got %s", random.Name())
	}

	grid, err := SamplerFromName(model.SamplerGrid, parameters, 1)
	if err != nil {
		t.Fatalf("grid sampler: %v", err)
	}
	if grid.Name() != model.SamplerGrid {
		t.Fatalf("expected grid sampler, got %s", grid.Name())
	}

	if _, err := SamplerFromName("annealing", parameters, 1); err == nil {
		t.Fatal("expected unsupported sampler error")
	}
}
