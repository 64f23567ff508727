package optimizer

import (
	"reflect"
	"testing"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

func TestApplyParametersOverlaysDefaults(t *testing.T) {
	geom, op, err := ApplyParameters(map[string]float64{
		"chamberPressure":           15,
		"grain.length_mm":           400,
		"nozzle.throat_diameter_mm": 45,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if op.ChamberPressureMPa != 15 {
		t.Fatalf("chamber pressure not applied: %v", op.ChamberPressureMPa)
	}
	if geom.Grain.LengthMM != 400 {
		t.Fatalf("grain length not applied: %v", geom.Grain.LengthMM)
	}
	if geom.Nozzle.ThroatDiameterMM != 45 {
		t.Fatalf("throat diameter not applied: %v", geom.Nozzle.ThroatDiameterMM)
	}

	if op.MixtureRatio != 2.1 {
		t.Fatalf("untouched operating field changed: %v", op.MixtureRatio)
	}
	if geom.Nozzle.ExitDiameterMM != 200 {
		t.Fatalf("untouched geometry field changed: %v", geom.Nozzle.ExitDiameterMM)
	}
}

func TestApplyParametersRejectsUnknownName(t *testing.T) {
	_, _, err := ApplyParameters(map[string]float64{"grain.burn_rate": 1})
	if err == nil {
		t.Fatal("expected unknown parameter error")
	}
}

func TestEverySupportedParameterChangesTheInputs(t *testing.T) {
	defaultGeom := model.DefaultEngineGeometry()
	defaultOp := model.DefaultOperatingPoint()

	for _, name := range SupportedParameters() {
		geom, op, err := ApplyParameters(map[string]float64{name: 9999})
		if err != nil {
			t.Fatalf("apply %s: %v", name, err)
		}
		if reflect.DeepEqual(geom, defaultGeom) && reflect.DeepEqual(op, defaultOp) {
			t.Fatalf("parameter %s had no effect", name)
		}
	}
}
