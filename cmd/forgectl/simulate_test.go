package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

func TestLoadSimulationRequestDefaults(t *testing.T) {
	req, err := loadSimulationRequest("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Geometry != model.DefaultEngineGeometry() {
		t.Fatalf("expected default geometry, got %+v", req.Geometry)
	}
	if req.Operating != model.DefaultOperatingPoint() {
		t.Fatalf("expected default operating point, got %+v", req.Operating)
	}
}

func TestLoadSimulationRequestPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	content := `{"operating": {"chamberPressure": 12.5}, "propellant": "n2o-paraffin"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}

	req, err := loadSimulationRequest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Operating.ChamberPressureMPa != 12.5 {
		t.Fatalf("file value not applied: %+v", req.Operating)
	}
	if req.Operating.MixtureRatio != model.DefaultOperatingPoint().MixtureRatio {
		t.Fatalf("omitted field should keep its default: %+v", req.Operating)
	}
	if req.Geometry != model.DefaultEngineGeometry() {
		t.Fatalf("untouched geometry should stay default: %+v", req.Geometry)
	}
	if req.Propellant != "n2o-paraffin" {
		t.Fatalf("propellant not applied: %q", req.Propellant)
	}
}

func TestLoadSimulationRequestBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}
	if _, err := loadSimulationRequest(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSimulateCommandPrintsResult(t *testing.T) {
	cmd := simulateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("simulate command: %v", err)
	}

	var result model.PerformanceResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out.String())
	}
	if result.Thrust <= 0 {
		t.Fatalf("unphysical thrust in output: %v", result.Thrust)
	}
	if !strings.Contains(out.String(), "pressureData") {
		t.Fatal("expected profile series in the output")
	}
}

func TestSimulateCommandRejectsUnknownModel(t *testing.T) {
	cmd := simulateCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--model", "quantum"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an unknown model error")
	}
}
