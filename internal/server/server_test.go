package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cheatbot1234/thrust-vector-forge/internal/metrics"
	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/platform"
	"github.com/cheatbot1234/thrust-vector-forge/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *platform.Forge) {
	t.Helper()
	sink := metrics.New()
	forge := platform.NewForge(platform.Config{
		Store:        storage.NewMemoryStore(),
		Metrics:      sink,
		ArtifactsDir: t.TempDir(),
	})
	if err := forge.Init(context.Background()); err != nil {
		t.Fatalf("init forge: %v", err)
	}
	t.Cleanup(forge.Close)

	s, err := New(Config{Forge: forge, Metrics: sink})
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, forge
}

func doJSON(t *testing.T, method, url string, in, out any) *http.Response {
	t.Helper()
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, url, err)
		}
	}
	return resp
}

func testStudyConfig(trials int) model.StudyConfig {
	return model.StudyConfig{
		Parameters: map[string]model.ParameterRange{
			"chamberPressure": {Min: 8, Max: 15},
		},
		Objectives: []model.ObjectiveSpec{{Name: "thrust"}},
		Trials:     trials,
		Workers:    2,
		Seed:       3,
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var health map[string]string
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health", nil, &health)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status: %d", resp.StatusCode)
	}
	if health["status"] != "ok" || health["advancedModel"] != "disabled" {
		t.Fatalf("unexpected health body: %v", health)
	}
}

func TestSimulateDefaultsAndRecordsHistory(t *testing.T) {
	ts, _ := newTestServer(t)

	// An empty body simulates the default engine.
	var result model.PerformanceResult
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/simulate", map[string]any{}, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("simulate status: %d", resp.StatusCode)
	}
	if result.Thrust <= 0 || result.Source != model.SourceCore {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.PressureData) != 50 {
		t.Fatalf("expected 50 profile stations, got %d", len(result.PressureData))
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("missing CORS header, got %q", got)
	}

	var records []model.SimulationRecord
	if resp := doJSON(t, http.MethodGet, ts.URL+"/api/simulations", nil, &records); resp.StatusCode != http.StatusOK {
		t.Fatalf("history status: %d", resp.StatusCode)
	}
	if len(records) != 1 || records[0].ID != result.ID {
		t.Fatalf("unexpected history: %+v", records)
	}

	var record model.SimulationRecord
	if resp := doJSON(t, http.MethodGet, ts.URL+"/api/simulations/"+result.ID, nil, &record); resp.StatusCode != http.StatusOK {
		t.Fatalf("simulation lookup status: %d", resp.StatusCode)
	}

	var missing errorBody
	if resp := doJSON(t, http.MethodGet, ts.URL+"/api/simulations/sim-missing", nil, &missing); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown simulation, got %d", resp.StatusCode)
	}
	if missing.Code != "not_found" {
		t.Fatalf("unexpected error body: %+v", missing)
	}
}

func TestSimulateValidationError(t *testing.T) {
	ts, _ := newTestServer(t)

	req := model.SimulationRequest{
		Geometry:  model.DefaultEngineGeometry(),
		Operating: model.DefaultOperatingPoint(),
	}
	req.Geometry.Nozzle.ThroatDiameterMM = -5

	var body errorBody
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/simulate", req, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body.Code != "validation_error" || body.Field == "" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestSimulateComputationError(t *testing.T) {
	ts, _ := newTestServer(t)

	req := model.SimulationRequest{
		Geometry:  model.DefaultEngineGeometry(),
		Operating: model.DefaultOperatingPoint(),
	}
	req.Geometry.Nozzle.ExitDiameterMM = req.Geometry.Nozzle.ThroatDiameterMM
	req.Operating.ChamberPressureMPa = 0.05

	var body errorBody
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/simulate", req, &body)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body.Code != "computation_error" || body.Stage != "nozzle" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestSimulateModelSelectionErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	advanced := model.SimulationRequest{Model: platform.ModelAdvanced}
	var unavailable errorBody
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/simulate", advanced, &unavailable)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	if unavailable.Code != "service_unavailable" {
		t.Fatalf("unexpected error body: %+v", unavailable)
	}

	unknown := model.SimulationRequest{Model: "quantum"}
	var rejected errorBody
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/simulate", unknown, &rejected)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if rejected.Code != "validation_error" || rejected.Field != "model" {
		t.Fatalf("unexpected error body: %+v", rejected)
	}
}

func TestSimulationsLimitValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, raw := range []string{"-1", "abc"} {
		var body errorBody
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/simulations?limit="+raw, nil, &body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("limit=%s: expected 400, got %d", raw, resp.StatusCode)
		}
		if body.Field != "limit" {
			t.Fatalf("limit=%s: unexpected error body: %+v", raw, body)
		}
	}
}

func TestStudyLifecycleOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	var created map[string]string
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/studies", testStudyConfig(5), &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	id := created["id"]
	if !strings.HasPrefix(id, "study_") {
		t.Fatalf("unexpected study id: %s", id)
	}

	var summaries []model.StudySummary
	doJSON(t, http.MethodGet, ts.URL+"/api/studies", nil, &summaries)
	if len(summaries) != 1 || summaries[0].ID != id {
		t.Fatalf("unexpected listing: %+v", summaries)
	}

	var study model.Study
	doJSON(t, http.MethodGet, ts.URL+"/api/studies/"+id, nil, &study)
	if study.State != model.StudyCreated {
		t.Fatalf("unexpected state before run: %s", study.State)
	}

	var run map[string]string
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/studies/"+id+"/run", nil, &run)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("run status: %d", resp.StatusCode)
	}

	deadline := time.Now().Add(30 * time.Second)
	for {
		var current model.Study
		doJSON(t, http.MethodGet, ts.URL+"/api/studies/"+id, nil, &current)
		if current.State == model.StudyComplete {
			if len(current.Trials) != 5 {
				t.Fatalf("expected 5 trials, got %d", len(current.Trials))
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("study did not complete, state %s", current.State)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Stop after completion is a no-op.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/studies/"+id+"/stop", nil, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("stop status: %d", resp.StatusCode)
	}

	// The run deregisters just after the final save, so retry the delete.
	deadline = time.Now().Add(5 * time.Second)
	for {
		resp := doJSON(t, http.MethodDelete, ts.URL+"/api/studies/"+id, nil, nil)
		if resp.StatusCode == http.StatusNoContent {
			break
		}
		if resp.StatusCode != http.StatusConflict || time.Now().After(deadline) {
			t.Fatalf("delete status: %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/studies/"+id, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestContinueStudyOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	var created map[string]string
	doJSON(t, http.MethodPost, ts.URL+"/api/studies", testStudyConfig(3), &created)
	id := created["id"]

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/studies/"+id+"/run", nil, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("run status: %d", resp.StatusCode)
	}
	waitStudyState(t, ts.URL, id, model.StudyComplete, 3)

	var cont map[string]string
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/studies/"+id+"/continue", map[string]int{"trials": 2}, &cont)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("continue status: %d", resp.StatusCode)
	}
	if cont["id"] != id || cont["status"] != "running" {
		t.Fatalf("unexpected continue body: %+v", cont)
	}
	waitStudyState(t, ts.URL, id, model.StudyComplete, 5)

	var bad errorBody
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/studies/"+id+"/continue", map[string]int{"trials": 0}, &bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero trials: expected 400, got %d", resp.StatusCode)
	}
	if bad.Code != "invalid_config" {
		t.Fatalf("unexpected error body: %+v", bad)
	}

	var missing errorBody
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/studies/study_missing/continue", map[string]int{"trials": 2}, &missing)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing study: expected 404, got %d", resp.StatusCode)
	}
	if missing.Code != "not_found" {
		t.Fatalf("unexpected error body: %+v", missing)
	}
}

func waitStudyState(t *testing.T, base, id, state string, trials int) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for {
		var current model.Study
		doJSON(t, http.MethodGet, base+"/api/studies/"+id, nil, &current)
		if current.State == state && len(current.Trials) == trials {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("study stuck at state=%s trials=%d, want %s/%d", current.State, len(current.Trials), state, trials)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStudyConfigRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	var body errorBody
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/studies", map[string]any{}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body.Code != "invalid_config" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestStudyNotFoundPaths(t *testing.T) {
	ts, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/studies/study_missing"},
		{http.MethodDelete, "/api/studies/study_missing"},
		{http.MethodPost, "/api/studies/study_missing/run"},
		{http.MethodPost, "/api/studies/study_missing/stop"},
	}
	for _, tc := range paths {
		var body errorBody
		resp := doJSON(t, tc.method, ts.URL+tc.path, nil, &body)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, resp.StatusCode)
		}
		if body.Code != "not_found" {
			t.Fatalf("%s %s: unexpected error body: %+v", tc.method, tc.path, body)
		}
	}
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	ts, _ := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/simulate", map[string]any{}, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	if !strings.Contains(string(data), `forge_simulations_total{model="core"} 1`) {
		t.Fatalf("scrape missing simulation counter:\n%s", data)
	}
}

func TestPreflightCORS(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/simulate", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preflight status: %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing allow-origin header")
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatal("missing allow-methods header")
	}
}
