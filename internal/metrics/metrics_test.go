package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

func scrape(t *testing.T, s *Sink) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("scrape status: %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read scrape body: %v", err)
	}
	return string(body)
}

func TestSinkCollectsSimulationMetrics(t *testing.T) {
	s := New()
	s.ObserveSimulation("core", 5*time.Millisecond, model.PerformanceResult{
		Thrust:             31500,
		SpecificImpulse:    244.7,
		ChamberTemperature: 2998,
	})
	s.SimulationError("validation")
	s.Fallback()
	s.StudyStarted()
	s.TrialFinished("study-a", 3, -0.5)

	body := scrape(t, s)
	for _, want := range []string{
		`forge_simulations_total{model="core"} 1`,
		`forge_simulation_errors_total{kind="validation"} 1`,
		`forge_fallbacks_total 1`,
		`forge_last_thrust_newtons 31500`,
		`forge_studies_running 1`,
		`forge_trials_total{study="study-a"} 1`,
		`forge_study_best_score{study="study-a"} -0.5`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("scrape missing %q\n%s", want, body)
		}
	}

	s.StudyFinished()
	body = scrape(t, s)
	if !strings.Contains(body, "forge_studies_running 0") {
		t.Fatalf("running gauge not decremented\n%s", body)
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	var s *Sink
	s.ObserveSimulation("core", time.Millisecond, model.PerformanceResult{})
	s.SimulationError("internal")
	s.Fallback()
	s.StudyStarted()
	s.StudyFinished()
	s.TrialFinished("study-a", 1, 0)

	if body := scrape(t, s); !strings.Contains(body, "") {
		t.Fatalf("unexpected scrape: %s", body)
	}
}
