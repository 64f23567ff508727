package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/cheatbot1234/thrust-vector-forge/internal/cea"
	"github.com/cheatbot1234/thrust-vector-forge/internal/engine"
	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/platform"
)

// defaultHistoryLimit bounds GET /api/simulations when no limit is given;
// limit=0 asks for everything.
const defaultHistoryLimit = 50

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("could not encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Code: "internal_error"}
	status := http.StatusInternalServerError

	var validation *engine.ValidationError
	var computation *engine.ComputationError
	var unavailable *cea.ServiceUnavailableError
	var notFound *platform.NotFoundError
	var busy *platform.StudyBusyError
	var unknownModel *platform.UnknownModelError
	var invalidConfig *platform.InvalidConfigError

	switch {
	case errors.As(err, &validation):
		status, body.Code, body.Field = http.StatusBadRequest, "validation_error", validation.Field
	case errors.As(err, &unknownModel):
		status, body.Code, body.Field = http.StatusBadRequest, "validation_error", "model"
	case errors.As(err, &invalidConfig):
		status, body.Code = http.StatusBadRequest, "invalid_config"
	case errors.As(err, &computation):
		status, body.Code, body.Stage = http.StatusUnprocessableEntity, "computation_error", computation.Stage
	case errors.As(err, &unavailable):
		status, body.Code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.As(err, &notFound):
		status, body.Code = http.StatusNotFound, "not_found"
	case errors.As(err, &busy):
		status, body.Code = http.StatusConflict, "study_busy"
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, message, field string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message, Code: "validation_error", Field: field})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"advancedModel": s.forge.ProbeAdvanced(r.Context()),
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req model.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error(), "")
		return
	}
	if req.Geometry == (model.EngineGeometry{}) {
		req.Geometry = model.DefaultEngineGeometry()
	}
	if req.Operating == (model.OperatingPoint{}) {
		req.Operating = model.DefaultOperatingPoint()
	}

	result, err := s.forge.Simulate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimulations(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(w, "limit must be a non-negative integer", "limit")
			return
		}
		limit = parsed
	}

	records, err := s.forge.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, ok, err := s.forge.Simulation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, &platform.NotFoundError{Kind: "simulation", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	var cfg model.StudyConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		badRequest(w, "invalid request body: "+err.Error(), "")
		return
	}

	study, err := s.forge.CreateStudy(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": study.ID})
}

func (s *Server) handleListStudies(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.forge.Studies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	study, ok, err := s.forge.Study(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, &platform.NotFoundError{Kind: "study", ID: id})
		return
	}
	writeJSON(w, http.StatusOK, study)
}

func (s *Server) handleDeleteStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.forge.DeleteStudy(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.forge.RunStudy(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "running"})
}

func (s *Server) handleContinueStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Trials int `json:"trials"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body: "+err.Error(), "")
		return
	}
	if err := s.forge.ContinueStudy(r.Context(), id, body.Trials); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "running"})
}

func (s *Server) handleStopStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.forge.StopStudy(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "stopping"})
}
