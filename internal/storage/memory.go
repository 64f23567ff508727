package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	studies     map[string]model.Study
	simulations map[string]model.SimulationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.studies = make(map[string]model.Study)
	s.simulations = make(map[string]model.SimulationRecord)
	return nil
}

func (s *MemoryStore) SaveStudy(_ context.Context, study model.Study) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.studies[study.ID] = copyStudy(study)
	return nil
}

func (s *MemoryStore) Study(_ context.Context, id string) (model.Study, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	study, ok := s.studies[id]
	if !ok {
		return model.Study{}, false, nil
	}
	return copyStudy(study), true, nil
}

func (s *MemoryStore) Studies(_ context.Context) ([]model.StudySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.StudySummary, 0, len(s.studies))
	for _, study := range s.studies {
		summaries = append(summaries, summaryOf(study))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt != summaries[j].CreatedAt {
			return summaries[i].CreatedAt > summaries[j].CreatedAt
		}
		return summaries[i].ID > summaries[j].ID
	})
	return summaries, nil
}

func (s *MemoryStore) DeleteStudy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.studies, id)
	return nil
}

func (s *MemoryStore) SaveSimulation(_ context.Context, record model.SimulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.simulations[record.ID] = copySimulation(record)
	return nil
}

func (s *MemoryStore) Simulation(_ context.Context, id string) (model.SimulationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.simulations[id]
	if !ok {
		return model.SimulationRecord{}, false, nil
	}
	return copySimulation(record), true, nil
}

func (s *MemoryStore) Simulations(_ context.Context, limit int) ([]model.SimulationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.SimulationRecord, 0, len(s.simulations))
	for _, record := range s.simulations {
		records = append(records, copySimulation(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		return records[i].ID > records[j].ID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func copyStudy(study model.Study) model.Study {
	copied := study
	copied.Trials = copyTrials(study.Trials)
	copied.BestTrials = copyTrials(study.BestTrials)
	copied.ParetoFront = copyTrials(study.ParetoFront)
	copied.Importance = copyFloatMap(study.Importance)
	if study.Config.Parameters != nil {
		parameters := make(map[string]model.ParameterRange, len(study.Config.Parameters))
		for name, rng := range study.Config.Parameters {
			parameters[name] = rng
		}
		copied.Config.Parameters = parameters
	}
	copied.Config.Objectives = append([]model.ObjectiveSpec(nil), study.Config.Objectives...)
	return copied
}

func copyTrials(trials []model.Trial) []model.Trial {
	if trials == nil {
		return nil
	}
	copied := make([]model.Trial, len(trials))
	for i, trial := range trials {
		copied[i] = trial
		copied[i].Params = copyFloatMap(trial.Params)
		copied[i].Values = copyFloatMap(trial.Values)
	}
	return copied
}

func copyFloatMap(values map[string]float64) map[string]float64 {
	if values == nil {
		return nil
	}
	copied := make(map[string]float64, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}

func copySimulation(record model.SimulationRecord) model.SimulationRecord {
	copied := record
	copied.Result.PressureData = append([]model.ProfilePoint(nil), record.Result.PressureData...)
	copied.Result.TemperatureData = append([]model.ProfilePoint(nil), record.Result.TemperatureData...)
	copied.Result.VelocityData = append([]model.ProfilePoint(nil), record.Result.VelocityData...)
	return copied
}
