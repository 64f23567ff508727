package storage

import (
	"context"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// Store defines persistence operations for studies and simulation history.
type Store interface {
	Init(ctx context.Context) error
	SaveStudy(ctx context.Context, study model.Study) error
	Study(ctx context.Context, id string) (model.Study, bool, error)
	Studies(ctx context.Context) ([]model.StudySummary, error)
	DeleteStudy(ctx context.Context, id string) error
	SaveSimulation(ctx context.Context, record model.SimulationRecord) error
	Simulation(ctx context.Context, id string) (model.SimulationRecord, bool, error)
	Simulations(ctx context.Context, limit int) ([]model.SimulationRecord, error)
}

// summaryOf derives the listing view of a study. BestScore is the lowest
// scalarized score observed so far, or zero before the first trial lands.
func summaryOf(study model.Study) model.StudySummary {
	summary := model.StudySummary{
		ID:        study.ID,
		CreatedAt: study.CreatedAt,
		State:     study.State,
		Trials:    len(study.Trials),
	}
	for i, trial := range study.Trials {
		if i == 0 || trial.Score < summary.BestScore {
			summary.BestScore = trial.Score
		}
	}
	return summary
}
