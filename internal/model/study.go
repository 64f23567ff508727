package model

// Study lifecycle states.
const (
	StudyCreated  = "created"
	StudyRunning  = "running"
	StudyStopped  = "stopped"
	StudyComplete = "complete"
	StudyFailed   = "failed"
)

// Sampler names understood by the optimizer.
const (
	SamplerRandom = "random"
	SamplerGrid   = "grid"
)

// ParameterRange bounds one searchable parameter. A fixed range pins the
// parameter to Value; Step quantizes sampled values when positive.
type ParameterRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step,omitempty"`
	Fixed bool    `json:"fixed,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// ObjectiveSpec names a result metric and the direction of improvement.
type ObjectiveSpec struct {
	Name     string `json:"name"`
	Minimize bool   `json:"minimize"`
}

// StudyConfig drives one optimization study. Parameter names are dotted paths
// onto the default engine ("chamberPressure", "grain.length_mm",
// "nozzle.throat_diameter_mm", ...). A positive TimeoutSeconds puts a wall
// clock budget on the whole run; an exceeded budget ends the study as
// stopped, keeping the trials finished so far.
type StudyConfig struct {
	Parameters     map[string]ParameterRange `json:"parameters"`
	Objectives     []ObjectiveSpec           `json:"objectives"`
	Trials         int                       `json:"trials"`
	Workers        int                       `json:"workers,omitempty"`
	Sampler        string                    `json:"sampler,omitempty"`
	Seed           int64                     `json:"seed,omitempty"`
	EarlyStopping  int                       `json:"earlyStopping,omitempty"`
	SaveEvery      int                       `json:"saveEvery,omitempty"`
	RefineIters    int                       `json:"refineIters,omitempty"`
	TimeoutSeconds float64                   `json:"timeoutSeconds,omitempty"`
	Propellant     string                    `json:"propellant,omitempty"`
}

// Trial is one evaluated parameter set. Values holds the raw objective
// metrics; Score is the scalarized minimization target. A failed evaluation
// carries the penalty score and the error text.
type Trial struct {
	Number    int                `json:"number"`
	Params    map[string]float64 `json:"params"`
	Values    map[string]float64 `json:"values"`
	Score     float64            `json:"score"`
	ElapsedMS int64              `json:"elapsed_ms"`
	Error     string             `json:"error,omitempty"`
}

type Study struct {
	VersionedRecord
	ID          string             `json:"id"`
	CreatedAt   int64              `json:"created_at"`
	UpdatedAt   int64              `json:"updated_at"`
	State       string             `json:"state"`
	Config      StudyConfig        `json:"config"`
	Trials      []Trial            `json:"trials"`
	BestTrials  []Trial            `json:"best_trials"`
	Importance  map[string]float64 `json:"importance,omitempty"`
	ParetoFront []Trial            `json:"pareto_front,omitempty"`
	FailReason  string             `json:"fail_reason,omitempty"`
}

// StudySummary is the listing view of a study.
type StudySummary struct {
	ID        string  `json:"id"`
	CreatedAt int64   `json:"created_at"`
	State     string  `json:"state"`
	Trials    int     `json:"trials"`
	BestScore float64 `json:"best_score"`
}
