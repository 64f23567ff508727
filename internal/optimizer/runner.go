package optimizer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/storage"
)

const (
	defaultWorkers   = 4
	defaultSaveEvery = 10
	bestTrialCount   = 5
)

// Evaluator runs one steady-state prediction for a trial.
type Evaluator func(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, error)

// Progress is emitted after every finished trial.
type Progress struct {
	StudyID   string      `json:"study_id"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	BestScore float64     `json:"best_score"`
	Trial     model.Trial `json:"trial"`
}

type ProgressFunc func(Progress)

type RunnerConfig struct {
	Store    storage.Store
	Evaluate Evaluator
	Progress ProgressFunc
	Now      func() time.Time
}

// Runner drives a study: it samples trials, evaluates them on a bounded
// worker pool and persists the study record as it grows.
type Runner struct {
	cfg RunnerConfig
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Evaluate == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{cfg: cfg}, nil
}

// WithConfigDefaults fills the optional knobs of a study config.
func WithConfigDefaults(cfg model.StudyConfig) model.StudyConfig {
	if cfg.Sampler == "" {
		cfg.Sampler = model.SamplerRandom
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = defaultSaveEvery
	}
	return cfg
}

// ValidateConfig rejects study configs the runner cannot execute.
func ValidateConfig(cfg model.StudyConfig) error {
	if cfg.Trials <= 0 {
		return fmt.Errorf("study needs a positive trial count")
	}
	if len(cfg.Parameters) == 0 {
		return fmt.Errorf("study needs at least one parameter")
	}
	for _, name := range sortedParameterNames(cfg.Parameters) {
		rng := cfg.Parameters[name]
		if _, ok := paramSetters[name]; !ok {
			return fmt.Errorf("unknown study parameter: %s", name)
		}
		if rng.Fixed {
			continue
		}
		if rng.Min >= rng.Max {
			return fmt.Errorf("parameter %s needs min < max", name)
		}
		if rng.Step < 0 {
			return fmt.Errorf("parameter %s has a negative step", name)
		}
	}
	if len(cfg.Objectives) == 0 {
		return fmt.Errorf("study needs at least one objective")
	}
	for _, obj := range cfg.Objectives {
		if _, ok := metricReaders[obj.Name]; !ok {
			return fmt.Errorf("unknown objective metric: %s", obj.Name)
		}
	}
	switch cfg.Sampler {
	case "", model.SamplerRandom, model.SamplerGrid:
	default:
		return fmt.Errorf("unsupported sampler: %s", cfg.Sampler)
	}
	if cfg.EarlyStopping < 0 {
		return fmt.Errorf("early stopping budget must be >= 0")
	}
	if cfg.RefineIters < 0 {
		return fmt.Errorf("refinement budget must be >= 0")
	}
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	return nil
}

// Run executes the study to completion, early stop, timeout or cancellation.
// The returned study is the final persisted record. Trials the study already
// carries are kept untouched; sampling resumes at the first unused trial
// number, which is what makes continued studies append instead of redo.
func (r *Runner) Run(ctx context.Context, study model.Study) (model.Study, error) {
	saveCtx := context.WithoutCancel(ctx)

	cfg := WithConfigDefaults(study.Config)
	if err := ValidateConfig(cfg); err != nil {
		study.State = model.StudyFailed
		study.FailReason = err.Error()
		study.UpdatedAt = r.cfg.Now().Unix()
		if saveErr := r.cfg.Store.SaveStudy(saveCtx, study); saveErr != nil {
			log.WithFields(log.Fields{"study": study.ID, "error": saveErr}).Warn("could not persist failed study")
		}
		return study, err
	}
	study.Config = cfg

	sampler, err := SamplerFromName(cfg.Sampler, cfg.Parameters, cfg.Seed)
	if err != nil {
		return study, err
	}

	runCtx := ctx
	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds*float64(time.Second)))
		defer cancel()
	}

	prior := sortedByNumber(study.Trials)
	start := NextTrialNumber(prior)
	total := cfg.Trials
	remaining := total - start
	if remaining < 0 {
		remaining = 0
	}
	// Replay the sampler from trial zero so a continued study draws exactly
	// the points the earlier run never reached.
	draws := make(map[int]map[string]float64, remaining)
	for i := 0; i < total; i++ {
		params := sampler.Sample(i)
		if i >= start {
			draws[i] = params
		}
	}

	study.State = model.StudyRunning
	study.UpdatedAt = r.cfg.Now().Unix()
	if err := r.cfg.Store.SaveStudy(saveCtx, study); err != nil {
		return study, err
	}

	log.WithFields(log.Fields{
		"study":   study.ID,
		"trials":  total,
		"from":    start,
		"workers": cfg.Workers,
		"sampler": sampler.Name(),
	}).Info("study started")

	type job struct {
		idx    int
		params map[string]float64
	}
	type result struct {
		idx      int
		trial    model.Trial
		canceled bool
	}

	jobs := make(chan job)
	results := make(chan result, remaining)
	stop := make(chan struct{})
	var stopOnce sync.Once
	halt := func() { stopOnce.Do(func() { close(stop) }) }

	workerCount := cfg.Workers
	if workerCount > remaining {
		workerCount = remaining
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := runCtx.Err(); err != nil {
					results <- result{idx: j.idx, canceled: true}
					continue
				}
				results <- result{idx: j.idx, trial: r.runTrial(runCtx, cfg, j.idx, j.params)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := start; i < total; i++ {
			select {
			case <-runCtx.Done():
				return
			case <-stop:
				return
			case jobs <- job{idx: i, params: draws[i]}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := append(make([]model.Trial, 0, total), prior...)
	completed := len(prior)
	best := PenaltyScore
	if b, ok := bestOf(prior); ok {
		best = b.Score
	}
	sinceImprovement := 0
	earlyStopped := false

	for res := range results {
		if res.canceled {
			continue
		}
		trial := res.trial
		collected = append(collected, trial)
		completed++

		if trial.Error == "" && trial.Score < best {
			best = trial.Score
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		if cfg.EarlyStopping > 0 && sinceImprovement >= cfg.EarlyStopping && !earlyStopped {
			earlyStopped = true
			halt()
			log.WithFields(log.Fields{"study": study.ID, "completed": completed}).Info("early stopping triggered")
		}

		if r.cfg.Progress != nil {
			r.cfg.Progress(Progress{
				StudyID:   study.ID,
				Completed: completed,
				Total:     total,
				BestScore: best,
				Trial:     trial,
			})
		}

		if completed%cfg.SaveEvery == 0 {
			snapshot := study
			snapshot.Trials = sortedByNumber(collected)
			snapshot.UpdatedAt = r.cfg.Now().Unix()
			if err := r.cfg.Store.SaveStudy(saveCtx, snapshot); err != nil {
				log.WithFields(log.Fields{"study": study.ID, "error": err}).Warn("periodic study save failed")
			}
		}
	}

	study.Trials = sortedByNumber(collected)
	canceled := runCtx.Err() != nil

	if !canceled && cfg.RefineIters > 0 {
		if bestTrial, ok := bestOf(study.Trials); ok {
			refined := r.refine(runCtx, cfg, bestTrial, NextTrialNumber(study.Trials))
			study.Trials = append(study.Trials, refined...)
		}
	}

	study.BestTrials = bestTrials(study.Trials, bestTrialCount)
	study.Importance = ComputeImportance(study.Trials, sortedParameterNames(cfg.Parameters))
	if len(cfg.Objectives) > 1 {
		study.ParetoFront = ParetoFront(study.Trials, cfg.Objectives)
	}

	if canceled {
		study.State = model.StudyStopped
	} else {
		study.State = model.StudyComplete
	}
	study.UpdatedAt = r.cfg.Now().Unix()

	if err := r.cfg.Store.SaveStudy(saveCtx, study); err != nil {
		return study, err
	}

	log.WithFields(log.Fields{
		"study":  study.ID,
		"trials": len(study.Trials),
		"state":  study.State,
		"best":   bestScore(study.Trials),
	}).Info("study finished")

	return study, nil
}

func (r *Runner) runTrial(ctx context.Context, cfg model.StudyConfig, number int, params map[string]float64) model.Trial {
	start := r.cfg.Now()
	trial := model.Trial{Number: number, Params: params}

	geom, op, err := ApplyParameters(params)
	if err != nil {
		return r.failTrial(trial, start, err)
	}

	result, err := r.cfg.Evaluate(ctx, model.SimulationRequest{
		Geometry:   geom,
		Operating:  op,
		Propellant: cfg.Propellant,
	})
	if err != nil {
		return r.failTrial(trial, start, err)
	}

	values, err := ObjectiveValues(cfg.Objectives, result)
	if err != nil {
		return r.failTrial(trial, start, err)
	}

	trial.Values = values
	trial.Score = Scalarize(cfg.Objectives, values)
	trial.ElapsedMS = r.cfg.Now().Sub(start).Milliseconds()
	return trial
}

func (r *Runner) failTrial(trial model.Trial, start time.Time, err error) model.Trial {
	trial.Score = PenaltyScore
	trial.Error = err.Error()
	trial.ElapsedMS = r.cfg.Now().Sub(start).Milliseconds()
	return trial
}

func sortedByNumber(trials []model.Trial) []model.Trial {
	sorted := append([]model.Trial(nil), trials...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	return sorted
}

func bestTrials(trials []model.Trial, n int) []model.Trial {
	succeeded := make([]model.Trial, 0, len(trials))
	for _, trial := range trials {
		if trial.Error == "" {
			succeeded = append(succeeded, trial)
		}
	}
	sort.SliceStable(succeeded, func(i, j int) bool { return succeeded[i].Score < succeeded[j].Score })
	if len(succeeded) > n {
		succeeded = succeeded[:n]
	}
	return succeeded
}

func bestOf(trials []model.Trial) (model.Trial, bool) {
	best := bestTrials(trials, 1)
	if len(best) == 0 {
		return model.Trial{}, false
	}
	return best[0], true
}

func bestScore(trials []model.Trial) float64 {
	if best, ok := bestOf(trials); ok {
		return best.Score
	}
	return 0
}

// NextTrialNumber returns the first unused trial number, which is how
// continued studies decide where sampling resumes.
func NextTrialNumber(trials []model.Trial) int {
	next := 0
	for _, trial := range trials {
		if trial.Number >= next {
			next = trial.Number + 1
		}
	}
	return next
}

func cloneParams(params map[string]float64) map[string]float64 {
	cloned := make(map[string]float64, len(params))
	for name, value := range params {
		cloned[name] = value
	}
	return cloned
}
