// Package platform wires the performance models, the store, the propellant
// profiles and the metrics sink into one service. The Forge owns model
// selection and fallback, the simulation history and study run control;
// transport layers stay thin on top of it.
package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cheatbot1234/thrust-vector-forge/internal/cea"
	"github.com/cheatbot1234/thrust-vector-forge/internal/engine"
	"github.com/cheatbot1234/thrust-vector-forge/internal/metrics"
	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/propellant"
	"github.com/cheatbot1234/thrust-vector-forge/internal/storage"
)

// Model selections accepted on a request. The empty selection means auto.
const (
	ModelAuto     = "auto"
	ModelCore     = "core"
	ModelAdvanced = "advanced"
)

// DegradedNotice is attached to auto-mode results that the core model served
// because the advanced service was unavailable.
const DegradedNotice = "advanced model unavailable; core model used"

// Advanced service health states reported by ProbeAdvanced.
const (
	AdvancedAvailable   = "available"
	AdvancedUnavailable = "unavailable"
	AdvancedDisabled    = "disabled"
)

// NotFoundError reports a study or simulation id with no stored record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.ID) }

// StudyBusyError rejects operations that cannot overlap a running study.
type StudyBusyError struct {
	ID string
}

func (e *StudyBusyError) Error() string { return fmt.Sprintf("study is running: %s", e.ID) }

// UnknownModelError reports a model selection outside the registry.
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown performance model: %s", e.Name)
}

// InvalidConfigError reports a study config the runner cannot execute.
type InvalidConfigError struct {
	Err error
}

func (e *InvalidConfigError) Error() string { return fmt.Sprintf("invalid study config: %v", e.Err) }

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// PerformanceModel is one way to turn a request into a steady-state
// prediction.
type PerformanceModel interface {
	Name() string
	Compute(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, error)
}

type coreModel struct {
	profiles *propellant.Set
}

func (m *coreModel) Name() string { return ModelCore }

func (m *coreModel) Compute(_ context.Context, req model.SimulationRequest) (model.PerformanceResult, error) {
	profile, ok := m.profiles.Get(req.Propellant)
	if !ok {
		return model.PerformanceResult{}, &engine.ValidationError{
			Field:  "propellant",
			Value:  req.Propellant,
			Reason: "unknown propellant profile",
		}
	}
	return engine.New(profile).Compute(req.Geometry, req.Operating)
}

type advancedModel struct {
	client *cea.Client
}

func (m *advancedModel) Name() string { return ModelAdvanced }

func (m *advancedModel) Compute(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, error) {
	return m.client.Compute(ctx, req)
}

type Config struct {
	Store        storage.Store
	Profiles     *propellant.Set
	Metrics      *metrics.Sink
	Advanced     *cea.Client
	ArtifactsDir string
	Now          func() time.Time
	NewID        func() string
}

type Forge struct {
	store     storage.Store
	profiles  *propellant.Set
	sink      *metrics.Sink
	advanced  *cea.Client
	artifacts string
	now       func() time.Time
	newID     func() string

	mu      sync.RWMutex
	started bool
	models  map[string]PerformanceModel

	runs *runSet

	watchMu  sync.Mutex
	watchers map[string][]chan StudyEvent
}

func NewForge(cfg Config) *Forge {
	if cfg.Profiles == nil {
		cfg.Profiles = propellant.DefaultSet()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Forge{
		store:     cfg.Store,
		profiles:  cfg.Profiles,
		sink:      cfg.Metrics,
		advanced:  cfg.Advanced,
		artifacts: cfg.ArtifactsDir,
		now:       cfg.Now,
		newID:     cfg.NewID,
		models:    make(map[string]PerformanceModel),
		runs:      newRunSet(),
		watchers:  make(map[string][]chan StudyEvent),
	}
}

// Init prepares the store and registers the performance models. The advanced
// model is registered only when a client was configured.
func (f *Forge) Init(ctx context.Context) error {
	if f.store == nil {
		return fmt.Errorf("store is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return nil
	}
	if err := f.store.Init(ctx); err != nil {
		return err
	}
	f.models[ModelCore] = &coreModel{profiles: f.profiles}
	if f.advanced != nil {
		f.models[ModelAdvanced] = &advancedModel{client: f.advanced}
	}
	f.started = true
	return nil
}

func (f *Forge) Started() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.started
}

// Close stops every running study and waits for them to finish.
func (f *Forge) Close() {
	f.runs.stopAll()
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}

// Simulate computes one prediction and appends it to the history. The model
// selection on the request decides which model serves it; auto prefers the
// advanced model and degrades to core when it is unavailable.
func (f *Forge) Simulate(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, error) {
	if !f.Started() {
		return model.PerformanceResult{}, fmt.Errorf("forge is not initialized")
	}

	start := f.now()
	result, usedModel, err := f.compute(ctx, req)
	if err != nil {
		f.sink.SimulationError(errorKind(err))
		return model.PerformanceResult{}, err
	}
	if result.ID == "" {
		result.ID = f.newID()
	}
	if result.Timestamp == 0 {
		result.Timestamp = start.UnixMilli()
	}

	record := model.SimulationRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:        result.ID,
		Timestamp: result.Timestamp,
		Request:   req,
		Result:    result,
	}
	if err := f.store.SaveSimulation(ctx, record); err != nil {
		return model.PerformanceResult{}, fmt.Errorf("record simulation: %w", err)
	}

	f.sink.ObserveSimulation(usedModel, f.now().Sub(start), result)
	return result, nil
}

func (f *Forge) compute(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, string, error) {
	selection := req.Model
	if selection == "" {
		selection = ModelAuto
	}

	f.mu.RLock()
	core := f.models[ModelCore]
	advanced, hasAdvanced := f.models[ModelAdvanced]
	f.mu.RUnlock()

	switch selection {
	case ModelCore:
		result, err := core.Compute(ctx, req)
		return result, ModelCore, err

	case ModelAdvanced:
		if !hasAdvanced {
			return model.PerformanceResult{}, ModelAdvanced, &cea.ServiceUnavailableError{
				Endpoint: ModelAdvanced,
				Err:      errors.New("no advanced model configured"),
			}
		}
		result, err := advanced.Compute(ctx, req)
		return result, ModelAdvanced, err

	case ModelAuto:
		if !hasAdvanced {
			result, err := core.Compute(ctx, req)
			return result, ModelCore, err
		}
		result, err := advanced.Compute(ctx, req)
		if err == nil {
			return result, ModelAdvanced, nil
		}
		var unavailable *cea.ServiceUnavailableError
		if !errors.As(err, &unavailable) {
			return model.PerformanceResult{}, ModelAdvanced, err
		}
		log.WithFields(log.Fields{"error": err}).Warn("advanced model unavailable, using core model")
		f.sink.Fallback()
		result, err = core.Compute(ctx, req)
		if err != nil {
			return model.PerformanceResult{}, ModelCore, err
		}
		result.Degraded = DegradedNotice
		return result, ModelCore, nil

	default:
		return model.PerformanceResult{}, selection, &UnknownModelError{Name: selection}
	}
}

func errorKind(err error) string {
	var validation *engine.ValidationError
	var computation *engine.ComputationError
	var unavailable *cea.ServiceUnavailableError
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &computation):
		return "computation"
	case errors.As(err, &unavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

// History returns recent simulations, newest first. A non-positive limit
// returns everything.
func (f *Forge) History(ctx context.Context, limit int) ([]model.SimulationRecord, error) {
	return f.store.Simulations(ctx, limit)
}

// Simulation returns one stored simulation by id.
func (f *Forge) Simulation(ctx context.Context, id string) (model.SimulationRecord, bool, error) {
	return f.store.Simulation(ctx, id)
}

// ProbeAdvanced reports the advanced service health: disabled when no client
// is configured, otherwise the outcome of a live probe.
func (f *Forge) ProbeAdvanced(ctx context.Context) string {
	if f.advanced == nil {
		return AdvancedDisabled
	}
	if err := f.advanced.Probe(ctx); err != nil {
		return AdvancedUnavailable
	}
	return AdvancedAvailable
}

// Propellants lists the registered propellant profile names.
func (f *Forge) Propellants() []string {
	names := f.profiles.Names()
	sort.Strings(names)
	return names
}
