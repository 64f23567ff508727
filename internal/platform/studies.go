package platform

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/optimizer"
	"github.com/cheatbot1234/thrust-vector-forge/internal/storage"
)

// Study event types delivered to watchers.
const (
	EventTrial = "trial"
	EventState = "state"
)

// StudyEvent is one message on a study watch channel. Trial events report
// optimizer progress; a state event marks the end of a run.
type StudyEvent struct {
	Type      string       `json:"type"`
	StudyID   string       `json:"study_id"`
	State     string       `json:"state,omitempty"`
	Completed int          `json:"completed,omitempty"`
	Total     int          `json:"total,omitempty"`
	BestScore float64      `json:"best_score,omitempty"`
	Trial     *model.Trial `json:"trial,omitempty"`
}

// CreateStudy validates a study config, fills its defaults and persists the
// study in the created state. Ids follow the study_<unix> convention; a seed
// is drawn when the config leaves it zero so the run stays reproducible.
func (f *Forge) CreateStudy(ctx context.Context, cfg model.StudyConfig) (model.Study, error) {
	if !f.Started() {
		return model.Study{}, fmt.Errorf("forge is not initialized")
	}

	cfg = optimizer.WithConfigDefaults(cfg)
	if err := optimizer.ValidateConfig(cfg); err != nil {
		return model.Study{}, &InvalidConfigError{Err: err}
	}
	if cfg.Seed == 0 {
		cfg.Seed = f.now().UnixNano()
	}

	now := f.now().Unix()
	id := fmt.Sprintf("study_%d", now)
	if _, exists, err := f.store.Study(ctx, id); err != nil {
		return model.Study{}, err
	} else if exists {
		id = fmt.Sprintf("%s_%.8s", id, f.newID())
	}

	study := model.Study{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		State:     model.StudyCreated,
		Config:    cfg,
	}
	if err := f.store.SaveStudy(ctx, study); err != nil {
		return model.Study{}, err
	}
	return study, nil
}

// RunStudy executes a study in the background on the core model. The run
// context is detached from the caller's so the study outlives the request
// that started it; one run per study id at a time.
func (f *Forge) RunStudy(ctx context.Context, id string) error {
	if !f.Started() {
		return fmt.Errorf("forge is not initialized")
	}

	study, ok, err := f.store.Study(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: "study", ID: id}
	}
	return f.launchStudy(ctx, study)
}

// ContinueStudy extends a finished study with more sampled trials and runs it
// again. The sampler seed is unchanged, so the appended trials are exactly
// the draws the earlier run never reached.
func (f *Forge) ContinueStudy(ctx context.Context, id string, trials int) error {
	if !f.Started() {
		return fmt.Errorf("forge is not initialized")
	}
	if trials <= 0 {
		return &InvalidConfigError{Err: fmt.Errorf("continuation needs a positive trial count")}
	}
	if f.runs.active(id) {
		return &StudyBusyError{ID: id}
	}

	study, ok, err := f.store.Study(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: "study", ID: id}
	}

	study.Config.Trials = optimizer.NextTrialNumber(study.Trials) + trials
	study.UpdatedAt = f.now().Unix()
	if err := f.store.SaveStudy(ctx, study); err != nil {
		return err
	}
	return f.launchStudy(ctx, study)
}

func (f *Forge) launchStudy(ctx context.Context, study model.Study) error {
	id := study.ID

	f.mu.RLock()
	core := f.models[ModelCore]
	f.mu.RUnlock()

	runner, err := optimizer.NewRunner(optimizer.RunnerConfig{
		Store:    f.store,
		Evaluate: core.Compute,
		Progress: f.studyProgress,
		Now:      f.now,
	})
	if err != nil {
		return err
	}

	if err := f.runs.start(context.WithoutCancel(ctx), id, func(runCtx context.Context) {
		f.sink.StudyStarted()
		defer f.sink.StudyFinished()

		final, runErr := runner.Run(runCtx, study)
		if runErr != nil {
			log.WithFields(log.Fields{"study": id, "error": runErr}).Warn("study run failed")
		}

		if runErr == nil && f.artifacts != "" && final.State == model.StudyComplete {
			if _, err := optimizer.WriteStudyArtifacts(f.artifacts, final); err != nil {
				log.WithFields(log.Fields{"study": id, "error": err}).Warn("could not write study artifacts")
			}
		}

		f.broadcast(StudyEvent{
			Type:      EventState,
			StudyID:   id,
			State:     final.State,
			Completed: len(final.Trials),
			Total:     final.Config.Trials,
			BestScore: finalBestScore(final),
		})
	}); err != nil {
		return &StudyBusyError{ID: id}
	}
	return nil
}

func finalBestScore(study model.Study) float64 {
	if len(study.BestTrials) == 0 {
		return 0
	}
	return study.BestTrials[0].Score
}

func (f *Forge) studyProgress(p optimizer.Progress) {
	f.sink.TrialFinished(p.StudyID, p.Completed, p.BestScore)
	trial := p.Trial
	f.broadcast(StudyEvent{
		Type:      EventTrial,
		StudyID:   p.StudyID,
		Completed: p.Completed,
		Total:     p.Total,
		BestScore: p.BestScore,
		Trial:     &trial,
	})
}

// StopStudy asks a running study to stop. The study record keeps the trials
// finished so far; stopping an idle study is a no-op.
func (f *Forge) StopStudy(ctx context.Context, id string) error {
	if f.runs.signal(id) {
		return nil
	}
	_, ok, err := f.store.Study(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: "study", ID: id}
	}
	return nil
}

func (f *Forge) Study(ctx context.Context, id string) (model.Study, bool, error) {
	return f.store.Study(ctx, id)
}

func (f *Forge) Studies(ctx context.Context) ([]model.StudySummary, error) {
	return f.store.Studies(ctx)
}

// DeleteStudy removes a stored study. Running studies must be stopped first.
func (f *Forge) DeleteStudy(ctx context.Context, id string) error {
	if f.runs.active(id) {
		return &StudyBusyError{ID: id}
	}
	_, ok, err := f.store.Study(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: "study", ID: id}
	}
	return f.store.DeleteStudy(ctx, id)
}

// ExportStudy refreshes the study's artifacts and copies them to outDir,
// returning the export directory.
func (f *Forge) ExportStudy(ctx context.Context, id, outDir string) (string, error) {
	if f.artifacts == "" {
		return "", fmt.Errorf("artifacts directory is not configured")
	}
	study, ok, err := f.store.Study(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &NotFoundError{Kind: "study", ID: id}
	}
	if _, err := optimizer.WriteStudyArtifacts(f.artifacts, study); err != nil {
		return "", err
	}
	return optimizer.ExportStudyArtifacts(f.artifacts, id, outDir)
}

// WatchStudy subscribes to a study's progress events. Trial events may be
// dropped for slow receivers; the terminal state event waits up to a second
// per receiver. The returned cancel detaches the channel.
func (f *Forge) WatchStudy(id string) (<-chan StudyEvent, func()) {
	ch := make(chan StudyEvent, 64)

	f.watchMu.Lock()
	f.watchers[id] = append(f.watchers[id], ch)
	f.watchMu.Unlock()

	cancel := func() {
		f.watchMu.Lock()
		defer f.watchMu.Unlock()
		subs := f.watchers[id]
		for i, sub := range subs {
			if sub == ch {
				f.watchers[id] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(f.watchers[id]) == 0 {
			delete(f.watchers, id)
		}
	}
	return ch, cancel
}

func (f *Forge) broadcast(event StudyEvent) {
	f.watchMu.Lock()
	subs := append([]chan StudyEvent(nil), f.watchers[event.StudyID]...)
	f.watchMu.Unlock()

	for _, ch := range subs {
		if event.Type == EventState {
			select {
			case ch <- event:
			case <-time.After(time.Second):
			}
			continue
		}
		select {
		case ch <- event:
		default:
		}
	}
}
