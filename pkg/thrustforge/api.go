// Package thrustforge is the public facade over the performance platform:
// one client type wires the store, the propellant profiles, the advanced
// model client, the metrics sink and the HTTP server together so embedders
// and the CLI share the same entry point.
package thrustforge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cheatbot1234/thrust-vector-forge/internal/cea"
	"github.com/cheatbot1234/thrust-vector-forge/internal/metrics"
	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/platform"
	"github.com/cheatbot1234/thrust-vector-forge/internal/propellant"
	"github.com/cheatbot1234/thrust-vector-forge/internal/server"
	"github.com/cheatbot1234/thrust-vector-forge/internal/storage"
)

const defaultArtifactsDir = "artifacts"

// Options configures a Client. Zero fields take defaults: memory store,
// artifacts under ./artifacts, no advanced model.
type Options struct {
	StoreKind       string        // "memory" (default) or "sqlite"
	StorePath       string        // sqlite database path
	AdvancedURL     string        // base URL of the advanced model; empty disables it
	AdvancedTimeout time.Duration // per-call budget for the advanced model
	PropellantFile  string        // optional INI file with extra propellant profiles
	ArtifactsDir    string        // study artifact output directory
	Workers         int           // default worker count for studies that leave it unset
	Metrics         bool          // register prometheus collectors
}

// Client is the embedder-facing handle on the whole system.
type Client struct {
	store   storage.Store
	forge   *platform.Forge
	sink    *metrics.Sink
	workers int

	initOnce sync.Once
	initErr  error
}

// New builds a client from the options. The store is opened here; Init (or
// the first operation) prepares it.
func New(opts Options) (*Client, error) {
	if opts.ArtifactsDir == "" {
		opts.ArtifactsDir = defaultArtifactsDir
	}

	profiles := propellant.DefaultSet()
	if opts.PropellantFile != "" {
		loaded, err := propellant.LoadFile(opts.PropellantFile)
		if err != nil {
			return nil, err
		}
		profiles = loaded
	}

	var advanced *cea.Client
	if opts.AdvancedURL != "" {
		client, err := cea.New(cea.Options{BaseURL: opts.AdvancedURL, Timeout: opts.AdvancedTimeout})
		if err != nil {
			return nil, err
		}
		advanced = client
	}

	store, err := storage.NewStore(opts.StoreKind, opts.StorePath)
	if err != nil {
		return nil, err
	}

	var sink *metrics.Sink
	if opts.Metrics {
		sink = metrics.New()
	}

	forge := platform.NewForge(platform.Config{
		Store:        store,
		Profiles:     profiles,
		Metrics:      sink,
		Advanced:     advanced,
		ArtifactsDir: opts.ArtifactsDir,
	})

	return &Client{
		store:   store,
		forge:   forge,
		sink:    sink,
		workers: opts.Workers,
	}, nil
}

// Init prepares the store and the model registry. Calling it is optional;
// every operation initializes on first use.
func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.forge.Init(ctx)
	})
	return c.initErr
}

// Close stops running studies and releases the store.
func (c *Client) Close() error {
	c.forge.Close()
	return storage.CloseIfSupported(c.store)
}

// DefaultParameters returns the reference engine and operating point that
// simulate and optimize requests default to.
func DefaultParameters() (model.EngineGeometry, model.OperatingPoint) {
	return model.DefaultEngineGeometry(), model.DefaultOperatingPoint()
}

// Simulate computes one steady-state prediction and records it in the
// history. Zero geometry or operating point fall back to the defaults.
func (c *Client) Simulate(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, error) {
	if err := c.Init(ctx); err != nil {
		return model.PerformanceResult{}, err
	}
	if req.Geometry == (model.EngineGeometry{}) {
		req.Geometry = model.DefaultEngineGeometry()
	}
	if req.Operating == (model.OperatingPoint{}) {
		req.Operating = model.DefaultOperatingPoint()
	}
	return c.forge.Simulate(ctx, req)
}

// History returns recent simulations, newest first. A non-positive limit
// returns everything.
func (c *Client) History(ctx context.Context, limit int) ([]model.SimulationRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.forge.History(ctx, limit)
}

// CreateStudy persists a new study in the created state. A zero worker count
// inherits the client's default.
func (c *Client) CreateStudy(ctx context.Context, cfg model.StudyConfig) (model.Study, error) {
	if err := c.Init(ctx); err != nil {
		return model.Study{}, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = c.workers
	}
	return c.forge.CreateStudy(ctx, cfg)
}

// RunStudy starts a study in the background. Progress is observable through
// WatchStudy; the study record updates as trials finish.
func (c *Client) RunStudy(ctx context.Context, id string) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.forge.RunStudy(ctx, id)
}

// RunStudyWait runs a study and blocks until it reaches a terminal state or
// the context is canceled. Cancellation stops the run and returns the study
// as stopped.
func (c *Client) RunStudyWait(ctx context.Context, id string) (model.Study, error) {
	return c.waitStudy(ctx, id, func() error { return c.forge.RunStudy(ctx, id) })
}

// ContinueStudy extends a finished study with more sampled trials, running in
// the background like RunStudy.
func (c *Client) ContinueStudy(ctx context.Context, id string, trials int) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.forge.ContinueStudy(ctx, id, trials)
}

// ContinueStudyWait extends a study and blocks until the appended trials
// finish.
func (c *Client) ContinueStudyWait(ctx context.Context, id string, trials int) (model.Study, error) {
	return c.waitStudy(ctx, id, func() error { return c.forge.ContinueStudy(ctx, id, trials) })
}

func (c *Client) waitStudy(ctx context.Context, id string, launch func() error) (model.Study, error) {
	if err := c.Init(ctx); err != nil {
		return model.Study{}, err
	}

	events, cancel := c.forge.WatchStudy(id)
	defer cancel()

	if err := launch(); err != nil {
		return model.Study{}, err
	}

	done := ctx.Done()
	for {
		select {
		case event := <-events:
			if event.Type != platform.EventState {
				continue
			}
			study, ok, err := c.forge.Study(context.WithoutCancel(ctx), id)
			if err != nil {
				return model.Study{}, err
			}
			if !ok {
				return model.Study{}, fmt.Errorf("study disappeared while running: %s", id)
			}
			return study, nil
		case <-done:
			// Ask the run to stop, then keep waiting for its terminal event.
			if err := c.forge.StopStudy(context.WithoutCancel(ctx), id); err != nil {
				return model.Study{}, err
			}
			done = nil
		}
	}
}

// StopStudy asks a running study to stop; stopping an idle study is a no-op.
func (c *Client) StopStudy(ctx context.Context, id string) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.forge.StopStudy(ctx, id)
}

// WatchStudy subscribes to a study's progress events.
func (c *Client) WatchStudy(id string) (<-chan platform.StudyEvent, func()) {
	return c.forge.WatchStudy(id)
}

// Study returns one stored study.
func (c *Client) Study(ctx context.Context, id string) (model.Study, bool, error) {
	if err := c.Init(ctx); err != nil {
		return model.Study{}, false, err
	}
	return c.forge.Study(ctx, id)
}

// Studies lists stored studies, newest first.
func (c *Client) Studies(ctx context.Context) ([]model.StudySummary, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.forge.Studies(ctx)
}

// DeleteStudy removes a stored study. Running studies must be stopped first.
func (c *Client) DeleteStudy(ctx context.Context, id string) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.forge.DeleteStudy(ctx, id)
}

// ExportStudy writes the study's artifacts and copies them to outDir,
// returning the export directory.
func (c *Client) ExportStudy(ctx context.Context, id, outDir string) (string, error) {
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	return c.forge.ExportStudy(ctx, id, outDir)
}

// ProbeAdvanced reports the advanced model health: "available",
// "unavailable" or "disabled".
func (c *Client) ProbeAdvanced(ctx context.Context) (string, error) {
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	return c.forge.ProbeAdvanced(ctx), nil
}

// Propellants lists the registered propellant profile names.
func (c *Client) Propellants() []string {
	return c.forge.Propellants()
}

// Serve runs the HTTP API on addr until the context is canceled.
func (c *Client) Serve(ctx context.Context, addr string) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	srv, err := server.New(server.Config{Forge: c.forge, Metrics: c.sink})
	if err != nil {
		return err
	}
	return srv.Run(ctx, addr)
}
