package platform

import (
	"context"
	"fmt"
	"sync"
)

// runSet tracks named background runs. A run executes exactly once; signaling
// it cancels its context, stopAll additionally waits for every run to exit.
type runSet struct {
	mu   sync.Mutex
	runs map[string]*namedRun
}

type namedRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newRunSet() *runSet {
	return &runSet{runs: make(map[string]*namedRun)}
}

// start launches fn under a fresh context derived from parent. It fails when
// a run with the same name is still active.
func (s *runSet) start(parent context.Context, name string, fn func(ctx context.Context)) error {
	if name == "" {
		return fmt.Errorf("run name is required")
	}
	if fn == nil {
		return fmt.Errorf("run function is required")
	}

	ctx, cancel := context.WithCancel(parent)
	run := &namedRun{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if _, exists := s.runs[name]; exists {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("run already active: %s", name)
	}
	s.runs[name] = run
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			if current, ok := s.runs[name]; ok && current == run {
				delete(s.runs, name)
			}
			s.mu.Unlock()
			cancel()
			close(run.done)
		}()
		fn(ctx)
	}()
	return nil
}

// signal cancels the named run without waiting for it. It reports whether a
// run was active.
func (s *runSet) signal(name string) bool {
	s.mu.Lock()
	run, ok := s.runs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	run.cancel()
	return true
}

func (s *runSet) active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runs[name]
	return ok
}

// stopAll cancels every run and waits until each has exited.
func (s *runSet) stopAll() {
	s.mu.Lock()
	runs := make([]*namedRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	s.mu.Unlock()

	for _, run := range runs {
		run.cancel()
	}
	for _, run := range runs {
		<-run.done
	}
}
