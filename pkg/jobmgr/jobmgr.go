// Package jobmgr provides named asynchronous and deferred job execution with
// cancellation handles and in-memory tracking. Deferred jobs back timers that
// must outlive their originating operation (for example state auto-reverts);
// they are not persisted, so pending jobs are lost on process restart.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Println("[JOB]", msg)
//	})
//
//	_ = jm.StartAfter("revert-mute:123", 30*time.Second, func(ctx context.Context) error {
//	    return restoreState(ctx)
//	})
//
//	// later...
//	_ = jm.Stop("revert-mute:123")
package jobmgr

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Job represents a running or scheduled unit of work.
type Job struct {
	Name   string
	RunAt  time.Time
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs, e.g.:
//
//	scheduled:revert-mute:123
//	running:revert-mute:123
//	error:revert-mute:123:connection reset
//	done:revert-mute:123
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a new Manager. The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already tracked, an error is returned.
// Jobs are removed automatically after completion (success or failure).
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	return m.start(name, 0, runner)
}

// StartAfter schedules a job to run once after the given delay. Stopping the
// job before it fires cancels it without running.
func (m *Manager) StartAfter(name string, delay time.Duration, runner func(ctx context.Context) error) error {
	return m.start(name, delay, runner)
}

func (m *Manager) start(name string, delay time.Duration, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, RunAt: time.Now().Add(delay), Cancel: cancel}

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job '%s' is already scheduled", name)
	}
	m.jobs[name] = job
	m.mu.Unlock()

	if delay > 0 {
		m.report("scheduled:" + name)
	}

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.jobs, name)
			m.mu.Unlock()
		}()

		if delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		m.report("running:" + name)
		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}
	}()

	return nil
}

// Stop cancels a running or scheduled job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// List returns the list of active job names.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
