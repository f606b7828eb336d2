package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/podscribe/logger"
)

// DefaultStopTimeout bounds each component's Stop.
const DefaultStopTimeout = 30 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse, so a component may depend on anything registered before it.
type Registry struct {
	// StopTimeout bounds each Stop call; zero means DefaultStopTimeout.
	StopTimeout time.Duration

	mu      sync.RWMutex
	entries []*entry
	byName  map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*entry)}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.byName[name] = e

	logger.Debug("component registered", logger.Fields("component", name))
	return nil
}

// StartAll starts components in registration order. When one fails, the
// components already started are stopped again before the error returns.
func (r *Registry) StartAll(ctx context.Context) error {
	entries := r.snapshot()
	logger.Info("starting components", logger.Fields("count", len(entries)))

	for _, e := range entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			logger.Error("component start failed", logger.ErrorFields("start "+name, err))
			startErr := fmt.Errorf("failed to start %s: %w", name, err)
			return errors.Join(startErr, r.StopAll(ctx))
		}
		r.mu.Lock()
		e.started = true
		r.mu.Unlock()
		logger.Debug("component started", logger.Fields("component", name))
	}
	return nil
}

// StopAll stops started components in reverse registration order and joins
// their errors. Health checks keep answering while components drain.
func (r *Registry) StopAll(ctx context.Context) error {
	entries := r.snapshot()
	timeout := r.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		r.mu.Lock()
		started := e.started
		e.started = false
		r.mu.Unlock()
		if !started {
			continue
		}

		name := e.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, timeout)
		err := e.component.Stop(stopCtx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			logger.Error("component stop failed", logger.ErrorFields("stop "+name, err))
			continue
		}
		logger.Debug("component stopped", logger.Fields("component", name))
	}
	return errors.Join(errs...)
}

// HealthAll checks every component concurrently and returns the results in
// registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	entries := r.snapshot()
	results := make([]Health, len(entries))

	var g errgroup.Group
	for i, e := range entries {
		g.Go(func() error {
			results[i] = e.component.Health(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Get returns a registered component by name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byName[name]; ok {
		return e.component
	}
	return nil
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*entry(nil), r.entries...)
}
