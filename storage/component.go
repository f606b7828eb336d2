package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/podscribe/component"
	"github.com/kbukum/podscribe/logger"
)

// healthKey is probed by Start and Health; it need not exist.
const healthKey = ".health"

// Component exposes a Storage backend to the component registry.
type Component struct {
	storage Storage
	cfg     Config
	log     *logger.Logger
}

// NewComponent creates the configured backend so it can be handed to its
// consumers before the registry starts.
func NewComponent(cfg Config, log *logger.Logger) (*Component, error) {
	if log == nil {
		log = logger.Nop()
	}
	s, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Component{storage: s, cfg: cfg, log: log.WithComponent("storage")}, nil
}

// Storage returns the underlying backend.
func (c *Component) Storage() Storage {
	return c.storage
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start checks that the backend answers.
func (c *Component) Start(ctx context.Context) error {
	if _, err := c.storage.Exists(ctx, healthKey); err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.log.Info("storage ready", logger.Fields("provider", c.cfg.Provider, "base_path", c.cfg.BasePath))
	return nil
}

// Stop is a no-op; staged uploads are removed by their jobs.
func (c *Component) Stop(context.Context) error { return nil }

// Health reports whether the backend answers.
func (c *Component) Health(ctx context.Context) component.Health {
	if _, err := c.storage.Exists(ctx, healthKey); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}
