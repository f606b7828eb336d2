package storage

import (
	"fmt"
	"sync"

	"github.com/kbukum/podscribe/logger"
)

// Factory creates a Storage implementation from config.
type Factory func(cfg Config, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a storage backend factory for the given provider name.
// Implementation packages call this from an init function to make themselves
// available to New.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

func lookupFactory(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// New creates the Storage selected by cfg.Provider. The backend package must
// be imported (e.g. _ "github.com/kbukum/podscribe/storage/local") so its
// factory is registered.
func New(cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, ok := lookupFactory(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields("provider", cfg.Provider))
	return f(cfg, l)
}
