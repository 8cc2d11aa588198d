package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/skybridge/skybridge/pkg/cloud"
	"github.com/skybridge/skybridge/pkg/config"
	"github.com/skybridge/skybridge/pkg/telemetry"
)

// Factory constructs a provider from the loaded configuration. A nil
// telemetry instance means the backend builds its own from the
// configuration.
type Factory func(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry) (cloud.Provider, error)

// registry is the process-wide provider registry.
var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{
	factories: make(map[string]Factory),
}

// Register registers a provider factory under a unique name. Registering
// the same name twice is an error; backends call Register from init, so a
// duplicate means two packages claim the same name.
func Register(name string, factory Factory) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if name == "" {
		return fmt.Errorf("provider name must not be empty")
	}
	if _, exists := registry.factories[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	registry.factories[name] = factory
	return nil
}

// MustRegister is Register for init-time use; it panics on error.
func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// New constructs a provider by registry name.
func New(ctx context.Context, name string, cfg *config.Config, tel *telemetry.Telemetry) (cloud.Provider, error) {
	registry.mu.RLock()
	factory, exists := registry.factories[name]
	registry.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider %s not found (registered: %v)", name, List())
	}
	return factory(ctx, cfg, tel)
}

// List returns the names of all registered providers, sorted.
func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
