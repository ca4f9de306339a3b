package email

import (
	"sync"

	"github.com/copperline/courier/internal/domain"
)

// Registry maps provider names to adapter instances.
// Adapters are registered once at startup; resolution happens at call
// time. There is no hidden process-wide singleton: the registry is an
// explicitly constructed value passed to the email service.
type Registry struct {
	mu          sync.RWMutex
	adapters    map[domain.Provider]Adapter
	defaultName domain.Provider
}

// NewRegistry creates an empty adapter registry with the given default
// provider name. The default is used when a request names no provider,
// or names one that is not registered.
func NewRegistry(defaultName domain.Provider) *Registry {
	return &Registry{
		adapters:    make(map[domain.Provider]Adapter),
		defaultName: defaultName,
	}
}

// Register adds an adapter under its own name, replacing any previous
// registration for that name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Default returns the configured default provider name.
func (r *Registry) Default() domain.Provider {
	return r.defaultName
}

// Resolve returns the adapter for the requested provider. An empty or
// unregistered name falls back to the default provider. Returns a
// configuration error when not even the default adapter is registered.
func (r *Registry) Resolve(name domain.Provider) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name != "" {
		if a, ok := r.adapters[name]; ok {
			return a, nil
		}
	}

	if a, ok := r.adapters[r.defaultName]; ok {
		return a, nil
	}

	return nil, domain.Config("email.resolve",
		"no email adapter registered for provider "+string(r.defaultName))
}

// Names returns the registered provider names, for diagnostics.
func (r *Registry) Names() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]domain.Provider, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
