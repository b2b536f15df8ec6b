package fedsearch

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Backend{}
)

// Register makes a backend available to the framework under its own name.
// Registering two backends with the same name panics, mirroring the
// behavior of database/sql driver registration.
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := b.Name()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("fedsearch: backend %q registered twice", name))
	}
	registry[name] = b
}

// Open returns the backend registered under name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("fedsearch: unknown backend %q", name)
	}
	return b, nil
}

// Backends lists the names of all registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
