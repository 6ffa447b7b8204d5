package environment

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Maker creates the environment registered under name
type Maker func(name string) (Environment, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Maker{}
)

// Register makes an environment available by name. A name ending in
// "/" registers a family: any name with that prefix is passed to the
// Maker whole. Register panics if name is already registered.
func Register(name string, m Maker) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if m == nil {
		panic("register: nil maker for " + name)
	}
	if _, ok := registry[name]; ok {
		panic("register: called twice for " + name)
	}
	registry[name] = m
}

// Make creates the environment registered under name
func Make(name string) (Environment, error) {
	registryMu.RLock()
	m, ok := registry[name]
	if !ok {
		prefix := ""
		for registered := range registry {
			if strings.HasSuffix(registered, "/") &&
				strings.HasPrefix(name, registered) &&
				len(registered) > len(prefix) {
				prefix = registered
			}
		}
		m, ok = registry[prefix]
	}
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("make: unknown environment %q, registered: %v",
			name, Names())
	}
	return m(name)
}

// Names returns the sorted names of all registered environments
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
