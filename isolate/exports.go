package isolate

import (
	"sort"
	"sync"

	"github.com/plugkit/engine-bridge/errors"
)

// Exports is the host-heap mapping through which the engine's public
// surface is reached from script. The bridge populates it once during
// module construction and seals it; scripts only ever observe the complete
// surface.
type Exports struct {
	entries map[string]any
	mu      sync.RWMutex
	sealed  bool
}

// NewExports creates an empty exports object.
func NewExports() *Exports {
	return &Exports{
		entries: make(map[string]any),
	}
}

// Set installs an entry. Installing a name twice is a programming error in
// the manifest and aborts module load; installing after Seal is rejected.
func (e *Exports) Set(name string, fn any) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseExports, "empty export name")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sealed {
		return errors.Sealed()
	}
	if _, ok := e.entries[name]; ok {
		return errors.DuplicateExport(name)
	}
	e.entries[name] = fn
	return nil
}

// Seal freezes the exports object. The bridge calls this when module
// construction finishes.
func (e *Exports) Seal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sealed = true
}

// Sealed reports whether construction has finished.
func (e *Exports) Sealed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sealed
}

// Get returns the entry installed under name.
func (e *Exports) Get(name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	fn, ok := e.entries[name]
	return fn, ok
}

// Names returns the installed entry names, sorted.
func (e *Exports) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.entries))
	for name := range e.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of installed entries.
func (e *Exports) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}
