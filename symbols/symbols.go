package symbols

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// The process-wide table. Loader-level symbol promotion is replaced by an
// explicit registration table: every peer bridge publishes its engine
// symbols here and resolves shared ones back out, so all peers observe a
// single instance regardless of how they were linked.
var global = &table{
	entries: make(map[string]any),
}

type table struct {
	entries map[string]any
	mu      sync.RWMutex
}

// Register publishes value under name. The first registration wins;
// a repeat is a no-op and returns false.
func Register(name string, value any) bool {
	global.mu.Lock()
	defer global.mu.Unlock()

	if _, ok := global.entries[name]; ok {
		return false
	}
	global.entries[name] = value
	return true
}

// Resolve returns the registered value for name.
func Resolve(name string) (any, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()

	v, ok := global.entries[name]
	return v, ok
}

// Names returns the registered symbol names, sorted.
func Names() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()

	names := make([]string, 0, len(global.entries))
	for name := range global.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelfRegister publishes a bridge's symbol set and returns how many entries
// were newly registered. Conflicts with already-published symbols are
// expected when peer bridges share an engine; they are logged at debug
// level and otherwise ignored, so the call is idempotent.
func SelfRegister(set map[string]any) int {
	registered := 0
	for name, value := range set {
		if Register(name, value) {
			registered++
			continue
		}
		Logger().Debug("symbol already registered, keeping first instance",
			zap.String("symbol", name))
	}
	return registered
}

// reset clears the table. Tests only.
func reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.entries = make(map[string]any)
}
