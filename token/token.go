package token

import (
	"sync"
)

// Token is an interned identifier for a string. The zero value is the null
// token and never names anything.
type Token uint64

// Null is the token for the empty string.
const Null Token = 0

// Registry interns strings into stable tokens. Tokens are only meaningful
// against the registry that produced them. Peer bridges in one process
// share a single registry through the symbol table, so tokens can cross
// bridge boundaries.
type Registry struct {
	byName map[string]Token
	names  []string
	mu     sync.RWMutex
}

// NewRegistry creates an empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Token),
	}
}

// Intern returns the token for name, assigning one on first use.
// The empty string always maps to Null.
func (r *Registry) Intern(name string) Token {
	if name == "" {
		return Null
	}

	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.byName[name]; ok {
		return t
	}

	r.names = append(r.names, name)
	t = Token(len(r.names))
	r.byName[name] = t
	return t
}

// String returns the string a token was interned from.
func (r *Registry) String(t Token) (string, bool) {
	if t == Null {
		return "", true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := int(t) - 1
	if idx >= len(r.names) {
		return "", false
	}
	return r.names[idx], true
}

// Len returns the number of interned strings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
