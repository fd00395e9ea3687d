package enginebridge

// Version is the engine's public surface version, exported to scripts
// through the "version" entry.
const Version = "0.4.2"

// PrologueHook is invoked by a host immediately before a collection cycle
// begins, on the isolate goroutine. Hooks must run to completion and must
// not panic; a hook that cannot make progress leaks rather than fails.
type PrologueHook func()

// Host is the surface the bridge requires from a scripting host. An
// isolate.Isolate satisfies it; embedders with their own collector can
// adapt whatever pre-collection notification they provide.
type Host interface {
	// AddGCPrologue registers a hook invoked before each collection cycle.
	// Registration failure is fatal to module load.
	AddGCPrologue(hook PrologueHook) error
}
