package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	enginebridge "github.com/plugkit/engine-bridge"
	"github.com/plugkit/engine-bridge/buffer"
	"github.com/plugkit/engine-bridge/errors"
	"github.com/plugkit/engine-bridge/isolate"
	"github.com/plugkit/engine-bridge/script"
	"github.com/plugkit/engine-bridge/symbols"
	"github.com/plugkit/engine-bridge/token"
)

// State is a bridge's lifecycle position.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateActive
	StateTearingDown
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateTearingDown:
		return "tearing-down"
	}
	return "unknown"
}

// Surface selects how much of the engine's public surface the module
// exports. The flag is read once during load and never reconsulted.
type Surface int

const (
	// SurfaceFull exports everything.
	SurfaceFull Surface = iota
	// SurfaceReduced omits allocation and script compilation, for
	// embedding contexts that forbid guest-driven allocation.
	SurfaceReduced
)

// Options configures a bridge load.
type Options struct {
	// Logger receives the engine's diagnostics. Defaults to a no-op
	// logger.
	Logger *zap.Logger
	// Surface selects the exported surface. Defaults to SurfaceFull.
	Surface Surface
}

// Names of the engine symbols every peer bridge publishes. First
// registration wins, so all peers in a process share one instance.
const (
	symTokenRegistry = "engine.token.registry"
	symEngineVersion = "engine.version"
)

var (
	loadedMu sync.Mutex
	loaded   = make(map[enginebridge.Host]struct{})
)

// Bridge is one loaded module instance. Exactly one exists per isolate; it
// lives until the isolate tears down.
type Bridge struct {
	host      enginebridge.Host
	exports   *isolate.Exports
	pool      *buffer.Pool
	reclaimer *buffer.Reclaimer
	tokens    *token.Registry
	log       *zap.Logger
	surface   Surface
	state     atomic.Int32

	runnerOnce sync.Once
	runner     *script.Runner
	runnerErr  error
}

// Load is the module entry: it publishes the engine's shared symbols,
// registers the reclaimer as the host's GC prologue hook and populates
// exports from the manifest. It is invoked once per isolate; a second
// invocation is a programming error and fails.
//
// All entries are installed before Load returns; no caller ever observes a
// partially populated exports object. A duplicate export name or a
// rejected hook registration aborts the load.
func Load(host enginebridge.Host, exports *isolate.Exports, opts Options) (*Bridge, error) {
	if host == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil host")
	}
	if exports == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil exports")
	}

	loadedMu.Lock()
	if _, dup := loaded[host]; dup {
		loadedMu.Unlock()
		return nil, errors.AlreadyLoaded(hostID(host))
	}
	loaded[host] = struct{}{}
	loadedMu.Unlock()

	abort := func() {
		loadedMu.Lock()
		delete(loaded, host)
		loadedMu.Unlock()
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	b := &Bridge{
		host:    host,
		exports: exports,
		log:     log,
		surface: opts.Surface,
	}
	b.state.Store(int32(StateLoading))

	// Self-registration: peers resolve shared engine symbols to a single
	// instance. Conflicts mean a peer got there first and are harmless.
	symbols.SelfRegister(map[string]any{
		symTokenRegistry: token.NewRegistry(),
		symEngineVersion: enginebridge.Version,
	})
	reg, _ := symbols.Resolve(symTokenRegistry)
	b.tokens = reg.(*token.Registry)

	b.pool = buffer.NewPool()
	b.reclaimer = buffer.NewReclaimer(b.pool)

	for _, entry := range manifest() {
		if b.surface == SurfaceReduced && !entry.Reduced {
			continue
		}
		if err := exports.Set(entry.Name, entry.bind(b)); err != nil {
			abort()
			return nil, err
		}
	}

	// Hook registration follows export construction; an aborted load must
	// leave no hook pinning the pool on the host.
	if err := host.AddGCPrologue(b.reclaimer.Reclaim); err != nil {
		abort()
		return nil, errors.HookRejected(err)
	}
	exports.Seal()

	b.reclaimer.Activate()
	b.state.Store(int32(StateActive))

	log.Debug("bridge loaded",
		zap.Uint64("isolate", hostID(host)),
		zap.Int("exports", exports.Len()),
		zap.Bool("reduced", b.surface == SurfaceReduced))
	return b, nil
}

// Close tears the bridge down with its isolate: the reclaimer performs its
// final drain, remaining engine state is released and later prologue
// invocations become no-ops. Closing twice is a no-op. The isolate slot
// stays taken; a module is never reloaded into the same isolate.
func (b *Bridge) Close() error {
	if !b.state.CompareAndSwap(int32(StateActive), int32(StateTearingDown)) {
		return nil
	}

	if b.runner != nil {
		b.runner.Close(context.Background())
	}

	b.reclaimer.Shutdown()
	b.pool.Close()
	b.state.Store(int32(StateUnloaded))

	b.log.Debug("bridge unloaded", zap.Uint64("isolate", hostID(b.host)))
	return nil
}

// State returns the bridge's lifecycle position.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Surface returns the surface the bridge was loaded with.
func (b *Bridge) Surface() Surface {
	return b.surface
}

// Exports returns the exports object the bridge populated.
func (b *Bridge) Exports() *isolate.Exports {
	return b.exports
}

// Pool returns the bridge's shared-buffer pool.
func (b *Bridge) Pool() *buffer.Pool {
	return b.pool
}

// Reclaimer returns the bridge's reclaimer.
func (b *Bridge) Reclaimer() *buffer.Reclaimer {
	return b.reclaimer
}

// Tokens returns the process-shared token registry.
func (b *Bridge) Tokens() *token.Registry {
	return b.tokens
}

// Stats is a point-in-time snapshot of the buffer subsystem.
type Stats struct {
	AllocatedBytes  int64
	ActiveBuffers   int
	PendingReleases int64
	Reclaimed       uint64
	Leaked          uint64
	Epochs          uint64
}

// Stats snapshots the buffer subsystem.
func (b *Bridge) Stats() Stats {
	return Stats{
		AllocatedBytes:  b.pool.AllocatedBytes(),
		ActiveBuffers:   b.pool.Active(),
		PendingReleases: b.pool.PendingReleases(),
		Reclaimed:       b.reclaimer.Reclaimed(),
		Leaked:          b.reclaimer.Leaked(),
		Epochs:          b.reclaimer.Epochs(),
	}
}

func (b *Bridge) filterRunner(ctx context.Context) (*script.Runner, error) {
	b.runnerOnce.Do(func() {
		b.runner, b.runnerErr = script.NewRunner(ctx)
	})
	return b.runner, b.runnerErr
}

func hostID(host enginebridge.Host) uint64 {
	if ider, ok := host.(interface{ ID() uint64 }); ok {
		return ider.ID()
	}
	return 0
}
