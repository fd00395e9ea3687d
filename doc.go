// Package enginebridge bridges a packet-analysis engine into an embedding
// scripting host.
//
// The engine owns reference-counted shared byte buffers that may also be
// referenced by wrapper objects living on a host heap governed by a
// garbage collector. The bridge keeps both sides consistent: wrapper
// finalization enqueues buffer handles on a pending-release queue, and a
// reclaimer drains that queue once per collection epoch, immediately before
// the host collector runs.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	engine-bridge/       Root package with the host-facing contracts
//	├── bridge/          Module entry, export manifest and lifecycle
//	├── isolate/         Host execution contexts and the exports object
//	├── buffer/          Shared buffers, pending-release queue, reclaimer
//	├── variant/         Tagged values carried across the bridge
//	├── token/           Interned string tokens
//	├── symbols/         Process-wide symbol table shared by peer bridges
//	├── script/          Script handles and the wazero filter runner
//	└── errors/          Structured error types
//
// # Quick Start
//
// Load the bridge into a fresh isolate:
//
//	iso := isolate.New()
//	exports := isolate.NewExports()
//
//	b, err := bridge.Load(iso, exports, bridge.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	// Host collection cycles drive buffer reclamation.
//	iso.Collect()
//
// # Lifecycle
//
// A bridge moves through Unloaded -> Loading -> Active -> TearingDown ->
// Unloaded. Loading a bridge twice into the same isolate is an error. The
// reclaimer is a no-op outside the Active state, so stray collection cycles
// after teardown are harmless.
//
// # Thread Safety
//
// Collection, and therefore reclamation, happens on the isolate goroutine.
// Engine code may retain and release buffers from any goroutine; the
// pending-release queue is multi-producer, single-consumer.
package enginebridge
