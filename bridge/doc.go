// Package bridge is the module entry: it wires the engine into a host
// isolate and owns the module's lifetime.
//
// Load performs the three load-time steps in order: publish the engine's
// shared symbols so peer bridges converge on one instance, register the
// buffer reclaimer as the host's GC prologue hook, and populate the
// exports object from the public-API manifest. The exports object is
// sealed before Load returns, so scripts never observe a partial surface.
//
// A bridge moves through
//
//	unloaded -> loading -> active -> tearing-down -> unloaded
//
// and the reclaimer only runs in the active window; prologue invocations
// outside it are no-ops.
package bridge
