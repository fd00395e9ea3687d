// Package isolate models the host side of the bridge: execution contexts
// with cooperative collection cycles, and the exports object scripts reach
// the engine through.
//
// An embedder with a real garbage-collected runtime adapts its own
// pre-collection notification to enginebridge.Host instead; Isolate is the
// reference host used by the engine's own tooling and tests.
package isolate
