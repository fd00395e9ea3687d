// Package variant provides the tagged value type exchanged between the
// engine and scripts. Slice values are the interesting case: they reference
// engine-owned shared buffers, tying script-visible data to the buffer
// package's reclamation protocol.
package variant
