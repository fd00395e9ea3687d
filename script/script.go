package script

import (
	"github.com/plugkit/engine-bridge/isolate"
)

// Script anchors script-execution state to one isolate. It holds the
// isolate by non-owning reference; the isolate always outlives its
// scripts. Richer script kinds build on this anchor, the way Filter does.
type Script struct {
	iso *isolate.Isolate
}

// New binds a script to its isolate.
func New(iso *isolate.Isolate) *Script {
	return &Script{iso: iso}
}

// Isolate returns the isolate the script runs in.
func (s *Script) Isolate() *isolate.Isolate {
	return s.iso
}

// Close releases script-specific resources. The base script holds none.
func (s *Script) Close() error {
	return nil
}
