package buffer

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		if g := m.GetGauge(); g != nil {
			return g.GetValue()
		}
		return m.GetCounter().GetValue()
	}
	t.Fatalf("Metric %q not gathered", name)
	return 0
}

func TestCollector_TracksPoolState(t *testing.T) {
	p := NewPool()
	r := newActiveReclaimer(p)

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(p, r)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	h, _ := p.Alloc(256)
	w, _ := p.Wrap(h)
	p.Release(h)

	if got := gatherValue(t, reg, "plugkit_buffer_allocated_bytes"); got != 256 {
		t.Fatalf("Expected 256 allocated bytes, got %v", got)
	}
	if got := gatherValue(t, reg, "plugkit_buffer_active"); got != 1 {
		t.Fatalf("Expected 1 active buffer, got %v", got)
	}

	w.Release()
	if got := gatherValue(t, reg, "plugkit_buffer_pending_release"); got != 1 {
		t.Fatalf("Expected 1 pending release, got %v", got)
	}

	r.Reclaim()
	if got := gatherValue(t, reg, "plugkit_buffer_allocated_bytes"); got != 0 {
		t.Fatalf("Expected 0 allocated bytes after reclaim, got %v", got)
	}
	if got := gatherValue(t, reg, "plugkit_buffer_reclaimed_total"); got != 1 {
		t.Fatalf("Expected 1 reclaimed, got %v", got)
	}
}

func TestCollector_WithoutReclaimer(t *testing.T) {
	p := NewPool()

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(p, nil)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("Expected 3 metric families, got %d", len(families))
	}
}
