package bridge

import (
	"context"
	stderrors "errors"
	"testing"

	enginebridge "github.com/plugkit/engine-bridge"
	bridgeerrors "github.com/plugkit/engine-bridge/errors"
	"github.com/plugkit/engine-bridge/isolate"
	"github.com/plugkit/engine-bridge/script"
	"github.com/plugkit/engine-bridge/variant"
)

func mustLoad(t *testing.T, opts Options) (*Bridge, *isolate.Isolate) {
	t.Helper()

	iso := isolate.New()
	exports := isolate.NewExports()
	b, err := Load(iso, exports, opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, iso
}

func allocEntry(t *testing.T, b *Bridge) func(int) (variant.Value, error) {
	t.Helper()

	fn, ok := b.Exports().Get("buffer.alloc")
	if !ok {
		t.Fatal("buffer.alloc not exported")
	}
	return fn.(func(int) (variant.Value, error))
}

func TestLoad_CleanLoad(t *testing.T) {
	b, iso := mustLoad(t, Options{})

	if b.State() != StateActive {
		t.Fatalf("Expected active state, got %v", b.State())
	}
	if iso.PrologueHooks() != 1 {
		t.Fatalf("Expected 1 prologue hook, got %d", iso.PrologueHooks())
	}
	if !b.Exports().Sealed() {
		t.Fatal("Exports must be sealed after load")
	}

	want := ManifestNames(SurfaceFull)
	got := b.Exports().Names()
	if len(got) != len(want) {
		t.Fatalf("Expected %d exports, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Exports mismatch: expected %v, got %v", want, got)
		}
	}
}

func TestLoad_ExactlyOncePerIsolate(t *testing.T) {
	b, iso := mustLoad(t, Options{})
	_ = b

	_, err := Load(iso, isolate.NewExports(), Options{})
	if err == nil {
		t.Fatal("Second load on one isolate must fail")
	}

	target := &bridgeerrors.Error{
		Phase: bridgeerrors.PhaseLoad,
		Kind:  bridgeerrors.KindAlreadyLoaded,
	}
	if !stderrors.Is(err, target) {
		t.Fatalf("Expected already_loaded error, got %v", err)
	}
}

func TestLoad_DuplicateExportRejected(t *testing.T) {
	iso := isolate.New()
	exports := isolate.NewExports()

	// An embedder colliding with a manifest name is a fatal load error.
	exports.Set("version", "squatter")

	_, err := Load(iso, exports, Options{})
	if err == nil {
		t.Fatal("Load must fail on a duplicate export name")
	}

	target := &bridgeerrors.Error{
		Phase: bridgeerrors.PhaseExports,
		Kind:  bridgeerrors.KindDuplicateExport,
	}
	if !stderrors.Is(err, target) {
		t.Fatalf("Expected duplicate_export error, got %v", err)
	}
}

func TestLoad_AbortLeavesNoHook(t *testing.T) {
	iso := isolate.New()
	exports := isolate.NewExports()
	exports.Set("version", "squatter")

	if _, err := Load(iso, exports, Options{}); err == nil {
		t.Fatal("Load must fail on a duplicate export name")
	}
	if iso.PrologueHooks() != 0 {
		t.Fatalf("Aborted load must not leave hooks registered, got %d",
			iso.PrologueHooks())
	}

	// The isolate slot is released, so a clean load still succeeds.
	b, err := Load(iso, isolate.NewExports(), Options{})
	if err != nil {
		t.Fatalf("Load after abort failed: %v", err)
	}
	defer b.Close()
	if iso.PrologueHooks() != 1 {
		t.Fatalf("Expected 1 prologue hook, got %d", iso.PrologueHooks())
	}
}

type rejectingHost struct{ err error }

func (h *rejectingHost) AddGCPrologue(enginebridge.PrologueHook) error {
	return h.err
}

func TestLoad_HookRejectionIsFatal(t *testing.T) {
	host := &rejectingHost{err: stderrors.New("isolate shutting down")}

	_, err := Load(host, isolate.NewExports(), Options{})
	if err == nil {
		t.Fatal("Load must fail when the host rejects the prologue hook")
	}

	target := &bridgeerrors.Error{
		Phase: bridgeerrors.PhaseRegister,
		Kind:  bridgeerrors.KindHookRejected,
	}
	if !stderrors.Is(err, target) {
		t.Fatalf("Expected hook_rejected error, got %v", err)
	}
}

func TestLoad_ReducedSurface(t *testing.T) {
	b, _ := mustLoad(t, Options{Surface: SurfaceReduced})

	want := ManifestNames(SurfaceReduced)
	got := b.Exports().Names()
	if len(got) != len(want) {
		t.Fatalf("Expected %d exports, got %d: %v", len(want), len(got), got)
	}
	for _, denied := range []string{"buffer.alloc", "script.compile"} {
		if _, ok := b.Exports().Get(denied); ok {
			t.Fatalf("Reduced surface must not export %q", denied)
		}
	}
}

func TestAllocateAndCollect(t *testing.T) {
	b, iso := mustLoad(t, Options{})
	alloc := allocEntry(t, b)

	base := b.Stats().AllocatedBytes

	v, err := alloc(512)
	if err != nil {
		t.Fatalf("buffer.alloc failed: %v", err)
	}
	if b.Stats().AllocatedBytes != base+512 {
		t.Fatalf("Expected %d allocated bytes, got %d", base+512, b.Stats().AllocatedBytes)
	}

	v.Release()
	iso.Collect()

	stats := b.Stats()
	if stats.AllocatedBytes != base {
		t.Fatalf("Expected allocated bytes back to %d, got %d", base, stats.AllocatedBytes)
	}
	if stats.Reclaimed != 1 {
		t.Fatalf("Expected 1 reclaimed buffer, got %d", stats.Reclaimed)
	}
}

func TestEngineRetainedBufferSurvivesCollection(t *testing.T) {
	b, iso := mustLoad(t, Options{})
	alloc := allocEntry(t, b)

	v, _ := alloc(64)
	h := v.Slice().Handle()

	// Engine-internal storage takes its own reference.
	if !b.Pool().Retain(h) {
		t.Fatal("Retain failed")
	}

	v.Release()
	iso.Collect()

	if _, ok := b.Pool().Bytes(h); !ok {
		t.Fatal("Engine-retained buffer must survive collection")
	}

	// Engine lets go; the buffer dies immediately.
	if err := b.Pool().Release(h); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, ok := b.Pool().Bytes(h); ok {
		t.Fatal("Buffer must be freed after the engine reference drops")
	}
}

func TestPeerBridgesShareTokens(t *testing.T) {
	b1, _ := mustLoad(t, Options{})
	b2, _ := mustLoad(t, Options{})

	if b1.Tokens() != b2.Tokens() {
		t.Fatal("Peer bridges must resolve one token registry instance")
	}

	get1, _ := b1.Exports().Get("token.get")
	get2, _ := b2.Exports().Get("token.get")

	t1 := get1.(func(string) uint64)("eth")
	t2 := get2.(func(string) uint64)("eth")
	if t1 != t2 {
		t.Fatalf("Peers must agree on tokens, got %d and %d", t1, t2)
	}
}

func TestClose_TeardownDrainsAndDisarms(t *testing.T) {
	b, iso := mustLoad(t, Options{})
	alloc := allocEntry(t, b)

	v, _ := alloc(128)
	v.Release()

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b.State() != StateUnloaded {
		t.Fatalf("Expected unloaded state, got %v", b.State())
	}
	if b.Stats().AllocatedBytes != 0 {
		t.Fatalf("Expected final drain to free everything, got %d bytes",
			b.Stats().AllocatedBytes)
	}

	// Prologue invocations after teardown are no-ops.
	epochs := b.Stats().Epochs
	iso.Collect()
	if b.Stats().Epochs != epochs {
		t.Fatal("Reclaimer must be inert after teardown")
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Second close must be a no-op, got %v", err)
	}
}

// (module (func (export "filter") (result i32) i32.const 1))
var matchAllWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x0a, 0x01, 0x06, 'f', 'i', 'l', 't', 'e', 'r', 0x00, 0x00,
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x01, 0x0b,
}

func TestScriptCompileEntry(t *testing.T) {
	ctx := context.Background()
	b, _ := mustLoad(t, Options{})

	fn, ok := b.Exports().Get("script.compile")
	if !ok {
		t.Fatal("script.compile not exported")
	}
	compile := fn.(func(context.Context, string, []byte) (*script.Filter, error))

	f, err := compile(ctx, "match-all", matchAllWasm)
	if err != nil {
		t.Fatalf("script.compile failed: %v", err)
	}

	matched, err := f.Run(ctx, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !matched {
		t.Fatal("Expected match")
	}
}
