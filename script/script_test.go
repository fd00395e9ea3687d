package script

import (
	"context"
	"testing"

	"github.com/plugkit/engine-bridge/isolate"
)

// (module (func (export "filter") (result i32) i32.const 1))
var matchAllWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x0a, 0x01, 0x06, 'f', 'i', 'l', 't', 'e', 'r', 0x00, 0x00,
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x01, 0x0b,
}

// (module
//
//	(import "env" "frame_len" (func (result i32)))
//	(func (export "filter") (result i32)
//	  call 0
//	  i32.const 4
//	  i32.gt_u))
var lenFilterWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x02, 0x11, 0x01,
	0x03, 'e', 'n', 'v',
	0x09, 'f', 'r', 'a', 'm', 'e', '_', 'l', 'e', 'n',
	0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x0a, 0x01, 0x06, 'f', 'i', 'l', 't', 'e', 'r', 0x00, 0x01,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x10, 0x00, 0x41, 0x04, 0x4b, 0x0b,
}

// Same module shape as matchAllWasm but exporting nothing.
var noExportWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x01, 0x0b,
}

func TestScript_BindsIsolate(t *testing.T) {
	iso := isolate.New()
	s := New(iso)

	if s.Isolate() != iso {
		t.Fatal("Script must hold its isolate")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestRunner_MatchAll(t *testing.T) {
	ctx := context.Background()

	r, err := NewRunner(ctx)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Close(ctx)

	f, err := r.Compile(ctx, "match-all", matchAllWasm)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	ok, err := f.Run(ctx, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected match")
	}
}

func TestRunner_FrameLenImport(t *testing.T) {
	ctx := context.Background()

	r, err := NewRunner(ctx)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Close(ctx)

	f, err := r.Compile(ctx, "len-filter", lenFilterWasm)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	short, err := f.Run(ctx, []byte{1, 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if short {
		t.Fatal("Two-byte frame must not match a len>4 filter")
	}

	long, err := f.Run(ctx, []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !long {
		t.Fatal("Six-byte frame must match a len>4 filter")
	}
}

func TestRunner_InvalidBinaryRejected(t *testing.T) {
	ctx := context.Background()

	r, err := NewRunner(ctx)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Close(ctx)

	if _, err := r.Compile(ctx, "garbage", []byte("not wasm")); err == nil {
		t.Fatal("Compile must reject an invalid binary")
	}
}

func TestRunner_MissingFilterExport(t *testing.T) {
	ctx := context.Background()

	r, err := NewRunner(ctx)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Close(ctx)

	if _, err := r.Compile(ctx, "no-export", noExportWasm); err == nil {
		t.Fatal("Compile must reject a module without a filter export")
	}
}
