package script

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/plugkit/engine-bridge/errors"
)

// filterExport is the function a filter module must export:
// no parameters, one i32 result, nonzero meaning the frame matches.
const filterExport = "filter"

// Runner executes filter programs against packet frames. Filters are core
// wasm modules; the runner exposes frame access to the guest through the
// "env" host module:
//
//	(import "env" "frame_len" (func (result i32)))
//	(import "env" "frame_read" (func (param i32 i32 i32) (result i32)))
//
// frame_read(dst, off, n) copies up to n frame bytes starting at off into
// guest memory at dst and returns the count copied.
//
// A Runner is NOT safe for concurrent use; confine it to one goroutine, as
// the current frame is runner state shared with the host functions.
type Runner struct {
	rt    wazero.Runtime
	frame []byte
}

// NewRunner creates a filter runner.
func NewRunner(ctx context.Context) (*Runner, error) {
	r := &Runner{
		rt: wazero.NewRuntime(ctx),
	}

	_, err := r.rt.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(r.frameLen).
		Export("frame_len").
		NewFunctionBuilder().
		WithFunc(r.frameRead).
		Export("frame_read").
		Instantiate(ctx)
	if err != nil {
		r.rt.Close(ctx)
		return nil, errors.New(errors.PhaseScript, errors.KindCompile).
			Detail("instantiate env host module").
			Cause(err).
			Build()
	}

	return r, nil
}

// Compile builds a filter from a wasm binary. The module must export
// "filter" with no parameters and one i32 result.
func (r *Runner) Compile(ctx context.Context, name string, wasm []byte) (*Filter, error) {
	compiled, err := r.rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.CompileFailed(name, err)
	}

	mod, err := r.rt.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.CompileFailed(name, err)
	}

	fn := mod.ExportedFunction(filterExport)
	if fn == nil {
		mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseScript, "export", filterExport)
	}

	return &Filter{runner: r, mod: mod, fn: fn}, nil
}

// Close releases the runner and every filter compiled from it.
func (r *Runner) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

func (r *Runner) frameLen() uint32 {
	return uint32(len(r.frame))
}

func (r *Runner) frameRead(_ context.Context, m api.Module, dst, off, n uint32) uint32 {
	if int(off) >= len(r.frame) {
		return 0
	}
	chunk := r.frame[off:]
	if int(n) < len(chunk) {
		chunk = chunk[:n]
	}
	if !m.Memory().Write(dst, chunk) {
		return 0
	}
	return uint32(len(chunk))
}

// Filter is a compiled, instantiated filter program.
type Filter struct {
	runner *Runner
	mod    api.Module
	fn     api.Function
}

// Run evaluates the filter against one frame and reports whether it
// matched.
func (f *Filter) Run(ctx context.Context, frame []byte) (bool, error) {
	f.runner.frame = frame
	defer func() { f.runner.frame = nil }()

	results, err := f.fn.Call(ctx)
	if err != nil {
		return false, errors.New(errors.PhaseScript, errors.KindInvalidInput).
			Detail("filter trapped").
			Cause(err).
			Build()
	}
	return results[0] != 0, nil
}

// Close releases the filter's instance.
func (f *Filter) Close(ctx context.Context) error {
	return f.mod.Close(ctx)
}
