package bridge

import (
	"context"
	"sort"

	enginebridge "github.com/plugkit/engine-bridge"
	"github.com/plugkit/engine-bridge/errors"
	"github.com/plugkit/engine-bridge/script"
	"github.com/plugkit/engine-bridge/token"
	"github.com/plugkit/engine-bridge/variant"
)

// Entry is one row of the public-API manifest.
type Entry struct {
	Name string
	// Reduced marks entries that survive into the reduced surface.
	Reduced bool
	bind    func(b *Bridge) any
}

// manifest enumerates the engine's stable public surface. Names are fixed;
// a duplicate here is a programming error caught at load time.
func manifest() []Entry {
	return []Entry{
		{Name: "version", Reduced: true, bind: func(*Bridge) any {
			return func() string { return enginebridge.Version }
		}},

		{Name: "token.get", Reduced: true, bind: func(b *Bridge) any {
			return func(name string) uint64 {
				return uint64(b.tokens.Intern(name))
			}
		}},
		{Name: "token.string", Reduced: true, bind: func(b *Bridge) any {
			return func(t uint64) (string, error) {
				s, ok := b.tokens.String(token.Token(t))
				if !ok {
					return "", errors.NotFound(errors.PhaseExports, "token", "")
				}
				return s, nil
			}
		}},

		{Name: "variant.nil", Reduced: true, bind: func(*Bridge) any {
			return func() variant.Value { return variant.Nil() }
		}},
		{Name: "variant.string", Reduced: true, bind: func(*Bridge) any {
			return func(s string) variant.Value { return variant.String(s) }
		}},
		{Name: "variant.int", Reduced: true, bind: func(*Bridge) any {
			return func(v int64) variant.Value { return variant.Int64(v) }
		}},

		// buffer.alloc returns a slice variant whose only reference is the
		// host wrapper; releasing the variant and collecting frees it.
		{Name: "buffer.alloc", bind: func(b *Bridge) any {
			return func(size int) (variant.Value, error) {
				h, err := b.pool.Alloc(size)
				if err != nil {
					return variant.Nil(), err
				}
				w, err := b.pool.Wrap(h)
				if err != nil {
					return variant.Nil(), err
				}
				// Hand the creator reference to the host side.
				if err := b.pool.Release(h); err != nil {
					return variant.Nil(), err
				}
				return variant.Slice(w), nil
			}
		}},
		{Name: "buffer.bytes", Reduced: true, bind: func(*Bridge) any {
			return func(v variant.Value) []byte { return v.Bytes() }
		}},
		{Name: "buffer.release", Reduced: true, bind: func(*Bridge) any {
			return func(v variant.Value) { v.Release() }
		}},
		{Name: "buffer.stats", Reduced: true, bind: func(b *Bridge) any {
			return func() Stats { return b.Stats() }
		}},

		{Name: "script.compile", bind: func(b *Bridge) any {
			return func(ctx context.Context, name string, wasm []byte) (*script.Filter, error) {
				r, err := b.filterRunner(ctx)
				if err != nil {
					return nil, err
				}
				return r.Compile(ctx, name, wasm)
			}
		}},
	}
}

// ManifestNames returns the export names of a surface, sorted.
func ManifestNames(s Surface) []string {
	var names []string
	for _, e := range manifest() {
		if s == SurfaceReduced && !e.Reduced {
			continue
		}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
