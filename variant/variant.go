package variant

import (
	"fmt"
	"math"
	"strconv"

	"github.com/plugkit/engine-bridge/buffer"
)

// Kind discriminates a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindFloat64
	KindString
	KindSlice
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindSlice:
		return "slice"
	}
	return "unknown"
}

// Value is the tagged value type carried across the bridge. Scalars are
// self-contained; a slice value references a shared buffer through a host
// wrapper, and dropping the value's last host reference is what eventually
// feeds the reclaimer.
type Value struct {
	buf  *buffer.Wrapper
	str  string
	num  uint64
	kind Kind
}

// Nil returns the nil value.
func Nil() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int64 returns a signed integer value.
func Int64(v int64) Value {
	return Value{kind: KindInt64, num: uint64(v)}
}

// Uint64 returns an unsigned integer value.
func Uint64(v uint64) Value {
	return Value{kind: KindUint64, num: v}
}

// Float64 returns a floating-point value.
func Float64(v float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(v)}
}

// String returns a string value.
func String(v string) Value {
	return Value{kind: KindString, str: v}
}

// Slice returns a value referencing a shared buffer through w. The value
// does not take an extra reference; it adopts the wrapper's.
func Slice(w *buffer.Wrapper) Value {
	return Value{kind: KindSlice, buf: w}
}

// Kind returns the value's discriminant.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.num != 0
}

// Int64 returns the signed integer payload; 0 for other kinds.
func (v Value) Int64() int64 {
	if v.kind != KindInt64 {
		return 0
	}
	return int64(v.num)
}

// Uint64 returns the unsigned integer payload; 0 for other kinds.
func (v Value) Uint64() uint64 {
	if v.kind != KindUint64 {
		return 0
	}
	return v.num
}

// Float64 returns the floating-point payload; 0 for other kinds.
func (v Value) Float64() float64 {
	if v.kind != KindFloat64 {
		return 0
	}
	return math.Float64frombits(v.num)
}

// Str returns the string payload; empty for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// String renders the value for diagnostics, one form per kind.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindInt64:
		return strconv.FormatInt(int64(v.num), 10)
	case KindUint64:
		return strconv.FormatUint(v.num, 10)
	case KindFloat64:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindSlice:
		if v.buf == nil || v.buf.Released() {
			return "slice(released)"
		}
		return fmt.Sprintf("slice(%d bytes)", len(v.buf.Bytes()))
	}
	return "unknown"
}

// Slice returns the wrapped buffer; nil for other kinds.
func (v Value) Slice() *buffer.Wrapper {
	if v.kind != KindSlice {
		return nil
	}
	return v.buf
}

// Bytes returns the referenced buffer's storage; nil for other kinds or
// once the wrapper is released.
func (v Value) Bytes() []byte {
	if v.kind != KindSlice || v.buf == nil {
		return nil
	}
	return v.buf.Bytes()
}

// Release drops a slice value's host reference. A no-op for every other
// kind, so callers can release values uniformly.
func (v Value) Release() {
	if v.kind == KindSlice && v.buf != nil {
		v.buf.Release()
	}
}
