// Package binary provides the field reader, error kinds and text codecs
// shared by the BIG, STB and LEV decoders.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeFunc is the shape shared by every record decoder: it consumes a
// value from the front of view and returns it with the remaining view.
// On failure it returns the original view.
type DecodeFunc[T any] func(view []byte) (T, []byte, error)

// Reader consumes little-endian fields from the front of an immutable byte
// view. The first failure is sticky: later reads return zero values and Err
// reports the original failure. A Reader never reads outside its view.
type Reader struct {
	buf    []byte
	pos    int
	endian binary.ByteOrder // All three formats are little-endian
	err    error
}

// NewReader creates a reader positioned at the start of view
func NewReader(view []byte) *Reader {
	return &Reader{
		buf:    view,
		endian: binary.LittleEndian,
	}
}

// Err returns the first failure, if any
func (r *Reader) Err() error {
	return r.err
}

// Offset returns the number of bytes consumed so far
func (r *Reader) Offset() int {
	return r.pos
}

// Len returns the number of unread bytes
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Rest returns the unread part of the view
func (r *Reader) Rest() []byte {
	return r.buf[r.pos:]
}

// Fail records err as the reader's failure unless one is already recorded
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// take returns the next n bytes without copying
func (r *Reader) take(field string, n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > uint64(r.Len()) {
		r.err = &Error{
			Kind:    InsufficientInput,
			Field:   field,
			Offset:  r.pos,
			Message: fmt.Sprintf("need %d bytes, have %d", n, r.Len()),
		}
		return nil
	}
	end := r.pos + int(n)
	b := r.buf[r.pos:end:end]
	r.pos = end
	return b
}

// U8 reads one byte
func (r *Reader) U8(field string) uint8 {
	b := r.take(field, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads one byte; any non-zero value is true
func (r *Reader) Bool(field string) bool {
	return r.U8(field) != 0
}

// U16 reads a little-endian uint16
func (r *Reader) U16(field string) uint16 {
	b := r.take(field, 2)
	if b == nil {
		return 0
	}
	return r.endian.Uint16(b)
}

// U32 reads a little-endian uint32
func (r *Reader) U32(field string) uint32 {
	b := r.take(field, 4)
	if b == nil {
		return 0
	}
	return r.endian.Uint32(b)
}

// U64 reads a little-endian uint64
func (r *Reader) U64(field string) uint64 {
	b := r.take(field, 8)
	if b == nil {
		return 0
	}
	return r.endian.Uint64(b)
}

// F32 reads a little-endian IEEE-754 single
func (r *Reader) F32(field string) float32 {
	return math.Float32frombits(r.U32(field))
}

// Tag requires the literal bytes want at the cursor.
// If the remaining bytes are a strict prefix of want the failure is
// InsufficientInput, otherwise TagMismatch. Nothing is consumed on failure.
func (r *Reader) Tag(field string, want []byte) {
	if r.err != nil {
		return
	}
	rest := r.Rest()
	if bytes.HasPrefix(rest, want) {
		r.pos += len(want)
		return
	}
	if len(rest) < len(want) && bytes.HasPrefix(want, rest) {
		r.take(field, uint64(len(want)))
		return
	}
	got := rest[:min(len(rest), len(want))]
	r.err = &Error{
		Kind:   TagMismatch,
		Field:  field,
		Offset: r.pos,
		Want:   want,
		Got:    bytes.Clone(got),
	}
}

// Skip consumes n reserved bytes
func (r *Reader) Skip(field string, n int) {
	r.take(field, uint64(n))
}

// Bytes reads n bytes and returns a copy
func (r *Reader) Bytes(field string, n uint64) []byte {
	b := r.take(field, n)
	if r.err != nil {
		return nil
	}
	if b == nil {
		return []byte{}
	}
	return bytes.Clone(b)
}

// LengthPrefixed reads a uint32 byte count followed by that many bytes and
// returns a copy of the bytes
func (r *Reader) LengthPrefixed(field string) []byte {
	n := r.U32(field + " length")
	if r.err != nil {
		return nil
	}
	return r.Bytes(field, uint64(n))
}

// CString reads a NUL-terminated run and consumes the terminator.
// The returned bytes exclude the terminator and are copied.
func (r *Reader) CString(field string) []byte {
	if r.err != nil {
		return nil
	}
	rest := r.Rest()
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		r.err = &Error{
			Kind:    TagMismatch,
			Field:   field,
			Offset:  r.pos + len(rest),
			Want:    []byte{0},
			Got:     []byte{},
			Message: "missing NUL terminator",
		}
		return nil
	}
	s := bytes.Clone(rest[:i])
	r.pos += i + 1
	return s
}

// Text decodes raw with codec. start is the offset raw was read from.
func (r *Reader) Text(field string, start int, codec TextCodec, raw []byte) string {
	if r.err != nil {
		return ""
	}
	s, err := codec.DecodeText(raw)
	if err != nil {
		r.err = &Error{
			Kind:    InvalidText,
			Field:   field,
			Offset:  start,
			Message: err.Error(),
		}
		return ""
	}
	return s
}

// U32s reads n little-endian uint32 values
func (r *Reader) U32s(field string, n uint32) []uint32 {
	b := r.take(field, uint64(n)*4)
	if r.err != nil {
		return nil
	}
	values := make([]uint32, n)
	for i := range values {
		values[i] = r.endian.Uint32(b[i*4:])
	}
	return values
}

// U64s reads n little-endian uint64 values
func (r *Reader) U64s(field string, n uint32) []uint64 {
	b := r.take(field, uint64(n)*8)
	if r.err != nil {
		return nil
	}
	values := make([]uint64, n)
	for i := range values {
		values[i] = r.endian.Uint64(b[i*8:])
	}
	return values
}

// Field runs decode on the unread view as a single nested record.
// Failures are wrapped in a *FieldError naming field.
func Field[T any](r *Reader, field string, decode DecodeFunc[T]) T {
	v, _ := nested(r, field, -1, decode)
	return v
}

// maxPrealloc bounds the capacity Sequence reserves from a decoded count
const maxPrealloc = 64

// Sequence runs decode exactly n times, collecting the values in order.
// A failing element aborts the sequence; the failure is wrapped in a
// *FieldError naming field and the element index.
func Sequence[T any](r *Reader, field string, n uint32, decode DecodeFunc[T]) []T {
	if r.err != nil {
		return nil
	}
	// A corrupt count reserves at most maxPrealloc elements
	items := make([]T, 0, min(uint64(n), uint64(r.Len()), maxPrealloc))
	for i := uint32(0); i < n; i++ {
		v, ok := nested(r, field, int(i), decode)
		if !ok {
			return nil
		}
		items = append(items, v)
	}
	return items
}

func nested[T any](r *Reader, field string, index int, decode DecodeFunc[T]) (T, bool) {
	var zero T
	if r.err != nil {
		return zero, false
	}
	start := r.pos
	v, rest, err := decode(r.buf[r.pos:])
	if err != nil {
		r.err = &FieldError{Field: field, Index: index, Offset: start, Err: err}
		return zero, false
	}
	r.pos = len(r.buf) - len(rest)
	return v, true
}
