// Package testutil builds little-endian fixtures for decoder tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Builder accumulates little-endian fields
type Builder struct {
	buf    bytes.Buffer
	endian binary.AppendByteOrder
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{endian: binary.LittleEndian}
}

// Bytes returns a copy of everything written so far
func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

// Len returns the number of bytes written so far
func (b *Builder) Len() int {
	return b.buf.Len()
}

func (b *Builder) Raw(p ...byte) *Builder {
	b.buf.Write(p)
	return b
}

func (b *Builder) Zeros(n int) *Builder {
	b.buf.Write(make([]byte, n))
	return b
}

func (b *Builder) U8(v uint8) *Builder {
	b.buf.WriteByte(v)
	return b
}

func (b *Builder) U16(v uint16) *Builder {
	b.buf.Write(b.endian.AppendUint16(nil, v))
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	b.buf.Write(b.endian.AppendUint32(nil, v))
	return b
}

func (b *Builder) U64(v uint64) *Builder {
	b.buf.Write(b.endian.AppendUint64(nil, v))
	return b
}

func (b *Builder) F32(v float32) *Builder {
	return b.U32(math.Float32bits(v))
}

// Str writes s as a uint32 byte count followed by its bytes
func (b *Builder) Str(s string) *Builder {
	b.U32(uint32(len(s)))
	b.buf.WriteString(s)
	return b
}

// CStr writes s followed by a NUL terminator
func (b *Builder) CStr(s string) *Builder {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}
