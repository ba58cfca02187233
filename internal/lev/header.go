// Package lev decodes the LEV level format: the level header, the
// heightmap and soundmap cell grids, and the navigation graph.
package lev

import (
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// PaletteSize is the size of each opaque palette block in the header
const PaletteSize = 33792

// Decoder decodes LEV structures using a text codec for sound theme names.
// A Decoder is immutable and safe for concurrent use.
type Decoder struct {
	text binary.TextCodec
}

// NewDecoder creates a decoder; a nil codec selects strict UTF-8
func NewDecoder(text binary.TextCodec) *Decoder {
	if text == nil {
		text = binary.UTF8
	}
	return &Decoder{text: text}
}

var std = NewDecoder(nil)

// DecodeHeader decodes the level header
func DecodeHeader(view []byte) (model.LevelHeader, []byte, error) {
	return std.DecodeHeader(view)
}

// DecodeHeader decodes the level header.
//
// The sound theme count stored in the file is one more than the number of
// theme names that follow; the count is decremented with uint32 arithmetic,
// so a stored count of zero requests 2^32-1 names and fails on input.
func (d *Decoder) DecodeHeader(view []byte) (model.LevelHeader, []byte, error) {
	r := binary.NewReader(view)
	h := model.LevelHeader{
		HeaderSize: r.U32("header size"),
		Version:    r.U16("version"),
	}
	r.Skip("padding", 3)
	r.Skip("reserved", 4)
	h.ObsoleteOffset = r.U32("obsolete offset")
	r.Skip("reserved", 4)
	h.NavigationOffset = r.U32("navigation offset")
	r.Skip("map header size", 1)
	h.MapVersion = r.U32("map version")
	h.UniqueIDCount = r.U64("unique id count")
	h.Width = r.U32("width")
	h.Height = r.U32("height")
	r.Skip("reserved", 1) // Always true

	r.Skip("heightmap palette", PaletteSize)
	h.AmbientSoundVersion = r.U32("ambient sound version")
	themeCount := r.U32("sound themes count")
	r.Skip("sound palette", PaletteSize)
	h.Checksum = r.U32("checksum")

	h.SoundThemes = binary.Sequence(r, "sound themes", themeCount-1, binary.CodedString(d.text))

	if err := r.Err(); err != nil {
		return model.LevelHeader{}, view, err
	}
	return h, r.Rest(), nil
}
