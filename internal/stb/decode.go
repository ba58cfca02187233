// Package stb decodes the STB archive listing format.
//
// The header is "BBBB" followed by seven u32 fields, two of them
// undocumented. Developer listings interleave named fields with reserved
// u32 slots; the slots are skipped by width and never retained, so their
// widths must match exactly or every later field misaligns.
package stb

import (
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// HeaderSize is the number of bytes consumed by DecodeHeader
const HeaderSize = 32

var magic = []byte("BBBB")

// Decoder decodes STB structures using a text codec for file names.
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

// DecodeHeader decodes the listing header
func DecodeHeader(view []byte) (model.ListingHeader, []byte, error) {
	r := binary.NewReader(view)
	r.Tag("magic", magic)
	h := model.ListingHeader{Version: r.U32("version")}
	r.Skip("reserved", 4)
	r.Skip("reserved", 4) // Always 1
	h.HeaderSize = r.U32("header size")
	h.FileCount = r.U32("file count")
	h.LevelCount = r.U32("level count")
	h.DeveloperListingsOffset = r.U32("developer listings offset")
	if err := r.Err(); err != nil {
		return model.ListingHeader{}, view, err
	}
	return h, r.Rest(), nil
}

// DecodeDeveloperListing decodes one developer listing entry
func DecodeDeveloperListing(view []byte) (model.DeveloperListingEntry, []byte, error) {
	return std.DecodeDeveloperListing(view)
}

// DecodeDeveloperListings decodes n consecutive developer listing entries
func DecodeDeveloperListings(view []byte, n uint32) ([]model.DeveloperListingEntry, []byte, error) {
	return std.DecodeDeveloperListings(view, n)
}

// DecodeDeveloperListing decodes one developer listing entry. The entry
// ends with a 16-byte trailer of four reserved u32.
func (d *Decoder) DecodeDeveloperListing(view []byte) (model.DeveloperListingEntry, []byte, error) {
	r := binary.NewReader(view)
	coded := binary.CodedString(d.text)

	e := model.DeveloperListingEntry{
		ListingStart: r.U32("listing start"),
		FileID:       r.U32("file id"),
	}
	r.Skip("reserved", 4) // Null
	e.FileSize = r.U32("file size")
	e.Offset = r.U32("offset")
	r.Skip("reserved", 4) // Null
	e.FileName = binary.Field(r, "file name", coded)
	r.Skip("reserved", 4) // Null
	r.Skip("reserved", 4) // Always 1
	e.FileNameAlt = binary.Field(r, "alternate file name", coded)
	e.BytesLeft = r.U32("bytes left")

	// Trailing block is four u32 (16 bytes): 0x0C, 0x16, null, and an
	// enumerator or CRC
	r.Skip("reserved", 4)
	r.Skip("reserved", 4)
	r.Skip("reserved", 4)
	r.Skip("reserved", 4)

	if err := r.Err(); err != nil {
		return model.DeveloperListingEntry{}, view, err
	}
	return e, r.Rest(), nil
}

// DecodeDeveloperListings decodes n consecutive developer listing entries
func (d *Decoder) DecodeDeveloperListings(view []byte, n uint32) ([]model.DeveloperListingEntry, []byte, error) {
	r := binary.NewReader(view)
	entries := binary.Sequence(r, "developer listings", n, d.DecodeDeveloperListing)
	if err := r.Err(); err != nil {
		return nil, view, err
	}
	return entries, r.Rest(), nil
}
