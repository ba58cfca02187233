// Package big decodes the BIG archive index format.
//
// Layout (little-endian):
//
//	Header:     "BIGB" | version u32 | bank table offset u32 | reserved u32
//	Bank table: bank count u32 | per bank: NUL-terminated name, bank id u32,
//	            entry count u32, index offset u32, index size u32, block size u32
//	File index: file types count u32 | file type u32 | entry count u32 |
//	            56 reserved bytes | entries
//	Entry:      magic u32 | id u32 | type u32 | size u32 | start u32 |
//	            dev type u32 | symbol name (u32 length + bytes) | crc u32 |
//	            source file count u32 + coded strings |
//	            sub-header (u32 length + bytes)
package big

import (
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

const (
	HeaderSize        = 16 // Bytes consumed by DecodeHeader
	fileIndexReserved = 56 // Undocumented fixed padding after the file index counters
)

var magic = []byte("BIGB")

// Decoder decodes BIG structures using a text codec for name fields.
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

// DecodeHeader decodes the 16-byte archive header
func DecodeHeader(view []byte) (model.ArchiveHeader, []byte, error) {
	r := binary.NewReader(view)
	r.Tag("magic", magic)
	h := model.ArchiveHeader{
		Version:         r.U32("version"),
		BankTableOffset: r.U32("bank table offset"),
	}
	r.Skip("reserved", 4)
	if err := r.Err(); err != nil {
		return model.ArchiveHeader{}, view, err
	}
	return h, r.Rest(), nil
}

// DecodeBankIndex decodes the bank count followed by the first bank entry.
// The count is not checked against the data present.
func DecodeBankIndex(view []byte) (model.BankIndexEntry, []byte, error) {
	return std.DecodeBankIndex(view)
}

// DecodeBankTable decodes the bank count and every bank entry
func DecodeBankTable(view []byte) ([]model.BankIndexEntry, []byte, error) {
	return std.DecodeBankTable(view)
}

// DecodeFileIndex decodes a bank's file index
func DecodeFileIndex(view []byte) (model.FileIndex, []byte, error) {
	return std.DecodeFileIndex(view)
}

// DecodeFileEntry decodes one file index entry
func DecodeFileEntry(view []byte) (model.FileEntry, []byte, error) {
	return std.DecodeFileEntry(view)
}

// DecodeBankIndex decodes the bank count followed by the first bank entry
func (d *Decoder) DecodeBankIndex(view []byte) (model.BankIndexEntry, []byte, error) {
	r := binary.NewReader(view)
	r.U32("bank count")
	bank := binary.Field(r, "bank", d.decodeBank)
	if err := r.Err(); err != nil {
		return model.BankIndexEntry{}, view, err
	}
	return bank, r.Rest(), nil
}

// DecodeBankTable decodes the bank count and every bank entry
func (d *Decoder) DecodeBankTable(view []byte) ([]model.BankIndexEntry, []byte, error) {
	r := binary.NewReader(view)
	count := r.U32("bank count")
	banks := binary.Sequence(r, "banks", count, d.decodeBank)
	if err := r.Err(); err != nil {
		return nil, view, err
	}
	return banks, r.Rest(), nil
}

func (d *Decoder) decodeBank(view []byte) (model.BankIndexEntry, []byte, error) {
	r := binary.NewReader(view)
	raw := r.CString("name")
	bank := model.BankIndexEntry{
		Name:        r.Text("name", 0, d.text, raw),
		BankID:      r.U32("bank id"),
		EntryCount:  r.U32("entry count"),
		IndexOffset: r.U32("index offset"),
		IndexSize:   r.U32("index size"),
		BlockSize:   r.U32("block size"),
	}
	if err := r.Err(); err != nil {
		return model.BankIndexEntry{}, view, err
	}
	return bank, r.Rest(), nil
}

// DecodeFileIndex decodes a bank's file index. Either every entry decodes
// or the whole index fails.
func (d *Decoder) DecodeFileIndex(view []byte) (model.FileIndex, []byte, error) {
	r := binary.NewReader(view)
	idx := model.FileIndex{
		FileTypesCount: r.U32("file types count"),
		FileType:       r.U32("file type"),
	}
	count := r.U32("entry count")
	r.Skip("reserved", fileIndexReserved)
	idx.Entries = binary.Sequence(r, "entries", count, d.DecodeFileEntry)
	if err := r.Err(); err != nil {
		return model.FileIndex{}, view, err
	}
	return idx, r.Rest(), nil
}

// DecodeFileEntry decodes one file index entry
func (d *Decoder) DecodeFileEntry(view []byte) (model.FileEntry, []byte, error) {
	r := binary.NewReader(view)
	e := model.FileEntry{
		MagicNumber: r.U32("magic number"),
		ID:          r.U32("id"),
		FileType:    r.U32("file type"),
		Size:        r.U32("size"),
		Start:       r.U32("start"),
		DevTypeFlag: r.U32("dev type flag"),
	}

	nameStart := r.Offset() + 4
	raw := r.LengthPrefixed("symbol name")
	e.SymbolName = r.Text("symbol name", nameStart, d.text, raw)
	e.CRC = r.U32("crc")

	sourceCount := r.U32("source file count")
	e.SourceFiles = binary.Sequence(r, "source files", sourceCount, binary.CodedString(d.text))

	// Texture/mesh sub-headers are captured verbatim
	e.SubHeader = r.LengthPrefixed("sub-header")

	if err := r.Err(); err != nil {
		return model.FileEntry{}, view, err
	}
	return e, r.Rest(), nil
}
