// Package fabledec provides functions for decoding the BIG, STB and LEV
// binary formats.
//
// This package can be used as a library to inspect archives and levels
// programmatically.
//
// Example usage:
//
//	f, _ := os.Open("textures.big")
//	defer f.Close()
//	stat, _ := f.Stat()
//
//	archive, err := fabledec.ParseArchive(f, stat.Size())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fabledec.WriteText(os.Stdout, archive)
package fabledec

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dyuri/fabledec/internal/archive"
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/export"
	"github.com/dyuri/fabledec/internal/lev"
	"github.com/dyuri/fabledec/internal/model"
	"github.com/dyuri/fabledec/internal/stb"
	"github.com/dyuri/fabledec/internal/text"
)

// TextCodec decodes the name fields of a file
type TextCodec = binary.TextCodec

// CodecForCodePage maps a code page number to a TextCodec
func CodecForCodePage(codePage int) (TextCodec, error) {
	return binary.CodecForCodePage(codePage)
}

// Option configures a Parse call
type Option func(*settings)

type settings struct {
	text TextCodec
	log  logrus.FieldLogger
}

// WithTextCodec decodes name fields with c instead of strict UTF-8
func WithTextCodec(c TextCodec) Option {
	return func(s *settings) { s.text = c }
}

// WithLogger sets the logger for archive load diagnostics
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) { s.log = l }
}

func newSettings(opts []Option) settings {
	s := settings{text: binary.UTF8, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ParseArchive reads a BIG archive: the header, the bank table and every
// bank's file index.
//
// The reader must support ReadAt for random access. The size parameter
// should be the total file size in bytes.
//
// Example:
//
//	f, _ := os.Open("textures.big")
//	defer f.Close()
//	stat, _ := f.Stat()
//	archive, err := ParseArchive(f, stat.Size())
func ParseArchive(r io.ReaderAt, size int64, opts ...Option) (*model.Archive, error) {
	s := newSettings(opts)
	a, err := archive.New(r, size, archive.WithTextCodec(s.text), archive.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	return a.Model(true)
}

// ParseListing reads an STB header and its first developer listing
func ParseListing(r io.ReaderAt, size int64, opts ...Option) (*model.Listing, error) {
	s := newSettings(opts)
	return stb.NewDecoder(s.text).ReadListing(r, size)
}

// LevelOptions selects the optional parts of a level to decode
type LevelOptions = lev.ReadOptions

// ParseLevel reads a LEV file. The header is always decoded; cells and
// navigation data are decoded when selected in lo.
//
// Example:
//
//	level, err := ParseLevel(f, stat.Size(), LevelOptions{Navigation: true})
func ParseLevel(r io.ReaderAt, size int64, lo LevelOptions, opts ...Option) (*model.Level, error) {
	s := newSettings(opts)
	return lev.NewDecoder(s.text).ReadLevel(r, size, lo)
}

// WriteText writes a decoded *model.Archive, *model.Listing or *model.Level
// as a bracketed-section report.
func WriteText(w io.Writer, v any) error {
	writer := text.NewWriter(w)
	switch v := v.(type) {
	case *model.Archive:
		return writer.WriteArchive(v)
	case *model.Listing:
		return writer.WriteListing(v)
	case *model.Level:
		return writer.WriteLevel(v)
	}
	return &Error{Code: "unsupported_value", Message: "value has no text report"}
}

// Export serializes v as "json", "yaml" or "cbor"
func Export(w io.Writer, format string, v any) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return &Error{Code: "unsupported_format", Message: "unsupported export format", Cause: err}
	}
	return export.Write(w, f, v)
}

// FileType identifies one of the supported formats
type FileType string

const (
	ArchiveFile FileType = "big"
	ListingFile FileType = "stb"
	LevelFile   FileType = "lev"
)

// DetectFileType identifies a file by its magic bytes, falling back to the
// .lev extension since level files carry no magic.
func DetectFileType(r io.ReaderAt, name string) (FileType, error) {
	magic := make([]byte, 4)
	if n, _ := r.ReadAt(magic, 0); n == len(magic) {
		switch {
		case bytes.Equal(magic, []byte("BIGB")):
			return ArchiveFile, nil
		case bytes.Equal(magic, []byte("BBBB")):
			return ListingFile, nil
		}
	}
	if strings.EqualFold(filepath.Ext(name), ".lev") {
		return LevelFile, nil
	}
	return "", ErrUnknownFileType
}

// Decode errors. Match with errors.Is; any decode failure of the same kind
// matches.
var (
	ErrTagMismatch        = binary.ErrTagMismatch
	ErrInsufficientInput  = binary.ErrInsufficientInput
	ErrInvalidText        = binary.ErrInvalidText
	ErrUnknownNodeVariant = binary.ErrUnknownNodeVariant

	// ErrOutOfRange reports an offset in a decoded header that points
	// outside the file.
	ErrOutOfRange = binary.ErrOutOfRange
)

// DecodeError is the failure of a single field decode
type DecodeError = binary.Error

// FieldError wraps a failure inside a nested record or sequence element
type FieldError = binary.FieldError

// Kind categorizes a decode failure
type Kind = binary.Kind

const (
	TagMismatch        = binary.TagMismatch
	InsufficientInput  = binary.InsufficientInput
	InvalidText        = binary.InvalidText
	UnknownNodeVariant = binary.UnknownNodeVariant
)

// KindOf returns the kind of the innermost decode failure in err's chain,
// or "" if err is not a decode failure.
func KindOf(err error) Kind {
	return binary.KindOf(err)
}

// Common errors
var (
	ErrUnknownFileType = &Error{Code: "unknown_file_type", Message: "not a BIG, STB or LEV file"}
)

// Error represents a fabledec error that is not a decode failure
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
