package binary

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TextCodec turns the raw bytes of a text field into a string
type TextCodec interface {
	DecodeText(raw []byte) (string, error)
}

var errInvalidUTF8 = errors.New("bytes are not valid UTF-8")

type utf8Codec struct{}

func (utf8Codec) DecodeText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}
	return string(raw), nil
}

// UTF8 accepts only valid UTF-8. It is the default codec.
var UTF8 TextCodec = utf8Codec{}

type charmapCodec struct {
	cm *charmap.Charmap
}

// DecodeText creates a fresh decoder per call; x/text decoders carry
// transform state and must not be shared between goroutines.
func (c charmapCodec) DecodeText(raw []byte) (string, error) {
	decoded, err := c.cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func (c charmapCodec) String() string {
	return c.cm.String()
}

// Charmap returns a codec for a single-byte code page
func Charmap(cm *charmap.Charmap) TextCodec {
	return charmapCodec{cm: cm}
}

// CodecForCodePage maps a Windows/IBM code page number to a codec.
// 0 and 65001 select UTF-8.
func CodecForCodePage(codePage int) (TextCodec, error) {
	switch codePage {
	case 0, 65001:
		return UTF8, nil
	case 1250: // Central European
		return Charmap(charmap.Windows1250), nil
	case 1251: // Cyrillic
		return Charmap(charmap.Windows1251), nil
	case 1252: // Western European
		return Charmap(charmap.Windows1252), nil
	case 1254: // Turkish
		return Charmap(charmap.Windows1254), nil
	case 437:
		return Charmap(charmap.CodePage437), nil
	case 850:
		return Charmap(charmap.CodePage850), nil
	case 28591:
		return Charmap(charmap.ISO8859_1), nil
	}
	return nil, fmt.Errorf("unsupported code page: %d", codePage)
}

// CodePageName returns a human readable name for a code page
func CodePageName(codePage int) string {
	switch codePage {
	case 0, 65001:
		return "UTF-8"
	case 1250:
		return "Windows-1250 (Central European)"
	case 1251:
		return "Windows-1251 (Cyrillic)"
	case 1252:
		return "Windows-1252 (Western European)"
	case 1254:
		return "Windows-1254 (Turkish)"
	case 437:
		return "CP437 (IBM PC)"
	case 850:
		return "CP850 (IBM Latin-1)"
	case 28591:
		return "ISO-8859-1"
	}
	return "Unknown"
}

// DecodeCodedString decodes a coded string: a uint32 byte count followed by
// that many bytes of text.
func DecodeCodedString(view []byte, codec TextCodec) (string, []byte, error) {
	r := NewReader(view)
	start := r.Offset() + 4
	raw := r.LengthPrefixed("coded string")
	s := r.Text("coded string", start, codec, raw)
	if err := r.Err(); err != nil {
		return "", view, err
	}
	return s, r.Rest(), nil
}

// CodedString adapts DecodeCodedString for use with Field and Sequence
func CodedString(codec TextCodec) DecodeFunc[string] {
	return func(view []byte) (string, []byte, error) {
		return DecodeCodedString(view, codec)
	}
}

// TrimNUL drops trailing NUL padding from fixed-width names
func TrimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}
