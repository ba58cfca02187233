package stb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
	"github.com/dyuri/fabledec/internal/testutil"
)

// TestDecodeHeader tests the fixed header
func TestDecodeHeader(t *testing.T) {
	view := testutil.STBListing(5, "Oakvale.lev", "oakvale")

	h, rest, err := DecodeHeader(view)
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	want := model.ListingHeader{
		Version:                 1,
		HeaderSize:              32,
		FileCount:               3,
		LevelCount:              2,
		DeveloperListingsOffset: 32,
	}
	if h != want {
		t.Errorf("DecodeHeader = %+v, want %+v", h, want)
	}
	if consumed := len(view) - len(rest); consumed != HeaderSize {
		t.Errorf("DecodeHeader consumed %d bytes, want %d", consumed, HeaderSize)
	}
}

// TestDecodeHeaderBadMagic tests that a wrong magic consumes nothing
func TestDecodeHeaderBadMagic(t *testing.T) {
	view := testutil.STBListing(5, "a", "b")
	copy(view, "BIGB")

	_, rest, err := DecodeHeader(view)
	if !errors.Is(err, binary.ErrTagMismatch) {
		t.Errorf("error = %v, want tag mismatch", err)
	}
	if len(rest) != len(view) {
		t.Errorf("rest is %d bytes, want %d", len(rest), len(view))
	}
}

// TestDecodeDeveloperListing tests named fields between reserved slots
func TestDecodeDeveloperListing(t *testing.T) {
	view := testutil.NewBuilder().
		DeveloperListing(77, "Bowerstone.lev", "bowerstone").
		U8(0x99).
		Bytes()

	e, rest, err := DecodeDeveloperListing(view)
	if err != nil {
		t.Fatalf("DecodeDeveloperListing failed: %v", err)
	}
	want := model.DeveloperListingEntry{
		ListingStart: 0x40,
		FileID:       77,
		FileSize:     1024,
		Offset:       0x800,
		FileName:     "Bowerstone.lev",
		FileNameAlt:  "bowerstone",
		BytesLeft:    16,
	}
	if e != want {
		t.Errorf("DecodeDeveloperListing = %+v, want %+v", e, want)
	}
	if !bytes.Equal(rest, []byte{0x99}) {
		t.Errorf("rest = % x, want 99", rest)
	}
}

// TestDecodeDeveloperListingTrailer tests the width of the reserved
// trailer
func TestDecodeDeveloperListingTrailer(t *testing.T) {
	const name, alt = "a.lev", "alt"
	want := 6*4 + 4 + len(name) + 2*4 + 4 + len(alt) + 4 + 4*4

	view := testutil.NewBuilder().DeveloperListing(1, name, alt).Bytes()
	if len(view) != want {
		t.Fatalf("fixture is %d bytes, want %d", len(view), want)
	}
	_, rest, err := DecodeDeveloperListing(view)
	if err != nil {
		t.Fatalf("DecodeDeveloperListing failed: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("%d bytes left, want 0", len(rest))
	}

	// A three-slot trailer is short by one u32
	_, _, err = DecodeDeveloperListing(view[:want-4])
	var de *binary.Error
	if !errors.As(err, &de) || de.Kind != binary.InsufficientInput || de.Offset != want-4 {
		t.Errorf("error = %v, want insufficient input at %d", err, want-4)
	}
}

// TestDecodeDeveloperListings tests consecutive entries, including none
func TestDecodeDeveloperListings(t *testing.T) {
	view := testutil.NewBuilder().
		DeveloperListing(1, "a.lev", "a").
		DeveloperListing(2, "b.lev", "b").
		Bytes()

	entries, rest, err := DecodeDeveloperListings(view, 2)
	if err != nil {
		t.Fatalf("DecodeDeveloperListings failed: %v", err)
	}
	if len(entries) != 2 || entries[0].FileID != 1 || entries[1].FileName != "b.lev" {
		t.Errorf("entries = %+v", entries)
	}
	if len(rest) != 0 {
		t.Errorf("%d bytes left, want 0", len(rest))
	}

	entries, rest, err = DecodeDeveloperListings(view, 0)
	if err != nil || len(entries) != 0 || len(rest) != len(view) {
		t.Errorf("DecodeDeveloperListings(0) = %d entries, %d bytes left, %v", len(entries), len(rest), err)
	}

	_, rest, err = DecodeDeveloperListings(view, 3)
	var fe *binary.FieldError
	if !errors.As(err, &fe) || fe.Index != 2 {
		t.Errorf("error = %v, want failure at entry 2", err)
	}
	if len(rest) != len(view) {
		t.Error("failed decode consumed input")
	}
}

// TestDecodeDeveloperListingInvalidName tests file names that are not UTF-8
func TestDecodeDeveloperListingInvalidName(t *testing.T) {
	view := testutil.NewBuilder().DeveloperListing(1, "\xff.lev", "a").Bytes()

	_, _, err := DecodeDeveloperListing(view)
	if !errors.Is(err, binary.ErrInvalidText) {
		t.Errorf("error = %v, want invalid text", err)
	}
	var fe *binary.FieldError
	if !errors.As(err, &fe) || fe.Field != "file name" {
		t.Errorf("field error = %+v, want file name", fe)
	}
}

// TestTruncation tests that removing trailing bytes fails with
// insufficient input
func TestTruncation(t *testing.T) {
	header := testutil.STBListing(1, "a", "b")[:HeaderSize]
	for n := 0; n < len(header); n++ {
		if _, _, err := DecodeHeader(header[:n]); !errors.Is(err, binary.ErrInsufficientInput) {
			t.Errorf("header truncated to %d bytes: error = %v", n, err)
		}
	}

	listing := testutil.NewBuilder().DeveloperListing(1, "a.lev", "alt").Bytes()
	for n := 0; n < len(listing); n++ {
		if _, _, err := DecodeDeveloperListing(listing[:n]); !errors.Is(err, binary.ErrInsufficientInput) {
			t.Errorf("listing truncated to %d bytes: error = %v", n, err)
		}
	}
}

// TestReadListing tests loading a listing file
func TestReadListing(t *testing.T) {
	data := testutil.STBListing(5, "Oakvale.lev", "oakvale")

	l, err := ReadListing(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadListing failed: %v", err)
	}
	if l.Header.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", l.Header.FileCount)
	}
	if l.Developer == nil || l.Developer.FileID != 5 || l.Developer.FileNameAlt != "oakvale" {
		t.Errorf("Developer = %+v", l.Developer)
	}
}

// TestReadListingNoDeveloper tests a zero developer listings offset
func TestReadListingNoDeveloper(t *testing.T) {
	data := testutil.STBListing(5, "a", "b")[:HeaderSize]
	data[28] = 0

	l, err := ReadListing(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadListing failed: %v", err)
	}
	if l.Developer != nil {
		t.Errorf("Developer = %+v, want nil", l.Developer)
	}
}

// TestReadListingErrors tests offsets and sizes outside the file
func TestReadListingErrors(t *testing.T) {
	data := testutil.STBListing(5, "a", "b")

	beyond := bytes.Clone(data)
	beyond[28] = 0xFF
	beyond[29] = 0xFF
	if _, err := ReadListing(bytes.NewReader(beyond), int64(len(beyond))); !errors.Is(err, binary.ErrOutOfRange) {
		t.Errorf("offset beyond file: error = %v, want out of range", err)
	}

	short := data[:HeaderSize-1]
	if _, err := ReadListing(bytes.NewReader(short), int64(len(short))); !errors.Is(err, binary.ErrInsufficientInput) {
		t.Errorf("short header: error = %v, want insufficient input", err)
	}

	cut := data[:len(data)-1]
	if _, err := ReadListing(bytes.NewReader(cut), int64(len(cut))); !errors.Is(err, binary.ErrInsufficientInput) {
		t.Errorf("cut listing: error = %v, want insufficient input", err)
	}
}

func FuzzDecodeHeader(f *testing.F) {
	f.Add(testutil.STBListing(1, "a", "b"))
	f.Add([]byte("BBB"))
	f.Fuzz(func(t *testing.T, view []byte) {
		_, rest, err := DecodeHeader(view)
		if err != nil && len(rest) != len(view) {
			t.Errorf("failed decode consumed %d bytes", len(view)-len(rest))
		}
	})
}

func FuzzDecodeDeveloperListing(f *testing.F) {
	f.Add(testutil.NewBuilder().DeveloperListing(1, "a.lev", "a").Bytes())
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, view []byte) {
		_, rest, err := DecodeDeveloperListing(view)
		if err != nil && len(rest) != len(view) {
			t.Errorf("failed decode consumed %d bytes", len(view)-len(rest))
		}
	})
}
