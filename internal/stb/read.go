package stb

import (
	"fmt"
	"io"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// ReadListing decodes the header of an STB file and the first developer
// listing at the header's developer listings offset. A zero offset means
// the file carries no developer listings.
func (d *Decoder) ReadListing(r io.ReaderAt, size int64) (*model.Listing, error) {
	hdr := make([]byte, min(size, HeaderSize))
	if n, err := r.ReadAt(hdr, 0); n < len(hdr) {
		return nil, fmt.Errorf("read header bytes: %w", err)
	}
	header, _, err := DecodeHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	listing := &model.Listing{Header: header}

	offset := int64(header.DeveloperListingsOffset)
	if offset == 0 {
		return listing, nil
	}
	if offset >= size {
		return nil, fmt.Errorf("developer listings at %d beyond file size %d: %w", offset, size, binary.ErrOutOfRange)
	}

	data := make([]byte, size-offset)
	if n, err := r.ReadAt(data, offset); n < len(data) {
		return nil, fmt.Errorf("read developer listings: %w", err)
	}
	dev, _, err := d.DecodeDeveloperListing(data)
	if err != nil {
		return nil, fmt.Errorf("decode developer listing: %w", err)
	}
	listing.Developer = &dev
	return listing, nil
}

// ReadListing reads a listing with the default UTF-8 decoder
func ReadListing(r io.ReaderAt, size int64) (*model.Listing, error) {
	return std.ReadListing(r, size)
}
