package lev

import (
	"fmt"
	"io"
	"math"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// ReadOptions selects the optional parts of a level to decode
type ReadOptions struct {
	// Cells decodes the heightmap and soundmap grids that follow the header:
	// (width+1)*(height+1) heightmap vertices, then width*height sound cells.
	Cells bool
	// Navigation follows the header's navigation offset and decodes the
	// navigation header and every section it names.
	Navigation bool
}

// ReadLevel reads a whole level file and decodes the parts selected by opts.
// Navigation and section offsets are absolute file offsets.
func (d *Decoder) ReadLevel(r io.ReaderAt, size int64, opts ReadOptions) (*model.Level, error) {
	data := make([]byte, size)
	if n, err := r.ReadAt(data, 0); n < len(data) {
		return nil, fmt.Errorf("read level bytes: %w", err)
	}

	header, rest, err := d.DecodeHeader(data)
	if err != nil {
		return nil, fmt.Errorf("decode level header: %w", err)
	}
	lvl := &model.Level{Header: header}

	if opts.Cells {
		vertices := (uint64(header.Width) + 1) * (uint64(header.Height) + 1)
		cells := uint64(header.Width) * uint64(header.Height)
		if vertices > math.MaxUint32 {
			return nil, fmt.Errorf("heightmap of %dx%d: %w", header.Width, header.Height, binary.ErrOutOfRange)
		}

		lvl.Heightmap, rest, err = DecodeHeightmap(rest, uint32(vertices))
		if err != nil {
			return nil, fmt.Errorf("decode heightmap: %w", err)
		}
		lvl.Soundmap, _, err = DecodeSoundmap(rest, uint32(cells))
		if err != nil {
			return nil, fmt.Errorf("decode soundmap: %w", err)
		}
	}

	if opts.Navigation && header.NavigationOffset != 0 {
		view, err := slice(data, header.NavigationOffset)
		if err != nil {
			return nil, fmt.Errorf("navigation header: %w", err)
		}
		nav, _, err := DecodeNavigationHeader(view)
		if err != nil {
			return nil, fmt.Errorf("decode navigation header: %w", err)
		}
		lvl.Navigation = &nav

		lvl.Sections = make([]model.NavigationSection, 0, len(nav.Sections))
		for _, ref := range nav.Sections {
			view, err := slice(data, ref.StartOffset)
			if err != nil {
				return nil, fmt.Errorf("navigation section %q: %w", ref.Name, err)
			}
			section, _, err := DecodeNavigationSection(view)
			if err != nil {
				return nil, fmt.Errorf("decode navigation section %q: %w", ref.Name, err)
			}
			lvl.Sections = append(lvl.Sections, section)
		}
	}

	return lvl, nil
}

// ReadLevel reads a level with the default UTF-8 decoder
func ReadLevel(r io.ReaderAt, size int64, opts ReadOptions) (*model.Level, error) {
	return std.ReadLevel(r, size, opts)
}

func slice(data []byte, offset uint32) ([]byte, error) {
	if uint64(offset) >= uint64(len(data)) {
		return nil, fmt.Errorf("offset %d beyond file size %d: %w", offset, len(data), binary.ErrOutOfRange)
	}
	return data[offset:], nil
}
