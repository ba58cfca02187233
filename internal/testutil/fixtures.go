package testutil

// BIGFile is one payload of a fixture archive
type BIGFile struct {
	ID      uint32
	Name    string
	Sources []string
	Data    []byte
}

// FileEntry appends a file index entry
func (b *Builder) FileEntry(id, size, start uint32, name string, sources ...string) *Builder {
	b.U32(42) // magic number
	b.U32(id)
	b.U32(2) // file type
	b.U32(size)
	b.U32(start)
	b.U32(0) // dev type flag
	b.Str(name)
	b.U32(0xDEADBEEF) // crc
	b.U32(uint32(len(sources)))
	for _, s := range sources {
		b.Str(s)
	}
	return b.Str("") // empty sub-header
}

// BIGArchive builds a complete archive holding one bank. The layout is
// header, payloads in order, the bank's file index, then the bank table.
func BIGArchive(bank string, files ...BIGFile) []byte {
	const headerSize = 16

	offset := uint32(headerSize)
	payloads := NewBuilder()
	index := NewBuilder().
		U32(1). // file types count
		U32(2). // file type
		U32(uint32(len(files))).
		Zeros(56)
	for _, f := range files {
		payloads.Raw(f.Data...)
		index.FileEntry(f.ID, uint32(len(f.Data)), offset, f.Name, f.Sources...)
		offset += uint32(len(f.Data))
	}

	indexOffset := offset
	tableOffset := indexOffset + uint32(index.Len())

	return NewBuilder().
		Raw('B', 'I', 'G', 'B').
		U32(100).
		U32(tableOffset).
		U32(0).
		Raw(payloads.Bytes()...).
		Raw(index.Bytes()...).
		U32(1). // bank count
		CStr(bank).
		U32(1). // bank id
		U32(uint32(len(files))).
		U32(indexOffset).
		U32(uint32(index.Len())).
		U32(2048). // block size
		Bytes()
}

// STBListing builds an STB file whose single developer listing follows the
// 32-byte header
func STBListing(fileID uint32, fileName, altName string) []byte {
	const headerSize = 32
	return NewBuilder().
		Raw('B', 'B', 'B', 'B').
		U32(1). // version
		U32(0).
		U32(1).
		U32(headerSize).
		U32(3). // file count
		U32(2). // level count
		U32(headerSize).
		DeveloperListing(fileID, fileName, altName).
		Bytes()
}

// DeveloperListing appends one developer listing entry
func (b *Builder) DeveloperListing(fileID uint32, fileName, altName string) *Builder {
	b.U32(0x40) // listing start
	b.U32(fileID)
	b.U32(0)
	b.U32(1024)  // file size
	b.U32(0x800) // offset
	b.U32(0)
	b.Str(fileName)
	b.U32(0)
	b.U32(1)
	b.Str(altName)
	b.U32(16) // bytes left
	return b.U32(0x0C).U32(0x16).U32(0).U32(7)
}

const (
	palette        = 33792
	levHeaderFixed = 47 + palette + 8 + palette + 4
)

// LevelHeaderSize returns the encoded size of a level header with themes
func LevelHeaderSize(themes ...string) int {
	n := levHeaderFixed
	for _, t := range themes {
		n += 4 + len(t)
	}
	return n
}

// LevelHeader appends a level header. The stored sound theme count is one
// more than len(themes).
func (b *Builder) LevelHeader(width, height, navOffset uint32, themes ...string) *Builder {
	b.U32(uint32(LevelHeaderSize(themes...)))
	b.U16(1) // version
	b.Zeros(3 + 4)
	b.U32(0) // obsolete offset
	b.Zeros(4)
	b.U32(navOffset)
	b.U8(0)  // map header size
	b.U32(7) // map version
	b.U64(1000)
	b.U32(width)
	b.U32(height)
	b.U8(1)
	b.Zeros(palette)
	b.U32(3) // ambient sound version
	b.U32(uint32(len(themes) + 1))
	b.Zeros(palette)
	b.U32(0xC0FFEE) // checksum
	for _, t := range themes {
		b.Str(t)
	}
	return b
}

// NodeHeader appends the fields shared by regular, navigation and exit nodes
func (b *Builder) NodeHeader(layer, subset uint8, x, y float32, id uint32) *Builder {
	return b.U8(0).U8(1).U8(0).U8(0).U8(layer).U8(subset).F32(x).F32(y).U32(id)
}

// RegularNode appends a tagged regular node
func (b *Builder) RegularNode(id uint32, children [4]uint32) *Builder {
	b.Raw(0, 0, 0, 0, 0, 1, 0, 0).NodeHeader(0, 0, 16, 16, id)
	for _, c := range children {
		b.U32(c)
	}
	return b
}

// NavigationNode appends a tagged navigation node
func (b *Builder) NavigationNode(id uint32, neighbors ...uint32) *Builder {
	b.Raw(0, 0, 0, 1, 0, 1, 0, 1).NodeHeader(6, 0, 1.5, 2.5, id)
	b.U32(0).U8(128).U32(uint32(len(neighbors)))
	for _, n := range neighbors {
		b.U32(n)
	}
	return b
}

// ExitNode appends a tagged exit node
func (b *Builder) ExitNode(id uint32, neighbors []uint32, uniqueIDs []uint64) *Builder {
	b.Raw(1, 0, 0, 1, 1, 0, 1, 1).NodeHeader(6, 0, 0, 0, id)
	b.U32(0).U8(0).U32(uint32(len(neighbors)))
	for _, n := range neighbors {
		b.U32(n)
	}
	b.U32(uint32(len(uniqueIDs)))
	for _, u := range uniqueIDs {
		b.U64(u)
	}
	return b
}

// BlankNode appends a tagged blank node
func (b *Builder) BlankNode(root uint8) *Builder {
	return b.Raw(0, 1, 1).U8(0).U8(root).U8(0)
}

// SectionHeader appends a navigation section header with no interactive
// nodes; nodeCount graph nodes must follow.
func (b *Builder) SectionHeader(width, height, nodeCount uint32) *Builder {
	b.U32(0) // size
	b.U32(1) // version
	b.U32(width)
	b.U32(height)
	b.U32(7) // number of levels
	b.U32(0) // interactive nodes
	b.U32(1) // subsets
	return b.U32(nodeCount)
}

// LEVFile builds a level of width x height zeroed cells. When nodes is
// non-nil a navigation header naming one section "MAIN" follows the cells,
// and the section holds nodeCount graph nodes encoded in nodes.
func LEVFile(width, height, nodeCount uint32, nodes []byte, themes ...string) []byte {
	cells := int((width+1)*(height+1))*24 + int(width*height)*11
	navOffset := 0
	if nodes != nil {
		navOffset = LevelHeaderSize(themes...) + cells
	}

	b := NewBuilder().LevelHeader(width, height, uint32(navOffset), themes...)
	b.Zeros(cells)
	if nodes == nil {
		return b.Bytes()
	}

	sectionOffset := uint32(navOffset + 8 + 4 + len("MAIN") + 4)
	b.U32(sectionOffset).U32(1).Str("MAIN").U32(sectionOffset)
	b.SectionHeader(width, height, nodeCount).Raw(nodes...)
	return b.Bytes()
}
