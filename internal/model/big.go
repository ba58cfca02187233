package model

// Archive is a decoded BIG archive index: the header plus every bank,
// with the banks' file indexes when they were loaded.
type Archive struct {
	Header ArchiveHeader `json:"header" yaml:"header"`
	Banks  []Bank        `json:"banks" yaml:"banks"`
}

// ArchiveHeader is the fixed 16-byte BIG header
type ArchiveHeader struct {
	Version         uint32 `json:"version" yaml:"version"`
	BankTableOffset uint32 `json:"bankTableOffset" yaml:"bankTableOffset"` // Absolute offset of the bank table
}

// BankIndexEntry describes one bank of the archive
type BankIndexEntry struct {
	Name        string `json:"name" yaml:"name"`
	BankID      uint32 `json:"bankId" yaml:"bankId"`
	EntryCount  uint32 `json:"entryCount" yaml:"entryCount"`
	IndexOffset uint32 `json:"indexOffset" yaml:"indexOffset"` // Absolute offset of the bank's file index
	IndexSize   uint32 `json:"indexSize" yaml:"indexSize"`     // Size of the file index in bytes
	BlockSize   uint32 `json:"blockSize" yaml:"blockSize"`
}

// Bank pairs a bank entry with its decoded file index (nil if not loaded)
type Bank struct {
	BankIndexEntry `yaml:",inline"`
	Index          *FileIndex `json:"index,omitempty" yaml:"index,omitempty"`
}

// FileIndex is the ordered list of files in a bank
type FileIndex struct {
	FileTypesCount uint32      `json:"fileTypesCount" yaml:"fileTypesCount"`
	FileType       uint32      `json:"fileType" yaml:"fileType"`
	Entries        []FileEntry `json:"entries" yaml:"entries"` // On-disk order
}

// FileEntry locates one asset inside the archive
type FileEntry struct {
	MagicNumber uint32   `json:"magicNumber" yaml:"magicNumber"`
	ID          uint32   `json:"id" yaml:"id"`
	FileType    uint32   `json:"fileType" yaml:"fileType"`
	Size        uint32   `json:"size" yaml:"size"`   // Payload size in bytes
	Start       uint32   `json:"start" yaml:"start"` // Absolute payload offset
	DevTypeFlag uint32   `json:"devTypeFlag" yaml:"devTypeFlag"`
	SymbolName  string   `json:"symbolName" yaml:"symbolName"`
	CRC         uint32   `json:"crc" yaml:"crc"`
	SourceFiles []string `json:"sourceFiles" yaml:"sourceFiles"`
	SubHeader   []byte   `json:"subHeader" yaml:"subHeader"` // Texture/mesh metadata, not interpreted
}

// End returns the offset one past the payload's last byte
func (e FileEntry) End() uint64 {
	return uint64(e.Start) + uint64(e.Size)
}
