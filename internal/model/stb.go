package model

// Listing is a decoded STB archive listing
type Listing struct {
	Header    ListingHeader          `json:"header" yaml:"header"`
	Developer *DeveloperListingEntry `json:"developer,omitempty" yaml:"developer,omitempty"`
}

// ListingHeader is the fixed STB header
type ListingHeader struct {
	Version                 uint32 `json:"version" yaml:"version"`
	HeaderSize              uint32 `json:"headerSize" yaml:"headerSize"`
	FileCount               uint32 `json:"fileCount" yaml:"fileCount"`
	LevelCount              uint32 `json:"levelCount" yaml:"levelCount"`
	DeveloperListingsOffset uint32 `json:"developerListingsOffset" yaml:"developerListingsOffset"`
}

// DeveloperListingEntry is one entry of the developer listings
type DeveloperListingEntry struct {
	ListingStart uint32 `json:"listingStart" yaml:"listingStart"`
	FileID       uint32 `json:"fileId" yaml:"fileId"`
	FileSize     uint32 `json:"fileSize" yaml:"fileSize"`
	Offset       uint32 `json:"offset" yaml:"offset"`
	FileName     string `json:"fileName" yaml:"fileName"`
	FileNameAlt  string `json:"fileNameAlt" yaml:"fileNameAlt"`
	BytesLeft    uint32 `json:"bytesLeft" yaml:"bytesLeft"` // Bytes remaining in the listing after this field
}
