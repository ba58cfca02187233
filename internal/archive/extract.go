package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// Extracted describes one payload written by ExtractAll
type Extracted struct {
	Entry  model.FileEntry
	Path   string
	Size   int64
	Digest [32]byte // BLAKE3-256 of the payload
}

// Payload returns a reader over entry's payload bytes
func (a *Archive) Payload(entry model.FileEntry) (*io.SectionReader, error) {
	if entry.End() > uint64(a.size) {
		return nil, fmt.Errorf("entry %d (%s) spans %d+%d in archive of %d bytes: %w",
			entry.ID, entry.SymbolName, entry.Start, entry.Size, a.size, binary.ErrOutOfRange)
	}
	return io.NewSectionReader(a.r, int64(entry.Start), int64(entry.Size)), nil
}

// Extract copies entry's payload to w and returns the number of bytes
// written and their BLAKE3-256 digest
func (a *Archive) Extract(entry model.FileEntry, w io.Writer) (int64, [32]byte, error) {
	var digest [32]byte

	payload, err := a.Payload(entry)
	if err != nil {
		return 0, digest, err
	}

	hasher := blake3.New()
	n, err := io.Copy(io.MultiWriter(w, hasher), payload)
	if err != nil {
		return n, digest, fmt.Errorf("copy entry %d: %w", entry.ID, err)
	}
	copy(digest[:], hasher.Sum(nil))
	return n, digest, nil
}

// ExtractAll writes every entry of bank to outputDir, one file per entry
// named "<id>_<symbol name>". If filter is non-nil only entries it accepts
// are written.
func (a *Archive) ExtractAll(bank model.BankIndexEntry, outputDir string, filter func(model.FileEntry) bool) ([]Extracted, error) {
	idx, err := a.Index(bank)
	if err != nil {
		return nil, err
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var extracted []Extracted
	for _, entry := range idx.Entries {
		if filter != nil && !filter(entry) {
			continue
		}

		outputPath := filepath.Join(outputDir, OutputName(entry))
		out, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("create output file %s: %w", outputPath, err)
		}

		n, digest, err := a.Extract(entry, out)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", outputPath, err)
		}

		a.log.WithFields(logrus.Fields{
			"id":   entry.ID,
			"path": outputPath,
			"size": n,
		}).Debug("extracted entry")

		extracted = append(extracted, Extracted{
			Entry:  entry,
			Path:   outputPath,
			Size:   n,
			Digest: digest,
		})
	}

	return extracted, nil
}

// OutputName is the file name ExtractAll uses for entry. Path separators
// and parent references in the symbol name are flattened.
func OutputName(entry model.FileEntry) string {
	name := strings.NewReplacer("\\", "_", "/", "_", "..", "_", ":", "_").Replace(entry.SymbolName)
	if name == "" {
		return fmt.Sprintf("%d", entry.ID)
	}
	return fmt.Sprintf("%d_%s", entry.ID, name)
}
