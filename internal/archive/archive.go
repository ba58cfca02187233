// Package archive loads BIG archives from disk: it decodes the header and
// bank table, seeks to each bank's file index on demand, and extracts
// payload bytes for file entries.
package archive

import (
	"fmt"
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/dyuri/fabledec/internal/big"
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// DefaultCacheSize is the number of decoded file indexes kept in memory
const DefaultCacheSize = 16

// Archive is an opened BIG archive. It is safe for concurrent use.
type Archive struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer

	header model.ArchiveHeader
	banks  []model.BankIndexEntry

	dec   *big.Decoder
	cache *lru.Cache[uint32, *model.FileIndex] // Decoded indexes by bank id
	log   logrus.FieldLogger
}

type options struct {
	text      binary.TextCodec
	cacheSize int
	log       logrus.FieldLogger
}

// Option configures an Archive
type Option func(*options)

// WithTextCodec sets the codec used for bank, symbol and source file names
func WithTextCodec(c binary.TextCodec) Option {
	return func(o *options) { o.text = c }
}

// WithCacheSize sets how many decoded file indexes are cached
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger for load diagnostics
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// Open opens the BIG archive at path
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	a, err := New(f, stat.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// New decodes the header and bank table of the archive held by r
func New(r io.ReaderAt, size int64, opts ...Option) (*Archive, error) {
	o := options{
		cacheSize: DefaultCacheSize,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := lru.New[uint32, *model.FileIndex](max(o.cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("create index cache: %w", err)
	}

	a := &Archive{
		r:     r,
		size:  size,
		dec:   big.NewDecoder(o.text),
		cache: cache,
		log:   o.log,
	}

	hdr, err := a.read(0, big.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if a.header, _, err = big.DecodeHeader(hdr); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	offset := int64(a.header.BankTableOffset)
	table, err := a.read(offset, size-offset)
	if err != nil {
		return nil, fmt.Errorf("read bank table: %w", err)
	}
	if a.banks, _, err = a.dec.DecodeBankTable(table); err != nil {
		return nil, fmt.Errorf("decode bank table: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"version": a.header.Version,
		"banks":   len(a.banks),
	}).Debug("opened archive")

	return a, nil
}

// Close closes the underlying file when the archive was opened by path
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Size returns the archive size in bytes
func (a *Archive) Size() int64 {
	return a.size
}

// Header returns the decoded archive header
func (a *Archive) Header() model.ArchiveHeader {
	return a.header
}

// Banks returns the bank table in on-disk order
func (a *Archive) Banks() []model.BankIndexEntry {
	return append([]model.BankIndexEntry(nil), a.banks...)
}

// Bank looks up a bank by name
func (a *Archive) Bank(name string) (model.BankIndexEntry, bool) {
	for _, b := range a.banks {
		if b.Name == name {
			return b, true
		}
	}
	return model.BankIndexEntry{}, false
}

// Index returns the decoded file index of bank. Indexes are cached.
func (a *Archive) Index(bank model.BankIndexEntry) (*model.FileIndex, error) {
	if idx, ok := a.cache.Get(bank.BankID); ok {
		return idx, nil
	}

	data, err := a.read(int64(bank.IndexOffset), int64(bank.IndexSize))
	if err != nil {
		return nil, fmt.Errorf("read index of bank %q: %w", bank.Name, err)
	}
	decoded, _, err := a.dec.DecodeFileIndex(data)
	if err != nil {
		return nil, fmt.Errorf("decode index of bank %q: %w", bank.Name, err)
	}

	idx := &decoded
	a.cache.Add(bank.BankID, idx)
	a.log.WithFields(logrus.Fields{
		"bank":    bank.Name,
		"entries": len(idx.Entries),
	}).Debug("loaded file index")
	return idx, nil
}

// Model returns the archive as a model value, loading every bank's index
// when withIndexes is set.
func (a *Archive) Model(withIndexes bool) (*model.Archive, error) {
	m := &model.Archive{
		Header: a.header,
		Banks:  make([]model.Bank, 0, len(a.banks)),
	}
	for _, b := range a.banks {
		bank := model.Bank{BankIndexEntry: b}
		if withIndexes {
			idx, err := a.Index(b)
			if err != nil {
				return nil, err
			}
			bank.Index = idx
		}
		m.Banks = append(m.Banks, bank)
	}
	return m, nil
}

// read returns n bytes at offset, failing with ErrOutOfRange when the range
// leaves the archive
func (a *Archive) read(offset, n int64) ([]byte, error) {
	if offset < 0 || n < 0 || offset > a.size || n > a.size-offset {
		return nil, fmt.Errorf("range %d+%d in archive of %d bytes: %w", offset, n, a.size, binary.ErrOutOfRange)
	}
	buf := make([]byte, n)
	if got, err := a.r.ReadAt(buf, offset); got < len(buf) {
		return nil, err
	}
	return buf, nil
}
