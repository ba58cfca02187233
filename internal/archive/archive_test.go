package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
	"github.com/dyuri/fabledec/internal/testutil"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func fixture() []byte {
	return testutil.BIGArchive("textures",
		testutil.BIGFile{ID: 7, Name: "TEX_GRASS", Sources: []string{"art\\grass.tga"}, Data: []byte("hello world")},
		testutil.BIGFile{ID: 9, Name: "TEX_ROCK", Data: []byte("abc")},
	)
}

func openFixture(t *testing.T, data []byte, opts ...Option) *Archive {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	a, err := New(bytes.NewReader(data), int64(len(data)), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

// TestNew tests header and bank table loading
func TestNew(t *testing.T) {
	a := openFixture(t, fixture())

	if a.Header().Version != 100 {
		t.Errorf("Version = %d, want 100", a.Header().Version)
	}

	banks := a.Banks()
	if len(banks) != 1 {
		t.Fatalf("len(Banks) = %d, want 1", len(banks))
	}
	if banks[0].Name != "textures" {
		t.Errorf("bank name = %q, want %q", banks[0].Name, "textures")
	}
	if banks[0].EntryCount != 2 {
		t.Errorf("EntryCount = %d, want 2", banks[0].EntryCount)
	}

	if _, ok := a.Bank("textures"); !ok {
		t.Error("Bank(textures) not found")
	}
	if _, ok := a.Bank("meshes"); ok {
		t.Error("Bank(meshes) found, want missing")
	}
}

// TestIndex tests file index loading and caching
func TestIndex(t *testing.T) {
	a := openFixture(t, fixture(), WithCacheSize(1))
	bank, _ := a.Bank("textures")

	idx, err := a.Index(bank)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if len(idx.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(idx.Entries))
	}

	first := idx.Entries[0]
	if first.ID != 7 || first.SymbolName != "TEX_GRASS" {
		t.Errorf("first entry = %d %q, want 7 TEX_GRASS", first.ID, first.SymbolName)
	}
	if first.Start != 16 || first.Size != 11 {
		t.Errorf("first entry spans %d+%d, want 16+11", first.Start, first.Size)
	}
	if len(first.SourceFiles) != 1 || first.SourceFiles[0] != "art\\grass.tga" {
		t.Errorf("SourceFiles = %q, want [art\\grass.tga]", first.SourceFiles)
	}
	if idx.Entries[1].ID != 9 {
		t.Errorf("second entry id = %d, want 9", idx.Entries[1].ID)
	}

	again, err := a.Index(bank)
	if err != nil {
		t.Fatalf("second Index failed: %v", err)
	}
	if again != idx {
		t.Error("second Index call did not return the cached index")
	}
}

// TestIndexOutOfRange tests a bank whose index points past the archive
func TestIndexOutOfRange(t *testing.T) {
	a := openFixture(t, fixture())
	bank, _ := a.Bank("textures")
	bank.BankID = 99
	bank.IndexOffset = uint32(a.Size())

	_, err := a.Index(bank)
	if !errors.Is(err, binary.ErrOutOfRange) {
		t.Errorf("Index error = %v, want ErrOutOfRange", err)
	}
}

// TestNewErrors tests archives that fail to load
func TestNewErrors(t *testing.T) {
	data := fixture()

	t.Run("bad magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		copy(bad, "BIGX")
		_, err := New(bytes.NewReader(bad), int64(len(bad)), WithLogger(quietLogger()))
		if binary.KindOf(err) != binary.TagMismatch {
			t.Errorf("error kind = %q, want %q (err: %v)", binary.KindOf(err), binary.TagMismatch, err)
		}
	})

	t.Run("short header", func(t *testing.T) {
		_, err := New(bytes.NewReader(data[:10]), 10, WithLogger(quietLogger()))
		if !errors.Is(err, binary.ErrOutOfRange) {
			t.Errorf("error = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("truncated bank table", func(t *testing.T) {
		short := data[:len(data)-4]
		_, err := New(bytes.NewReader(short), int64(len(short)), WithLogger(quietLogger()))
		if !errors.Is(err, binary.ErrInsufficientInput) {
			t.Errorf("error = %v, want insufficient input", err)
		}
	})
}

// TestExtract tests payload extraction and digests
func TestExtract(t *testing.T) {
	a := openFixture(t, fixture())
	bank, _ := a.Bank("textures")
	idx, err := a.Index(bank)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	var buf bytes.Buffer
	n, digest, err := a.Extract(idx.Entries[0], &buf)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if n != 11 || buf.String() != "hello world" {
		t.Errorf("Extract wrote %d bytes %q, want 11 bytes %q", n, buf.String(), "hello world")
	}

	want := blake3.Sum256([]byte("hello world"))
	if digest != want {
		t.Errorf("digest = %x, want %x", digest, want)
	}

	bad := idx.Entries[1]
	bad.Start = uint32(a.Size()) - 1
	if _, _, err := a.Extract(bad, &buf); !errors.Is(err, binary.ErrOutOfRange) {
		t.Errorf("Extract past end error = %v, want ErrOutOfRange", err)
	}
}

// TestExtractAll tests writing a bank to disk
func TestExtractAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a := openFixture(t, fixture())
	bank, _ := a.Bank("textures")

	files, err := a.ExtractAll(bank, dir, nil)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("extracted %d files, want 2", len(files))
	}

	got, err := os.ReadFile(filepath.Join(dir, "9_TEX_ROCK"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("9_TEX_ROCK = %q, want %q", got, "abc")
	}

	filtered, err := a.ExtractAll(bank, t.TempDir(), func(e model.FileEntry) bool { return e.ID == 7 })
	if err != nil {
		t.Fatalf("filtered ExtractAll failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Entry.ID != 7 {
		t.Errorf("filtered ExtractAll = %+v, want only entry 7", filtered)
	}
}

// TestOutputName tests symbol name flattening
func TestOutputName(t *testing.T) {
	tests := []struct {
		entry model.FileEntry
		want  string
	}{
		{model.FileEntry{ID: 1, SymbolName: "MESH_HERO"}, "1_MESH_HERO"},
		{model.FileEntry{ID: 2, SymbolName: "..\\art/x"}, "2___art_x"},
		{model.FileEntry{ID: 3}, "3"},
	}

	for _, tt := range tests {
		if got := OutputName(tt.entry); got != tt.want {
			t.Errorf("OutputName(%+v) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}

// TestModel tests assembling the archive model
func TestModel(t *testing.T) {
	a := openFixture(t, fixture())

	m, err := a.Model(false)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if len(m.Banks) != 1 || m.Banks[0].Index != nil {
		t.Errorf("Model(false) banks = %+v, want one bank without index", m.Banks)
	}

	m, err = a.Model(true)
	if err != nil {
		t.Fatalf("Model(true) failed: %v", err)
	}
	if m.Banks[0].Index == nil || len(m.Banks[0].Index.Entries) != 2 {
		t.Errorf("Model(true) index = %+v, want 2 entries", m.Banks[0].Index)
	}
}

// TestOpen tests loading from a file path
func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.big")
	if err := os.WriteFile(path, fixture(), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a, err := Open(path, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()

	if len(a.Banks()) != 1 {
		t.Errorf("len(Banks) = %d, want 1", len(a.Banks()))
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.big")); err == nil {
		t.Error("Open of missing file succeeded")
	}
}
