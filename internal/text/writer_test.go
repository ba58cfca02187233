package text

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dyuri/fabledec/internal/model"
)

// TestWriteArchive tests archive report output
func TestWriteArchive(t *testing.T) {
	a := &model.Archive{
		Header: model.ArchiveHeader{Version: 100, BankTableOffset: 0x200},
		Banks: []model.Bank{{
			BankIndexEntry: model.BankIndexEntry{Name: "textures", BankID: 1, EntryCount: 1, BlockSize: 2048},
			Index: &model.FileIndex{Entries: []model.FileEntry{{
				ID:          7,
				SymbolName:  "TEX_GRASS",
				Start:       0x10,
				Size:        11,
				CRC:         0xdeadbeef,
				SourceFiles: []string{"art\\grass.tga"},
			}}},
		}},
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteArchive(a); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"[_archive]\nVersion=100\nBankTableOffset=0x200\nBanks=1\n[end]\n",
		"[_bank]\nName=textures\n",
		"[_file]\nID=7\nSymbol=TEX_GRASS\n",
		"CRC=0xdeadbeef\n",
		"Source=art\\grass.tga\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
	if strings.Contains(output, "SubHeader=") {
		t.Error("output lists an empty sub-header")
	}
}

// TestWriteListing tests STB listing output with and without a developer entry
func TestWriteListing(t *testing.T) {
	l := &model.Listing{Header: model.ListingHeader{Version: 3, FileCount: 12, LevelCount: 4}}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteListing(l); err != nil {
		t.Fatalf("WriteListing failed: %v", err)
	}
	if strings.Contains(buf.String(), "[_developer]") {
		t.Error("developer section written for a listing without one")
	}

	l.Developer = &model.DeveloperListingEntry{FileID: 5, FileName: "Oakvale.lev"}
	buf.Reset()
	if err := NewWriter(&buf).WriteListing(l); err != nil {
		t.Fatalf("WriteListing failed: %v", err)
	}
	if !strings.Contains(buf.String(), "[_developer]\nListingStart=0x0\nFileID=5\n") {
		t.Errorf("developer section missing:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "FileName=Oakvale.lev\n") {
		t.Errorf("file name missing:\n%s", buf.String())
	}
}

// TestWriteLevel tests level output including node counts and exit ids
func TestWriteLevel(t *testing.T) {
	l := &model.Level{
		Header: model.LevelHeader{Width: 2, Height: 1, SoundThemes: []string{"forest", "cave"}},
		Heightmap: []model.HeightmapCell{
			{Walkable: true}, {Walkable: true}, {}, {}, {}, {},
		},
		Soundmap: []model.SoundmapCell{{}, {}},
		Navigation: &model.NavigationHeader{
			SectionsCount: 1,
			Sections:      []model.SectionRef{{Name: []byte("MAIN\x00\x00"), StartOffset: 0x80}},
		},
		Sections: []model.NavigationSection{{
			SubsetsCount: 1,
			GraphNodes: []model.GraphNode{
				&model.RegularNode{},
				&model.BlankNode{},
				&model.BlankNode{},
				&model.ExitNode{NodeHeader: model.NodeHeader{NodeID: 3}, UniqueIDs: []uint64{5}},
			},
		}},
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteLevel(l); err != nil {
		t.Fatalf("WriteLevel failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"SoundTheme=forest\nSoundTheme=cave\n",
		"[_cells]\nHeightmap=6\nWalkable=2\nSoundmap=2\n[end]\n",
		"Section=MAIN@0x80\n",
		"[_section]\nName=MAIN\n",
		"Nodes=4\nNodes.regular=1\nNodes.navigation=0\nNodes.exit=1\nNodes.blank=2\n",
		"Exit=3,0x5,0xfffffe0000000005\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

// TestWriteLevelHeaderOnly tests that optional sections are omitted
func TestWriteLevelHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteLevel(&model.Level{}); err != nil {
		t.Fatalf("WriteLevel failed: %v", err)
	}
	for _, section := range []string{"[_cells]", "[_navigation]", "[_section]"} {
		if strings.Contains(buf.String(), section) {
			t.Errorf("output contains %s for a header-only level", section)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// TestWriteError tests that the first write failure is reported
func TestWriteError(t *testing.T) {
	err := NewWriter(failingWriter{}).WriteListing(&model.Listing{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("WriteListing error = %v, want disk full", err)
	}
}
