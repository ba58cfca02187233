// Package text writes decoded archives, listings and levels as a
// human-readable report of bracketed sections:
//
//	[_archive]
//	Version=100
//	Banks=1
//	[end]
package text

import (
	"fmt"
	"io"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// Writer handles writing decoded data in report format
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a new report writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteArchive outputs the archive header, every bank and, for banks whose
// index was loaded, one section per file entry
func (w *Writer) WriteArchive(a *model.Archive) error {
	w.section("archive")
	w.kv("Version", "%d", a.Header.Version)
	w.kv("BankTableOffset", "0x%x", a.Header.BankTableOffset)
	w.kv("Banks", "%d", len(a.Banks))
	w.end()

	for _, bank := range a.Banks {
		w.writeBank(bank)
	}
	return w.result("write archive")
}

// writeBank writes a [_bank] section followed by its [_file] sections
func (w *Writer) writeBank(bank model.Bank) {
	w.section("bank")
	w.kv("Name", "%s", bank.Name)
	w.kv("BankID", "%d", bank.BankID)
	w.kv("EntryCount", "%d", bank.EntryCount)
	w.kv("IndexOffset", "0x%x", bank.IndexOffset)
	w.kv("IndexSize", "%d", bank.IndexSize)
	w.kv("BlockSize", "%d", bank.BlockSize)
	w.end()

	if bank.Index == nil {
		return
	}
	for _, e := range bank.Index.Entries {
		w.section("file")
		w.kv("ID", "%d", e.ID)
		w.kv("Symbol", "%s", e.SymbolName)
		w.kv("Type", "%d", e.FileType)
		w.kv("Start", "0x%x", e.Start)
		w.kv("Size", "%d", e.Size)
		w.kv("CRC", "0x%08x", e.CRC)
		for _, src := range e.SourceFiles {
			w.kv("Source", "%s", src)
		}
		if len(e.SubHeader) > 0 {
			w.kv("SubHeader", "%d bytes", len(e.SubHeader))
		}
		w.end()
	}
}

// WriteListing outputs an STB listing
func (w *Writer) WriteListing(l *model.Listing) error {
	w.section("listing")
	w.kv("Version", "%d", l.Header.Version)
	w.kv("HeaderSize", "%d", l.Header.HeaderSize)
	w.kv("FileCount", "%d", l.Header.FileCount)
	w.kv("LevelCount", "%d", l.Header.LevelCount)
	w.kv("DeveloperListingsOffset", "0x%x", l.Header.DeveloperListingsOffset)
	w.end()

	if dev := l.Developer; dev != nil {
		w.section("developer")
		w.kv("ListingStart", "0x%x", dev.ListingStart)
		w.kv("FileID", "%d", dev.FileID)
		w.kv("FileSize", "%d", dev.FileSize)
		w.kv("Offset", "0x%x", dev.Offset)
		w.kv("FileName", "%s", dev.FileName)
		w.kv("FileNameAlt", "%s", dev.FileNameAlt)
		w.kv("BytesLeft", "%d", dev.BytesLeft)
		w.end()
	}
	return w.result("write listing")
}

// WriteLevel outputs a level header, a cell summary when cells were
// decoded, and the navigation sections with node counts by kind
func (w *Writer) WriteLevel(l *model.Level) error {
	h := l.Header
	w.section("level")
	w.kv("HeaderSize", "%d", h.HeaderSize)
	w.kv("Version", "%d", h.Version)
	w.kv("MapVersion", "%d", h.MapVersion)
	w.kv("Width", "%d", h.Width)
	w.kv("Height", "%d", h.Height)
	w.kv("UniqueIDCount", "%d", h.UniqueIDCount)
	w.kv("NavigationOffset", "0x%x", h.NavigationOffset)
	w.kv("AmbientSoundVersion", "%d", h.AmbientSoundVersion)
	w.kv("Checksum", "0x%08x", h.Checksum)
	for _, theme := range h.SoundThemes {
		w.kv("SoundTheme", "%s", theme)
	}
	w.end()

	if l.Heightmap != nil || l.Soundmap != nil {
		walkable := 0
		for _, c := range l.Heightmap {
			if c.Walkable {
				walkable++
			}
		}
		w.section("cells")
		w.kv("Heightmap", "%d", len(l.Heightmap))
		w.kv("Walkable", "%d", walkable)
		w.kv("Soundmap", "%d", len(l.Soundmap))
		w.end()
	}

	if nav := l.Navigation; nav != nil {
		w.section("navigation")
		w.kv("SectionsStart", "0x%x", nav.SectionsStart)
		w.kv("SectionsCount", "%d", nav.SectionsCount)
		for _, ref := range nav.Sections {
			w.kv("Section", "%s@0x%x", sectionName(ref), ref.StartOffset)
		}
		w.end()

		for i, s := range l.Sections {
			name := ""
			if i < len(nav.Sections) {
				name = sectionName(nav.Sections[i])
			}
			w.writeSection(name, s)
		}
	}
	return w.result("write level")
}

// writeSection writes a [_section] section. Exit nodes are listed with
// their unique ids in stored and reconstructed form.
func (w *Writer) writeSection(name string, s model.NavigationSection) {
	counts := make(map[model.NodeKind]int)
	for _, n := range s.GraphNodes {
		counts[n.Kind()]++
	}

	w.section("section")
	w.kv("Name", "%s", name)
	w.kv("Size", "%d", s.Size)
	w.kv("Version", "%d", s.Version)
	w.kv("LevelWidth", "%d", s.LevelWidth)
	w.kv("LevelHeight", "%d", s.LevelHeight)
	w.kv("InteractiveNodes", "%d", len(s.InteractiveNodes))
	w.kv("Subsets", "%d", s.SubsetsCount)
	w.kv("Nodes", "%d", len(s.GraphNodes))
	for _, kind := range []model.NodeKind{model.RegularKind, model.NavigationKind, model.ExitKind, model.BlankKind} {
		w.kv("Nodes."+kind.String(), "%d", counts[kind])
	}
	for _, n := range s.GraphNodes {
		exit, ok := n.(*model.ExitNode)
		if !ok {
			continue
		}
		for _, id := range exit.UniqueIDs {
			w.kv("Exit", "%d,0x%x,0x%x", exit.NodeID, id, model.RealUniqueID(id))
		}
	}
	w.end()
}

func sectionName(ref model.SectionRef) string {
	return binary.TrimNUL(string(ref.Name))
}

func (w *Writer) section(name string) {
	w.printf("[_%s]\n", name)
}

func (w *Writer) kv(key, format string, args ...any) {
	w.printf("%s="+format+"\n", append([]any{key}, args...)...)
}

func (w *Writer) end() {
	w.printf("[end]\n\n")
}

// printf writes unless an earlier write failed
func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *Writer) result(op string) error {
	err := w.err
	w.err = nil
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
