package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyuri/fabledec/internal/model"
	"github.com/dyuri/fabledec/pkg/fabledec"
)

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <input>",
	Short: "Validate file structure",
	Long: `Decode a BIG, STB or LEV file completely and check its structure.

For archives, payload ranges are checked against the file size and
against each other, and bank entry counts against their indexes.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	strict, _ := cmd.Flags().GetBool("strict")

	f, size, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	fileType, err := fabledec.DetectFileType(f, inputPath)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	v := newValidator(strict, size)
	v.file = inputPath

	switch fileType {
	case fabledec.ArchiveFile:
		a, err := fabledec.ParseArchive(f, size, parseOptions()...)
		if err != nil {
			v.decodeError(err)
		} else {
			v.validateArchive(a)
		}
	case fabledec.ListingFile:
		l, err := fabledec.ParseListing(f, size, parseOptions()...)
		if err != nil {
			v.decodeError(err)
		} else {
			v.validateListing(l)
		}
	case fabledec.LevelFile:
		l, err := fabledec.ParseLevel(f, size, fabledec.LevelOptions{Cells: true, Navigation: true}, parseOptions()...)
		if err != nil {
			v.decodeError(err)
		} else {
			v.validateLevel(l)
		}
	}

	v.printResults(cmd.OutOrStdout())

	if v.hasErrors() || (strict && v.hasWarnings()) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validator holds validation state
type validator struct {
	strict   bool
	size     int64
	errors   []string
	warnings []string
	file     string
}

func newValidator(strict bool, size int64) *validator {
	return &validator{
		strict:   strict,
		size:     size,
		errors:   make([]string, 0),
		warnings: make([]string, 0),
	}
}

func (v *validator) error(msg string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(msg, args...))
}

func (v *validator) warning(msg string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(msg, args...))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) > 0
}

func (v *validator) hasWarnings() bool {
	return len(v.warnings) > 0
}

func (v *validator) decodeError(err error) {
	if kind := fabledec.KindOf(err); kind != "" {
		v.error("Decode failed (%s): %v", kind, err)
		return
	}
	v.error("Decode failed: %v", err)
}

func (v *validator) validateArchive(a *model.Archive) {
	if len(a.Banks) == 0 {
		v.warning("No banks defined")
	}

	for _, b := range a.Banks {
		if b.Index == nil {
			continue
		}
		if int(b.EntryCount) != len(b.Index.Entries) {
			v.warning("Bank %q: entry count %d, index has %d entries", b.Name, b.EntryCount, len(b.Index.Entries))
		}

		seenIDs := make(map[uint32]bool)
		entries := make([]model.FileEntry, 0, len(b.Index.Entries))
		for _, e := range b.Index.Entries {
			if seenIDs[e.ID] {
				v.warning("Bank %q: duplicate file id %d", b.Name, e.ID)
			}
			seenIDs[e.ID] = true

			if e.End() > uint64(v.size) {
				v.error("Bank %q: file %d (%s) spans 0x%x-0x%x beyond end of file 0x%x",
					b.Name, e.ID, e.SymbolName, e.Start, e.End(), v.size)
				continue
			}
			if e.SymbolName == "" {
				v.warning("Bank %q: file %d has no symbol name", b.Name, e.ID)
			}
			if e.Size > 0 {
				entries = append(entries, e)
			}
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			if uint64(cur.Start) < prev.End() {
				v.warning("Bank %q: file %d overlaps file %d", b.Name, cur.ID, prev.ID)
			}
		}
	}
}

func (v *validator) validateListing(l *model.Listing) {
	if uint64(l.Header.HeaderSize) > uint64(v.size) {
		v.error("Header size %d exceeds file size %d", l.Header.HeaderSize, v.size)
	}
	if l.Developer == nil {
		v.warning("No developer listing")
		return
	}
	if l.Developer.FileName == "" {
		v.warning("Developer listing %d has no file name", l.Developer.FileID)
	}
}

func (v *validator) validateLevel(l *model.Level) {
	h := l.Header
	if h.Width == 0 || h.Height == 0 {
		v.warning("Empty grid %dx%d", h.Width, h.Height)
	}
	if l.Navigation == nil {
		v.warning("No navigation data")
		return
	}

	for i, s := range l.Sections {
		if s.LevelWidth != h.Width || s.LevelHeight != h.Height {
			v.warning("Section %d: grid %dx%d differs from level %dx%d", i, s.LevelWidth, s.LevelHeight, h.Width, h.Height)
		}
		if len(s.GraphNodes) == 0 {
			v.warning("Section %d: no graph nodes", i)
		}
	}
}

func (v *validator) printResults(out io.Writer) {
	fmt.Fprintf(out, "Validating: %s\n", v.file)
	fmt.Fprintln(out, strings.Repeat("=", 50))

	if len(v.errors) == 0 && len(v.warnings) == 0 {
		fmt.Fprintln(out, "✓ Valid file - no issues found")
		return
	}

	if len(v.errors) > 0 {
		fmt.Fprintf(out, "\nErrors (%d):\n", len(v.errors))
		for _, err := range v.errors {
			fmt.Fprintf(out, "  ✗ %s\n", err)
		}
	}

	if len(v.warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(v.warnings))
		for _, warn := range v.warnings {
			fmt.Fprintf(out, "  ⚠ %s\n", warn)
		}
	}

	fmt.Fprintln(out)
	if len(v.errors) > 0 {
		fmt.Fprintf(out, "Validation failed: %d error(s)", len(v.errors))
		if len(v.warnings) > 0 {
			fmt.Fprintf(out, ", %d warning(s)", len(v.warnings))
		}
		fmt.Fprintln(out)
	} else if len(v.warnings) > 0 {
		fmt.Fprintf(out, "Validation passed with %d warning(s)\n", len(v.warnings))
		if v.strict {
			fmt.Fprintln(out, "(use without --strict to ignore warnings)")
		}
	}
}
