package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyuri/fabledec/internal/archive"
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

var bigCmd = &cobra.Command{
	Use:   "big",
	Short: "Inspect BIG archives",
}

func init() {
	bigCmd.AddCommand(bigInfoCmd)
	bigCmd.AddCommand(bigListCmd)
	bigCmd.AddCommand(bigExtractCmd)
}

// openArchive opens a BIG archive with the configured code page and cache
func openArchive(path string) (*archive.Archive, error) {
	a, err := archive.Open(path,
		archive.WithTextCodec(cfg.TextCodec()),
		archive.WithCacheSize(cfg.CacheSize),
		archive.WithLogger(logrus.WithField("archive", filepath.Base(path))),
	)
	if err != nil {
		return nil, fmt.Errorf("parse BIG archive: %w", err)
	}
	return a, nil
}

// selectBanks returns every bank, or only the named one
func selectBanks(a *archive.Archive, name string) ([]model.BankIndexEntry, error) {
	if name == "" {
		return a.Banks(), nil
	}
	bank, ok := a.Bank(name)
	if !ok {
		return nil, fmt.Errorf("no bank named %q", name)
	}
	return []model.BankIndexEntry{bank}, nil
}

// info command
var bigInfoCmd = &cobra.Command{
	Use:   "info <input.big>",
	Short: "Display archive header and bank table",
	Args:  cobra.ExactArgs(1),
	RunE:  runBigInfo,
}

func runBigInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	a, err := openArchive(inputPath)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	h := a.Header()

	fmt.Fprintf(out, "BIG Archive: %s\n", inputPath)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Header:")
	fmt.Fprintf(out, "  Version:          %d\n", h.Version)
	fmt.Fprintf(out, "  Bank table:       0x%x\n", h.BankTableOffset)
	fmt.Fprintf(out, "  CodePage:         %d (%s)\n", cfg.CodePage, binary.CodePageName(cfg.CodePage))
	fmt.Fprintf(out, "File Size:          %s (%s bytes)\n", humanize.Bytes(uint64(a.Size())), humanize.Comma(a.Size()))
	fmt.Fprintln(out)

	banks := a.Banks()
	fmt.Fprintf(out, "Banks (%d):\n", len(banks))
	for _, b := range banks {
		fmt.Fprintf(out, "  %-24s id=%d entries=%s index=%s block=%d\n",
			b.Name, b.BankID, humanize.Comma(int64(b.EntryCount)),
			humanize.Bytes(uint64(b.IndexSize)), b.BlockSize)
	}
	return nil
}

// list command
var bigListCmd = &cobra.Command{
	Use:   "list <input.big>",
	Short: "List the file entries of an archive",
	Long: `List the file entries of every bank, or of one bank with --bank.

The default text format prints one [_file] section per entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runBigList,
}

func init() {
	bigListCmd.Flags().String("bank", "", "Only list this bank")
	bigListCmd.Flags().String("format", "", "Output format: text, json, yaml, cbor (default from config)")
}

func runBigList(cmd *cobra.Command, args []string) error {
	bankName, _ := cmd.Flags().GetString("bank")

	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	banks, err := selectBanks(a, bankName)
	if err != nil {
		return err
	}

	m := &model.Archive{Header: a.Header()}
	for _, b := range banks {
		idx, err := a.Index(b)
		if err != nil {
			return err
		}
		m.Banks = append(m.Banks, model.Bank{BankIndexEntry: b, Index: idx})
	}

	return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), m)
}

// extract command
var bigExtractCmd = &cobra.Command{
	Use:   "extract <input.big>",
	Short: "Extract file payloads from an archive",
	Long: `Extract the payload of every file entry to the output directory.

Files are named "<id>_<symbol name>". The BLAKE3 digest of every payload
is printed so extracted files can be compared across archive versions.`,
	Args: cobra.ExactArgs(1),
	RunE: runBigExtract,
}

func init() {
	bigExtractCmd.Flags().StringP("output", "o", "", "Output directory (required)")
	bigExtractCmd.MarkFlagRequired("output")
	bigExtractCmd.Flags().String("bank", "", "Only extract this bank")
	bigExtractCmd.Flags().Uint32("id", 0, "Only extract the entry with this id")
}

func runBigExtract(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")
	bankName, _ := cmd.Flags().GetString("bank")
	id, _ := cmd.Flags().GetUint32("id")

	var filter func(model.FileEntry) bool
	if cmd.Flags().Changed("id") {
		filter = func(e model.FileEntry) bool { return e.ID == id }
	}

	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	banks, err := selectBanks(a, bankName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	var totalSize int64
	for _, b := range banks {
		dir := outputDir
		if len(banks) > 1 {
			dir = filepath.Join(outputDir, archive.OutputName(model.FileEntry{ID: b.BankID, SymbolName: b.Name}))
		}

		files, err := a.ExtractAll(b, dir, filter)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "  - %s (%s) blake3:%x\n", f.Path, humanize.Bytes(uint64(f.Size)), f.Digest)
			totalSize += f.Size
		}
		total += len(files)
	}

	fmt.Fprintf(out, "Extracted %d file(s), %s to %s\n", total, humanize.Bytes(uint64(totalSize)), outputDir)
	return nil
}
