package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyuri/fabledec/internal/export"
	"github.com/dyuri/fabledec/pkg/fabledec"
)

var stbCmd = &cobra.Command{
	Use:   "stb",
	Short: "Inspect STB archive listings",
}

var levCmd = &cobra.Command{
	Use:   "lev",
	Short: "Inspect LEV level files",
}

func init() {
	stbCmd.AddCommand(stbInfoCmd)
	levCmd.AddCommand(levInfoCmd)
}

// stb info command
var stbInfoCmd = &cobra.Command{
	Use:   "info <input.stb>",
	Short: "Display the listing header and developer listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runStbInfo,
}

func init() {
	stbInfoCmd.Flags().String("format", "", "Output format: text, json, yaml, cbor (default from config)")
}

func runStbInfo(cmd *cobra.Command, args []string) error {
	f, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	listing, err := fabledec.ParseListing(f, size, parseOptions()...)
	if err != nil {
		return fmt.Errorf("parse STB listing: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), listing)
}

// lev info command
var levInfoCmd = &cobra.Command{
	Use:   "info <input.lev>",
	Short: "Display level header and navigation graph",
	Long: `Display the level header and a summary of every navigation section.

Heightmap and soundmap cells are only decoded with --cells.`,
	Args: cobra.ExactArgs(1),
	RunE: runLevInfo,
}

func init() {
	levInfoCmd.Flags().Bool("cells", false, "Decode heightmap and soundmap cells")
	levInfoCmd.Flags().Bool("navigation", true, "Decode navigation sections")
	levInfoCmd.Flags().String("format", "", "Output format: text, json, yaml, cbor (default from config)")
}

func runLevInfo(cmd *cobra.Command, args []string) error {
	cells, _ := cmd.Flags().GetBool("cells")
	navigation, _ := cmd.Flags().GetBool("navigation")

	f, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	level, err := fabledec.ParseLevel(f, size, fabledec.LevelOptions{Cells: cells, Navigation: navigation}, parseOptions()...)
	if err != nil {
		return fmt.Errorf("parse LEV file: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), level)
}

// dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <input>",
	Short: "Export a decoded file",
	Long: `Decode a BIG, STB or LEV file completely and export it.

The file type is detected from its magic bytes; level files carry no
magic and are recognized by the .lev extension. With --compress the
output is written as a zstd or lz4 stream.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("format", "json", "Output format: json, yaml, cbor")
	dumpCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	dumpCmd.Flags().String("compress", "none", "Output compression: none, zstd, lz4")
}

func runDump(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	compressName, _ := cmd.Flags().GetString("compress")

	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	compression, err := export.ParseCompression(compressName)
	if err != nil {
		return err
	}

	f, size, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	fileType, err := fabledec.DetectFileType(f, inputPath)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	var v any
	switch fileType {
	case fabledec.ArchiveFile:
		v, err = fabledec.ParseArchive(f, size, parseOptions()...)
	case fabledec.ListingFile:
		v, err = fabledec.ParseListing(f, size, parseOptions()...)
	case fabledec.LevelFile:
		v, err = fabledec.ParseLevel(f, size, fabledec.LevelOptions{Cells: true, Navigation: true}, parseOptions()...)
	}
	if err != nil {
		return fmt.Errorf("parse %s file: %w", fileType, err)
	}

	if outputPath == "" {
		return export.WriteCompressed(cmd.OutOrStdout(), exportFormat, compression, v)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	err = export.WriteCompressed(out, exportFormat, compression, v)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}
