package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyuri/fabledec/internal/config"
	"github.com/dyuri/fabledec/internal/export"
	"github.com/dyuri/fabledec/pkg/fabledec"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg is loaded before every command runs
var cfg = config.Default()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fabledec",
	Short: "Inspect BIG archives, STB listings and LEV levels",
	Long: `fabledec is a tool for inspecting the binary asset formats of the game.

It decodes BIG archive indexes and extracts their payloads, reads STB
archive listings, and decodes LEV level headers, terrain cells and
navigation graphs. Everything it decodes can be printed as a report or
exported as JSON, YAML or CBOR.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $"+config.EnvVar+")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")
	rootCmd.PersistentFlags().Int("codepage", 0, "Code page of name fields (default from config, 65001)")

	rootCmd.AddCommand(bigCmd)
	rootCmd.AddCommand(stbCmd)
	rootCmd.AddCommand(levCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration, applies flag overrides and configures
// logging
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("codepage") {
		loaded.CodePage, _ = cmd.Flags().GetInt("codepage")
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded

	logrus.SetOutput(cmd.ErrOrStderr())
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(cfg.Level())
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.WithFields(logrus.Fields{
		"codepage": cfg.CodePage,
		"format":   cfg.Format,
	}).Debug("configuration loaded")
	return nil
}

// openInput opens path for random access and returns its size
func openInput(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input file: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat input file: %w", err)
	}
	return f, stat.Size(), nil
}

// parseOptions returns the facade options for the configured code page
func parseOptions() []fabledec.Option {
	return []fabledec.Option{
		fabledec.WithTextCodec(cfg.TextCodec()),
		fabledec.WithLogger(logrus.StandardLogger()),
	}
}

// outputFormat resolves the --format flag against the configured default
func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		return cfg.Format
	}
	return format
}

// writeOutput writes v as a text report or in an export format
func writeOutput(w io.Writer, format string, v any) error {
	if format == "text" {
		return fabledec.WriteText(w, v)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, f, v)
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fabledec version %s\n", version)
		fmt.Fprintf(out, "commit: %s\n", commit)
		fmt.Fprintf(out, "built: %s\n", date)
	},
}
