package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/headfix/internal/config"
	"github.com/dgallion1/headfix/internal/doctree"
	"github.com/dgallion1/headfix/internal/heading"
	"github.com/dgallion1/headfix/internal/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

type flags struct {
	configFile string
	delta      int
	relocate   bool
	ids        bool
	idPrefix   string
	preserve   bool
	format     string
	kind       string
	verbose    bool
}

// outlineDoc is the structured form written by --format yaml and json.
type outlineDoc struct {
	Title   string             `json:"title" yaml:"title"`
	Outline []*doctree.DocNode `json:"outline" yaml:"outline"`
}

// NewRootCmd builds the headfix command.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "headfix [file]",
		Short: "Renumber HTML headings to match the document structure",
		Long: `headfix rewrites <h1>..<hN> tags so that nesting never skips a level.

Input is read from the file argument or from stdin. HTML, Markdown and
DOCX documents are supported; the type is taken from the file extension
unless --type is given.

Environment Variables:
  HEADFIX_CONFIG   Path to a YAML config file
  HEADING_DELTA    Default for --delta
  ID_PREFIX        Default for --id-prefix`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "config file (default $HEADFIX_CONFIG)")
	fl.IntVarP(&f.delta, "delta", "d", 0, "level of the document root; top-level headings become h<delta+1>")
	fl.BoolVarP(&f.relocate, "relocate-orphans", "r", false, "move single nested children up one level")
	fl.BoolVar(&f.ids, "ids", false, "insert generated id attributes")
	fl.StringVar(&f.idPrefix, "id-prefix", heading.DefaultIDPrefix, "prefix for generated ids")
	fl.BoolVar(&f.preserve, "preserve-ids", false, "do not generate an id for headings that already have one")
	fl.StringVarP(&f.format, "format", "f", "html", "output format: html, outline, yaml, json")
	fl.StringVarP(&f.kind, "type", "t", "", "input type: html, md, docx (default from extension, html for stdin)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging on stderr")

	return cmd
}

func run(cmd *cobra.Command, args []string, f *flags) error {
	cfg, err := config.LoadFile(f.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	if f.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := mergeFlags(cmd, f, cfg.HeadingOptions())
	if opts.Delta < 0 {
		return fmt.Errorf("--delta must not be negative")
	}

	data, filename, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	kind := f.kind
	if kind == "" {
		kind = kindFromName(filename)
	}
	p, err := parser.ForType(kind, opts)
	if err != nil {
		return err
	}

	tree, err := p.Parse(bytes.NewReader(data), filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("processing %s: %w", filename, err)
	}
	log.Debug("fixed headings",
		"input", filename,
		"type", kind,
		"headings", len(tree.Flatten()),
		"delta", opts.Delta,
		"relocate_orphans", opts.RelocateOrphans,
	)

	return writeOutput(cmd.OutOrStdout(), f.format, tree)
}

// mergeFlags applies explicitly set flags over the configured defaults.
func mergeFlags(cmd *cobra.Command, f *flags, opts heading.Options) heading.Options {
	changed := cmd.Flags().Changed
	if changed("delta") {
		opts.Delta = f.delta
	}
	if changed("relocate-orphans") {
		opts.RelocateOrphans = f.relocate
	}
	if changed("ids") {
		opts.AssignIDs = f.ids
	}
	if changed("id-prefix") {
		opts.IDPrefix = f.idPrefix
	}
	if changed("preserve-ids") {
		opts.PreserveExistingIDs = f.preserve
	}
	return opts
}

// kindFromName picks the input type from the file extension. Anything
// without a dedicated parser is treated as HTML, like stdin.
func kindFromName(filename string) string {
	if !parser.IsSupportedExtension(filename) {
		return "html"
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func readInput(stdin io.Reader, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading input: %w", err)
	}
	return data, args[0], nil
}

func writeOutput(w io.Writer, format string, tree *doctree.DocTree) error {
	doc := outlineDoc{Title: tree.Title, Outline: tree.Children}

	switch strings.ToLower(format) {
	case "html", "":
		_, err := io.WriteString(w, tree.HTML)
		return err
	case "outline":
		_, err := io.WriteString(w, tree.Indented())
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format %q (use html, outline, yaml or json)", format)
	}
}

// Execute runs the command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
