package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/dadrian/hcsave"
	"github.com/dadrian/hcsave/internal/config"
	"github.com/dadrian/hcsave/internal/input"
	"github.com/dadrian/hcsave/internal/savefile"
	"github.com/dadrian/hcsave/output"
	"github.com/dadrian/hcsave/query"
)

const convertHelp = `hcsave converts a legacy binary save file to the current format.

The decoded save is wrapped as {"version": 1, "save_data_key": ...}.
Without --output the result is written next to the input:
savegame.bin becomes savefile0.json, savegame2.bin savefile1.json and
so on; other names get the format extension appended. Reading from
stdin writes to stdout.

Usage:
  hcsave [convert] [flags] [input]
  hcsave <command> [flags] [args]

Commands:
%s
Examples:
  # Convert a save slot
  hcsave ~/.godot/app_userdata/HARDCODED/savegame.bin

  # Show one value as YAML
  hcsave -f yaml -s player.inventory savegame2.bin

  # Check a compressed save without writing anything
  hcsave --validate savegame.bin.zst

Flags:
`

type convertFlags struct {
	output       string
	format       string
	compact      bool
	indent       int
	keepOmitted  bool
	hexInput     bool
	selectExpr   string
	validate     bool
	info         bool
	noSizeMarker bool
	compression  string
}

func runConvert(args []string, stdout, stderr io.Writer) error {
	var c common
	var f convertFlags
	flagSet := pflag.NewFlagSet("hcsave", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&f.output, "output", "o", "", "output file, or - for stdout (default: derived from the input name)")
	flagSet.StringVarP(&f.format, "format", "f", "json", "output format: json, yaml or cbor")
	flagSet.BoolVarP(&f.compact, "compact", "c", false, "write single-line JSON")
	flagSet.IntVar(&f.indent, "indent", 2, "spaces per indentation level for json and yaml")
	flagSet.BoolVar(&f.keepOmitted, "keep-omitted", false, "keep unknown and reference values as nulls")
	flagSet.BoolVarP(&f.hexInput, "hex", "x", false, "input is hex text instead of binary")
	flagSet.StringVarP(&f.selectExpr, "select", "s", "", "write only the value at this path, e.g. player.inventory[0]")
	flagSet.BoolVar(&f.validate, "validate", false, "decode only; write nothing")
	flagSet.BoolVar(&f.info, "info", false, "print a summary of the decoded tree instead of converting")
	flagSet.BoolVar(&f.noSizeMarker, "no-size-marker", false, "input is a bare value without the leading size marker")
	flagSet.StringVar(&f.compression, "compression", "auto", "input compression: auto, none, zstd, gzip or lz4 (auto uses the file extension)")
	c.register(flagSet)

	if done, err := parseFlags(flagSet, args, stderr, fmt.Sprintf(convertHelp, commandSummary())); done {
		return err
	}

	rest := flagSet.Args()
	if len(rest) > 1 {
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}
	inPath := "-"
	if len(rest) == 1 {
		inPath = rest[0]
	}

	cfg, logger, err := c.setup(flagSet, stderr, func(cfg *config.Config) { f.applyTo(flagSet, cfg) })
	if err != nil {
		return err
	}
	format, _ := output.ParseFormat(cfg.Format)

	compression := input.ForPath(inPath)
	if f.compression != "auto" {
		if compression, err = input.ParseCompression(f.compression); err != nil {
			return err
		}
	}

	logger.Info("reading save", "input", inPath, "compression", compression.String())
	data, err := input.Read(inPath, f.hexInput)
	if err != nil {
		return err
	}
	if data, err = input.Decompress(data, compression); err != nil {
		return err
	}

	decoder := hcsave.NewDecoder(bytes.NewReader(data))
	decoder.Logger = logger
	decoder.KeepOmitted = cfg.KeepOmitted
	var tree any
	if f.noSizeMarker {
		tree, err = decoder.Decode()
	} else {
		tree, err = decoder.DecodeSave()
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", displayName(inPath), err)
	}
	if trailing := int64(len(data)) - decoder.Offset(); trailing > 0 {
		logger.Warn("trailing bytes after save data", "offset", decoder.Offset(), "count", trailing)
	}

	if f.info {
		return printInfo(stdout, len(data), tree, decoder.Omissions())
	}
	if f.validate {
		logger.Info("save is valid", "input", inPath, "omitted", len(decoder.Omissions()))
		return nil
	}

	var result any
	if f.selectExpr != "" {
		if result, err = query.Select(tree, f.selectExpr); err != nil {
			return err
		}
	} else {
		envelope := hcsave.NewEnvelope(tree)
		envelope.Key = cfg.SaveDataKey
		result = envelope.Object()
	}

	opts := output.Options{Format: format, Indent: cfg.Indent, Compact: cfg.Compact}
	outPath := f.output
	if outPath == "" {
		if f.selectExpr != "" {
			outPath = "-"
		} else {
			outPath = defaultOutputPath(inPath, format)
		}
	}
	if outPath == "-" {
		return output.Write(stdout, result, opts)
	}
	if err := savefile.WriteFile(outPath, result, opts); err != nil {
		return err
	}
	logger.Info("wrote converted save", "output", outPath, "format", string(format))
	return nil
}

// applyTo overrides config values with the flags given on the command
// line.
func (f *convertFlags) applyTo(flagSet *pflag.FlagSet, cfg *config.Config) {
	if flagSet.Changed("format") {
		cfg.Format = f.format
	}
	if flagSet.Changed("indent") {
		cfg.Indent = f.indent
	}
	if flagSet.Changed("compact") {
		cfg.Compact = f.compact
	}
	if flagSet.Changed("keep-omitted") {
		cfg.KeepOmitted = f.keepOmitted
	}
}

// Save slots of the legacy game map onto the new file names.
var slotNames = map[string]string{
	"savegame.bin":  "savefile0",
	"savegame2.bin": "savefile1",
	"savegame3.bin": "savefile2",
	"savegame4.bin": "savefile3",
}

// defaultOutputPath places the output next to the input. Known slot
// names are renamed; anything else gets the format extension appended.
// A compression extension on the input is dropped first.
func defaultOutputPath(inPath string, format output.Format) string {
	if inPath == "" || inPath == "-" {
		return "-"
	}
	if input.ForPath(inPath) != input.CompressionNone {
		inPath = strings.TrimSuffix(inPath, filepath.Ext(inPath))
	}
	dir, name := filepath.Split(inPath)
	if slot, ok := slotNames[name]; ok {
		return filepath.Join(dir, slot+"."+format.Extension())
	}
	return inPath + "." + format.Extension()
}

func printInfo(w io.Writer, size int, tree any, omitted []hcsave.Omission) error {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "BYTES\t%d\n", size)
	fmt.Fprintf(writer, "ROOT\t%s\n", hcsave.TypeName(tree))
	if obj, ok := hcsave.AsObject(tree); ok {
		fmt.Fprintf(writer, "FIELDS\t%d\n", len(obj))
	} else if arr, ok := hcsave.AsArray(tree); ok {
		fmt.Fprintf(writer, "ELEMENTS\t%d\n", len(arr))
	}
	fmt.Fprintf(writer, "VALUES\t%d\n", countValues(tree))
	fmt.Fprintf(writer, "DEPTH\t%d\n", depth(tree))
	fmt.Fprintf(writer, "OMITTED\t%d\n", len(omitted))
	for _, o := range omitted {
		fmt.Fprintf(writer, "  %s\t%s\n", o.Path, o.Kind)
	}
	return writer.Flush()
}

// countValues counts every node in tree, containers included.
func countValues(tree any) int {
	n := 1
	if obj, ok := hcsave.AsObject(tree); ok {
		for _, v := range obj {
			n += countValues(v)
		}
	} else if arr, ok := hcsave.AsArray(tree); ok {
		for _, v := range arr {
			n += countValues(v)
		}
	}
	return n
}

func depth(tree any) int {
	deepest := 0
	if obj, ok := hcsave.AsObject(tree); ok {
		for _, v := range obj {
			deepest = max(deepest, depth(v))
		}
	} else if arr, ok := hcsave.AsArray(tree); ok {
		for _, v := range arr {
			deepest = max(deepest, depth(v))
		}
	} else {
		return 0
	}
	return deepest + 1
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
