// hcsave converts legacy binary save files to the current structured
// format and tidies saves in that format.
//
// The default command converts a save blob: a 4-byte size marker
// followed by one tagged value. The decoded tree is wrapped as
// {"version": 1, "save_data_key": tree} and written as JSON (default),
// YAML or CBOR. Unknown and reference values carry no usable data and
// are dropped with a warning.
//
// The organise and outfits commands work on the JSON saves in the
// game's save directory, rewriting them in place with a .bak backup.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dadrian/hcsave"
	"github.com/dadrian/hcsave/internal/config"
	"github.com/dadrian/hcsave/internal/savedir"
	"github.com/dadrian/hcsave/internal/savefile"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// command is one hcsave subcommand.
type command struct {
	name    string
	aliases []string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

func commands() []*command {
	return []*command{
		{name: "convert", summary: "convert a legacy binary save (the default)", run: runConvert},
		{name: "organise", aliases: []string{"organize"}, summary: "sort item lists and remove duplicate emails in a save", run: runOrganise},
		{name: "outfits", summary: "list, save and load outfits", run: runOutfits},
	}
}

// run dispatches on the first argument. Anything that is not a command
// name goes to convert.
func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, cmd := range commands() {
			if args[0] == cmd.name || slices.Contains(cmd.aliases, args[0]) {
				return cmd.run(args[1:], stdout, stderr)
			}
		}
	}
	return runConvert(args, stdout, stderr)
}

func commandSummary() string {
	var b strings.Builder
	writer := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	for _, cmd := range commands() {
		fmt.Fprintf(writer, "  %s\t%s\n", cmd.name, cmd.summary)
	}
	writer.Flush()
	return b.String()
}

// common holds the flags every command accepts.
type common struct {
	configPath string
	logLevel   string
	saveDir    string
}

func (c *common) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flagSet.BoolP("help", "h", false, "show help")
}

func (c *common) registerSaveDir(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.saveDir, "save-dir", "", "game save directory (default: located automatically)")
}

// setup loads the config, overlays the flags given on the command line
// and only then validates the result. overlay applies command-specific
// flags and may be nil.
func (c *common) setup(flagSet *pflag.FlagSet, stderr io.Writer, overlay func(*config.Config)) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flagSet.Changed("save-dir") {
		cfg.SaveDir = c.saveDir
	}
	if overlay != nil {
		overlay(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	return cfg, newLogger(stderr, level), nil
}

// parseFlags parses args and prints help when asked for it. done reports
// that the command should return err without doing anything else.
func parseFlags(flagSet *pflag.FlagSet, args []string, stderr io.Writer, help string) (done bool, err error) {
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stderr, help, flagSet)
			return true, nil
		}
		return true, err
	}
	if asked, _ := flagSet.GetBool("help"); asked {
		printHelp(stderr, help, flagSet)
		return true, nil
	}
	return false, nil
}

// newLogger writes text records to a terminal and JSON records anywhere
// else.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// slotPath resolves a save slot argument to its JSON save.
func slotPath(cfg *config.Config, arg string) (string, error) {
	slot, err := strconv.Atoi(arg)
	if err != nil {
		return "", fmt.Errorf("%w %q, expected 0-%d", savedir.ErrInvalidSlot, arg, savedir.Slots-1)
	}
	return savedir.Resolver{Override: cfg.SaveDir}.SlotPath(slot)
}

// readSave reads the JSON save at path and returns it along with its
// save data object.
func readSave(path, key string) (root, data hcsave.Object, err error) {
	if root, err = savefile.Read(path); err != nil {
		return nil, nil, err
	}
	if data, err = root.GetObject(key); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, data, nil
}

func printHelp(w io.Writer, help string, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, help)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
