package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/dadrian/hcsave/internal/config"
	"github.com/dadrian/hcsave/internal/savedir"
	"github.com/dadrian/hcsave/internal/savefile"
	"github.com/dadrian/hcsave/outfits"
)

const outfitsHelp = `hcsave outfits saves the clothes worn in a save under a name and puts
them back on later.

Outfits are kept in outfits.json in the save directory unless
--outfits-path says otherwise. The game has no empty slots, so save
records every slot; remove slots from the file by hand for an outfit
that only changes some of them. The outfit named "default" is the
starting outfit and cannot be overwritten.

Usage:
  hcsave outfits [flags] list
  hcsave outfits [flags] save SLOT NAME
  hcsave outfits [flags] load SLOT [NAME]

Examples:
  # Remember what the character in slot 0 is wearing
  hcsave outfits save 0 work

  # Put it on in slot 1, skipping items slot 1 does not own
  hcsave outfits load -p 1 work

Flags:
`

func runOutfits(args []string, stdout, stderr io.Writer) error {
	var c common
	var outfitsPath string
	var partial bool
	flagSet := pflag.NewFlagSet("hcsave outfits", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&outfitsPath, "outfits-path", "", "outfits file (default: outfits.json in the save directory)")
	flagSet.BoolVarP(&partial, "partial", "p", false, "save: keep only the slots the outfit already has; load: skip items that are not owned")
	c.register(flagSet)
	c.registerSaveDir(flagSet)

	if done, err := parseFlags(flagSet, args, stderr, outfitsHelp); done {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return errors.New("expected an action: list, save or load")
	}
	action, rest := rest[0], rest[1:]
	switch action {
	case "list":
		if len(rest) > 0 {
			return fmt.Errorf("unexpected argument: %s", rest[0])
		}
	case "save":
		if len(rest) != 2 {
			return errors.New("usage: hcsave outfits save SLOT NAME")
		}
	case "load":
		if len(rest) < 1 || len(rest) > 2 {
			return errors.New("usage: hcsave outfits load SLOT [NAME]")
		}
	default:
		return fmt.Errorf("unknown outfits action %q (want list, save or load)", action)
	}

	cfg, logger, err := c.setup(flagSet, stderr, func(cfg *config.Config) {
		if flagSet.Changed("outfits-path") {
			cfg.OutfitsPath = outfitsPath
		}
	})
	if err != nil {
		return err
	}
	store := cfg.OutfitsPath
	if store == "" {
		dir, err := savedir.Resolver{Override: cfg.SaveDir}.Dir()
		if err != nil {
			return fmt.Errorf("no outfits path given: %w", err)
		}
		store = filepath.Join(dir, outfits.FileName)
	}
	logger.Info("using outfits file", "path", store)

	switch action {
	case "list":
		return listOutfits(stdout, store)
	case "save":
		return saveOutfit(stdout, cfg, logger, store, rest[0], rest[1], partial)
	default:
		name := outfits.DefaultName
		if len(rest) == 2 {
			name = rest[1]
		}
		return loadOutfit(stdout, cfg, logger, store, rest[0], name, partial)
	}
}

func listOutfits(w io.Writer, store string) error {
	s, err := outfits.Load(store)
	if err != nil {
		return err
	}
	for _, name := range s.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, s.Outfits[name])
	}
	return nil
}

func saveOutfit(w io.Writer, cfg *config.Config, logger *slog.Logger, store, slot, name string, partial bool) error {
	if name == outfits.DefaultName {
		return fmt.Errorf("%q: %w", name, outfits.ErrReserved)
	}
	path, err := slotPath(cfg, slot)
	if err != nil {
		return err
	}
	_, data, err := readSave(path, cfg.SaveDataKey)
	if err != nil {
		return err
	}
	s, err := outfits.Load(store)
	if err != nil {
		return err
	}
	var existing *outfits.Outfit
	if o, ok := s.Outfits[name]; ok {
		existing = &o
	}
	outfit, err := outfits.Capture(data, existing, partial, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Put(name, outfit); err != nil {
		return err
	}
	if err := s.Save(store); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved outfit %s: %s\n", name, outfit)
	return nil
}

func loadOutfit(w io.Writer, cfg *config.Config, logger *slog.Logger, store, slot, name string, partial bool) error {
	path, err := slotPath(cfg, slot)
	if err != nil {
		return err
	}
	root, data, err := readSave(path, cfg.SaveDataKey)
	if err != nil {
		return err
	}
	outfit := outfits.Default()
	if name != outfits.DefaultName {
		s, err := outfits.Load(store)
		if err != nil {
			return err
		}
		if outfit, err = s.Lookup(name); err != nil {
			return err
		}
	}
	if err := outfits.Apply(data, outfit, partial, logger); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := savefile.Replace(path, root); err != nil {
		return err
	}
	fmt.Fprintf(w, "loaded outfit %s into %s\n", name, path)
	return nil
}
