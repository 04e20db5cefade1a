package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/dadrian/hcsave/internal/savefile"
	"github.com/dadrian/hcsave/organise"
)

const organiseHelp = `hcsave organise sorts the item lists in a save and removes duplicate
emails.

The wardrobe lists are sorted by item name and the furniture list by
furniture name, with the computer and the journal first. An email that
appears more than once across the read and unread lists keeps only its
oldest copy. The save is rewritten in place and the original is kept
next to it with a .bak suffix.

Usage:
  hcsave organise [flags] SLOT
  hcsave organise [flags] --file PATH

Examples:
  # Tidy the first save slot
  hcsave organise 0

  # Tidy a save outside the game directory
  hcsave organise --file ./savefile2.json

Flags:
`

func runOrganise(args []string, stdout, stderr io.Writer) error {
	var c common
	var file string
	flagSet := pflag.NewFlagSet("hcsave organise", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&file, "file", "", "organise this save file instead of a slot")
	c.register(flagSet)
	c.registerSaveDir(flagSet)

	if done, err := parseFlags(flagSet, args, stderr, organiseHelp); done {
		return err
	}

	rest := flagSet.Args()
	switch {
	case file != "" && len(rest) > 0:
		return fmt.Errorf("unexpected argument: %s", rest[0])
	case file == "" && len(rest) != 1:
		return errors.New("expected one save slot (0-3) or --file")
	}

	cfg, logger, err := c.setup(flagSet, stderr, nil)
	if err != nil {
		return err
	}
	path := file
	if path == "" {
		if path, err = slotPath(cfg, rest[0]); err != nil {
			return err
		}
	}

	logger.Info("reading save", "path", path)
	root, data, err := readSave(path, cfg.SaveDataKey)
	if err != nil {
		return err
	}
	removed, err := organise.Organise(data, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := savefile.Replace(path, root); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "organised %s, removed %d duplicate emails\n", path, removed)
	return nil
}
