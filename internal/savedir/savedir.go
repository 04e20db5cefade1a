// Package savedir locates the game's save directory and the save files
// inside it.
package savedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Subdir is the save directory relative to the user data directory.
const Subdir = "godot/app_userdata/HARDCODED"

// Slots is the number of save slots the game offers.
const Slots = 4

// ErrInvalidSlot is returned for a slot outside 0 to Slots-1.
var ErrInvalidSlot = errors.New("invalid save slot")

// Resolver finds the save directory, either from Override or from the
// platform's user data directory.
type Resolver struct {
	// Override, when set, is used instead of the located directory. It
	// must name an existing directory.
	Override string
}

// Dir returns the save directory.
func (r Resolver) Dir() (string, error) {
	if r.Override != "" {
		if !isDir(r.Override) {
			return "", fmt.Errorf("save dir override %s is not a directory", r.Override)
		}
		return r.Override, nil
	}
	data, err := DataDir()
	if err != nil {
		return "", fmt.Errorf("locating save dir: %w", err)
	}
	dir := filepath.Join(data, filepath.FromSlash(Subdir))
	if !isDir(dir) {
		return "", fmt.Errorf("save dir %s does not exist or is not a directory (use --save-dir)", dir)
	}
	return dir, nil
}

// SlotPath returns the path of the JSON save for slot.
func (r Resolver) SlotPath(slot int) (string, error) {
	if slot < 0 || slot >= Slots {
		return "", fmt.Errorf("%w %d, expected 0-%d", ErrInvalidSlot, slot, Slots-1)
	}
	dir, err := r.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("savefile%d.json", slot)), nil
}

// DataDir returns the user data directory: $XDG_DATA_HOME or
// ~/.local/share on Unix, the same directory as os.UserConfigDir on
// macOS and Windows.
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin", "ios", "windows", "plan9":
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
