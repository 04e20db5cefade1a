// Package outfits saves the clothes a character wears under a name and
// puts them back on later.
//
// Outfits live in a JSON file, outfits.json next to the saves by
// default, shaped {"outfits": {"name": {"hair": "b", ...}}}. The file is
// meant to be edited by hand: comments and trailing commas are accepted,
// and a slot removed from an outfit is left alone when it is loaded.
package outfits

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/dadrian/hcsave"
	"github.com/dadrian/hcsave/internal/savefile"
)

// DefaultName is the reserved name of the starting outfit.
const DefaultName = "default"

// FileName is the outfits file inside the save directory.
const FileName = "outfits.json"

var (
	ErrReserved = errors.New("name is reserved for the starting outfit")
	ErrNotFound = errors.New("outfit not found")
	ErrNotOwned = errors.New("item is not owned")
)

// Slot is one wearable slot: the save data key holding the worn item and
// the key listing the owned ones.
type Slot struct {
	Label string
	Short string
	Worn  string
	Owned string
}

// Slots in display order.
var Slots = []Slot{
	{"Hair", "H", "hairon", "hairlist"},
	{"Face", "F", "faceon", "facelist"},
	{"Accessory", "A", "jewlon", "jewllist"},
	{"Shirt", "S", "shirton", "shirtlist"},
	{"Jacket", "J", "jacketon", "jacketlist"},
}

// Outfit names one item per slot. An empty item leaves the slot as it
// is.
type Outfit struct {
	Hair      string `json:"hair,omitempty"`
	Face      string `json:"face,omitempty"`
	Accessory string `json:"accessory,omitempty"`
	Shirt     string `json:"shirt,omitempty"`
	Jacket    string `json:"jacket,omitempty"`
}

// Default returns the outfit a new game starts with.
func Default() Outfit {
	return Outfit{Hair: "a", Face: "aa", Accessory: "a", Shirt: "a", Jacket: "a"}
}

// item returns the field for Slots[i].
func (o *Outfit) item(i int) *string {
	switch i {
	case 0:
		return &o.Hair
	case 1:
		return &o.Face
	case 2:
		return &o.Accessory
	case 3:
		return &o.Shirt
	default:
		return &o.Jacket
	}
}

// String renders the set slots as "H:a F:aa A:a S:a J:a".
func (o Outfit) String() string {
	var parts []string
	for i, slot := range Slots {
		if item := *o.item(i); item != "" {
			parts = append(parts, slot.Short+":"+item)
		}
	}
	return strings.Join(parts, " ")
}

// Storage is the content of an outfits file.
type Storage struct {
	Outfits map[string]Outfit `json:"outfits"`
}

// Load reads the outfits file at path. A missing file is an empty
// storage.
func Load(path string) (*Storage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Storage{Outfits: make(map[string]Outfit)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading outfits: %w", err)
	}
	var s Storage
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if s.Outfits == nil {
		s.Outfits = make(map[string]Outfit)
	}
	return &s, nil
}

// Save writes the storage to path.
func (s *Storage) Save(path string) error {
	return savefile.WriteFile(path, s, savefile.Pretty)
}

// Names returns the outfit names in sorted order.
func (s *Storage) Names() []string {
	names := make([]string, 0, len(s.Outfits))
	for name := range s.Outfits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named outfit. DefaultName always resolves to
// Default.
func (s *Storage) Lookup(name string) (Outfit, error) {
	if name == DefaultName {
		return Default(), nil
	}
	o, ok := s.Outfits[name]
	if !ok {
		return Outfit{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return o, nil
}

// Put stores o under name.
func (s *Storage) Put(name string, o Outfit) error {
	if name == DefaultName {
		return fmt.Errorf("%q: %w", name, ErrReserved)
	}
	s.Outfits[name] = o
	return nil
}

// Capture reads the worn items from save data. With partial and an
// existing outfit, only the slots existing defines are captured.
func Capture(data hcsave.Object, existing *Outfit, partial bool, logger *slog.Logger) (Outfit, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o Outfit
	for i, slot := range Slots {
		worn, err := data.GetString(slot.Worn)
		if err != nil {
			return Outfit{}, fmt.Errorf("%s: %w", slot.Label, err)
		}
		if partial && existing != nil && *existing.item(i) == "" {
			logger.Info("skipping slot", "slot", slot.Label, "worn", worn)
			continue
		}
		*o.item(i) = worn
	}
	return o, nil
}

// Apply puts o on in save data. Every item must be in its slot's owned
// list; with partial, items that are not owned are skipped with a
// warning instead. data is only modified when Apply succeeds.
func Apply(data hcsave.Object, o Outfit, partial bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	wear := make(map[string]string, len(Slots))
	for i, slot := range Slots {
		item := *o.item(i)
		if item == "" {
			logger.Info("slot not set, leaving as is", "slot", slot.Label)
			continue
		}
		owned, err := data.GetStrings(slot.Owned)
		if err != nil {
			return fmt.Errorf("%s: %w", slot.Label, err)
		}
		if !slices.Contains(owned, item) {
			if partial {
				logger.Warn("item is not owned, skipping", "slot", slot.Label, "item", item)
				continue
			}
			return fmt.Errorf("%s: %q: %w", slot.Label, item, ErrNotOwned)
		}
		wear[slot.Worn] = item
	}
	for key, item := range wear {
		data[key] = item
	}
	return nil
}
