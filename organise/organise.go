// Package organise tidies the lists inside a release-format save: it
// sorts the wardrobe and furniture lists and removes duplicate emails.
//
// Every function works on the save data object (the value under
// "save_data_key") and modifies it in place.
package organise

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dadrian/hcsave"
)

// List names a save data key and how it is shown in logs.
type List struct {
	Key   string
	Label string
}

// Wardrobe lists the owned cosmetic items, one list per slot.
var Wardrobe = []List{
	{"hairlist", "Hair"},
	{"facelist", "Face"},
	{"jewllist", "Accessory"},
	{"shirtlist", "Shirt"},
	{"jacketlist", "Jacket"},
}

// FurnitureKey holds the furniture list; each entry is an object with a
// "name".
const FurnitureKey = "furnlist"

// FixedFurniture always sorts first, in this order.
var FixedFurniture = []string{"computer1", "hc_journal"}

// EmailLists are deduplicated in this order with one shared EmailSet.
var EmailLists = []string{"emailreadlist", "emailunreadlist"}

// Organise runs SortWardrobe, SortFurniture and email deduplication on
// data and returns the number of emails removed. data is left partly
// modified when an error is returned. A nil logger means
// slog.Default().
func Organise(data hcsave.Object, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := SortWardrobe(data); err != nil {
		return 0, fmt.Errorf("sort cosmetics: %w", err)
	}
	logger.Info("sorted wardrobe items", "lists", len(Wardrobe))

	if err := SortFurniture(data); err != nil {
		return 0, fmt.Errorf("sort furniture: %w", err)
	}
	logger.Info("sorted furniture items")

	emails := NewEmailSet()
	for _, key := range EmailLists {
		if err := emails.Dedup(data, key); err != nil {
			return 0, fmt.Errorf("deduplicate emails: %w", err)
		}
	}
	if emails.Removed > 0 {
		logger.Info("removed duplicate emails", "count", emails.Removed)
	}
	return emails.Removed, nil
}

// SortWardrobe sorts every Wardrobe list. The lists must hold only
// strings.
func SortWardrobe(data hcsave.Object) error {
	for _, list := range Wardrobe {
		items, err := data.GetStrings(list.Key)
		if err != nil {
			return err
		}
		slices.Sort(items)
		sorted := make(hcsave.Array, len(items))
		for i, item := range items {
			sorted[i] = item
		}
		data[list.Key] = sorted
	}
	return nil
}

// SortFurniture sorts the furniture list by name, FixedFurniture first.
// Entries with equal names keep their relative order.
func SortFurniture(data hcsave.Object) error {
	list, err := data.GetArray(FurnitureKey)
	if err != nil {
		return err
	}
	type entry struct {
		name  string
		value any
	}
	entries := make([]entry, len(list))
	for i, v := range list {
		obj, ok := hcsave.AsObject(v)
		if !ok {
			return fmt.Errorf("key %s: element %d: not an object (found %s): %w", FurnitureKey, i, hcsave.TypeName(v), hcsave.ErrWrongKind)
		}
		name, err := obj.GetString("name")
		if err != nil {
			return fmt.Errorf("key %s: element %d: %w", FurnitureKey, i, err)
		}
		entries[i] = entry{name, v}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return compareFurniture(a.name, b.name)
	})
	sorted := make(hcsave.Array, len(entries))
	for i, e := range entries {
		sorted[i] = e.value
	}
	data[FurnitureKey] = sorted
	return nil
}

func compareFurniture(a, b string) int {
	i, j := slices.Index(FixedFurniture, a), slices.Index(FixedFurniture, b)
	switch {
	case i >= 0 && j >= 0:
		return i - j
	case i >= 0:
		return -1
	case j >= 0:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// EmailSet accumulates the email IDs seen across every list passed to
// Dedup. Use one set per save.
type EmailSet struct {
	seen map[int64]struct{}

	// Removed counts the duplicates dropped so far.
	Removed int
}

func NewEmailSet() *EmailSet {
	return &EmailSet{seen: make(map[int64]struct{})}
}

// Dedup drops every email ID in data[key] that the set has already seen
// and records the rest. Lists are stored newest first and are walked
// from the end, so the oldest copy of an email survives. On error the
// list and the set are unchanged.
func (s *EmailSet) Dedup(data hcsave.Object, key string) error {
	list, err := data.GetArray(key)
	if err != nil {
		return err
	}
	ids := make([]int64, len(list))
	for i, v := range list {
		id, ok := hcsave.AsInt(v)
		if !ok {
			return fmt.Errorf("key %s: element %d: not an integer (found %s): %w", key, i, hcsave.TypeName(v), hcsave.ErrWrongKind)
		}
		ids[i] = id
	}

	keep := make([]bool, len(list))
	kept := 0
	for i := len(ids) - 1; i >= 0; i-- {
		if _, dup := s.seen[ids[i]]; dup {
			s.Removed++
			continue
		}
		s.seen[ids[i]] = struct{}{}
		keep[i] = true
		kept++
	}

	out := make(hcsave.Array, 0, kept)
	for i, v := range list {
		if keep[i] {
			out = append(out, v)
		}
	}
	data[key] = out
	return nil
}
