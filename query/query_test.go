package query

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dadrian/hcsave"
)

func tree() hcsave.Object {
	return hcsave.Object{
		"player": hcsave.Object{
			"name": "Ada",
			"inventory": hcsave.Array{
				hcsave.Object{"id": uint32(1)},
				hcsave.Object{"id": uint32(2), "name": "lamp"},
			},
		},
		"audio volume": uint32(80),
		"0":            "zero",
		"hair-2":       true,
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		expr string
		want []Step
		str  string
	}{
		{"", nil, "."},
		{".", nil, "."},
		{"player", []Step{{Field: "player"}}, ".player"},
		{".player.name", []Step{{Field: "player"}, {Field: "name"}}, ".player.name"},
		{"player.inventory[1].name", []Step{{Field: "player"}, {Field: "inventory"}, {Index: 1, IsIndex: true}, {Field: "name"}}, ".player.inventory[1].name"},
		{`."audio volume"`, []Step{{Field: "audio volume"}}, `."audio volume"`},
		{`["audio volume"]`, []Step{{Field: "audio volume"}}, `."audio volume"`},
		{".0", []Step{{Field: "0"}}, `."0"`},
		{"hair-2", []Step{{Field: "hair-2"}}, ".hair-2"},
		{" player . inventory [ 0 ] ", []Step{{Field: "player"}, {Field: "inventory"}, {Index: 0, IsIndex: true}}, ".player.inventory[0]"},
		{"[3][4]", []Step{{Index: 3, IsIndex: true}, {Index: 4, IsIndex: true}}, "[3][4]"},
	}
	for _, tc := range cases {
		p, err := Parse(tc.expr)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.expr, err)
		}
		if diff := cmp.Diff(tc.want, p.Steps()); diff != "" {
			t.Fatalf("Parse(%q) (-want +got):\n%s", tc.expr, diff)
		}
		if got := p.String(); got != tc.str {
			t.Fatalf("Parse(%q).String() = %q want %q", tc.expr, got, tc.str)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for expr, msg := range map[string]string{
		"player.":         "expected field name",
		"player..name":    "expected field name",
		"player[":         "expected index or quoted field name",
		"player[1":        "expected ']'",
		"player[-1]":      "bad index",
		"player name":     "expected '.' or '['",
		`player."name`:    "unterminated string",
		"player.$":        "unexpected character",
		`player["a"b]`:    "expected ']'",
		`player.["x"]`:    "expected field name",
		`player[1.5]`:     "expected ']'",
		`"bad \q escape"`: "bad quoted string",
	} {
		_, err := Parse(expr)
		if err == nil {
			t.Fatalf("Parse(%q): expected error", expr)
		}
		if !strings.Contains(err.Error(), msg) {
			t.Fatalf("Parse(%q): error %q does not mention %q", expr, err, msg)
		}
	}
}

func TestSelect(t *testing.T) {
	cases := map[string]any{
		"":                         tree(),
		"player.name":              "Ada",
		"player.inventory[1].name": "lamp",
		"player.inventory[0]":      hcsave.Object{"id": uint32(1)},
		`."audio volume"`:          uint32(80),
		".0":                       "zero",
		"hair-2":                   true,
	}
	for expr, want := range cases {
		got, err := Select(tree(), expr)
		if err != nil {
			t.Fatalf("Select(%q): %v", expr, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Select(%q) (-want +got):\n%s", expr, diff)
		}
	}
}

func TestSelectErrors(t *testing.T) {
	cases := []struct {
		expr   string
		target error
		msg    string
	}{
		{"player.missing", hcsave.ErrMissingField, ".player.missing: key missing: not found"},
		{"player.name.first", hcsave.ErrWrongKind, ".player.name.first: not an object (found string)"},
		{"player[0]", hcsave.ErrWrongKind, ".player[0]: not an array (found object)"},
		{"player.inventory[5]", hcsave.ErrOutOfRange, ".player.inventory[5]: index 5 of 2"},
	}
	for _, tc := range cases {
		_, err := Select(tree(), tc.expr)
		if !errors.Is(err, tc.target) {
			t.Fatalf("Select(%q): got %v want %v", tc.expr, err, tc.target)
		}
		if !strings.Contains(err.Error(), tc.msg) {
			t.Fatalf("Select(%q): error %q does not mention %q", tc.expr, err, tc.msg)
		}
	}
}

func TestSelectJSONTree(t *testing.T) {
	var v any
	if err := json.Unmarshal([]byte(`{"save_data_key":{"list":[{"a":1},{"a":2}]}}`), &v); err != nil {
		t.Fatal(err)
	}
	got, err := Select(v, "save_data_key.list[1].a")
	if err != nil {
		t.Fatal(err)
	}
	if got != float64(2) {
		t.Fatalf("got %v", got)
	}
}
