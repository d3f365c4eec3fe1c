package search

import (
	"fmt"
	"math"
	"testing"

	"github.com/scrypster/memview/pkg/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_EmptyQuery(t *testing.T) {
	if got := Score("user prefers dark theme", []string{"ui"}, ""); got != 0 {
		t.Errorf("empty query: expected 0, got %f", got)
	}
	if got := Score("user prefers dark theme", nil, "   "); got != 0 {
		t.Errorf("whitespace query: expected 0, got %f", got)
	}
}

func TestScore_AllWordsFullyMatch(t *testing.T) {
	// Both query words are substrings of the text: wordScore = 1.0*0.8,
	// no partial credit.
	got := Score("user prefers dark theme", []string{"ui"}, "dark theme")
	if !almostEqual(got, 0.8) {
		t.Errorf("expected 0.8, got %f", got)
	}
}

func TestScore_ContainmentBeatsPrefixCredit(t *testing.T) {
	// "dark" is a substring of "darkness", so it is a full match, not a
	// 0.5 prefix credit.
	got := Score("darkness settings", nil, "dark")
	if !almostEqual(got, 0.8) {
		t.Errorf("expected full-match 0.8, got %f", got)
	}
}

func TestScore_PartialPrefixCredit(t *testing.T) {
	// "darknesss" is not contained in the text, but the text word
	// "darkness" is a prefix of it: one partial credit of 0.5.
	got := Score("darkness settings", nil, "darknesss")
	want := (0.5 / 1.0) * 0.4
	if !almostEqual(got, want) {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestScore_PartialCreditIsBestNotSum(t *testing.T) {
	// Both "dar" and "darkness" are prefixes of the query word, so two
	// text words qualify; the query word still earns a single 0.5 credit,
	// not 1.0.
	got := Score("dar darkness", nil, "darknesss")
	want := (0.5 / 1.0) * 0.4
	if !almostEqual(got, want) {
		t.Errorf("expected single best credit %f, got %f", want, got)
	}
}

func TestScore_TagsJoinSearchText(t *testing.T) {
	got := Score("unrelated content", []string{"golang", "backend"}, "golang")
	if !almostEqual(got, 0.8) {
		t.Errorf("expected tag match 0.8, got %f", got)
	}
}

func TestScore_MixedFullAndPartial(t *testing.T) {
	// Two query words: "dark" fully matches, "themess" gets prefix credit
	// from "theme" (text word is a prefix of the query word).
	got := Score("dark theme", nil, "dark themess")
	want := (1.0/2.0)*0.8 + (0.5/2.0)*0.4
	if !almostEqual(got, want) {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestScore_NoMatch(t *testing.T) {
	if got := Score("completely unrelated", nil, "zzzqqq"); got != 0 {
		t.Errorf("expected 0 for no match, got %f", got)
	}
}

func TestScore_EmptyRecordScoresZero(t *testing.T) {
	// Empty text yields no words, so nothing earns even prefix credit.
	if got := Score("", nil, "anything"); got != 0 {
		t.Errorf("expected 0 for an empty record, got %f", got)
	}
}

func TestScore_Bounds(t *testing.T) {
	cases := []struct {
		fact  string
		tags  []string
		query string
	}{
		{"", nil, ""},
		{"", nil, "anything at all"},
		{"a b c d e f g", []string{"x", "y"}, "a b c d e f g x y"},
		{"repeated repeated repeated", nil, "repeated repeated"},
		{"üñïçödé fact", []string{"tag"}, "üñïçödé"},
	}
	for _, tc := range cases {
		got := Score(tc.fact, tc.tags, tc.query)
		if got < 0 || got > 0.95 {
			t.Errorf("Score(%q, %v, %q) = %f out of [0, 0.95]", tc.fact, tc.tags, tc.query, got)
		}
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	got := Score("User Prefers DARK Theme", []string{"UI"}, "dark THEME ui")
	if !almostEqual(got, 0.8) {
		t.Errorf("expected case-insensitive full match 0.8, got %f", got)
	}
}

func TestRank_FiltersSortsAndCaps(t *testing.T) {
	records := []types.Memory{}
	// 25 matching records plus a non-matching one.
	for i := 0; i < 25; i++ {
		records = append(records, types.Memory{
			ID:   fmt.Sprintf("m%d", i),
			Fact: "matching fact",
		})
	}
	records = append(records, types.Memory{ID: "miss", Fact: "nothing relevant"})

	results := Rank(records, "matching")
	if len(results) != 20 {
		t.Fatalf("expected results capped at 20, got %d", len(results))
	}
	for _, r := range results {
		if r.ID == "miss" {
			t.Error("expected non-matching record to be excluded")
		}
	}
}

func TestRank_DescendingWithStableTies(t *testing.T) {
	records := []types.Memory{
		{ID: "tie-1", Fact: "dark theme one"},
		{ID: "strong", Fact: "dark theme"}, // both words fully match
		{ID: "tie-2", Fact: "dark theme two"},
		{ID: "weak", Fact: "darkroom"}, // only "dark" matches
	}

	results := Rank(records, "dark theme")

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Errorf("results not descending at %d: %f > %f", i, results[i].Relevance, results[i-1].Relevance)
		}
	}
	if results[len(results)-1].ID != "weak" {
		t.Errorf("expected weakest match last, got %s", results[len(results)-1].ID)
	}

	// tie-1, strong and tie-2 all score 0.8; the stable sort keeps their
	// collection order.
	want := []string{"tie-1", "strong", "tie-2"}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("position %d: expected %s (stable tie order), got %s", i, id, results[i].ID)
		}
	}
}

func TestRank_EmptyQueryYieldsNoResults(t *testing.T) {
	records := []types.Memory{{ID: "m1", Fact: "anything"}}
	if results := Rank(records, ""); len(results) != 0 {
		t.Errorf("expected no results for empty query, got %v", results)
	}
	if results := Rank(records, "  \t "); len(results) != 0 {
		t.Errorf("expected no results for whitespace query, got %v", results)
	}
}
