// Package search ranks records against a free-text query using lexical
// word and prefix matching. Results are ephemeral and recomputed on every
// query change.
package search

import (
	"sort"
	"strings"

	"github.com/scrypster/memview/pkg/types"
)

const (
	// fullMatchWeight and partialMatchWeight split the score budget
	// between exact containment and prefix overlap.
	fullMatchWeight    = 0.8
	partialMatchWeight = 0.4

	// partialCredit is awarded when a query word and a text word share a
	// prefix without containment.
	partialCredit = 0.5

	// maxScore caps every result below 1.0: this is lexical matching,
	// not true semantic similarity, and the ceiling says so.
	maxScore = 0.95

	// maxResults caps the ranked result list.
	maxResults = 20
)

// Result is a record annotated with its relevance to the query.
type Result struct {
	types.Memory
	Relevance float64 `json:"relevance"`
}

// Score computes the relevance of one record to a query, in [0, maxScore].
// An empty query scores zero.
//
// Each query word that appears as a substring of the search text (fact
// plus tags, lowercased) counts as a full match. A word that does not is
// given the best partial credit found across the text's words: 0.5 when
// one is a prefix of the other. Partial credits take the best candidate,
// not a sum.
func Score(fact string, tags []string, query string) float64 {
	text := strings.ToLower(fact + " " + strings.Join(tags, " "))
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 {
		return 0
	}

	textWords := strings.Fields(text)

	fullMatches := 0
	partials := 0.0
	for _, word := range queryWords {
		if strings.Contains(text, word) {
			fullMatches++
			continue
		}
		best := 0.0
		for _, textWord := range textWords {
			if strings.HasPrefix(textWord, word) || strings.HasPrefix(word, textWord) {
				best = partialCredit
				break
			}
		}
		partials += best
	}

	total := float64(len(queryWords))
	score := (float64(fullMatches)/total)*fullMatchWeight + (partials/total)*partialMatchWeight
	if score > maxScore {
		return maxScore
	}
	return score
}

// Rank scores every record against the query and returns records with a
// positive score, sorted descending. The sort is stable, so ties keep the
// collection's existing order. The result list is capped at 20 entries.
// An empty query yields no results.
func Rank(records []types.Memory, query string) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{}
	}

	results := []Result{}
	for _, m := range records {
		score := Score(m.Fact, m.Tags, query)
		if score > 0 {
			results = append(results, Result{Memory: m, Relevance: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
