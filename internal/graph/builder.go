// Package graph derives the relationship graph from the current record
// set. The graph is ephemeral: fully recomputed on every collection change,
// never persisted.
package graph

import (
	"github.com/scrypster/memview/pkg/types"
)

// labelLimit is the display label length in runes.
const labelLimit = 60

// Build derives the deduplicated undirected graph for a record set.
//
// One node per record. An edge is emitted only when both endpoints are
// records present in the set; dangling references are dropped silently.
// At most one edge exists per unordered pair regardless of direction or
// how many records reference it; the first-seen direction is kept. Build
// is a pure function: the same input yields a structurally identical graph.
func Build(records []types.Memory) types.Graph {
	nodes := make([]types.GraphNode, 0, len(records))
	present := make(map[string]bool, len(records))
	for _, m := range records {
		present[m.ID] = true
		nodes = append(nodes, types.GraphNode{
			ID:        m.ID,
			Label:     truncateLabel(m.Fact),
			Pinned:    m.Pinned,
			Tags:      m.Tags,
			LinkCount: len(m.RelatedTo),
		})
	}

	// Dedup keyed by the canonical unordered pair. A keyed set keeps edge
	// emission linear in the number of relations; a scan over already
	// emitted edges would go quadratic once collections grow past a few
	// hundred records.
	seen := make(map[string]bool)
	edges := []types.GraphEdge{}
	for _, m := range records {
		for _, relID := range m.RelatedTo {
			if !present[relID] {
				continue
			}
			key := pairKey(m.ID, relID)
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, types.GraphEdge{Source: m.ID, Target: relID})
		}
	}

	return types.Graph{Nodes: nodes, Edges: edges}
}

// pairKey builds the canonical key for an unordered id pair. The NUL
// separator keeps concatenations of different pairs from colliding.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func truncateLabel(fact string) string {
	runes := []rune(fact)
	if len(runes) <= labelLimit {
		return fact
	}
	return string(runes[:labelLimit]) + "..."
}
