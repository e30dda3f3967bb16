// Package graph provides the JSON-backed knowledge graph store and the
// adaptive node scorer that agent tools query for evidence.
package graph

import (
	"log/slog"
)

// Node is a single knowledge graph node. Content is the text blob used
// as evidence when the node is cited.
type Node struct {
	ID      string `json:"node_id"`
	Content string `json:"content"`
}

// Edge is a directed, labeled edge between two nodes.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Neighbor is an outgoing edge as seen from its source node.
type Neighbor struct {
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Store holds a directed, possibly cyclic graph loaded from a node/edge
// document. The structure is immutable after load, so reads are safe for
// concurrent use without locking. Self-loops and edges whose target is not
// present as a node are tolerated and silently skipped during traversal.
type Store struct {
	nodes map[string]string
	out   map[string][]Neighbor
	// order preserves source-document node order for deterministic
	// iteration and Expand padding.
	order  []string
	logger *slog.Logger
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Has reports whether the store contains the given node id.
func (s *Store) Has(nodeID string) bool {
	_, ok := s.nodes[nodeID]
	return ok
}

// Content returns the content of the given node, or "" if unknown.
func (s *Store) Content(nodeID string) string {
	return s.nodes[nodeID]
}

// NodeIDs returns all node ids in source-document order.
func (s *Store) NodeIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Neighbors returns the outgoing edges of the given node in declaration
// order. Unknown node ids yield an empty result, not an error.
func (s *Store) Neighbors(nodeID string) []Neighbor {
	edges := s.out[nodeID]
	result := make([]Neighbor, 0, len(edges))
	for _, e := range edges {
		if _, ok := s.nodes[e.Target]; !ok {
			continue // dangling target
		}
		result = append(result, e)
	}
	return result
}

// Subgraph returns every node reachable from any center within radius
// directed hops, expanded breadth-first layer by layer, plus every edge
// whose endpoints both lie in the returned node set. Radius 0 returns
// exactly the known centers. Unknown center ids are silently dropped.
func (s *Store) Subgraph(centers []string, radius int) ([]Node, []Edge) {
	inSet := make(map[string]bool)
	var ids []string

	appendNode := func(id string) {
		if _, known := s.nodes[id]; !known || inSet[id] {
			return
		}
		inSet[id] = true
		ids = append(ids, id)
	}

	layer := make([]string, 0, len(centers))
	layerSeen := make(map[string]bool)
	for _, c := range centers {
		if _, ok := s.nodes[c]; ok && !layerSeen[c] {
			layerSeen[c] = true
			layer = append(layer, c)
		}
	}
	for _, id := range layer {
		appendNode(id)
	}

	for hop := 0; hop < radius && len(layer) > 0; hop++ {
		next := make([]string, 0)
		nextSeen := make(map[string]bool)
		for _, id := range layer {
			for _, e := range s.out[id] {
				if _, known := s.nodes[e.Target]; !known {
					continue
				}
				if inSet[e.Target] || nextSeen[e.Target] {
					continue
				}
				nextSeen[e.Target] = true
				next = append(next, e.Target)
			}
		}
		for _, id := range next {
			appendNode(id)
		}
		layer = next
	}

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, Node{ID: id, Content: s.nodes[id]})
	}

	var edges []Edge
	for _, id := range ids {
		for _, e := range s.out[id] {
			if inSet[e.Target] {
				edges = append(edges, Edge{From: id, To: e.Target, Label: e.Label})
			}
		}
	}

	return nodes, edges
}

// Expand collects up to k distinct nodes by a breadth-first frontier walk
// from the seed ids, in discovery order. If fewer than k nodes are
// reachable, the result is padded with unseen nodes in store order until k
// is reached or the store is exhausted. Tools therefore always receive a
// usable candidate set, even for sparse or disconnected seeds.
func (s *Store) Expand(seeds []string, k int) []Node {
	if k <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	results := make([]Node, 0, k)
	frontier := make([]string, 0, len(seeds))
	frontier = append(frontier, seeds...)

	for len(frontier) > 0 && len(results) < k {
		id := frontier[0]
		frontier = frontier[1:]
		if seen[id] {
			continue
		}
		if _, ok := s.nodes[id]; !ok {
			continue
		}
		seen[id] = true
		results = append(results, Node{ID: id, Content: s.nodes[id]})
		for _, e := range s.out[id] {
			if !seen[e.Target] {
				frontier = append(frontier, e.Target)
			}
		}
	}

	if len(results) < k {
		for _, id := range s.order {
			if seen[id] {
				continue
			}
			seen[id] = true
			results = append(results, Node{ID: id, Content: s.nodes[id]})
			if len(results) >= k {
				break
			}
		}
	}

	if s.logger != nil {
		s.logger.Debug("graph expand", "seeds", len(seeds), "k", k, "returned", len(results))
	}
	return results
}
