package graph

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// nodeRecord is the wire format of one node in the graph source document.
// Both the primary and the alternate key name are accepted for the edge
// list and for each edge's target/label fields.
type nodeRecord struct {
	ID      string       `json:"id"`
	Content string       `json:"content"`
	Edges   []edgeRecord `json:"edges"`
	Edge    []edgeRecord `json:"edge"` // alternate key
}

type edgeRecord struct {
	Target       string `json:"target"`
	TargetID     string `json:"target_id"` // alternate key
	Label        string `json:"label"`
	Relationship string `json:"relationship"` // alternate key
}

func (e edgeRecord) target() string {
	if e.Target != "" {
		return e.Target
	}
	return e.TargetID
}

func (e edgeRecord) label() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Relationship
}

// StoreOption configures a Store during construction.
type StoreOption func(*Store)

// WithLogger sets the logger used for traversal debug logging.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// LoadStore reads a graph source document from path and builds a Store.
func LoadStore(path string, opts ...StoreOption) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.GRAPH_LOAD_FAILED, fmt.Sprintf("reading graph file %s", path), err)
	}
	return ParseStore(data, opts...)
}

// ParseStore builds a Store from a JSON node-record sequence. Records
// without an id are skipped. A missing edges/edge key means the node has
// no outgoing edges.
func ParseStore(data []byte, opts ...StoreOption) (*Store, error) {
	var records []nodeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, types.WrapError(types.GRAPH_PARSE_FAILED, "decoding graph document", err)
	}

	s := &Store{
		nodes: make(map[string]string, len(records)),
		out:   make(map[string][]Neighbor, len(records)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, dup := s.nodes[rec.ID]; !dup {
			s.order = append(s.order, rec.ID)
		}
		s.nodes[rec.ID] = rec.Content

		edges := rec.Edges
		if edges == nil {
			edges = rec.Edge
		}
		adj := make([]Neighbor, 0, len(edges))
		for _, e := range edges {
			tgt := e.target()
			if tgt == "" {
				continue
			}
			adj = append(adj, Neighbor{Target: tgt, Label: e.label()})
		}
		s.out[rec.ID] = adj
	}

	if s.logger != nil {
		s.logger.Info("graph loaded", "nodes", len(s.nodes))
	}
	return s, nil
}
