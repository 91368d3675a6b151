package model

import "fmt"

// PlanNode is one learning module in the blueprint skill tree.
type PlanNode struct {
	NodeID               string   `json:"node_id"`
	Title                string   `json:"title"`
	Rationale            string   `json:"rationale"`
	Prerequisites        []string `json:"prerequisites"`
	SuggestedMicroTopics []string `json:"suggested_micro_topics"`
}

// Blueprint is the structured output of planning: a DAG of learning
// modules connected by prerequisite edges.
type Blueprint struct {
	Nodes []PlanNode `json:"nodes"`
}

// Clone returns a deep copy of the blueprint.
func (b *Blueprint) Clone() *Blueprint {
	cp := Blueprint{Nodes: make([]PlanNode, len(b.Nodes))}
	for i, n := range b.Nodes {
		nc := n
		nc.Prerequisites = append([]string(nil), n.Prerequisites...)
		nc.SuggestedMicroTopics = append([]string(nil), n.SuggestedMicroTopics...)
		cp.Nodes[i] = nc
	}
	return &cp
}

// Validate checks structural sanity of the skill tree: at least one
// node, unique ids, prerequisites that resolve to known nodes, and no
// self-referential edges. Content quality is the critic's concern, not
// ours.
func (b *Blueprint) Validate() error {
	if len(b.Nodes) == 0 {
		return fmt.Errorf("blueprint has no nodes")
	}
	seen := make(map[string]struct{}, len(b.Nodes))
	for _, n := range b.Nodes {
		if n.NodeID == "" {
			return fmt.Errorf("blueprint node with empty node_id")
		}
		if _, dup := seen[n.NodeID]; dup {
			return fmt.Errorf("duplicate node_id %q", n.NodeID)
		}
		seen[n.NodeID] = struct{}{}
	}
	for _, n := range b.Nodes {
		for _, p := range n.Prerequisites {
			if p == n.NodeID {
				return fmt.Errorf("node %q lists itself as prerequisite", n.NodeID)
			}
			if _, ok := seen[p]; !ok {
				return fmt.Errorf("node %q has unknown prerequisite %q", n.NodeID, p)
			}
		}
	}
	return nil
}
