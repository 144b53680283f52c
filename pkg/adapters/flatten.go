package adapters

import (
	"strings"

	"github.com/flowdesk/flowdesk/pkg/models"
)

// Flatten converts an adapter tree plus optional free-text and data-type
// filters into the ordered flat list shown by the tree widget. Parents
// always precede their children, siblings keep encounter order. A non-empty
// portType keeps only leaves wirable with that type, so the picker can be
// narrowed to what the selected port accepts. An adapter without any source
// or sink flattens to nothing regardless of its thing node shape.
func Flatten(tree Tree, filter string, portType models.DataType) []FlatNode {
	if len(tree.Sources) == 0 && len(tree.Sinks) == 0 {
		return []FlatNode{}
	}

	nodes := mergeNodes(tree)

	if portType != "" {
		nodes = filterByType(nodes, portType)
	}

	children := childIndex(nodes)

	if terms := filterTerms(filter); len(terms) > 0 {
		nodes = applyFilter(nodes, children, terms)
		children = childIndex(nodes)
	}

	nodes = pruneDangling(nodes, children)
	children = childIndex(nodes)

	ordered := spliceSort(nodes, children)

	return annotate(ordered)
}

// ExpandFlattenedNodes projects the currently visible subset of a flattened
// list: a row is visible iff every ancestor up to the root is expanded.
func ExpandFlattenedNodes(flat []FlatNode, expanded map[string]bool) []FlatNode {
	visible := make([]FlatNode, 0, len(flat))

	// stack[i] reports whether the ancestor chain down to level i is open.
	var stack []bool

	for _, node := range flat {
		stack = stack[:node.Level]

		open := true
		for _, ancestorOpen := range stack {
			if !ancestorOpen {
				open = false

				break
			}
		}

		if open {
			visible = append(visible, node)
		}

		stack = append(stack, expanded[node.ID])
	}

	return visible
}

// mergeNodes folds thing nodes and leaf entries into one collection, with
// leaves reparented under their owning thing node id.
func mergeNodes(tree Tree) []FlatNode {
	nodes := make([]FlatNode, 0, len(tree.ThingNodes)+len(tree.Sources)+len(tree.Sinks))

	for _, tn := range tree.ThingNodes {
		nodes = append(nodes, FlatNode{ID: tn.ID, ParentID: tn.ParentID, Name: tn.Name})
	}

	for i := range tree.Sources {
		source := tree.Sources[i]
		parent := source.ThingNodeID
		nodes = append(nodes, FlatNode{ID: source.ID, ParentID: &parent, Name: source.Name, Source: &source})
	}

	for i := range tree.Sinks {
		sink := tree.Sinks[i]
		parent := sink.ThingNodeID
		nodes = append(nodes, FlatNode{ID: sink.ID, ParentID: &parent, Name: sink.Name, Sink: &sink})
	}

	return nodes
}

func childIndex(nodes []FlatNode) map[string][]int {
	children := make(map[string][]int)

	for i, node := range nodes {
		key := ""
		if node.ParentID != nil {
			key = *node.ParentID
		}

		children[key] = append(children[key], i)
	}

	return children
}

func filterTerms(filter string) []string {
	var terms []string

	for _, term := range strings.Fields(filter) {
		terms = append(terms, strings.ToLower(term))
	}

	return terms
}

// filterByType drops leaves that cannot wire to the requested port type.
// Thing nodes all survive this pass, branches left without leaves fall to
// the dangling elimination afterwards.
func filterByType(nodes []FlatNode, portType models.DataType) []FlatNode {
	kept := nodes[:0]

	for _, node := range nodes {
		if node.Source != nil && !node.Source.WirableWith(portType) {
			continue
		}

		if node.Sink != nil && !node.Sink.WirableWith(portType) {
			continue
		}

		kept = append(kept, node)
	}

	return kept
}

func nameMatches(name string, terms []string) bool {
	lower := strings.ToLower(name)

	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}

	return false
}

// applyFilter keeps a node when its own name matches or any descendant's
// does. Matching propagates upward only, a matching ancestor does not rescue
// non-matching children.
func applyFilter(nodes []FlatNode, children map[string][]int, terms []string) []FlatNode {
	keep := make([]bool, len(nodes))

	var mark func(index int) bool
	mark = func(index int) bool {
		matched := nameMatches(nodes[index].Name, terms)

		for _, child := range children[nodes[index].ID] {
			if mark(child) {
				matched = true
			}
		}

		keep[index] = matched

		return matched
	}

	for _, root := range children[""] {
		mark(root)
	}

	kept := nodes[:0]
	for i, node := range nodes {
		if keep[i] {
			kept = append(kept, node)
		}
	}

	return kept
}

// pruneDangling removes intermediate nodes with nothing real underneath.
// A node dangles when it is not a leaf and all of its children dangle.
func pruneDangling(nodes []FlatNode, children map[string][]int) []FlatNode {
	dangling := make([]bool, len(nodes))

	var visit func(index int) bool
	visit = func(index int) bool {
		if nodes[index].Source != nil || nodes[index].Sink != nil {
			return false
		}

		dangles := true
		for _, child := range children[nodes[index].ID] {
			if !visit(child) {
				dangles = false
			}
		}

		dangling[index] = dangles

		return dangles
	}

	for _, root := range children[""] {
		visit(root)
	}

	kept := nodes[:0]
	for i, node := range nodes {
		if !dangling[i] {
			kept = append(kept, node)
		}
	}

	return kept
}

// spliceSort produces depth-first pre-order by splicing each node's children
// immediately after it, starting from the roots.
func spliceSort(nodes []FlatNode, children map[string][]int) []FlatNode {
	ordered := make([]FlatNode, 0, len(nodes))

	var place func(index int)
	place = func(index int) {
		ordered = append(ordered, nodes[index])

		for _, child := range children[nodes[index].ID] {
			place(child)
		}
	}

	for _, root := range children[""] {
		place(root)
	}

	return ordered
}

// annotate assigns level and expandable in one left-to-right pass over the
// pre-ordered list, tracking the ancestor stack.
func annotate(ordered []FlatNode) []FlatNode {
	type frame struct{ id string }

	var stack []frame

	for i := range ordered {
		node := &ordered[i]

		for len(stack) > 0 {
			if node.ParentID != nil && stack[len(stack)-1].id == *node.ParentID {
				break
			}

			stack = stack[:len(stack)-1]
		}

		node.Level = len(stack)
		node.Expandable = node.Source == nil && node.Sink == nil

		stack = append(stack, frame{id: node.ID})
	}

	return ordered
}
