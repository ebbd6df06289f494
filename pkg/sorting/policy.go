package sorting

import (
	"cmp"
	"slices"

	"github.com/matzehuels/sortgroup/pkg/scene"
)

// Comparator returns the member ordering for g's mode, or nil for
// ModeManual. Members that compare lower come first in the list and
// therefore receive higher sort orders.
//
// Keys are read from graph on every call; use [SortMembers] to sort a list,
// which computes each key once.
func Comparator(graph scene.Graph, g *Group) func(a, b Member) int {
	switch g.Mode {
	case ModeHierarchy:
		return func(a, b Member) int {
			return cmp.Compare(HierarchyKey(graph, g.node, b.Node()), HierarchyKey(graph, g.node, a.Node()))
		}
	case ModeIsometric:
		return func(a, b Member) int {
			return cmp.Compare(IsometricDepth(graph, b.Node(), g.IsoScale), IsometricDepth(graph, a.Node(), g.IsoScale))
		}
	}
	return nil
}

// SortMembers reorders g.Members in place according to g.Mode. The sort is
// stable, so equal keys keep their current relative order.
func SortMembers(graph scene.Graph, g *Group) {
	if g.Mode != ModeHierarchy && g.Mode != ModeIsometric {
		return
	}
	type keyed struct {
		m   Member
		key float64
	}
	ks := make([]keyed, len(g.Members))
	for i, m := range g.Members {
		ks[i].m = m
		if g.Mode == ModeHierarchy {
			ks[i].key = float64(HierarchyKey(graph, g.node, m.Node()))
		} else {
			ks[i].key = IsometricDepth(graph, m.Node(), g.IsoScale)
		}
	}
	// Descending key: later siblings and higher Y come first.
	slices.SortStableFunc(ks, func(a, b keyed) int { return cmp.Compare(b.key, a.key) })
	for i := range ks {
		g.Members[i] = ks[i].m
	}
}

// HierarchyKey sums the sibling indices on the path from owner (exclusive)
// down to node (inclusive). A node that is owner itself scores 0. The walk
// stops at the scene root if owner is never reached.
func HierarchyKey(graph scene.Graph, owner, node scene.NodeID) int {
	sum := 0
	visited := map[scene.NodeID]struct{}{}
	for cur := node; cur != owner; {
		if _, seen := visited[cur]; seen {
			break
		}
		visited[cur] = struct{}{}
		sum += graph.SiblingIndex(cur)
		p, ok := graph.Parent(cur)
		if !ok {
			break
		}
		cur = p
	}
	return sum
}

// IsometricDepth returns the scaled world Y of node. Nodes without a
// resolvable position sit at 0.
func IsometricDepth(graph scene.Graph, node scene.NodeID, scale float64) float64 {
	if scale == 0 {
		scale = 1
	}
	pos, ok := graph.WorldPosition(node)
	if !ok {
		return 0
	}
	return pos.Y * scale
}
