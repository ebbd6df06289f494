package scene

import "errors"

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned when an operation names a node that is not
	// in the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownParent is returned by [Tree.AddNode] and [Tree.SetParent]
	// when the requested parent does not exist.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrCycle is returned when a parent walk revisits a node, or when
	// [Tree.SetParent] would make a node its own ancestor.
	ErrCycle = errors.New("scene hierarchy contains a cycle")
)

// NodeID identifies a node in the host scene graph.
type NodeID string

// Vec3 is a world-space position.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Graph is the read-only scene graph adapter consumed by the sorting core.
// Implementations must return a consistent snapshot for the duration of one
// sorting pass.
type Graph interface {
	// Contains reports whether the node exists (has not been destroyed).
	Contains(id NodeID) bool

	// Parent returns the node's parent, or false for scene roots and
	// unknown nodes.
	Parent(id NodeID) (NodeID, bool)

	// SiblingIndex returns the node's position among its parent's children
	// (or among the scene roots). Unknown nodes report 0.
	SiblingIndex(id NodeID) int

	// WorldPosition returns the node's world-space position, or false if it
	// cannot be resolved.
	WorldPosition(id NodeID) (Vec3, bool)

	// Subtree returns id followed by all of its descendants in preorder,
	// children visited in sibling order. Unknown nodes yield nil.
	Subtree(id NodeID) []NodeID
}

// Closest walks from start towards the scene root and returns the first node
// accepted by match. When inclusive is false, start itself is skipped.
//
// The walk is iterative and bounded by a visited set; a parent loop yields
// ErrCycle instead of spinning forever.
func Closest(g Graph, start NodeID, inclusive bool, match func(NodeID) bool) (NodeID, bool, error) {
	visited := map[NodeID]struct{}{start: {}}
	cur := start
	if !inclusive {
		p, ok := g.Parent(cur)
		if !ok {
			return "", false, nil
		}
		if _, seen := visited[p]; seen {
			return "", false, ErrCycle
		}
		visited[p] = struct{}{}
		cur = p
	}
	for {
		if match(cur) {
			return cur, true, nil
		}
		p, ok := g.Parent(cur)
		if !ok {
			return "", false, nil
		}
		if _, seen := visited[p]; seen {
			return "", false, ErrCycle
		}
		visited[p] = struct{}{}
		cur = p
	}
}

// Topmost returns the accepted node closest to the scene root on the path
// from start (inclusive) upwards.
func Topmost(g Graph, start NodeID, match func(NodeID) bool) (NodeID, bool, error) {
	var (
		found   NodeID
		ok      bool
		visited = map[NodeID]struct{}{}
	)
	cur := start
	for {
		if _, seen := visited[cur]; seen {
			return "", false, ErrCycle
		}
		visited[cur] = struct{}{}
		if match(cur) {
			found, ok = cur, true
		}
		p, has := g.Parent(cur)
		if !has {
			return found, ok, nil
		}
		cur = p
	}
}

// IsAncestor reports whether anc is a strict ancestor of id.
func IsAncestor(g Graph, anc, id NodeID) (bool, error) {
	_, ok, err := Closest(g, id, false, func(n NodeID) bool { return n == anc })
	return ok, err
}
