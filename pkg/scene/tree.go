package scene

import (
	"slices"

	"github.com/google/uuid"
)

// Node is one entry in a [Tree]. Parent is empty for scene roots. Local is
// the translation relative to the parent.
type Node struct {
	ID     NodeID
	Name   string
	Parent NodeID
	Local  Vec3
}

// Tree is an in-memory scene hierarchy implementing [Graph].
// Children are kept in sibling order; a node added to a parent becomes its
// last child.
//
// The zero value is not usable - use NewTree.
type Tree struct {
	nodes    map[NodeID]*Node
	children map[NodeID][]NodeID // parent -> ordered children; "" holds roots
}

// NewTree creates an empty scene tree.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[NodeID]*Node),
		children: make(map[NodeID][]NodeID),
	}
}

// AddNode inserts n as the last child of n.Parent (or as the last root).
// Returns ErrInvalidNodeID for an empty ID, ErrDuplicateNodeID if the ID is
// taken, or ErrUnknownParent if the parent does not exist.
func (t *Tree) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Parent != "" {
		if _, ok := t.nodes[n.Parent]; !ok {
			return ErrUnknownParent
		}
	}
	node := n
	t.nodes[n.ID] = &node
	t.children[n.Parent] = append(t.children[n.Parent], n.ID)
	return nil
}

// Spawn adds a node with a freshly generated ID under parent and returns
// the ID. An empty parent spawns a scene root.
func (t *Tree) Spawn(parent NodeID, name string, local Vec3) (NodeID, error) {
	id := NodeID(uuid.NewString())
	if err := t.AddNode(Node{ID: id, Name: name, Parent: parent, Local: local}); err != nil {
		return "", err
	}
	return id, nil
}

// Remove destroys id and its entire subtree. Removing an unknown node is a
// no-op.
func (t *Tree) Remove(id NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, d := range t.Subtree(id) {
		delete(t.nodes, d)
		delete(t.children, d)
	}
	t.children[n.Parent] = slices.DeleteFunc(t.children[n.Parent], func(c NodeID) bool { return c == id })
}

// SetParent moves id (with its subtree) to become the last child of parent.
// An empty parent turns id into a scene root. Returns ErrCycle if parent is
// id itself or one of its descendants.
func (t *Tree) SetParent(id, parent NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if parent != "" {
		if _, ok := t.nodes[parent]; !ok {
			return ErrUnknownParent
		}
		if parent == id {
			return ErrCycle
		}
		under, err := IsAncestor(t, id, parent)
		if err != nil {
			return err
		}
		if under {
			return ErrCycle
		}
	}
	t.children[n.Parent] = slices.DeleteFunc(t.children[n.Parent], func(c NodeID) bool { return c == id })
	n.Parent = parent
	t.children[parent] = append(t.children[parent], id)
	return nil
}

// SetSiblingIndex moves id to position index among its siblings. The index
// is clamped to the valid range.
func (t *Tree) SetSiblingIndex(id NodeID, index int) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	sibs := slices.DeleteFunc(t.children[n.Parent], func(c NodeID) bool { return c == id })
	index = max(0, min(index, len(sibs)))
	t.children[n.Parent] = slices.Insert(sibs, index, id)
	return nil
}

// SetLocalPosition updates the translation of id relative to its parent.
func (t *Tree) SetLocalPosition(id NodeID, local Vec3) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	n.Local = local
	return nil
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Children returns the children of id in sibling order.
// The returned slice is a copy and may be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.children[id])
}

// Roots returns the scene roots in sibling order.
func (t *Tree) Roots() []NodeID {
	return slices.Clone(t.children[""])
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Contains implements [Graph].
func (t *Tree) Contains(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Parent implements [Graph].
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.Parent == "" {
		return "", false
	}
	return n.Parent, true
}

// SiblingIndex implements [Graph].
func (t *Tree) SiblingIndex(id NodeID) int {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}
	return max(0, slices.Index(t.children[n.Parent], id))
}

// WorldPosition implements [Graph]. World position is the sum of local
// translations from the scene root down to id.
func (t *Tree) WorldPosition(id NodeID) (Vec3, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Vec3{}, false
	}
	pos := n.Local
	for steps := 0; n.Parent != ""; steps++ {
		if steps > len(t.nodes) {
			return Vec3{}, false
		}
		n = t.nodes[n.Parent]
		pos = pos.Add(n.Local)
	}
	return pos, true
}

// Subtree implements [Graph].
func (t *Tree) Subtree(id NodeID) []NodeID {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	var out []NodeID
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		kids := t.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

var _ Graph = (*Tree)(nil)
