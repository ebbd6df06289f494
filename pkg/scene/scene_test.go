package scene

import (
	"errors"
	"testing"
)

// loopGraph is a malformed adapter whose parent links form a ring.
type loopGraph map[NodeID]NodeID

func (g loopGraph) Contains(id NodeID) bool {
	_, ok := g[id]
	return ok
}

func (g loopGraph) Parent(id NodeID) (NodeID, bool) {
	p, ok := g[id]
	return p, ok && p != ""
}

func (g loopGraph) SiblingIndex(NodeID) int { return 0 }

func (g loopGraph) WorldPosition(NodeID) (Vec3, bool) { return Vec3{}, false }

func (g loopGraph) Subtree(id NodeID) []NodeID { return []NodeID{id} }

func TestClosest(t *testing.T) {
	tr := buildTree(t)
	marked := map[NodeID]bool{"root": true, "a": true}
	match := func(id NodeID) bool { return marked[id] }

	tests := []struct {
		name      string
		start     NodeID
		inclusive bool
		want      NodeID
		wantOK    bool
	}{
		{"inclusive self", "a", true, "a", true},
		{"exclusive self", "a", false, "root", true},
		{"leaf", "a1", true, "a", true},
		{"sibling branch", "b", false, "root", true},
		{"root exclusive", "root", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Closest(tr, tt.start, tt.inclusive, match)
			if err != nil {
				t.Fatalf("Closest: %v", err)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Closest(%s, %v) = %q, %v; want %q, %v", tt.start, tt.inclusive, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTopmost(t *testing.T) {
	tr := buildTree(t)
	marked := map[NodeID]bool{"a": true, "a1": true}

	got, ok, err := Topmost(tr, "a1", func(id NodeID) bool { return marked[id] })
	if err != nil {
		t.Fatalf("Topmost: %v", err)
	}
	if !ok || got != "a" {
		t.Errorf("Topmost(a1) = %q, %v; want a, true", got, ok)
	}

	_, ok, _ = Topmost(tr, "b", func(id NodeID) bool { return marked[id] })
	if ok {
		t.Error("Topmost(b) should find nothing")
	}
}

func TestAncestorWalksDetectCycles(t *testing.T) {
	g := loopGraph{"x": "y", "y": "z", "z": "x"}
	never := func(NodeID) bool { return false }

	if _, _, err := Closest(g, "x", true, never); !errors.Is(err, ErrCycle) {
		t.Errorf("Closest error = %v, want ErrCycle", err)
	}
	if _, _, err := Closest(g, "x", false, never); !errors.Is(err, ErrCycle) {
		t.Errorf("Closest exclusive error = %v, want ErrCycle", err)
	}
	if _, _, err := Topmost(g, "x", never); !errors.Is(err, ErrCycle) {
		t.Errorf("Topmost error = %v, want ErrCycle", err)
	}
}

func TestIsAncestor(t *testing.T) {
	tr := buildTree(t)

	if ok, _ := IsAncestor(tr, "root", "a1"); !ok {
		t.Error("root should be an ancestor of a1")
	}
	if ok, _ := IsAncestor(tr, "a1", "a1"); ok {
		t.Error("a node is not its own strict ancestor")
	}
	if ok, _ := IsAncestor(tr, "b", "a1"); ok {
		t.Error("b is not an ancestor of a1")
	}
}
