package sorting

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/sortgroup/pkg/observability"
	"github.com/matzehuels/sortgroup/pkg/scene"
)

func orders(f *fixture, ids ...string) []int {
	f.t.Helper()
	out := make([]int, len(ids))
	for i, id := range ids {
		r, ok := f.w.Renderer(scene.NodeID(id))
		if !ok {
			f.t.Fatalf("no renderer on %s", id)
		}
		out[i] = r.SortOrder
	}
	return out
}

// R (hierarchy) with renderer A first and manual group S {B, C} second.
func nestedHierarchy(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.node("R", "", 0)
	f.node("A", "R", 0)
	f.node("S", "R", 0)
	f.node("B", "S", 0)
	f.node("C", "S", 0)
	for _, id := range []string{"A", "B", "C"} {
		f.renderer(id)
	}
	f.group("R", ModeHierarchy)
	f.group("S", ModeManual)
	return f
}

func TestAssignOrdersNestedGroups(t *testing.T) {
	f := nestedHierarchy(t)
	root, _ := f.w.Group("R")

	st, err := f.w.AssignOrders(root)
	if err != nil {
		t.Fatalf("AssignOrders: %v", err)
	}

	if got, want := orders(f, "B", "C", "A"), []int{3, 2, 1}; !slices.Equal(got, want) {
		t.Errorf("orders [B C A] = %v, want %v", got, want)
	}
	if st.Total != 3 || st.Written != 3 {
		t.Errorf("Total/Written = %d/%d, want 3/3", st.Total, st.Written)
	}
	if st.Groups != 2 {
		t.Errorf("Groups = %d, want 2", st.Groups)
	}
	if st.Members != 4 {
		t.Errorf("Members = %d, want 4", st.Members)
	}
	if st.Root != "R" {
		t.Errorf("Root = %q, want R", st.Root)
	}
}

func TestAssignOrdersHierarchySiblings(t *testing.T) {
	f := newFixture(t)
	f.node("g", "", 0)
	for _, id := range []string{"s0", "s1", "s2"} {
		f.node(id, "g", 0)
		f.renderer(id)
	}
	f.group("g", ModeHierarchy)

	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := orders(f, "s0", "s1", "s2"), []int{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("orders = %v, want %v", got, want)
	}

	// Moving the last sibling to the front puts it at the back.
	if err := f.tree.SetSiblingIndex("s2", 0); err != nil {
		t.Fatalf("SetSiblingIndex: %v", err)
	}
	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := orders(f, "s2", "s0", "s1"), []int{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("orders after reorder = %v, want %v", got, want)
	}
}

func TestAssignOrdersIsometric(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  []int // orders for [high, low]
	}{
		{"default scale", 0, []int{2, 1}},
		{"positive scale", 2, []int{2, 1}},
		{"flipped axis", -1, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.node("g", "", 0)
			f.node("high", "g", 5)
			f.node("low", "g", 1)
			f.renderer("high")
			f.renderer("low")
			if _, err := f.w.AddGroup("g", "g", GroupConfig{Mode: ModeIsometric, IsoScale: tt.scale}); err != nil {
				t.Fatalf("AddGroup: %v", err)
			}

			if err := f.w.Update(); err != nil {
				t.Fatalf("Update: %v", err)
			}
			if got := orders(f, "high", "low"); !slices.Equal(got, tt.want) {
				t.Errorf("orders = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignOrdersIsometricUsesWorldPosition(t *testing.T) {
	f := newFixture(t)
	f.node("g", "", 0)
	f.node("a", "g", 3)
	f.node("b", "g", 0)
	f.node("b1", "b", 4) // world Y 4 through its parent
	f.renderer("a")
	f.renderer("b1")
	f.group("g", ModeIsometric)

	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := orders(f, "b1", "a"), []int{2, 1}; !slices.Equal(got, want) {
		t.Errorf("orders [b1 a] = %v, want %v", got, want)
	}
}

func TestAssignOrdersManualAppendGetsLowest(t *testing.T) {
	f := newFixture(t)
	f.node("g", "", 0)
	f.node("a", "g", 0)
	f.node("b", "g", 0)
	f.renderer("a")
	f.renderer("b")
	g := f.group("g", ModeManual)

	f.node("c", "g", 0)
	f.renderer("c")
	if err := f.w.Reconcile(g); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := orders(f, "a", "b", "c"), []int{3, 2, 1}; !slices.Equal(got, want) {
		t.Errorf("orders = %v, want %v", got, want)
	}
}

func TestAssignOrdersCoLocatedRenderer(t *testing.T) {
	f := newFixture(t)
	f.node("g", "", 0)
	f.node("c0", "g", 0)
	f.node("c1", "g", 0)
	for _, id := range []string{"g", "c0", "c1"} {
		f.renderer(id)
	}
	f.group("g", ModeHierarchy)

	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// The group's own renderer scores 0 and ties with c0; list order wins.
	if got, want := orders(f, "c1", "g", "c0"), []int{3, 2, 1}; !slices.Equal(got, want) {
		t.Errorf("orders [c1 g c0] = %v, want %v", got, want)
	}
}

func TestAssignOrdersContiguousRanges(t *testing.T) {
	f := nestedScene(t)
	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var got []int
	for _, r := range f.w.Renderers() {
		got = append(got, r.SortOrder)
	}
	slices.Sort(got)
	if want := []int{1, 2, 3, 4, 5, 6}; !slices.Equal(got, want) {
		t.Fatalf("sort orders = %v, want %v", got, want)
	}

	world, _ := f.w.Group("world")
	house, _ := f.w.Group("house")
	attic, _ := f.w.Group("attic")

	tests := []struct {
		group *Group
		want  OrderRange
	}{
		{world, OrderRange{Hi: 6, Lo: 1}},
		{house, OrderRange{Hi: 4, Lo: 1}},
		{attic, OrderRange{Hi: 1, Lo: 1}},
	}
	for _, tt := range tests {
		if tt.group.Range != tt.want {
			t.Errorf("%s Range = %+v, want %+v", tt.group.Name, tt.group.Range, tt.want)
		}
	}

	// Every renderer owned by a group sits inside that group's range, and
	// nested ranges sit inside their parent's.
	for _, g := range f.w.Groups() {
		for _, m := range g.Members {
			switch {
			case m.Renderer != nil:
				if !g.Range.Contains(m.Renderer.SortOrder) {
					t.Errorf("%s: renderer %s order %d outside %+v", g.Name, m.Name, m.Renderer.SortOrder, g.Range)
				}
			case !m.Group.Range.Empty():
				if !g.Range.Contains(m.Group.Range.Hi) || !g.Range.Contains(m.Group.Range.Lo) {
					t.Errorf("%s: nested range %+v outside %+v", g.Name, m.Group.Range, g.Range)
				}
			}
		}
	}
}

func TestAssignOrdersEmptyGroupRange(t *testing.T) {
	f := newFixture(t)
	f.node("root", "", 0)
	f.node("a", "root", 0)
	f.node("empty", "root", 0)
	f.renderer("a")
	f.group("root", ModeManual)
	empty := f.group("empty", ModeManual)

	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !empty.Range.Empty() || empty.Range.Len() != 0 {
		t.Errorf("empty group Range = %+v, want empty", empty.Range)
	}
	if got := orders(f, "a"); got[0] != 1 {
		t.Errorf("a = %d, want 1", got[0])
	}
}

func TestAssignOrdersNonRootIsNoop(t *testing.T) {
	f := nestedHierarchy(t)
	sub, _ := f.w.Group("S")

	st, err := f.w.AssignOrders(sub)
	if err != nil {
		t.Fatalf("AssignOrders: %v", err)
	}
	if st != (Stats{}) {
		t.Errorf("Stats = %+v, want zero", st)
	}
	if got := orders(f, "A", "B", "C"); !slices.Equal(got, []int{0, 0, 0}) {
		t.Errorf("orders = %v, want untouched", got)
	}
}

func TestUpdateSkipsDisabledRoots(t *testing.T) {
	f := newFixture(t)
	f.node("on", "", 0)
	f.node("off", "", 0)
	f.node("a", "on", 0)
	f.node("b", "off", 0)
	f.renderer("a")
	f.renderer("b")
	f.group("on", ModeManual)
	if _, err := f.w.AddGroup("off", "off", GroupConfig{Disabled: true}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := orders(f, "a", "b"); !slices.Equal(got, []int{1, 0}) {
		t.Errorf("orders [a b] = %v, want [1 0]", got)
	}
}

func TestUpdateSeparateRootsCountIndependently(t *testing.T) {
	f := newFixture(t)
	f.node("left", "", 0)
	f.node("right", "", 0)
	f.node("l1", "left", 0)
	f.node("l2", "left", 0)
	f.node("r1", "right", 0)
	for _, id := range []string{"l1", "l2", "r1"} {
		f.renderer(id)
	}
	f.group("left", ModeManual)
	f.group("right", ModeManual)

	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := orders(f, "l1", "l2", "r1"), []int{2, 1, 1}; !slices.Equal(got, want) {
		t.Errorf("orders = %v, want %v", got, want)
	}
}

func TestFrameReportsEnabledRoots(t *testing.T) {
	f := newFixture(t)
	f.node("left", "", 0)
	f.node("mid", "", 0)
	f.node("right", "", 0)
	f.node("l1", "left", 0)
	f.node("l2", "left", 0)
	f.node("m1", "mid", 0)
	f.node("r1", "right", 0)
	for _, id := range []string{"l1", "l2", "m1", "r1"} {
		f.renderer(id)
	}
	f.group("left", ModeManual)
	f.group("right", ModeManual)
	if _, err := f.w.AddGroup("mid", "mid", GroupConfig{Disabled: true}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	stats, err := f.w.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Frame returned %d stats, want 2", len(stats))
	}
	if stats[0].Root != "left" || stats[0].Total != 2 {
		t.Errorf("stats[0] = %+v, want left with 2 slots", stats[0])
	}
	if stats[1].Root != "right" || stats[1].Written != 1 {
		t.Errorf("stats[1] = %+v, want right with 1 write", stats[1])
	}
}

func TestUpdateDropsDestroyedRenderers(t *testing.T) {
	f := nestedHierarchy(t)
	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	f.tree.Remove("B")
	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := orders(f, "C", "A"), []int{2, 1}; !slices.Equal(got, want) {
		t.Errorf("orders [C A] = %v, want %v", got, want)
	}
}

func TestCountSlotsAndMembers(t *testing.T) {
	f := nestedScene(t)
	world, _ := f.w.Group("world")

	if n := f.w.CountSlots(world); n != 6 {
		t.Errorf("CountSlots = %d, want 6", n)
	}
	// world: hero tree house; house: house door chimney attic; attic: lamp
	if n := f.w.CountMembers(world); n != 8 {
		t.Errorf("CountMembers = %d, want 8", n)
	}
}

type recordingHooks struct {
	reconciles int
	assigns    []string
}

func (h *recordingHooks) OnReconcile(string, int, int, time.Duration) { h.reconciles++ }

func (h *recordingHooks) OnAssign(root string, total, written int, _ time.Duration, err error) {
	h.assigns = append(h.assigns, root)
}

func TestAssignOrdersReportsToHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSortingHooks(hooks)
	defer observability.Reset()

	f := nestedHierarchy(t)
	if err := f.w.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if hooks.reconciles == 0 {
		t.Error("OnReconcile was never called")
	}
	if !slices.Equal(hooks.assigns, []string{"R"}) {
		t.Errorf("OnAssign roots = %v, want [R]", hooks.assigns)
	}
}
