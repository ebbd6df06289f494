package sorting

import (
	"errors"
	"time"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/observability"
)

// Stats describes one AssignOrders pass.
type Stats struct {
	Root     string        // root group name
	Total    int           // renderer slots counted before the pass
	Written  int           // sort orders written; equals Total
	Groups   int           // groups visited, root included
	Members  int           // member entries across the subtree
	Duration time.Duration // wall time of the pass
}

// CountSlots returns the number of live renderer members in g's subtree.
// This is the highest sort order the next pass hands out.
func (w *World) CountSlots(g *Group) int {
	n := 0
	w.walk(g, func(m Member) {
		if m.Renderer != nil {
			n++
		}
	})
	return n
}

// CountMembers returns the number of live member entries, renderers and
// nested groups alike, summed over every group in g's subtree.
func (w *World) CountMembers(g *Group) int {
	n := 0
	w.walk(g, func(Member) { n++ })
	return n
}

// walk visits the live members of g and its nested groups, each group once.
func (w *World) walk(g *Group, fn func(Member)) {
	seen := map[*Group]bool{}
	var visit func(*Group)
	visit = func(g *Group) {
		if seen[g] {
			return
		}
		seen[g] = true
		for _, m := range g.Members {
			if !w.memberAlive(m) {
				continue
			}
			fn(m)
			if m.Group != nil {
				visit(m.Group)
			}
		}
	}
	visit(g)
}

// AssignOrders writes SortOrder on every renderer below root.
//
// The counter starts at CountSlots(root) and counts down to 1. Each group
// first sorts its members by its mode, then walks them in order: a renderer
// takes the current value, a nested group spends its whole budget before
// the next sibling is visited. Every group's subtree therefore occupies a
// contiguous range inside its parent's range, recorded in Group.Range.
//
// Larger SortOrder draws later, on top. The first member of a sorted list
// draws in front of its siblings.
//
// Only the topmost group of a branch assigns; calling AssignOrders on a
// nested group is a no-op that returns zero Stats.
func (w *World) AssignOrders(root *Group) (Stats, error) {
	if !w.groupAlive(root) {
		return Stats{}, nil
	}
	top, _, err := w.RootGroup(root.node)
	if err != nil {
		return Stats{}, err
	}
	if top != root {
		return Stats{}, nil
	}

	start := time.Now()
	st := Stats{Root: root.Name, Total: w.CountSlots(root), Members: w.CountMembers(root)}
	next := st.Total
	err = w.assign(root, &next, map[*Group]bool{}, &st)
	st.Duration = time.Since(start)

	if err == nil && st.Written != st.Total {
		err = sgerrors.New(sgerrors.ErrCodeInternal, "group %q: wrote %d orders for %d slots", root.Name, st.Written, st.Total)
	}
	if err != nil {
		w.logger.Warn("order assignment failed", "group", root.Name, "err", err)
	} else {
		w.logger.Debug("assigned orders", "group", root.Name, "total", st.Total, "groups", st.Groups, "duration", st.Duration)
	}
	observability.Sorting().OnAssign(root.Name, st.Total, st.Written, st.Duration, err)
	return st, err
}

func (w *World) assign(g *Group, next *int, visited map[*Group]bool, st *Stats) error {
	if visited[g] {
		return sgerrors.New(sgerrors.ErrCodeCycle, "group %q reached twice during assignment", g.Name)
	}
	visited[g] = true
	st.Groups++

	SortMembers(w.graph, g)

	hi := *next
	for _, m := range g.Members {
		if !w.memberAlive(m) {
			continue
		}
		if m.Renderer != nil {
			m.Renderer.SortOrder = *next
			*next--
			st.Written++
			continue
		}
		if err := w.assign(m.Group, next, visited, st); err != nil {
			return err
		}
	}
	g.Range = OrderRange{Hi: hi, Lo: *next + 1}
	return nil
}

// Update runs one frame: capabilities of destroyed nodes are dropped, then
// every enabled root group assigns its subtree. Disabled roots keep their
// previous output. Errors from individual roots are joined.
func (w *World) Update() error {
	_, err := w.Frame()
	return err
}

// Frame is Update that also returns the stats of every root pass that ran,
// in root order.
func (w *World) Frame() ([]Stats, error) {
	w.sweep()
	var (
		stats []Stats
		errs  []error
	)
	for _, g := range w.Roots() {
		if !g.Enabled {
			continue
		}
		st, err := w.AssignOrders(g)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		stats = append(stats, st)
	}
	return stats, errors.Join(errs...)
}
