package sorting

import (
	"errors"
	"slices"
	"time"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/observability"
	"github.com/matzehuels/sortgroup/pkg/scene"
)

// Reconcile brings g.Members in line with the scene graph without
// disturbing the relative order of entries that are still valid:
//
//  1. Entries whose referent was destroyed, detached, or is now owned by a
//     closer group are dropped.
//  2. Renderers in g's subtree whose nearest group (their own node
//     included) is g are appended in scene preorder.
//  3. Groups in g's subtree whose nearest strict ancestor group is g are
//     appended in scene preorder.
//
// Reconcile is idempotent. The only error it reports is a cycle in the
// hierarchy (ErrCodeCycle); stale entries are never errors.
func (w *World) Reconcile(g *Group) error {
	if !w.groupAlive(g) {
		return sgerrors.New(sgerrors.ErrCodeNotFound, "group %q is not attached to the scene", g.Name)
	}
	start := time.Now()
	before := len(g.Members)

	keep := make([]bool, len(g.Members))
	for i, m := range g.Members {
		if !w.memberAlive(m) {
			continue
		}
		owner, _, err := w.owner(m.Node(), !m.IsGroup())
		if err != nil {
			return w.cycle(g, err)
		}
		keep[i] = owner == g
	}
	i := 0
	g.Members = slices.DeleteFunc(g.Members, func(Member) bool {
		drop := !keep[i]
		i++
		return drop
	})
	pruned := before - len(g.Members)

	haveRenderer := make(map[*Renderer]bool, len(g.Members))
	haveGroup := make(map[*Group]bool)
	for _, m := range g.Members {
		if m.Renderer != nil {
			haveRenderer[m.Renderer] = true
		} else {
			haveGroup[m.Group] = true
		}
	}

	subtree := w.graph.Subtree(g.node)
	added := 0

	for _, id := range subtree {
		r, ok := w.renderers[id]
		if !ok || haveRenderer[r] {
			continue
		}
		owner, _, err := w.owner(id, true)
		if err != nil {
			return w.cycle(g, err)
		}
		if owner == g {
			g.Members = append(g.Members, Member{Name: r.Name, Renderer: r})
			haveRenderer[r] = true
			added++
		}
	}

	for _, id := range subtree {
		if id == g.node {
			continue
		}
		sub, ok := w.groups[id]
		if !ok || haveGroup[sub] {
			continue
		}
		owner, _, err := w.owner(id, false)
		if err != nil {
			return w.cycle(g, err)
		}
		if owner != g {
			continue
		}
		if err := w.checkNesting(g, sub); err != nil {
			return w.cycle(g, err)
		}
		g.Members = append(g.Members, Member{Name: sub.Name, Group: sub})
		haveGroup[sub] = true
		added++
	}

	elapsed := time.Since(start)
	if added > 0 || pruned > 0 {
		w.logger.Debug("reconciled group", "group", g.Name, "added", added, "pruned", pruned, "members", len(g.Members))
	}
	observability.Sorting().OnReconcile(g.Name, added, pruned, elapsed)
	return nil
}

// ReconcileAll reconciles every live group after dropping capabilities of
// destroyed nodes. Errors from individual groups are joined.
func (w *World) ReconcileAll() error {
	w.sweep()
	var errs []error
	for _, g := range w.Groups() {
		if err := w.Reconcile(g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MoveMember moves the member at index from to index to, shifting the
// entries in between. It is how Manual order is authored.
func (w *World) MoveMember(g *Group, from, to int) error {
	n := len(g.Members)
	if from < 0 || from >= n || to < 0 || to >= n {
		return sgerrors.New(sgerrors.ErrCodeInvalidInput, "move %d -> %d out of range for %d members", from, to, n)
	}
	if from == to {
		return nil
	}
	m := g.Members[from]
	g.Members = slices.Delete(g.Members, from, from+1)
	g.Members = slices.Insert(g.Members, to, m)
	return nil
}

// checkNesting rejects sub as a member of g when sub sits above g, which
// would make the traversal recurse forever.
func (w *World) checkNesting(g, sub *Group) error {
	if sub == g {
		return scene.ErrCycle
	}
	above, err := scene.IsAncestor(w.graph, sub.node, g.node)
	if err != nil {
		return err
	}
	if above {
		return scene.ErrCycle
	}
	return nil
}

func (w *World) cycle(g *Group, err error) error {
	w.logger.Warn("sorting group hierarchy has a cycle", "group", g.Name, "err", err)
	if sgerrors.Is(err, sgerrors.ErrCodeCycle) {
		return err
	}
	return sgerrors.Wrap(sgerrors.ErrCodeCycle, err, "reconcile group %q", g.Name)
}
