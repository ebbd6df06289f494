package sorting

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/scene"
)

// Layer is an opaque sorting-layer identifier. Numeric order only has
// meaning between renderers that share a layer.
type Layer string

// DefaultLayer is the layer renderers start in.
const DefaultLayer Layer = "Default"

// Renderer is the sink side of a drawable attached to a scene node. The core
// writes SortOrder on every pass and Layer when its owning group's layer
// changes; everything else belongs to the host.
type Renderer struct {
	Name      string
	SortOrder int
	Layer     Layer

	node scene.NodeID
}

// Node returns the scene node the renderer is attached to.
func (r *Renderer) Node() scene.NodeID { return r.node }

// OrderRange is the inclusive range of sort orders a group's subtree used in
// the last pass. Lo > Hi means the subtree owned no live renderer.
type OrderRange struct {
	Hi, Lo int
}

// Empty reports whether the range holds no value.
func (r OrderRange) Empty() bool { return r.Lo > r.Hi }

// Contains reports whether v lies within the range.
func (r OrderRange) Contains(v int) bool { return v >= r.Lo && v <= r.Hi }

// Len returns the number of values in the range.
func (r OrderRange) Len() int { return max(0, r.Hi-r.Lo+1) }

// GroupConfig is the externally settable configuration of a group.
type GroupConfig struct {
	Mode  Mode
	Layer Layer
	// IsoScale multiplies world Y before isometric comparison. Zero means 1;
	// a negative value flips the depth axis for Y-down cameras.
	IsoScale float64
	Disabled bool
}

// Group bundles the renderers and nested groups below one scene node.
//
// Members is ordered. In ModeManual the order is authoritative; the other
// modes rewrite it in place on every pass. Range is written by the pass.
type Group struct {
	Name     string
	Mode     Mode
	Layer    Layer
	IsoScale float64
	Enabled  bool
	Members  []Member
	Range    OrderRange

	node scene.NodeID
}

// Node returns the scene node the group is attached to.
func (g *Group) Node() scene.NodeID { return g.node }

// Member is one entry of a group's member list: exactly one of Renderer or
// Group is set. Name is the display label captured at discovery.
type Member struct {
	Name     string
	Renderer *Renderer
	Group    *Group
}

// Node returns the scene node of whichever referent is set.
func (m Member) Node() scene.NodeID {
	if m.Renderer != nil {
		return m.Renderer.node
	}
	if m.Group != nil {
		return m.Group.node
	}
	return ""
}

// IsGroup reports whether the member is a nested group.
func (m Member) IsGroup() bool { return m.Group != nil }

// World holds the sorting capabilities attached to nodes of a scene graph:
// at most one Group and at most one Renderer per node.
//
// The zero value is not usable - use NewWorld.
// World is not safe for concurrent use; run it from the frame loop.
type World struct {
	graph     scene.Graph
	groups    map[scene.NodeID]*Group
	renderers map[scene.NodeID]*Renderer
	logger    *log.Logger
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(l *log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorld creates an empty World reading from g.
func NewWorld(g scene.Graph, opts ...Option) *World {
	w := &World{
		graph:     g,
		groups:    make(map[scene.NodeID]*Group),
		renderers: make(map[scene.NodeID]*Renderer),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Graph returns the scene graph the world reads from.
func (w *World) Graph() scene.Graph { return w.graph }

// AddRenderer attaches a renderer to node id. The renderer is picked up by
// its owning group on the next reconciliation.
func (w *World) AddRenderer(id scene.NodeID, name string) (*Renderer, error) {
	if !w.graph.Contains(id) {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not in scene", id)
	}
	if _, exists := w.renderers[id]; exists {
		return nil, errors.New(errors.ErrCodeDuplicate, "node %q already has a renderer", id)
	}
	r := &Renderer{Name: name, Layer: DefaultLayer, node: id}
	w.renderers[id] = r
	return r, nil
}

// RemoveRenderer detaches the renderer on id. Groups drop it lazily.
func (w *World) RemoveRenderer(id scene.NodeID) {
	delete(w.renderers, id)
}

// Renderer returns the renderer attached to id, if any.
func (w *World) Renderer(id scene.NodeID) (*Renderer, bool) {
	r, ok := w.renderers[id]
	return r, ok
}

// AddGroup attaches a group to node id and reconciles it. The group that
// owned id's subtree until now is reconciled too, so it adopts the new group
// and releases the members the new group took over.
func (w *World) AddGroup(id scene.NodeID, name string, cfg GroupConfig) (*Group, error) {
	if !w.graph.Contains(id) {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not in scene", id)
	}
	if _, exists := w.groups[id]; exists {
		return nil, errors.New(errors.ErrCodeDuplicate, "node %q already has a sorting group", id)
	}
	layer := cfg.Layer
	if layer == "" {
		layer = DefaultLayer
	}
	g := &Group{
		Name:     name,
		Mode:     cfg.Mode,
		Layer:    layer,
		IsoScale: cfg.IsoScale,
		Enabled:  !cfg.Disabled,
		Range:    OrderRange{Hi: 0, Lo: 1},
		node:     id,
	}
	w.groups[id] = g

	if err := w.Reconcile(g); err != nil {
		delete(w.groups, id)
		return nil, err
	}
	if owner, ok, err := w.owner(id, false); err != nil {
		return nil, err
	} else if ok {
		if err := w.Reconcile(owner); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// RemoveGroup detaches the group on id. Its former owner is reconciled so
// the orphaned members move up one level.
func (w *World) RemoveGroup(id scene.NodeID) error {
	if _, ok := w.groups[id]; !ok {
		return nil
	}
	delete(w.groups, id)
	if !w.graph.Contains(id) {
		return nil
	}
	owner, ok, err := w.owner(id, true)
	if err != nil || !ok {
		return err
	}
	return w.Reconcile(owner)
}

// Group returns the group attached to id, if any.
func (w *World) Group(id scene.NodeID) (*Group, bool) {
	g, ok := w.groups[id]
	return g, ok
}

// Groups returns all live groups ordered by node ID.
func (w *World) Groups() []*Group {
	out := make([]*Group, 0, len(w.groups))
	for _, g := range w.groups {
		if w.graph.Contains(g.node) {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b *Group) int { return cmp.Compare(a.node, b.node) })
	return out
}

// Renderers returns all live renderers ordered by node ID.
func (w *World) Renderers() []*Renderer {
	out := make([]*Renderer, 0, len(w.renderers))
	for _, r := range w.renderers {
		if w.graph.Contains(r.node) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b *Renderer) int { return cmp.Compare(a.node, b.node) })
	return out
}

// RootGroup returns the group closest to the scene root on the path from id
// upwards (id included).
func (w *World) RootGroup(id scene.NodeID) (*Group, bool, error) {
	top, ok, err := scene.Topmost(w.graph, id, w.hasGroup)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCycle, err, "find root group of %q", id)
	}
	if !ok {
		return nil, false, nil
	}
	return w.groups[top], true, nil
}

// Roots returns every live group that is the topmost group of its branch,
// ordered by node ID. Cycles are logged and skipped.
func (w *World) Roots() []*Group {
	var out []*Group
	for _, g := range w.Groups() {
		top, ok, err := w.RootGroup(g.node)
		if err != nil {
			w.logger.Warn("skipping group", "group", g.Name, "err", err)
			continue
		}
		if ok && top == g {
			out = append(out, g)
		}
	}
	return out
}

// sweep drops capabilities whose node has left the scene.
func (w *World) sweep() {
	for id := range w.groups {
		if !w.graph.Contains(id) {
			w.logger.Debug("dropping group of destroyed node", "node", id)
			delete(w.groups, id)
		}
	}
	for id := range w.renderers {
		if !w.graph.Contains(id) {
			delete(w.renderers, id)
		}
	}
}

func (w *World) hasGroup(id scene.NodeID) bool {
	_, ok := w.groups[id]
	return ok
}

// owner returns the nearest group on the path from id upwards. With
// inclusive set, a group on id itself counts.
func (w *World) owner(id scene.NodeID, inclusive bool) (*Group, bool, error) {
	n, ok, err := scene.Closest(w.graph, id, inclusive, w.hasGroup)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCycle, err, "find owner of %q", id)
	}
	if !ok {
		return nil, false, nil
	}
	return w.groups[n], true, nil
}

func (w *World) rendererAlive(r *Renderer) bool {
	return r != nil && w.renderers[r.node] == r && w.graph.Contains(r.node)
}

func (w *World) groupAlive(g *Group) bool {
	return g != nil && w.groups[g.node] == g && w.graph.Contains(g.node)
}

func (w *World) memberAlive(m Member) bool {
	switch {
	case m.Renderer != nil:
		return w.rendererAlive(m.Renderer)
	case m.Group != nil:
		return w.groupAlive(m.Group)
	}
	return false
}
