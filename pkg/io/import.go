package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/scene"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// Scene is a loaded scene: the node hierarchy and the sorting capabilities
// attached to it.
type Scene struct {
	Tree  *scene.Tree
	World *sorting.World
}

// Option configures how a scene is built.
type Option func(*loader)

type loader struct {
	world []sorting.Option
	mode  sorting.Mode
	layer sorting.Layer
}

// WithWorldOptions passes options to [sorting.NewWorld].
func WithWorldOptions(opts ...sorting.Option) Option {
	return func(l *loader) { l.world = append(l.world, opts...) }
}

// WithDefaultMode sets the mode of groups that do not name one.
func WithDefaultMode(m sorting.Mode) Option {
	return func(l *loader) { l.mode = m }
}

// WithDefaultLayer sets the layer of groups that do not name one. It fans
// out to their renderers like an explicit group layer.
func WithDefaultLayer(layer sorting.Layer) Option {
	return func(l *loader) { l.layer = layer }
}

// Load reads the scene file at path, choosing the format from its extension.
func Load(path string, opts ...Option) (*Scene, error) {
	if err := sgerrors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sgerrors.Wrap(sgerrors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Read(f, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a scene from r and builds its tree and world.
//
// Unknown fields are rejected. Every group is reconciled and manual member
// orders from the file are applied, so the returned world is ready for
// [sorting.World.Update]. Read does not close r.
func Read(r io.Reader, format Format, opts ...Option) (*Scene, error) {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}
	doc, err := decode(r, format)
	if err != nil {
		return nil, err
	}
	return l.build(doc)
}

func decode(r io.Reader, format Format) (*document, error) {
	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, sgerrors.Wrap(sgerrors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, sgerrors.Wrap(sgerrors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, sgerrors.New(sgerrors.ErrCodeInvalidFormat, "decode toml: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, sgerrors.Wrap(sgerrors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	default:
		return nil, sgerrors.New(sgerrors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	return &doc, nil
}

func (l *loader) build(doc *document) (*Scene, error) {
	tree, err := buildTree(doc)
	if err != nil {
		return nil, err
	}
	w := sorting.NewWorld(tree, l.world...)

	byID := make(map[scene.NodeID]*node, len(doc.Nodes))
	for i := range doc.Nodes {
		byID[scene.NodeID(doc.Nodes[i].ID)] = &doc.Nodes[i]
	}

	for _, n := range doc.Nodes {
		if n.Renderer == nil {
			continue
		}
		if _, err := w.AddRenderer(scene.NodeID(n.ID), cmp.Or(n.Renderer.Name, n.Name)); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	// Groups go in parent-first order so each AddGroup only carves its
	// members out of an owner that already exists.
	var groups []*sorting.Group
	for _, root := range tree.Roots() {
		for _, id := range tree.Subtree(root) {
			n := byID[id]
			if n.Group == nil {
				continue
			}
			mode := l.mode
			if n.Group.Mode != "" {
				if mode, err = sorting.ParseMode(n.Group.Mode); err != nil {
					return nil, fmt.Errorf("node %s: %w", n.ID, err)
				}
			}
			layer := cmp.Or(sorting.Layer(n.Group.Layer), l.layer)
			g, err := w.AddGroup(id, cmp.Or(n.Group.Name, n.Name), sorting.GroupConfig{
				Mode:     mode,
				Layer:    layer,
				IsoScale: n.Group.IsoScale,
				Disabled: n.Group.Disabled,
			})
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
			groups = append(groups, g)
		}
	}

	// Group layers fan out first; a layer set on the renderer itself wins.
	for _, g := range groups {
		decl := byID[g.Node()].Group
		if layer := cmp.Or(sorting.Layer(decl.Layer), l.layer); layer != "" {
			w.SetSortingLayer(g, layer)
		}
		if len(decl.Members) > 0 {
			if err := applyOrder(tree, g, decl.Members); err != nil {
				return nil, fmt.Errorf("node %s: %w", g.Node(), err)
			}
		}
	}
	for _, n := range doc.Nodes {
		if n.Renderer != nil && n.Renderer.Layer != "" {
			r, _ := w.Renderer(scene.NodeID(n.ID))
			r.Layer = sorting.Layer(n.Renderer.Layer)
		}
	}

	return &Scene{Tree: tree, World: w}, nil
}

// buildTree adds nodes parents first, then restores the file's sibling
// order. Missing IDs are filled with random UUIDs and missing names with
// the ID.
func buildTree(doc *document) (*scene.Tree, error) {
	seen := make(map[string]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if err := sgerrors.ValidateNodeID(n.ID); err != nil {
			return nil, err
		}
		if seen[n.ID] {
			return nil, sgerrors.New(sgerrors.ErrCodeDuplicate, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		n.Name = cmp.Or(n.Name, n.ID)
	}

	tree := scene.NewTree()
	pending := make([]int, len(doc.Nodes))
	for i := range pending {
		pending[i] = i
	}
	for len(pending) > 0 {
		var next []int
		for _, i := range pending {
			n := doc.Nodes[i]
			if n.Parent != "" && !tree.Contains(scene.NodeID(n.Parent)) {
				next = append(next, i)
				continue
			}
			var local scene.Vec3
			if n.Position != nil {
				local = scene.Vec3{X: n.Position.X, Y: n.Position.Y, Z: n.Position.Z}
			}
			err := tree.AddNode(scene.Node{ID: scene.NodeID(n.ID), Name: n.Name, Parent: scene.NodeID(n.Parent), Local: local})
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
		}
		if len(next) == len(pending) {
			for _, i := range next {
				if n := doc.Nodes[i]; !seen[n.Parent] {
					return nil, sgerrors.New(sgerrors.ErrCodeNotFound, "node %q: unknown parent %q", n.ID, n.Parent)
				}
			}
			return nil, sgerrors.New(sgerrors.ErrCodeCycle, "node %q: parent chain loops", doc.Nodes[next[0]].ID)
		}
		pending = next
	}

	index := make(map[string]int)
	for _, n := range doc.Nodes {
		if err := tree.SetSiblingIndex(scene.NodeID(n.ID), index[n.Parent]); err != nil {
			return nil, err
		}
		index[n.Parent]++
	}
	return tree, nil
}

// applyOrder moves the listed members to the front of g.Members in list
// order. Owned members that are not listed keep their relative order behind
// them.
func applyOrder(tree *scene.Tree, g *sorting.Group, ids []string) error {
	pos := make(map[scene.NodeID]int, len(ids))
	for i, id := range ids {
		nid := scene.NodeID(id)
		if !tree.Contains(nid) {
			return sgerrors.New(sgerrors.ErrCodeNotFound, "member %q is not in the scene", id)
		}
		if _, dup := pos[nid]; !dup {
			pos[nid] = i
		}
	}
	slices.SortStableFunc(g.Members, func(a, b sorting.Member) int {
		pa, oka := pos[a.Node()]
		pb, okb := pos[b.Node()]
		switch {
		case oka && okb:
			return cmp.Compare(pa, pb)
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	})
	return nil
}
