package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/scene"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// Write encodes s in the given format. Nodes are written in scene preorder,
// so parents always precede their children. Manual groups record their
// current member order; the other modes recompute it and store none.
// The output can be read back with [Read].
func Write(s *Scene, w io.Writer, format Format) error {
	doc := toDocument(s)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return sgerrors.New(sgerrors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	return nil
}

// Export writes s to path, choosing the format from its extension.
func Export(s *Scene, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(s, f, format)
}

func toDocument(s *Scene) document {
	doc := document{Nodes: make([]node, 0, s.Tree.Len())}
	for _, root := range s.Tree.Roots() {
		for _, id := range s.Tree.Subtree(root) {
			sn, _ := s.Tree.Node(id)
			n := node{ID: string(id), Parent: string(sn.Parent)}
			if sn.Name != string(id) {
				n.Name = sn.Name
			}
			if sn.Local != (scene.Vec3{}) {
				n.Position = &position{X: sn.Local.X, Y: sn.Local.Y, Z: sn.Local.Z}
			}
			if r, ok := s.World.Renderer(id); ok {
				n.Renderer = &renderer{Layer: string(r.Layer)}
				if r.Name != sn.Name {
					n.Renderer.Name = r.Name
				}
			}
			if g, ok := s.World.Group(id); ok {
				n.Group = toGroup(g, sn.Name)
			}
			doc.Nodes = append(doc.Nodes, n)
		}
	}
	return doc
}

func toGroup(g *sorting.Group, nodeName string) *group {
	out := &group{
		Mode:     g.Mode.String(),
		IsoScale: g.IsoScale,
		Disabled: !g.Enabled,
	}
	if g.Name != nodeName {
		out.Name = g.Name
	}
	if g.Layer != sorting.DefaultLayer {
		out.Layer = string(g.Layer)
	}
	if g.Mode == sorting.ModeManual {
		for _, m := range g.Members {
			out.Members = append(out.Members, string(m.Node()))
		}
	}
	return out
}

// OrderRow is one renderer's result after a pass.
type OrderRow struct {
	Node  string `json:"node"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
	Layer string `json:"layer"`
	Order int    `json:"order"`
}

// Orders lists every live renderer with the group that owns it, sorted by
// layer, then by descending sort order.
func Orders(w *sorting.World) []OrderRow {
	owner := make(map[*sorting.Renderer]string)
	for _, g := range w.Groups() {
		for _, m := range g.Members {
			if m.Renderer != nil {
				owner[m.Renderer] = g.Name
			}
		}
	}

	var rows []OrderRow
	for _, r := range w.Renderers() {
		rows = append(rows, OrderRow{
			Node:  string(r.Node()),
			Name:  r.Name,
			Group: owner[r],
			Layer: string(r.Layer),
			Order: r.SortOrder,
		})
	}
	slices.SortStableFunc(rows, func(a, b OrderRow) int {
		return cmp.Or(
			cmp.Compare(a.Layer, b.Layer),
			cmp.Compare(b.Order, a.Order),
			cmp.Compare(a.Node, b.Node),
		)
	})
	return rows
}

// WriteOrders encodes [Orders] of world as an indented JSON array.
func WriteOrders(w io.Writer, world *sorting.World) error {
	rows := Orders(world)
	if rows == nil {
		rows = []OrderRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
