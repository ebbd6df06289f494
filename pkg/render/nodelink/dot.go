package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sortgroup/pkg/render"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// Options configures group tree rendering.
type Options struct {
	// Detailed adds mode, layer, and the assigned order range to group
	// labels, and the sorting layer to renderer labels.
	Detailed bool

	// GroupsOnly leaves renderer members out of the diagram.
	GroupsOnly bool
}

// ToDOT converts the group trees below roots to Graphviz DOT. With no roots,
// every root group of w is drawn.
//
// Edges leave a group in member-list order, left to right, so the leftmost
// child is the one that draws on top. Renderer nodes show their current
// SortOrder. Disabled groups are drawn dashed on a grey fill.
func ToDOT(w *sorting.World, roots []*sorting.Group, opts Options) string {
	if len(roots) == 0 {
		roots = w.Roots()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	seen := map[*sorting.Group]bool{}
	var edges []string
	var visit func(g *sorting.Group)
	visit = func(g *sorting.Group) {
		if seen[g] {
			return
		}
		seen[g] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", groupID(g), strings.Join(groupAttrs(g, opts.Detailed), ", "))

		for _, m := range g.Members {
			switch {
			case m.Group != nil:
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", groupID(g), groupID(m.Group)))
				visit(m.Group)
			case m.Renderer != nil && !opts.GroupsOnly:
				fmt.Fprintf(&buf, "  %q [%s];\n", rendererID(m.Renderer), strings.Join(rendererAttrs(m.Renderer, opts.Detailed), ", "))
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", groupID(g), rendererID(m.Renderer)))
			}
		}
	}
	for _, g := range roots {
		visit(g)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// A node can carry both a group and a renderer, so IDs are prefixed.
func groupID(g *sorting.Group) string { return "g:" + string(g.Node()) }
func rendererID(r *sorting.Renderer) string { return "r:" + string(r.Node()) }

func groupLabel(g *sorting.Group, detailed bool) string {
	if !detailed {
		return g.Name
	}
	parts := []string{
		"mode: " + g.Mode.String(),
		"layer: " + string(g.Layer),
	}
	if g.Range.Empty() {
		parts = append(parts, "orders: none")
	} else {
		parts = append(parts, fmt.Sprintf("orders: %d..%d", g.Range.Lo, g.Range.Hi))
	}
	return g.Name + "\n" + strings.Join(parts, "\n")
}

func groupAttrs(g *sorting.Group, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", groupLabel(g, detailed))}
	if !g.Enabled {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

func rendererLabel(r *sorting.Renderer, detailed bool) string {
	label := fmt.Sprintf("%s\n#%d", r.Name, r.SortOrder)
	if detailed {
		label += "\nlayer: " + string(r.Layer)
	}
	return label
}

func rendererAttrs(r *sorting.Renderer, detailed bool) []string {
	return []string{
		fmt.Sprintf("label=%q", rendererLabel(r, detailed)),
		"shape=ellipse",
		"style=filled",
		"fillcolor=\"#f3f3f3\"",
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
