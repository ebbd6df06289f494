package pipeline

import (
	"bytes"
	"context"
	"fmt"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/render/nodelink"
	"github.com/matzehuels/sortgroup/pkg/scene"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// Render produces every format in opts from the world's current state.
// Run a frame first so the diagrams and order rows show fresh values.
func Render(ctx context.Context, w *sorting.World, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	roots, err := SelectRoots(w, opts.Roots)
	if err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(w, roots, nodelink.Options{
		Detailed:   opts.Detailed,
		GroupsOnly: opts.GroupsOnly,
	})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = sgio.WriteOrders(&buf, w)
			data = buf.Bytes()
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// SelectRoots resolves group node IDs. Any group may be named, not only
// roots; the diagram then starts at that group.
func SelectRoots(w *sorting.World, ids []string) ([]*sorting.Group, error) {
	var out []*sorting.Group
	for _, id := range ids {
		g, ok := w.Group(scene.NodeID(id))
		if !ok {
			return nil, sgerrors.New(sgerrors.ErrCodeNotFound, "no group on node %q", id)
		}
		out = append(out, g)
	}
	return out, nil
}
