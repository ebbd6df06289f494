// Package render turns sorting results into pictures.
//
// The [nodelink] subpackage draws group trees with Graphviz. This package
// holds the format conversion they share: [ToPDF] and [ToPNG] convert SVG
// with the external rsvg-convert tool from librsvg.
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [nodelink]: github.com/matzehuels/sortgroup/pkg/render/nodelink
package render
