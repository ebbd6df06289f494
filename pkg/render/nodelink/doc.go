// Package nodelink draws sorting group trees as node-link diagrams.
//
// Each group becomes a rounded box, each renderer member an ellipse labelled
// with its current sort order. Edges run from a group to its members in
// member-list order, so reading a row left to right goes from front to back.
//
//	dot := nodelink.ToDOT(world, nil, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
// PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
