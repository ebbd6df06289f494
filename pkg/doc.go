// Package pkg provides the libraries behind sortgroup, which assigns draw
// orders to 2D renderers grouped in a scene hierarchy.
//
// # Overview
//
// A scene is a tree of nodes. Some nodes carry a renderer (something that
// draws), some carry a sorting group (a block of renderers that must draw
// together). Every frame, the topmost group of each branch hands its
// renderers a descending run of integers so nested groups occupy
// contiguous ranges and members inside a group follow its mode: manual,
// hierarchy, or isometric.
//
// The pkg directory is organized as:
//
//  1. [scene] - the read-only scene graph: parents, sibling order, positions
//  2. [sorting] - groups, membership reconciliation, and order assignment
//  3. [io] - scene files in JSON, TOML, and YAML, plus order reports
//  4. [pipeline] - load → assign → render with artifact caching
//  5. [render/nodelink] - group trees as Graphviz DOT, SVG, PDF, and PNG
//
// Supporting packages: [cache] (file and Redis artifact stores), [watch]
// (debounced file reloads), [errors] (coded errors), [observability]
// (hooks), and [buildinfo] (version stamping).
//
// # Data Flow
//
//	scene file (.json, .toml, .yaml)
//	         ↓
//	    [io] package (decode, build tree and world)
//	         ↓
//	    [sorting] package (reconcile members, assign orders)
//	         ↓
//	    order table, JSON report, or [render/nodelink] diagrams
//
// # Quick Start
//
// Load a scene and read back the assigned orders:
//
//	import (
//	    sgio "github.com/matzehuels/sortgroup/pkg/io"
//	)
//
//	s, err := sgio.Load("level.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := s.World.Update(); err != nil {
//	    return err
//	}
//	for _, row := range sgio.Orders(s.World) {
//	    fmt.Println(row.Layer, row.Order, row.Name)
//	}
//
// Or let the pipeline do the same and render the group tree:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, "level.yaml", pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/scene
// [sorting]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/sorting
// [io]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/pipeline
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/cache
// [watch]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/watch
// [errors]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/sortgroup/pkg/buildinfo
package pkg
