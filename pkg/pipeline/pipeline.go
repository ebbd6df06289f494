// Package pipeline runs the load → assign → render flow for scene files.
//
// The CLI commands all follow the same path: read a scene file, build its
// tree and sorting world, run one frame of order assignment, and optionally
// render the group trees. Keeping that flow here gives every command the
// same logging, timing, and artifact caching.
//
// # Stages
//
//  1. Load: decode the scene file and reconcile every group
//  2. Assign: run [sorting.World.Frame] once
//  3. Render: draw the group trees as DOT, SVG, PDF, or PNG, or write the
//     assigned orders as JSON
//
// Rendering is skipped when no formats are requested. Rendered artifacts are
// cached by the scene file's content hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	defer runner.Close()
//	res, err := runner.Execute(ctx, "scene.yaml", pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sortgroup/pkg/cache"
	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// DefaultScale is the PNG scale factor when none is given.
const DefaultScale = 2.0

// Output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json" // assigned orders, see sgio.WriteOrders
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Load options
	Mode  sorting.Mode  // mode of groups whose file entry names none
	Layer sorting.Layer // layer of groups whose file entry names none

	// Render options
	Formats    []string
	Detailed   bool
	GroupsOnly bool
	Roots      []string // group node IDs to draw; empty draws every root
	Scale      float64  // PNG only
	Refresh    bool     // skip cache reads, still write fresh results

	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks formats and the PNG scale.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return sgerrors.New(sgerrors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Detailed:   o.Detailed,
		GroupsOnly: o.GroupsOnly,
		Roots:      slices.Sorted(slices.Values(o.Roots)),
		Mode:       o.Mode.String(),
		Layer:      string(o.Layer),
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// ValidateFormat checks that format is supported. Formats are lower case.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return sgerrors.New(sgerrors.ErrCodeInvalidFormat, "invalid format %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Results
// =============================================================================

// Result holds everything a run produced.
type Result struct {
	Scene     *sgio.Scene
	SceneHash string // SHA-256 of the scene file bytes

	// Orders lists every renderer after the assign stage.
	Orders []sgio.OrderRow

	// Artifacts maps each requested format to its bytes.
	Artifacts map[string][]byte

	Stats    Stats
	CacheHit bool // all artifacts came from the cache
}

// Stats contains counts and stage timings.
type Stats struct {
	Renderers int
	Groups    int
	Passes    []sorting.Stats // one per enabled root

	LoadTime   time.Duration
	AssignTime time.Duration
	RenderTime time.Duration
}

// Written sums sort orders written across all passes.
func (s Stats) Written() int {
	n := 0
	for _, p := range s.Passes {
		n += p.Written
	}
	return n
}
